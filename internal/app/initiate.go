package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/nsqio/go-nsq"
	libOTP "github.com/pquerna/otp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/config"
	"github.com/shandysiswandi/gotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/gotp/internal/pkg/hash"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/messaging"
	"github.com/shandysiswandi/gotp/internal/pkg/mfa"
	"github.com/shandysiswandi/gotp/internal/pkg/otp"
	"github.com/shandysiswandi/gotp/internal/pkg/qrcode"
	"github.com/shandysiswandi/gotp/internal/pkg/router"
	"github.com/shandysiswandi/gotp/internal/pkg/uid"
	"github.com/shandysiswandi/gotp/internal/pkg/validator"
	"github.com/shandysiswandi/gotp/internal/twofactor/outbound/store"
)

const defaultIssuer = "MyApp"

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	if tz := cfg.GetString("app.tz"); tz != "" {
		//nolint:errcheck,gosec // ignore error
		os.Setenv("TZ", tz)
	}

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))
	a.qrcode = qrcode.NewPNGRenderer(a.config.GetInt("mfa.totp.qr_size"))

	identityKey := a.config.GetString("hash.identity_key")
	if identityKey == "" {
		slog.Error("failed to init hmac, hash.identity_key is empty")
		os.Exit(1)
	}
	a.hmac = hash.NewHMACSHA256(identityKey)

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator

	totpCfg, err := totpConfig(a.config)
	if err != nil {
		slog.Error("failed to init totp", "error", err)
		os.Exit(1)
	}
	a.totp = otp.NewTOTP(totpCfg)

	rawKey := a.config.GetBinary("mfa.secret")
	if len(rawKey) != 32 {
		slog.Error("failed to init mfa encryptor, secret must be base64 of 32 bytes (AES-256)", "length", len(rawKey))
		os.Exit(1)
	}
	a.mfaEncryptor = mfa.NewAESGCMEncryptor(mfa.StaticKeyProvider{KeyBytes: rawKey})
}

// totpConfig reads the mfa.totp section. A missing window means DefaultWindow;
// an explicit 0 accepts only the current step.
func totpConfig(cfg config.Config) (otp.Config, error) {
	algorithm, err := otp.ParseAlgorithm(cfg.GetString("mfa.totp.algorithm"))
	if err != nil {
		return otp.Config{}, err
	}

	digits := libOTP.DigitsSix
	if cfg.GetInt("mfa.totp.digits") == 8 {
		digits = libOTP.DigitsEight
	}

	issuer := strings.TrimSpace(cfg.GetString("mfa.totp.issuer"))
	if issuer == "" {
		issuer = defaultIssuer
	}

	window := otp.DefaultWindow
	if strings.TrimSpace(cfg.GetString("mfa.totp.window")) != "" {
		window = cfg.GetUint("mfa.totp.window")
	}

	return otp.Config{
		Issuer:    issuer,
		Period:    cfg.GetUint("mfa.totp.period"),
		Window:    window,
		Digits:    digits,
		Algorithm: algorithm,
	}, nil
}

func (a *App) initStore() {
	driver := strings.ToLower(strings.TrimSpace(a.config.GetString("store.driver")))

	switch driver {
	case "", store.DriverMemory:
		slog.Warn("using in-memory secret store, secrets are lost on restart")
		a.store = store.NewMemory(a.ins)

	case store.DriverRedis:
		opt, err := redis.ParseURL(a.config.GetString("store.redis.url"))
		if err != nil {
			slog.Error("failed to parse redis url", "error", err)
			os.Exit(1)
		}

		prefix := a.config.GetString("store.redis.prefix")
		if prefix == "" {
			prefix = store.DefaultRedisPrefix
		}

		a.store = store.NewRedis(redis.NewClient(opt), prefix, a.ins)
		a.waitStore(driver)

	case store.DriverPostgres:
		cfg, err := pgxpool.ParseConfig(a.config.GetString("store.postgres.url"))
		if err != nil {
			slog.Error("failed to parse DB connection string.", "error", err)
			os.Exit(1)
		}
		if v := a.config.GetInt32("store.postgres.pool.max_conns"); v > 0 {
			cfg.MaxConns = v
		}
		if v := a.config.GetInt32("store.postgres.pool.min_conns"); v > 0 {
			cfg.MinConns = v
		}

		pool, err := pgxpool.NewWithConfig(a.ctx, cfg)
		if err != nil {
			slog.Error("failed to create DB connection pool", "error", err)
			os.Exit(1)
		}

		table := a.config.GetString("store.postgres.table")
		if table == "" {
			table = store.DefaultPostgresTable
		}

		pg := store.NewPostgres(pool, table, a.ins)
		a.store = pg
		a.waitStore(driver)

		if err := pg.Migrate(a.ctx); err != nil {
			slog.Error("failed to migrate secret table", "table", table, "error", err)
			os.Exit(1)
		}

	default:
		slog.Error("failed to init store, unknown driver", "driver", driver)
		os.Exit(1)
	}
}

// waitStore blocks until the store answers a ping or the retry budget is spent.
func (a *App) waitStore(driver string) {
	retries := a.config.GetUint64("store.connect_retries")
	if retries == 0 {
		retries = 5
	}
	backoff := time.Duration(a.config.GetInt64("store.connect_backoff_ms")) * time.Millisecond
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}

	b := retry.NewExponential(backoff)
	b = retry.WithCappedDuration(5*time.Second, b)
	b = retry.WithMaxRetries(retries, b)

	if err := retry.Do(a.ctx, b, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := a.store.Ping(pingCtx); err != nil {
			slog.Warn("secret store not ready", "driver", driver, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	}); err != nil {
		slog.Error("failed to ping secret store", "driver", driver, "error", err)
		os.Exit(1)
	}
}

func (a *App) initMessaging() {
	driver := a.config.GetString("messaging.driver")
	client, err := messaging.NewFromDriver(driver, messaging.FactoryOptions{
		NSQ: messaging.NSQConfig{
			ProducerAddr: a.config.GetString("messaging.nsq.producer_addr"),
			ProducerConfig: func() *nsq.Config {
				cfg := nsq.NewConfig()
				if v := a.config.GetSecond("messaging.nsq.producer_config.dial_timeout_seconds"); v > 0 {
					cfg.DialTimeout = v
				}
				if v := a.config.GetSecond("messaging.nsq.producer_config.write_timeout_seconds"); v > 0 {
					cfg.WriteTimeout = v
				}
				return cfg
			}(),
		},
		Kafka: messaging.KafkaConfig{
			Brokers: a.config.GetArray("messaging.kafka.brokers"),
		},
		NATS: messaging.NATSConfig{
			URL: a.config.GetString("messaging.nats.url"),
			Options: []nats.Option{
				nats.Name(a.config.GetString("messaging.nats.name")),
				nats.MaxReconnects(a.config.GetInt("messaging.nats.max_reconnects")),
				nats.Timeout(a.config.GetSecond("messaging.nats.timeout_seconds")),
				nats.RetryOnFailedConnect(a.config.GetBool("messaging.nats.retry_on_failed_connect")),
			},
		},
	})
	if err != nil {
		slog.Error("failed to init messaging", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.messaging = client
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		Instrument: a.ins,
		Health: func(ctx context.Context) error {
			return a.store.Ping(ctx)
		},
	})

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Messaging",
			fn: func(context.Context) error {
				return a.messaging.Close()
			},
		},
		{
			name: "Store",
			fn: func(context.Context) error {
				return a.store.Close()
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
