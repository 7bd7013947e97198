package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/gotp/internal/pkg/hash"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/mfa"
	"github.com/shandysiswandi/gotp/internal/pkg/otp"
	"github.com/shandysiswandi/gotp/internal/pkg/qrcode"
	"github.com/shandysiswandi/gotp/internal/pkg/validator"
	"github.com/shandysiswandi/gotp/internal/twofactor/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	msgNotEnrolled = "identity is not enrolled"
	msgMismatch    = "Invalid OTP! Access denied."
)

type repoStore interface {
	GetSecret(ctx context.Context, key string) (*entity.SecretRecord, error)
	CreateSecret(ctx context.Context, rec entity.SecretRecord) error
	UpdateSecret(ctx context.Context, rec entity.SecretRecord) error
	DeleteSecret(ctx context.Context, key string) error
}

type repoMessaging interface {
	PublishSecretEvent(ctx context.Context, ev entity.SecretEvent) error
}

type Usecase struct {
	repoStore     repoStore
	repoMessaging repoMessaging
	validator     validator.Validator
	hmac          hash.Hash
	encryptor     mfa.Encryptor
	totp          otp.OTP
	qrcode        qrcode.Renderer
	clock         clock.Clocker
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager

	verifications metric.Int64Counter
}

type Dependency struct {
	RepoStore     repoStore
	RepoMessaging repoMessaging
	Validator     validator.Validator
	HMAC          hash.Hash
	Encryptor     mfa.Encryptor
	Totp          otp.OTP
	QRCode        qrcode.Renderer
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	verifications, err := dep.Instrument.Meter("twofactor.usecase").Int64Counter(
		"twofactor.verifications",
		metric.WithDescription("Number of OTP verification attempts by result"),
	)
	if err != nil {
		slog.Error("failed to create verification counter", "error", err)
	}

	return &Usecase{
		repoStore:     dep.RepoStore,
		repoMessaging: dep.RepoMessaging,
		validator:     dep.Validator,
		hmac:          dep.HMAC,
		encryptor:     dep.Encryptor,
		totp:          dep.Totp,
		qrcode:        dep.QRCode,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
		verifications: verifications,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("twofactor.usecase").Start(ctx, name)
}

func (s *Usecase) identityKey(ctx context.Context, identity string) (string, error) {
	key, err := s.hmac.Hash(identity)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash identity", "error", err)
		return "", goerror.NewServer(err)
	}
	return string(key), nil
}

func scopeOf(key string) mfa.Scope {
	return mfa.Scope{Subject: key, Purpose: mfa.PurposeTOTPSecret}
}

func (s *Usecase) sealSecret(ctx context.Context, key, secret string) (entity.SecretRecord, error) {
	ct, err := s.encryptor.Encrypt([]byte(secret), scopeOf(key))
	if err != nil {
		slog.ErrorContext(ctx, "failed to encrypt totp secret", "identity_key", key, "error", err)
		return entity.SecretRecord{}, goerror.NewServer(err)
	}

	now := s.clock.Now()
	return entity.SecretRecord{
		Key:        key,
		Ciphertext: ct,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *Usecase) openSecret(ctx context.Context, rec *entity.SecretRecord) (string, error) {
	plain, err := s.encryptor.Decrypt(rec.Ciphertext, scopeOf(rec.Key))
	if err != nil {
		slog.ErrorContext(ctx, "failed to decrypt totp secret", "identity_key", rec.Key, "error", err)
		return "", goerror.NewServer(err)
	}
	return string(plain), nil
}

func (s *Usecase) newSecret(ctx context.Context, identity string) (string, error) {
	secret, _, err := s.totp.Generate(identity)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate totp secret", "error", err)
		return "", goerror.NewServer(err)
	}
	return secret, nil
}

// enrollment renders the provisioning URI and its QR code for an issued secret.
func (s *Usecase) enrollment(ctx context.Context, identity, secret string, created bool) (*entity.Enrollment, error) {
	uri, err := s.totp.ProvisioningURI(secret, identity, "")
	if err != nil {
		slog.ErrorContext(ctx, "failed to build provisioning uri", "error", err)
		return nil, goerror.NewServer(err)
	}

	png, err := s.qrcode.PNG(uri)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render enrollment qr code", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &entity.Enrollment{
		Secret:  secret,
		URI:     uri,
		QRCode:  png,
		Created: created,
	}, nil
}

// publish emits the audit event in the background; failures are logged only.
func (s *Usecase) publish(ctx context.Context, typ entity.EventType, key string) {
	ev := entity.SecretEvent{Type: typ, IdentityKey: key, OccurredAt: s.clock.Now()}

	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.repoMessaging.PublishSecretEvent(ctx, ev); err != nil {
			slog.WarnContext(ctx, "failed to publish secret event", "event", typ.String(), "identity_key", key, "error", err)
		}
		return nil
	})
}

func (s *Usecase) recordVerification(ctx context.Context, result entity.VerifyResult) {
	if s.verifications == nil {
		return
	}
	s.verifications.Add(ctx, 1, metric.WithAttributes(attribute.String("result", string(result))))
}

func normalizeIdentity(identity string) string {
	return strings.TrimSpace(identity)
}
