package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/twofactor/entity"
)

// DefaultRedisPrefix namespaces secret keys.
const DefaultRedisPrefix = "gotp:secret:"

type redisRecord struct {
	Ciphertext []byte    `json:"ct"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Redis stores one string value per identity key. Values never expire.
type Redis struct {
	tracer

	client redis.UniversalClient
	prefix string
}

func NewRedis(client redis.UniversalClient, prefix string, ins instrument.Instrumentation) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}

	return &Redis{
		tracer: tracer{ins: ins, driver: DriverRedis},
		client: client,
		prefix: prefix,
	}
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

func (r *Redis) mapError(err error) error {
	if errors.Is(err, redis.Nil) {
		return goerror.ErrNotFound
	}
	return err
}

func (r *Redis) GetSecret(ctx context.Context, key string) (_ *entity.SecretRecord, err error) {
	ctx, span := r.startSpan(ctx, "GetSecret")
	defer func() { r.endSpan(span, err) }()

	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		return nil, r.mapError(err)
	}

	var rec redisRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}

	return &entity.SecretRecord{
		Key:        key,
		Ciphertext: rec.Ciphertext,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}, nil
}

func (r *Redis) CreateSecret(ctx context.Context, rec entity.SecretRecord) (err error) {
	ctx, span := r.startSpan(ctx, "CreateSecret")
	defer func() { r.endSpan(span, err) }()

	val, err := json.Marshal(redisRecord{
		Ciphertext: rec.Ciphertext,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	})
	if err != nil {
		return err
	}

	ok, err := r.client.SetNX(ctx, r.key(rec.Key), val, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return goerror.ErrConflict
	}

	return nil
}

func (r *Redis) UpdateSecret(ctx context.Context, rec entity.SecretRecord) (err error) {
	ctx, span := r.startSpan(ctx, "UpdateSecret")
	defer func() { r.endSpan(span, err) }()

	old, err := r.GetSecret(ctx, rec.Key)
	if err != nil {
		return err
	}

	val, err := json.Marshal(redisRecord{
		Ciphertext: rec.Ciphertext,
		CreatedAt:  old.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	})
	if err != nil {
		return err
	}

	err = r.client.SetArgs(ctx, r.key(rec.Key), val, redis.SetArgs{Mode: "XX"}).Err()
	return r.mapError(err)
}

func (r *Redis) DeleteSecret(ctx context.Context, key string) (err error) {
	ctx, span := r.startSpan(ctx, "DeleteSecret")
	defer func() { r.endSpan(span, err) }()

	n, err := r.client.Del(ctx, r.key(key)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
