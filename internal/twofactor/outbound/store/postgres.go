package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/twofactor/entity"
)

// DefaultPostgresTable is the table used when none is configured.
const DefaultPostgresTable = "twofactor_secrets"

// PgxPool is the subset of *pgxpool.Pool used by Postgres.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Postgres stores secrets in a single table keyed by identity key.
type Postgres struct {
	tracer

	conn  PgxPool
	table string
}

func NewPostgres(conn PgxPool, table string, ins instrument.Instrumentation) *Postgres {
	if table == "" {
		table = DefaultPostgresTable
	}

	return &Postgres{
		tracer: tracer{ins: ins, driver: DriverPostgres},
		conn:   conn,
		table:  pgx.Identifier{table}.Sanitize(),
	}
}

// mapError translates no rows to ErrNotFound and unique violations (23505) to ErrConflict.
func (p *Postgres) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return goerror.ErrConflict
	}

	return err
}

// Migrate creates the secrets table when it does not exist.
func (p *Postgres) Migrate(ctx context.Context) (err error) {
	ctx, span := p.startSpan(ctx, "Migrate")
	defer func() { p.endSpan(span, err) }()

	_, err = p.conn.Exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	identity_key TEXT PRIMARY KEY,
	secret       BYTEA NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
)`, p.table))
	return err
}

func (p *Postgres) GetSecret(ctx context.Context, key string) (_ *entity.SecretRecord, err error) {
	ctx, span := p.startSpan(ctx, "GetSecret")
	defer func() { p.endSpan(span, err) }()

	rec := entity.SecretRecord{Key: key}
	err = p.conn.QueryRow(ctx,
		fmt.Sprintf(`SELECT secret, created_at, updated_at FROM %s WHERE identity_key = $1`, p.table),
		key,
	).Scan(&rec.Ciphertext, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, p.mapError(err)
	}

	return &rec, nil
}

func (p *Postgres) CreateSecret(ctx context.Context, rec entity.SecretRecord) (err error) {
	ctx, span := p.startSpan(ctx, "CreateSecret")
	defer func() { p.endSpan(span, err) }()

	tag, err := p.conn.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (identity_key, secret, created_at, updated_at)
VALUES ($1, $2, $3, $4) ON CONFLICT (identity_key) DO NOTHING`, p.table),
		rec.Key, rec.Ciphertext, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return p.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrConflict
	}

	return nil
}

func (p *Postgres) UpdateSecret(ctx context.Context, rec entity.SecretRecord) (err error) {
	ctx, span := p.startSpan(ctx, "UpdateSecret")
	defer func() { p.endSpan(span, err) }()

	tag, err := p.conn.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET secret = $2, updated_at = $3 WHERE identity_key = $1`, p.table),
		rec.Key, rec.Ciphertext, rec.UpdatedAt,
	)
	if err != nil {
		return p.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

func (p *Postgres) DeleteSecret(ctx context.Context, key string) (err error) {
	ctx, span := p.startSpan(ctx, "DeleteSecret")
	defer func() { p.endSpan(span, err) }()

	tag, err := p.conn.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE identity_key = $1`, p.table), key)
	if err != nil {
		return p.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.conn.Ping(ctx)
}

func (p *Postgres) Close() error {
	p.conn.Close()
	return nil
}
