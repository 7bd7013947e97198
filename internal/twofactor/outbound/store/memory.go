package store

import (
	"context"
	"sync"

	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/twofactor/entity"
)

// Memory keeps secrets in a process-local map. Contents are lost on restart.
type Memory struct {
	tracer

	mu      sync.RWMutex
	records map[string]entity.SecretRecord
}

func NewMemory(ins instrument.Instrumentation) *Memory {
	return &Memory{
		tracer:  tracer{ins: ins, driver: DriverMemory},
		records: make(map[string]entity.SecretRecord),
	}
}

func (m *Memory) GetSecret(ctx context.Context, key string) (_ *entity.SecretRecord, err error) {
	_, span := m.startSpan(ctx, "GetSecret")
	defer func() { m.endSpan(span, err) }()

	m.mu.RLock()
	rec, ok := m.records[key]
	m.mu.RUnlock()

	if !ok {
		return nil, goerror.ErrNotFound
	}

	rec.Ciphertext = append([]byte(nil), rec.Ciphertext...)
	return &rec, nil
}

func (m *Memory) CreateSecret(ctx context.Context, rec entity.SecretRecord) (err error) {
	_, span := m.startSpan(ctx, "CreateSecret")
	defer func() { m.endSpan(span, err) }()

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[rec.Key]; ok {
		return goerror.ErrConflict
	}

	rec.Ciphertext = append([]byte(nil), rec.Ciphertext...)
	m.records[rec.Key] = rec
	return nil
}

func (m *Memory) UpdateSecret(ctx context.Context, rec entity.SecretRecord) (err error) {
	_, span := m.startSpan(ctx, "UpdateSecret")
	defer func() { m.endSpan(span, err) }()

	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.records[rec.Key]
	if !ok {
		return goerror.ErrNotFound
	}

	rec.CreatedAt = old.CreatedAt
	rec.Ciphertext = append([]byte(nil), rec.Ciphertext...)
	m.records[rec.Key] = rec
	return nil
}

func (m *Memory) DeleteSecret(ctx context.Context, key string) (err error) {
	_, span := m.startSpan(ctx, "DeleteSecret")
	defer func() { m.endSpan(span, err) }()

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[key]; !ok {
		return goerror.ErrNotFound
	}

	delete(m.records, key)
	return nil
}

func (m *Memory) Ping(context.Context) error {
	return nil
}

func (m *Memory) Close() error {
	return nil
}
