package goroutine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManager(t *testing.T) {
	t.Parallel()

	m := NewManager(4)

	var ran atomic.Int32
	m.Go(context.Background(), func(context.Context) error {
		ran.Add(1)
		return nil
	})
	m.Go(context.Background(), func(context.Context) error {
		ran.Add(1)
		return errors.New("publish failed")
	})
	m.Go(context.Background(), func(context.Context) error {
		panic("boom")
	})

	err := m.Wait()
	assert.EqualError(t, err, "publish failed")
	assert.Equal(t, int32(2), ran.Load())

	m.Go(context.Background(), func(context.Context) error {
		ran.Add(1)
		return nil
	})
	assert.EqualError(t, m.Wait(), "publish failed")
	assert.Equal(t, int32(2), ran.Load())
}

func TestManager_Nil(t *testing.T) {
	t.Parallel()

	var m *Manager
	m.Go(context.Background(), func(context.Context) error { return nil })
	assert.NoError(t, m.Wait())
}
