package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/messaging"
	"github.com/shandysiswandi/gotp/internal/twofactor/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	destination string
	msg         messaging.OutgoingMessage
	err         error
}

func (p *recordingPublisher) Publish(_ context.Context, destination string, msg messaging.OutgoingMessage) (messaging.PublishResult, error) {
	p.destination = destination
	p.msg = msg
	return messaging.PublishResult{Topic: destination}, p.err
}

func TestMessaging_PublishSecretEvent(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{}
	m := NewMessaging(pub, instrument.NewNoop())

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := instrument.SetCorrelationID(context.Background(), "cid-7")

	err := m.PublishSecretEvent(ctx, entity.SecretEvent{
		Type:        entity.EventSecretRotated,
		IdentityKey: "abc123",
		OccurredAt:  at,
	})
	require.NoError(t, err)

	assert.Equal(t, "twofactor.secret.rotated", pub.destination)
	assert.Equal(t, []byte("abc123"), pub.msg.Key)
	assert.Equal(t, []messaging.Header{{Key: "cID", Value: []byte("cid-7")}}, pub.msg.Headers)

	var body map[string]any
	require.NoError(t, json.Unmarshal(pub.msg.Body, &body))
	assert.Equal(t, map[string]any{"identity_key": "abc123", "occurred_at": "2026-03-01T12:00:00Z"}, body)
}

func TestMessaging_PublishSecretEvent_Error(t *testing.T) {
	t.Parallel()

	m := NewMessaging(&recordingPublisher{err: errors.New("broker down")}, instrument.NewNoop())

	err := m.PublishSecretEvent(context.Background(), entity.SecretEvent{Type: entity.EventSecretIssued})
	assert.EqualError(t, err, "broker down")
}
