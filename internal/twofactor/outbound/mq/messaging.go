package mq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/messaging"
	"github.com/shandysiswandi/gotp/internal/twofactor/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

// SecretEventMessage is the wire body of a secret lifecycle event.
type SecretEventMessage struct {
	IdentityKey string    `json:"identity_key"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishSecretEvent(ctx context.Context, ev entity.SecretEvent) error {
	ctx, span := m.ins.Tracer("twofactor.outbound.mq").Start(ctx, "PublishSecretEvent")
	defer span.End()

	span.SetAttributes(attribute.String("messaging.destination", ev.Type.String()))

	body, err := json.Marshal(SecretEventMessage{
		IdentityKey: ev.IdentityKey,
		OccurredAt:  ev.OccurredAt,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, ev.Type.String(), messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(ev.IdentityKey),
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
