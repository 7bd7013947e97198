package entity

import "time"

// EventType names a secret lifecycle event.
type EventType string

const (
	EventSecretIssued  EventType = "twofactor.secret.issued"
	EventSecretRotated EventType = "twofactor.secret.rotated"
	EventSecretRevoked EventType = "twofactor.secret.revoked"
)

func (t EventType) String() string {
	return string(t)
}

// SecretEvent is the audit record published for every secret lifecycle change.
type SecretEvent struct {
	Type        EventType
	IdentityKey string
	OccurredAt  time.Time
}
