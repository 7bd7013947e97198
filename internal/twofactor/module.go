package twofactor

import (
	"context"

	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/gotp/internal/pkg/hash"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/messaging"
	"github.com/shandysiswandi/gotp/internal/pkg/mfa"
	"github.com/shandysiswandi/gotp/internal/pkg/otp"
	"github.com/shandysiswandi/gotp/internal/pkg/qrcode"
	"github.com/shandysiswandi/gotp/internal/pkg/router"
	"github.com/shandysiswandi/gotp/internal/pkg/validator"
	"github.com/shandysiswandi/gotp/internal/twofactor/entity"
	"github.com/shandysiswandi/gotp/internal/twofactor/inbound"
	"github.com/shandysiswandi/gotp/internal/twofactor/outbound/mq"
	"github.com/shandysiswandi/gotp/internal/twofactor/usecase"
)

// SecretStore persists identity to secret associations.
type SecretStore interface {
	GetSecret(ctx context.Context, key string) (*entity.SecretRecord, error)
	CreateSecret(ctx context.Context, rec entity.SecretRecord) error
	UpdateSecret(ctx context.Context, rec entity.SecretRecord) error
	DeleteSecret(ctx context.Context, key string) error
}

type Dependency struct {
	Store      SecretStore                `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Publisher        `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Encryptor  mfa.Encryptor              `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Totp       otp.OTP                    `validate:"required"`
	QRCode     qrcode.Renderer            `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoStore:     dep.Store,
		RepoMessaging: repoMsg,
		Validator:     dep.Validator,
		HMAC:          dep.HMAC,
		Encryptor:     dep.Encryptor,
		Totp:          dep.Totp,
		QRCode:        dep.QRCode,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
