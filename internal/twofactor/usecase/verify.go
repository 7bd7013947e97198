package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/otp"
	"github.com/shandysiswandi/gotp/internal/twofactor/entity"
)

const decoySecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

// VerifyInput carries the code and exactly one of Secret or Identity.
type VerifyInput struct {
	Secret   string
	Identity string `validate:"omitempty,max=320"`
	OTP      string `validate:"required"`
}

func (s *Usecase) Verify(ctx context.Context, in VerifyInput) error {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	in.Secret = strings.TrimSpace(in.Secret)
	in.Identity = normalizeIdentity(in.Identity)
	in.OTP = strings.TrimSpace(in.OTP)

	if err := s.validator.Validate(in); err != nil {
		s.recordVerification(ctx, entity.VerifyResultInvalid)
		return goerror.NewInvalidInput(err)
	}

	switch {
	case in.Secret == "" && in.Identity == "":
		s.recordVerification(ctx, entity.VerifyResultInvalid)
		return goerror.NewInvalidInput(nil, "secret", "secret or identity is required")
	case in.Secret != "" && in.Identity != "":
		s.recordVerification(ctx, entity.VerifyResultInvalid)
		return goerror.NewInvalidInput(nil, "secret", "provide either secret or identity, not both")
	}

	secret, enrolled := in.Secret, true
	if in.Identity != "" {
		var err error
		if secret, enrolled, err = s.storedSecret(ctx, in.Identity); err != nil {
			return err
		}
	}

	ok, err := s.totp.Validate(in.OTP, secret, s.clock.Now())
	ok = ok && enrolled
	switch {
	case errors.Is(err, otp.ErrInvalidCode):
		s.recordVerification(ctx, entity.VerifyResultInvalid)
		return goerror.NewInvalidInput(nil, "otp", "otp must be a numeric code of the configured length")
	case errors.Is(err, otp.ErrInvalidSecret):
		s.recordVerification(ctx, entity.VerifyResultInvalid)
		return goerror.NewInvalidInput(nil, "secret", "secret must be a valid base32 string")
	case err != nil:
		slog.ErrorContext(ctx, "failed to validate totp code", "error", err)
		return goerror.NewServer(err)
	}

	if !ok {
		s.recordVerification(ctx, entity.VerifyResultMismatch)
		return goerror.NewBusiness(msgMismatch, goerror.CodeBadRequest)
	}

	s.recordVerification(ctx, entity.VerifyResultValid)
	return nil
}

// storedSecret returns the secret issued to identity. An identity without a
// secret yields decoySecret and enrolled=false, so verification still runs
// and fails like any other mismatch.
func (s *Usecase) storedSecret(ctx context.Context, identity string) (secret string, enrolled bool, err error) {
	key, err := s.identityKey(ctx, identity)
	if err != nil {
		return "", false, err
	}

	rec, err := s.repoStore.GetSecret(ctx, key)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "verify for identity without secret", "identity_key", key)
		return decoySecret, false, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get secret", "identity_key", key, "error", err)
		return "", false, goerror.NewServer(err)
	}

	secret, err = s.openSecret(ctx, rec)
	return secret, err == nil, err
}
