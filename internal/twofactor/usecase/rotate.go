package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/twofactor/entity"
)

type RotateInput struct {
	Identity string `validate:"required,max=320,nocolon"`
}

// Rotate replaces the secret of an enrolled identity. The previous secret
// stops verifying as soon as the store write succeeds.
func (s *Usecase) Rotate(ctx context.Context, in RotateInput) (*entity.Enrollment, error) {
	ctx, span := s.startSpan(ctx, "Rotate")
	defer span.End()

	in.Identity = normalizeIdentity(in.Identity)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	key, err := s.identityKey(ctx, in.Identity)
	if err != nil {
		return nil, err
	}

	secret, err := s.newSecret(ctx, in.Identity)
	if err != nil {
		return nil, err
	}

	rec, err := s.sealSecret(ctx, key, secret)
	if err != nil {
		return nil, err
	}

	err = s.repoStore.UpdateSecret(ctx, rec)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "rotate for identity without secret", "identity_key", key)
		return nil, goerror.NewBusiness(msgNotEnrolled, goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo update secret", "identity_key", key, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.publish(ctx, entity.EventSecretRotated, key)

	return s.enrollment(ctx, in.Identity, secret, true)
}
