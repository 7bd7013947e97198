package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/twofactor/entity"
)

type RevokeInput struct {
	Identity string `validate:"required,max=320"`
}

func (s *Usecase) Revoke(ctx context.Context, in RevokeInput) error {
	ctx, span := s.startSpan(ctx, "Revoke")
	defer span.End()

	in.Identity = normalizeIdentity(in.Identity)
	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	key, err := s.identityKey(ctx, in.Identity)
	if err != nil {
		return err
	}

	err = s.repoStore.DeleteSecret(ctx, key)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "revoke for identity without secret", "identity_key", key)
		return goerror.NewBusiness(msgNotEnrolled, goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete secret", "identity_key", key, "error", err)
		return goerror.NewServer(err)
	}

	s.publish(ctx, entity.EventSecretRevoked, key)

	return nil
}
