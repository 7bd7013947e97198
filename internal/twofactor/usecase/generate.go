package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/twofactor/entity"
)

type GenerateInput struct {
	Identity string `validate:"required,max=320,nocolon"`
}

// Generate enrolls an identity. An identity that already has a secret gets the
// same secret back, so re-enrollment never invalidates a paired authenticator.
func (s *Usecase) Generate(ctx context.Context, in GenerateInput) (*entity.Enrollment, error) {
	ctx, span := s.startSpan(ctx, "Generate")
	defer span.End()

	in.Identity = normalizeIdentity(in.Identity)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	secret, created, err := s.issueOrFetchSecret(ctx, in.Identity)
	if err != nil {
		return nil, err
	}

	return s.enrollment(ctx, in.Identity, secret, created)
}

func (s *Usecase) issueOrFetchSecret(ctx context.Context, identity string) (string, bool, error) {
	key, err := s.identityKey(ctx, identity)
	if err != nil {
		return "", false, err
	}

	rec, err := s.repoStore.GetSecret(ctx, key)
	if err == nil {
		secret, err := s.openSecret(ctx, rec)
		return secret, false, err
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get secret", "identity_key", key, "error", err)
		return "", false, goerror.NewServer(err)
	}

	secret, err := s.newSecret(ctx, identity)
	if err != nil {
		return "", false, err
	}

	newRec, err := s.sealSecret(ctx, key, secret)
	if err != nil {
		return "", false, err
	}

	err = s.repoStore.CreateSecret(ctx, newRec)
	if errors.Is(err, goerror.ErrConflict) {
		// lost a concurrent first enrollment; the stored secret wins
		rec, err := s.repoStore.GetSecret(ctx, key)
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo get secret after conflict", "identity_key", key, "error", err)
			return "", false, goerror.NewServer(err)
		}
		secret, err := s.openSecret(ctx, rec)
		return secret, false, err
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create secret", "identity_key", key, "error", err)
		return "", false, goerror.NewServer(err)
	}

	s.publish(ctx, entity.EventSecretIssued, key)

	return secret, true, nil
}
