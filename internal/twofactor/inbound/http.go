package inbound

import (
	"context"

	"github.com/shandysiswandi/gotp/internal/pkg/router"
	"github.com/shandysiswandi/gotp/internal/twofactor/entity"
	"github.com/shandysiswandi/gotp/internal/twofactor/usecase"
)

type uc interface {
	Generate(ctx context.Context, in usecase.GenerateInput) (*entity.Enrollment, error)
	Verify(ctx context.Context, in usecase.VerifyInput) error
	Rotate(ctx context.Context, in usecase.RotateInput) (*entity.Enrollment, error)
	Revoke(ctx context.Context, in usecase.RevokeInput) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/generate-otp", end.Generate)
	r.POST("/verify-otp", end.Verify)
	//
	r.POST("/rotate-otp", end.Rotate)
	r.POST("/revoke-otp", end.Revoke)
}
