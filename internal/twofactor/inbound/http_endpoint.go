package inbound

import (
	"github.com/shandysiswandi/gotp/internal/pkg/router"
	"github.com/shandysiswandi/gotp/internal/twofactor/usecase"
)

// HTTPEndpoint exposes HTTP handlers for TOTP enrollment and verification.
type HTTPEndpoint struct {
	uc uc
}

// Generate enrolls an identity and returns its provisioning bundle.
// @Summary Generate TOTP secret
// @Description Issues a TOTP secret for the identity, or returns the one already issued, with its otpauth URI and QR code.
// @Tags TwoFactor
// @Accept json
// @Produce json
// @Param request body GenerateRequest true "Enrollment payload"
// @Success 200 {object} router.successResponse{data=EnrollmentResponse} "Provisioning bundle"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /generate-otp [post]
func (h *HTTPEndpoint) Generate(r *router.Request) (any, error) {
	var req GenerateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Generate(r.Context(), usecase.GenerateInput{Identity: req.identity()})
	if err != nil {
		return nil, err
	}

	msg := "OTP secret already issued"
	if resp.Created {
		msg = "OTP secret issued"
	}

	return newEnrollmentResponse(resp, msg), nil
}

// Verify checks a one-time code against a secret or an enrolled identity.
// @Summary Verify TOTP code
// @Description Accepts exactly one of secret or identity together with the code shown by the authenticator.
// @Tags TwoFactor
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Verification payload"
// @Success 200 {object} router.successResponse "Code accepted"
// @Failure 400 {object} router.errorResponse "Invalid request body, code mismatch or identity not enrolled"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /verify-otp [post]
func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.Verify(r.Context(), usecase.VerifyInput{
		Secret:   req.Secret,
		Identity: req.Identity,
		OTP:      req.OTP,
	}); err != nil {
		return nil, err
	}

	return router.MessageOnly(msgVerified), nil
}

// Rotate replaces the secret of an enrolled identity.
// @Summary Rotate TOTP secret
// @Description Issues a new secret for an enrolled identity; codes from the previous secret stop verifying.
// @Tags TwoFactor
// @Accept json
// @Produce json
// @Param request body RotateRequest true "Rotation payload"
// @Success 200 {object} router.successResponse{data=EnrollmentResponse} "Provisioning bundle"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 404 {object} router.errorResponse "Identity is not enrolled"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /rotate-otp [post]
func (h *HTTPEndpoint) Rotate(r *router.Request) (any, error) {
	var req RotateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Rotate(r.Context(), usecase.RotateInput{Identity: req.Identity})
	if err != nil {
		return nil, err
	}

	return newEnrollmentResponse(resp, "OTP secret rotated"), nil
}

// Revoke removes the secret of an enrolled identity.
// @Summary Revoke TOTP secret
// @Tags TwoFactor
// @Accept json
// @Param request body RevokeRequest true "Revocation payload"
// @Success 204 "Secret removed"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 404 {object} router.errorResponse "Identity is not enrolled"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /revoke-otp [post]
func (h *HTTPEndpoint) Revoke(r *router.Request) (any, error) {
	var req RevokeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.Revoke(r.Context(), usecase.RevokeInput{Identity: req.Identity}); err != nil {
		return nil, err
	}

	return nil, nil
}
