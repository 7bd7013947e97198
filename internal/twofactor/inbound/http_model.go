package inbound

import (
	"github.com/shandysiswandi/gotp/internal/pkg/qrcode"
	"github.com/shandysiswandi/gotp/internal/twofactor/entity"
)

const msgVerified = "OTP is valid! User authenticated."

type GenerateRequest struct {
	Identity string `json:"identity"`
	// Email is accepted for clients written against the first version of the API.
	Email string `json:"email"`
}

func (r GenerateRequest) identity() string {
	if r.Identity != "" {
		return r.Identity
	}
	return r.Email
}

type EnrollmentResponse struct {
	Secret string `json:"secret"`
	URI    string `json:"uri"`
	QRCode string `json:"qr_code"`

	msg string
}

func (r EnrollmentResponse) Message() string {
	return r.msg
}

func newEnrollmentResponse(e *entity.Enrollment, msg string) EnrollmentResponse {
	return EnrollmentResponse{
		Secret: e.Secret,
		URI:    e.URI,
		QRCode: qrcode.DataURI(e.QRCode),
		msg:    msg,
	}
}

type VerifyRequest struct {
	Secret   string `json:"secret"`
	Identity string `json:"identity"`
	OTP      string `json:"otp"`
}

type RotateRequest struct {
	Identity string `json:"identity"`
}

type RevokeRequest struct {
	Identity string `json:"identity"`
}
