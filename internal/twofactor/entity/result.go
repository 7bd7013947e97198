package entity

// VerifyResult classifies a verification attempt for metrics.
type VerifyResult string

const (
	VerifyResultValid    VerifyResult = "valid"
	VerifyResultMismatch VerifyResult = "mismatch"
	VerifyResultInvalid  VerifyResult = "invalid"
)
