package mfa

// Purpose identifies the MFA encryption purpose.
type Purpose string

const (
	// PurposeTOTPSecret scopes encryption to TOTP shared secrets.
	PurposeTOTPSecret Purpose = "totp_secret"
)

// Scope binds encryption to MFA-specific identifiers.
// This is used as AAD (Additional Authenticated Data) in AES-GCM.
type Scope struct {
	// Subject is the opaque owner key the ciphertext belongs to (a hashed identity).
	Subject string
	// Purpose is the encryption purpose.
	Purpose Purpose
}
