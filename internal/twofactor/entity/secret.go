package entity

import "time"

// MaxIdentityLength bounds identities (the longest valid email address).
const MaxIdentityLength = 320

// SecretRecord is the stored identity to secret association.
//
// Key is the keyed hash of the identity and Ciphertext the encrypted Base32
// secret, so a store never sees either in the clear.
type SecretRecord struct {
	Key        string
	Ciphertext []byte
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Enrollment is everything an authenticator app needs to import a secret.
type Enrollment struct {
	Secret string
	URI    string
	QRCode []byte
	// Created is true when the secret was issued by this call.
	Created bool
}
