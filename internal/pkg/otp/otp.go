package otp

import (
	"crypto/subtle"
	"encoding/base32"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
	"github.com/pquerna/otp/totp"
)

var (
	// ErrInvalidSecret indicates the shared secret is empty or not valid Base32.
	ErrInvalidSecret = errors.New("otp: secret is not valid base32")
	// ErrInvalidCode indicates the candidate code is not numeric or has the wrong length.
	ErrInvalidCode = errors.New("otp: code has invalid format")
	// ErrInvalidLabel indicates a missing issuer/account label or one containing ':'.
	ErrInvalidLabel = errors.New("otp: invalid issuer or account label")
	// ErrUnsupportedAlgorithm indicates an unknown HMAC algorithm name.
	ErrUnsupportedAlgorithm = errors.New("otp: unsupported algorithm")
)

const (
	// DefaultPeriod is the RFC 6238 recommended time step in seconds.
	DefaultPeriod uint = 30
	// DefaultSecretSize is the RFC 4226 recommended secret length in bytes (160 bits).
	DefaultSecretSize uint = 20
	// DefaultWindow is the number of steps accepted on each side of the current one.
	DefaultWindow uint = 1
	// MaxWindow bounds the window; larger values are clamped.
	MaxWindow uint = 10
)

// OTP defines the contract for TOTP operations.
type OTP interface {
	// Generate creates a fresh secret and its provisioning URI for an account name.
	Generate(accountName string) (secret string, uri string, err error)
	// ProvisioningURI builds the otpauth URI for an existing secret.
	ProvisioningURI(secret, accountName, issuer string) (string, error)
	// Validate checks whether a code is valid at the given time within the window.
	Validate(code, secret string, at time.Time) (bool, error)
	// GenerateCode creates a TOTP code for the given secret and time.
	GenerateCode(secret string, at time.Time) (string, error)
	// Issuer returns the default issuer label.
	Issuer() string
}

// Config holds TOTP parameters.
type Config struct {
	Issuer     string
	Period     uint
	Window     uint
	SecretSize uint
	Digits     otp.Digits
	Algorithm  otp.Algorithm
}

// TOTP implements OTP using the Time-based One-Time Password algorithm.
type TOTP struct {
	issuer     string
	period     uint
	window     uint
	secretSize uint
	digits     otp.Digits
	algorithm  otp.Algorithm
}

// NewTOTP constructs a TOTP instance with sensible defaults.
//
// If digits is not 6 or 8, it falls back to 6 digits. If period is 0, it uses
// the common 30-second period. A window of 0 only accepts the current step and
// windows above MaxWindow are clamped.
func NewTOTP(cfg Config) *TOTP {
	t := &TOTP{
		issuer:     cfg.Issuer,
		period:     cfg.Period,
		window:     cfg.Window,
		secretSize: cfg.SecretSize,
		digits:     cfg.Digits,
		algorithm:  cfg.Algorithm,
	}

	if t.digits != otp.DigitsSix && t.digits != otp.DigitsEight {
		t.digits = otp.DigitsSix
	}

	if t.period == 0 {
		t.period = DefaultPeriod
	}

	if t.window > MaxWindow {
		t.window = MaxWindow
	}

	if t.secretSize == 0 {
		t.secretSize = DefaultSecretSize
	}

	switch t.algorithm {
	case otp.AlgorithmSHA1, otp.AlgorithmSHA256, otp.AlgorithmSHA512:
	default:
		t.algorithm = otp.AlgorithmSHA1
	}

	return t
}

// ParseAlgorithm maps a configuration name (sha1, sha256, sha512) to an algorithm.
// An empty name selects SHA1.
func ParseAlgorithm(name string) (otp.Algorithm, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "SHA1":
		return otp.AlgorithmSHA1, nil
	case "SHA256":
		return otp.AlgorithmSHA256, nil
	case "SHA512":
		return otp.AlgorithmSHA512, nil
	default:
		return otp.AlgorithmSHA1, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, name)
	}
}

// Issuer returns the default issuer label.
func (o *TOTP) Issuer() string {
	return o.issuer
}

// Generate creates a secret and provisioning URI for an account name.
func (o *TOTP) Generate(accountName string) (secret string, uri string, err error) {
	if err := checkLabels(o.issuer, accountName); err != nil {
		return "", "", err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      o.issuer,
		AccountName: accountName,
		Period:      o.period,
		SecretSize:  o.secretSize,
		Digits:      o.digits,
		Algorithm:   o.algorithm,
	})
	if err != nil {
		return "", "", err
	}

	return key.Secret(), key.URL(), nil
}

// ProvisioningURI builds the otpauth://totp URI for an existing secret.
//
// Labels are URL-encoded; parsing the result with otp.NewKeyFromURL recovers
// the secret, issuer and account name exactly.
func (o *TOTP) ProvisioningURI(secret, accountName, issuer string) (string, error) {
	if issuer == "" {
		issuer = o.issuer
	}
	if err := checkLabels(issuer, accountName); err != nil {
		return "", err
	}

	raw, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: accountName,
		Period:      o.period,
		Secret:      raw,
		Digits:      o.digits,
		Algorithm:   o.algorithm,
	})
	if err != nil {
		return "", err
	}

	return key.URL(), nil
}

// GenerateCode creates a TOTP code for the given secret and time.
func (o *TOTP) GenerateCode(secret string, at time.Time) (string, error) {
	if _, err := decodeSecret(secret); err != nil {
		return "", err
	}

	code, err := totp.GenerateCodeCustom(secret, at, totp.ValidateOpts{
		Period:    o.period,
		Digits:    o.digits,
		Algorithm: o.algorithm,
	})
	if errors.Is(err, otp.ErrValidateSecretInvalidBase32) {
		return "", ErrInvalidSecret
	}

	return code, err
}

// Validate checks whether a code is valid at the given time.
//
// Every step in [at-window, at+window] is computed and compared in constant
// time, so the result does not reveal which step matched.
func (o *TOTP) Validate(code, secret string, at time.Time) (bool, error) {
	if err := o.checkCode(code); err != nil {
		return false, err
	}
	if _, err := decodeSecret(secret); err != nil {
		return false, err
	}

	opts := hotp.ValidateOpts{
		Digits:    o.digits,
		Algorithm: o.algorithm,
	}

	matched := 0
	for _, counter := range o.counters(at) {
		expected, err := hotp.GenerateCodeCustom(secret, counter, opts)
		if err != nil {
			return false, ErrInvalidSecret
		}
		matched |= subtle.ConstantTimeCompare([]byte(expected), []byte(code))
	}

	return matched == 1, nil
}

func (o *TOTP) counters(at time.Time) []uint64 {
	current := int64(math.Floor(float64(at.Unix()) / float64(o.period)))

	out := make([]uint64, 0, 2*o.window+1)
	for i := -int64(o.window); i <= int64(o.window); i++ {
		if c := current + i; c >= 0 {
			out = append(out, uint64(c))
		}
	}

	return out
}

func (o *TOTP) checkCode(code string) error {
	if len(code) != o.digits.Length() {
		return ErrInvalidCode
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return ErrInvalidCode
		}
	}
	return nil
}

// decodeSecret normalizes the secret the way authenticator apps emit it
// (lower case, missing padding) and decodes it.
func decodeSecret(secret string) ([]byte, error) {
	secret = strings.ToUpper(strings.TrimSpace(secret))
	if secret == "" {
		return nil, ErrInvalidSecret
	}
	if n := len(secret) % 8; n != 0 {
		secret += strings.Repeat("=", 8-n)
	}

	raw, err := base32.StdEncoding.DecodeString(secret)
	if err != nil || len(raw) == 0 {
		return nil, ErrInvalidSecret
	}

	return raw, nil
}

func checkLabels(issuer, accountName string) error {
	if strings.TrimSpace(issuer) == "" || strings.TrimSpace(accountName) == "" {
		return ErrInvalidLabel
	}
	if strings.Contains(issuer, ":") || strings.Contains(accountName, ":") {
		return ErrInvalidLabel
	}
	return nil
}
