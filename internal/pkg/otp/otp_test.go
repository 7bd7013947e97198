package otp

import (
	"encoding/base32"
	"net/url"
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Appendix B of RFC 6238.
var rfc6238Vectors = []struct {
	unix   int64
	sha1   string
	sha256 string
	sha512 string
}{
	{59, "94287082", "46119246", "90693936"},
	{1111111109, "07081804", "68084774", "25091201"},
	{1111111111, "14050471", "67062674", "99943326"},
	{1234567890, "89005924", "91819424", "93441116"},
	{2000000000, "69279037", "90698825", "38618901"},
	{20000000000, "65353130", "77737706", "47863826"},
}

func b32(s string) string {
	return base32.StdEncoding.EncodeToString([]byte(s))
}

var (
	seedSHA1   = b32("12345678901234567890")
	seedSHA256 = b32("12345678901234567890123456789012")
	seedSHA512 = b32("1234567890123456789012345678901234567890123456789012345678901234")
)

func TestTOTP_GenerateCode_RFC6238(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		algo   otp.Algorithm
		secret string
		pick   func(i int) string
	}{
		{name: "sha1", algo: otp.AlgorithmSHA1, secret: seedSHA1, pick: func(i int) string { return rfc6238Vectors[i].sha1 }},
		{name: "sha256", algo: otp.AlgorithmSHA256, secret: seedSHA256, pick: func(i int) string { return rfc6238Vectors[i].sha256 }},
		{name: "sha512", algo: otp.AlgorithmSHA512, secret: seedSHA512, pick: func(i int) string { return rfc6238Vectors[i].sha512 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			eight := NewTOTP(Config{Issuer: "gotp", Digits: otp.DigitsEight, Algorithm: tt.algo})
			six := NewTOTP(Config{Issuer: "gotp", Digits: otp.DigitsSix, Algorithm: tt.algo})

			for i, v := range rfc6238Vectors {
				at := time.Unix(v.unix, 0).UTC()
				want := tt.pick(i)

				got, err := eight.GenerateCode(tt.secret, at)
				require.NoError(t, err)
				assert.Equal(t, want, got, "8 digits at %d", v.unix)

				got, err = six.GenerateCode(tt.secret, at)
				require.NoError(t, err)
				assert.Equal(t, want[2:], got, "6 digits at %d", v.unix)
			}
		})
	}
}

func TestTOTP_Validate(t *testing.T) {
	t.Parallel()

	at := time.Unix(1111111111, 0).UTC()
	step := 30 * time.Second

	t.Run("current step is valid", func(t *testing.T) {
		o := NewTOTP(Config{Issuer: "gotp", Window: 1})
		code, err := o.GenerateCode(seedSHA1, at)
		require.NoError(t, err)

		ok, err := o.Validate(code, seedSHA1, at)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("adjacent steps inside window", func(t *testing.T) {
		o := NewTOTP(Config{Issuer: "gotp", Window: 1})
		for _, shift := range []time.Duration{-step, step} {
			code, err := o.GenerateCode(seedSHA1, at.Add(shift))
			require.NoError(t, err)

			ok, err := o.Validate(code, seedSHA1, at)
			require.NoError(t, err)
			assert.True(t, ok, "shift %s", shift)
		}
	})

	t.Run("steps outside window are rejected", func(t *testing.T) {
		o := NewTOTP(Config{Issuer: "gotp", Window: 1})
		current, err := o.GenerateCode(seedSHA1, at)
		require.NoError(t, err)

		for _, shift := range []time.Duration{-2 * step, 2 * step, 5 * step} {
			code, err := o.GenerateCode(seedSHA1, at.Add(shift))
			require.NoError(t, err)
			if code == current {
				continue
			}

			ok, err := o.Validate(code, seedSHA1, at)
			require.NoError(t, err)
			assert.False(t, ok, "shift %s", shift)
		}
	})

	t.Run("zero window accepts only the current step", func(t *testing.T) {
		o := NewTOTP(Config{Issuer: "gotp", Window: 0})
		current, err := o.GenerateCode(seedSHA1, at)
		require.NoError(t, err)
		next, err := o.GenerateCode(seedSHA1, at.Add(step))
		require.NoError(t, err)
		require.NotEqual(t, current, next)

		ok, err := o.Validate(current, seedSHA1, at)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = o.Validate(next, seedSHA1, at)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("wrong code", func(t *testing.T) {
		o := NewTOTP(Config{Issuer: "gotp", Window: 1})
		current, err := o.GenerateCode(seedSHA1, at)
		require.NoError(t, err)
		candidate := "000000"
		if current == candidate {
			candidate = "111111"
		}

		ok, err := o.Validate(candidate, seedSHA1, at)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("lower case unpadded secret", func(t *testing.T) {
		o := NewTOTP(Config{Issuer: "gotp"})
		code, err := o.GenerateCode(seedSHA1, at)
		require.NoError(t, err)

		ok, err := o.Validate(code, "gezdgnbvgy3tqojqgezdgnbvgy3tqojq", at)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestTOTP_Validate_InvalidInput(t *testing.T) {
	t.Parallel()

	o := NewTOTP(Config{Issuer: "gotp", Window: 1})
	at := time.Unix(59, 0)

	tests := []struct {
		name    string
		code    string
		secret  string
		wantErr error
	}{
		{name: "secret not base32", code: "123456", secret: "not-base-32!!", wantErr: ErrInvalidSecret},
		{name: "secret empty", code: "123456", secret: "  ", wantErr: ErrInvalidSecret},
		{name: "code too short", code: "12345", secret: seedSHA1, wantErr: ErrInvalidCode},
		{name: "code too long", code: "1234567", secret: seedSHA1, wantErr: ErrInvalidCode},
		{name: "code not numeric", code: "12a456", secret: seedSHA1, wantErr: ErrInvalidCode},
		{name: "code empty", code: "", secret: seedSHA1, wantErr: ErrInvalidCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := o.Validate(tt.code, tt.secret, at)
			assert.False(t, ok)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTOTP_GenerateCode_InvalidSecret(t *testing.T) {
	t.Parallel()

	_, err := NewTOTP(Config{Issuer: "gotp"}).GenerateCode("1!1!", time.Now())
	assert.ErrorIs(t, err, ErrInvalidSecret)
}

func TestTOTP_Generate(t *testing.T) {
	t.Parallel()

	o := NewTOTP(Config{Issuer: "MyApp", Window: 1})
	now := time.Now()

	secret, uri, err := o.Generate("alice@example.com")
	require.NoError(t, err)
	assert.Len(t, secret, 32)

	raw, err := decodeSecret(secret)
	require.NoError(t, err)
	assert.Len(t, raw, 20)

	key, err := otp.NewKeyFromURL(uri)
	require.NoError(t, err)
	assert.Equal(t, secret, key.Secret())

	code, err := o.GenerateCode(secret, now)
	require.NoError(t, err)
	ok, err := o.Validate(code, secret, now)
	require.NoError(t, err)
	assert.True(t, ok)

	other, _, err := o.Generate("alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, secret, other)
}

func TestTOTP_ProvisioningURI(t *testing.T) {
	t.Parallel()

	o := NewTOTP(Config{Issuer: "MyApp"})

	t.Run("round trip", func(t *testing.T) {
		uri, err := o.ProvisioningURI(seedSHA1, "alice+2fa@example.com", "Acme Corp")
		require.NoError(t, err)

		u, err := url.Parse(uri)
		require.NoError(t, err)
		assert.Equal(t, "otpauth", u.Scheme)
		assert.Equal(t, "totp", u.Host)
		assert.Equal(t, "SHA1", u.Query().Get("algorithm"))
		assert.Equal(t, "6", u.Query().Get("digits"))
		assert.Equal(t, "30", u.Query().Get("period"))

		key, err := otp.NewKeyFromURL(uri)
		require.NoError(t, err)
		assert.Equal(t, "totp", key.Type())
		assert.Equal(t, "Acme Corp", key.Issuer())
		assert.Equal(t, "alice+2fa@example.com", key.AccountName())
		assert.Equal(t, "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ", key.Secret())
	})

	t.Run("default issuer", func(t *testing.T) {
		uri, err := o.ProvisioningURI(seedSHA1, "bob@example.com", "")
		require.NoError(t, err)

		key, err := otp.NewKeyFromURL(uri)
		require.NoError(t, err)
		assert.Equal(t, "MyApp", key.Issuer())
	})

	t.Run("deterministic", func(t *testing.T) {
		a, err := o.ProvisioningURI(seedSHA1, "bob@example.com", "MyApp")
		require.NoError(t, err)
		b, err := o.ProvisioningURI(seedSHA1, "bob@example.com", "MyApp")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("invalid labels", func(t *testing.T) {
		_, err := o.ProvisioningURI(seedSHA1, "", "MyApp")
		assert.ErrorIs(t, err, ErrInvalidLabel)

		_, err = o.ProvisioningURI(seedSHA1, "a:b", "MyApp")
		assert.ErrorIs(t, err, ErrInvalidLabel)
	})

	t.Run("invalid secret", func(t *testing.T) {
		_, err := o.ProvisioningURI("%%%", "bob@example.com", "MyApp")
		assert.ErrorIs(t, err, ErrInvalidSecret)
	})
}

func TestParseAlgorithm(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]otp.Algorithm{
		"":       otp.AlgorithmSHA1,
		"sha1":   otp.AlgorithmSHA1,
		"SHA256": otp.AlgorithmSHA256,
		"sha512": otp.AlgorithmSHA512,
	} {
		got, err := ParseAlgorithm(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseAlgorithm("md5")
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestNewTOTP_ClampsWindow(t *testing.T) {
	t.Parallel()

	o := NewTOTP(Config{Issuer: "gotp", Window: ^uint(0)})
	at := time.Unix(1111111111, 0).UTC()
	assert.Len(t, o.counters(at), int(2*MaxWindow+1))

	edge, err := o.GenerateCode(seedSHA1, at.Add(time.Duration(MaxWindow)*30*time.Second))
	require.NoError(t, err)
	ok, err := o.Validate(edge, seedSHA1, at)
	require.NoError(t, err)
	assert.True(t, ok)
}
