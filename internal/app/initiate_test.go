package app

import (
	"testing"

	libOTP "github.com/pquerna/otp"
	"github.com/shandysiswandi/gotp/internal/pkg/config"
	"github.com/shandysiswandi/gotp/internal/pkg/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotpConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
		want otp.Config
	}{
		{
			name: "defaults",
			yaml: "mfa:\n  secret: x\n",
			want: otp.Config{Issuer: "MyApp", Window: otp.DefaultWindow, Digits: libOTP.DigitsSix, Algorithm: libOTP.AlgorithmSHA1},
		},
		{
			name: "explicit zero window",
			yaml: "mfa:\n  totp:\n    window: 0\n",
			want: otp.Config{Issuer: "MyApp", Window: 0, Digits: libOTP.DigitsSix, Algorithm: libOTP.AlgorithmSHA1},
		},
		{
			name: "configured",
			yaml: "mfa:\n  totp:\n    issuer: Acme\n    window: 2\n    period: 60\n    digits: 8\n    algorithm: sha512\n",
			want: otp.Config{Issuer: "Acme", Window: 2, Period: 60, Digits: libOTP.DigitsEight, Algorithm: libOTP.AlgorithmSHA512},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.NewViperFromBytes("yaml", []byte(tt.yaml))
			require.NoError(t, err)

			got, err := totpConfig(cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	cfg, err := config.NewViperFromBytes("yaml", []byte("mfa:\n  totp:\n    algorithm: md5\n"))
	require.NoError(t, err)
	_, err = totpConfig(cfg)
	assert.ErrorIs(t, err, otp.ErrUnsupportedAlgorithm)
}
