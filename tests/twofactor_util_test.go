package tests

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/shandysiswandi/gotp/internal/pkg/otp"
)

// serverTOTP mirrors the default server settings (SHA1, 6 digits, 30s).
var serverTOTP = otp.NewTOTP(otp.Config{Issuer: "MyApp"})

type enrollmentData struct {
	Secret string `json:"secret"`
	URI    string `json:"uri"`
	QRCode string `json:"qr_code"`
}

func uniqueIdentity(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

func generate(t *testing.T, identity string) (enrollmentData, string) {
	t.Helper()

	status, body := doJSON(t, http.MethodPost, "/generate-otp", map[string]string{"identity": identity})
	if status != http.StatusOK {
		errEnv := decodeError(t, body)
		t.Fatalf("generate failed: status=%d message=%q", status, errEnv.Message)
	}

	var data enrollmentData
	env := decodeSuccess(t, body, &data)
	if data.Secret == "" {
		t.Fatal("missing secret")
	}

	return data, env.Message
}

func currentCode(t *testing.T, secret string) string {
	t.Helper()

	code, err := serverTOTP.GenerateCode(secret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}

	return code
}

// wrongCode returns a well-formed code that none of the accepted steps produce.
func wrongCode(t *testing.T, secret string) string {
	t.Helper()

	now := time.Now()
	taken := map[string]bool{}
	for _, shift := range []time.Duration{-60 * time.Second, -30 * time.Second, 0, 30 * time.Second, 60 * time.Second} {
		code, err := serverTOTP.GenerateCode(secret, now.Add(shift))
		if err != nil {
			t.Fatalf("generate code: %v", err)
		}
		taken[code] = true
	}

	for _, c := range []string{"000000", "111111", "222222", "333333", "444444", "555555"} {
		if !taken[c] {
			return c
		}
	}

	t.Fatal("no unused code")
	return ""
}
