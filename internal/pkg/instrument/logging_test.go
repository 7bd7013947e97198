package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelationID(t *testing.T) {
	t.Parallel()

	assert.Empty(t, GetCorrelationID(context.Background()))

	ctx := SetCorrelationID(context.Background(), "cid-1")
	assert.Equal(t, "cid-1", GetCorrelationID(ctx))
}

func TestMaskHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := &contextHandler{
		Handler: &maskHandler{
			handler:  slog.NewJSONHandler(&buf, nil),
			maskKeys: buildMaskKeys([]string{" Secret ", "otp", ""}),
		},
		serviceName: "gotp",
	}
	log := slog.New(h)

	ctx := SetCorrelationID(context.Background(), "cid-2")
	log.InfoContext(ctx, "enroll",
		"secret", "JBSWY3DPEHPK3PXP",
		"identity", "alice@example.com",
		"body", `{"otp":"123456","nested":{"secret":"x"}}`,
		slog.Group("req", "OTP", "654321"),
	)

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, "***", out["secret"])
	assert.Equal(t, "alice@example.com", out["identity"])
	assert.Equal(t, "cid-2", out["_cID"])
	assert.Equal(t, "gotp", out["service"])
	assert.JSONEq(t, `{"otp":"***","nested":{"secret":"***"}}`, out["body"].(string))
	assert.Equal(t, map[string]any{"OTP": "***"}, out["req"])
}

func TestMaskData(t *testing.T) {
	t.Parallel()

	keys := buildMaskKeys([]string{"qr_code"})
	got := maskData([]any{map[string]any{"qr_code": "data:", "uri": "otpauth://"}}, keys)

	assert.Equal(t, []any{map[string]any{"qr_code": "***", "uri": "otpauth://"}}, got)
}

func TestNew_Disabled(t *testing.T) {
	ins, err := New(context.Background(), &Config{ServiceName: "gotp"})
	require.NoError(t, err)

	_, span := ins.Tracer("test").Start(context.Background(), "span")
	span.End()
	assert.NoError(t, ins.Shutdown(context.Background()))
}

func TestMaskJSONString_TruncatedPayload(t *testing.T) {
	t.Parallel()

	keys := buildMaskKeys([]string{"secret"})

	got, ok := maskJSONString(`{"data":{"secret":"JBSWY3DPEHPK3PXP","qr_code":"data:ima`, keys)
	assert.True(t, ok)
	assert.Equal(t, unparsedMasked, got)

	_, ok = maskJSONString(`{"data":{"value":"x"`, keys)
	assert.False(t, ok)
}
