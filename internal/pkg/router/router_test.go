package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/gotp/internal/pkg/config"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

type payload struct {
	Value string `json:"value"`
}

type created struct {
	ID string `json:"id"`
}

func (created) Message() string { return "created" }
func (created) StatusCode() int { return http.StatusCreated }

func newTestRouter(t *testing.T, cfgYAML string, health func(context.Context) error) *Router {
	t.Helper()

	var cfg config.Config
	if cfgYAML != "" {
		v, err := config.NewViperFromBytes("yaml", []byte(cfgYAML))
		require.NoError(t, err)
		cfg = v
	}

	return NewRouter(Config{
		Config:     cfg,
		UUID:       fixedID("cid-generated"),
		Instrument: instrument.NewNoop(),
		Health:     health,
	})
}

func do(t *testing.T, h http.Handler, method, target, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}

	return rec, out
}

func TestRouter_Root(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, "", nil)

	rec, out := do(t, r, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OTP service is running", out["message"])

	rec, out = do(t, r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", out["message"])

	rec, out = do(t, r, http.MethodGet, "/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "endpoint not found", out["message"])
}

func TestRouter_HealthFailure(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, "", func(context.Context) error { return errors.New("redis down") })

	rec, out := do(t, r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unhealthy", out["message"])
}

func TestRouter_Envelope(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, "", nil)

	r.POST("/echo", func(req *Request) (any, error) {
		var in payload
		if err := req.DecodeBody(&in); err != nil {
			return nil, err
		}
		return in, nil
	})
	r.POST("/created", func(*Request) (any, error) { return created{ID: "1"}, nil })
	r.POST("/message", func(*Request) (any, error) { return MessageOnly("all good"), nil })
	r.POST("/empty", func(*Request) (any, error) { return nil, nil })
	r.POST("/fields", func(*Request) (any, error) {
		return nil, goerror.NewInvalidInput(nil, "otp", "otp is required")
	})
	r.POST("/business", func(*Request) (any, error) {
		return nil, goerror.NewBusiness("Invalid OTP! Access denied.", goerror.CodeBadRequest)
	})
	r.POST("/plain", func(*Request) (any, error) { return nil, errors.New("boom") })

	t.Run("data", func(t *testing.T) {
		rec, out := do(t, r, http.MethodPost, "/echo", `{"value":"x"}`, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "request has been successfully", out["message"])
		assert.Equal(t, map[string]any{"value": "x"}, out["data"])
		assert.Equal(t, "cid-generated", rec.Header().Get(HeaderCorrelationID))
	})

	t.Run("invalid body", func(t *testing.T) {
		for _, body := range []string{`{"value":`, `{"other":"x"}`, `{"value":"x"}{}`} {
			rec, out := do(t, r, http.MethodPost, "/echo", body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code, body)
			assert.Equal(t, "Invalid request body", out["message"])
		}
	})

	t.Run("custom status and message", func(t *testing.T) {
		rec, out := do(t, r, http.MethodPost, "/created", `{}`, nil)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "created", out["message"])
	})

	t.Run("message only", func(t *testing.T) {
		rec, out := do(t, r, http.MethodPost, "/message", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, map[string]any{"message": "all good"}, out)
	})

	t.Run("no content", func(t *testing.T) {
		rec, _ := do(t, r, http.MethodPost, "/empty", "", nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("field errors", func(t *testing.T) {
		rec, out := do(t, r, http.MethodPost, "/fields", "", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "Validation error", out["message"])
		assert.Equal(t, map[string]any{"otp": "otp is required"}, out["error"])
	})

	t.Run("business error", func(t *testing.T) {
		rec, out := do(t, r, http.MethodPost, "/business", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid OTP! Access denied.", out["message"])
		assert.NotContains(t, out, "error")
	})

	t.Run("unknown error", func(t *testing.T) {
		rec, out := do(t, r, http.MethodPost, "/plain", "", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal server error", out["message"])
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec, _ := do(t, r, http.MethodGet, "/echo", "", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestRouter_CorrelationIDHeader(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, "", nil)

	var seen string
	r.GET("/cid", func(req *Request) (any, error) {
		seen = instrument.GetCorrelationID(req.Context())
		return MessageOnly("ok"), nil
	})

	rec, _ := do(t, r, http.MethodGet, "/cid", "", map[string]string{HeaderRequestID: " req-42 "})
	assert.Equal(t, "req-42", rec.Header().Get(HeaderCorrelationID))
	assert.Equal(t, "req-42", seen)
}

func TestRouter_Recover(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, "", nil)
	r.GET("/panic", func(*Request) (any, error) { panic("kaboom") })

	rec, out := do(t, r, http.MethodGet, "/panic", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", out["message"])
}

func TestRouter_Maintenance(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, `
app:
  maintenance:
    endpoints: "/rotate-otp"
`, nil)
	r.POST("/rotate-otp", func(*Request) (any, error) { return MessageOnly("rotated"), nil })
	r.POST("/verify-otp", func(*Request) (any, error) { return MessageOnly("verified"), nil })

	rec, out := do(t, r, http.MethodPost, "/rotate-otp", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "service is under maintenance", out["message"])

	rec, _ = do(t, r, http.MethodPost, "/verify-otp", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRealIP(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1", realIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", realIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", realIP(req))
}
