package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"adapterd/internal/generation"
	"adapterd/pkg/types"
)

type mockHTTPError struct{ msg string; code int }
func (e mockHTTPError) Error() string { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

func TestGenerateErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
		kind string
	}{
		{&generation.UnsupportedAdapterError{ID: "not_a_real_adapter"}, http.StatusBadRequest, "unsupported"},
		{&generation.AdapterLoadError{Checkpoint: "/x", Err: errors.New("bad")}, http.StatusUnprocessableEntity, "adapter_load"},
		{&generation.ModelLoadError{Source: "m", Err: errors.New("missing")}, http.StatusServiceUnavailable, "model_load"},
		{&generation.ModelLoadError{Source: "m", Err: generation.ErrDependencyUnavailable("no llama")}, http.StatusServiceUnavailable, "dependency"},
		{&generation.RuntimeGenerationError{Model: "m", Err: errors.New("oom")}, http.StatusInternalServerError, "runtime"},
		{mockHTTPError{msg: "teapot", code: http.StatusTeapot}, http.StatusTeapot, "other"},
		{io.EOF, http.StatusInternalServerError, "other"},
	}
	for _, tc := range cases {
		svc := &mockService{res: generation.Result{Err: tc.err}}
		w := postJSON(NewMux(svc), "/generate", `{"prompt":"hi","adapter_id":"x"}`)
		if w.Code != tc.code { t.Fatalf("%v: status=%d want %d", tc.err, w.Code, tc.code) }
		var body types.ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil { t.Fatalf("json: %v", err) }
		if body.Kind != tc.kind || body.Code != tc.code || body.Error == "" {
			t.Fatalf("%v: unexpected body %+v", tc.err, body)
		}
	}
}

// blockService waits for the context to end; used to exercise the timeout path.
type blockService struct{ mockService }

func (b *blockService) Generate(ctx context.Context, req generation.Request) generation.Result {
	<-ctx.Done()
	return generation.Result{Err: ctx.Err()}
}

func TestGenerateTimeoutReturns500(t *testing.T) {
	defer SetGenerateTimeoutSeconds(0)
	SetGenerateTimeoutSeconds(1)
	w := postJSON(NewMux(&blockService{}), "/generate", `{"prompt":"x"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on timeout, got %d", w.Code)
	}
}

func TestGenerateClientGoneWritesNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"prompt":"x"}`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	NewMux(&blockService{}).ServeHTTP(w, req)
	if w.Body.Len() != 0 {
		t.Fatalf("expected no body for a gone client, got %q", w.Body.String())
	}
}

func TestGenerateTooBusyCountsBackpressure(t *testing.T) {
	svc := &mockService{res: generation.Result{Err: busyErr()}}
	w := postJSON(NewMux(svc), "/generate", `{"prompt":"x"}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
}

func TestGenerateLogsWithZerolog(t *testing.T) {
	SetLogger(zerolog.New(io.Discard))
	defer SetLogger(zerolog.Nop())
	for _, q := range []string{"?log=info", "?log=debug", "?log=error"} {
		w := postJSON(NewMux(&mockService{}), "/generate"+q, `{"prompt":"hi"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", q, w.Code)
		}
	}
}

func TestCORSAndSecurityHeaders(t *testing.T) {
	// Enable CORS temporarily
	SetCORSOptions(true, []string{"*"}, nil, nil)
	defer SetCORSOptions(false, nil, nil, nil)

	h := NewMux(&mockService{ready: true})
	req := httptest.NewRequest(http.MethodGet, "/adapters", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected X-Content-Type-Options=nosniff, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Fatalf("expected CORS header Access-Control-Allow-Origin to be set, got empty")
	}
}
