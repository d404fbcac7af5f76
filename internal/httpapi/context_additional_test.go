package httpapi

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSetBaseContext_NilResetsToBackground(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	SetBaseContext(ctx)
	cancel()
	r := httptest.NewRequest("GET", "/x", nil)
	if !clientGone(r) {
		t.Fatalf("canceled base context should count as gone")
	}
	// nolint:staticcheck // SA1012: this test intentionally passes nil to verify fallback behavior
	SetBaseContext(nil)
	if clientGone(r) {
		t.Fatalf("background base context should not count as gone")
	}
}

func TestJoinContexts_CancelsWhenEitherDone(t *testing.T) {
	a, ac := context.WithCancel(context.Background())
	b, bc := context.WithCancel(context.Background())
	defer bc()
	j, cancelJ := joinContexts(a, b)
	defer cancelJ()
	// cancel A and expect joined canceled
	ac()
	select {
	case <-j.Done():
		// ok
	case <-time.After(500 * time.Millisecond):
		t.Fatal("joined context did not cancel when first parent canceled")
	}
}

func TestGenerateContext_Timeout(t *testing.T) {
	defer SetGenerateTimeoutSeconds(0)
	SetGenerateTimeoutSeconds(1)
	ctx, cancel := generateContext(httptest.NewRequest("POST", "/generate", nil))
	defer cancel()
	dl, ok := ctx.Deadline()
	if !ok || time.Until(dl) > time.Second {
		t.Fatalf("expected a deadline within 1s, got %v %v", dl, ok)
	}
	SetGenerateTimeoutSeconds(0)
	ctx2, cancel2 := generateContext(httptest.NewRequest("POST", "/generate", nil))
	defer cancel2()
	if _, ok := ctx2.Deadline(); ok {
		t.Fatalf("expected no deadline when disabled")
	}
}
