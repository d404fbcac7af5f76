package ffi

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"adapterd/internal/generation"
)

type fakeGenerator struct {
	calls int
	last  generation.Request
	res   generation.Result
}

func (f *fakeGenerator) Generate(ctx context.Context, req generation.Request) generation.Result {
	f.calls++
	f.last = req
	return f.res
}

func TestText(t *testing.T) {
	cases := []struct {
		res  generation.Result
		want string
	}{
		{generation.Result{Text: "T"}, "T"},
		{generation.Result{Text: ""}, ""},
		{generation.Result{Err: &generation.UnsupportedAdapterError{ID: "not_a_real_adapter"}}, "Adapter not supported: not_a_real_adapter"},
		{generation.Result{Err: &generation.ModelLoadError{Source: "m", Err: errors.New("missing")}}, `Error: model load "m": missing`},
		{generation.Result{Err: errors.New("  ")}, "Error: unknown error"},
	}
	for _, tc := range cases {
		if got := Text(tc.res); got != tc.want {
			t.Fatalf("Text(%+v) = %q, want %q", tc.res, got, tc.want)
		}
	}
}

func TestBridge_Generate(t *testing.T) {
	f := &fakeGenerator{res: generation.Result{Text: "T"}}
	builds := 0
	b := NewBridge(func() (Generator, error) { builds++; return f, nil })
	if got := b.Generate("T", "test_gen_adapter", "/ckpt/t"); got != "T" {
		t.Fatalf("Generate = %q", got)
	}
	if got := b.Generate("T", "test_gen_adapter", "/ckpt/t"); got != "T" {
		t.Fatalf("Generate = %q", got)
	}
	if builds != 1 || f.calls != 2 {
		t.Fatalf("builds=%d calls=%d", builds, f.calls)
	}
	if f.last.Mode != generation.AddressByCheckpoint || f.last.AdapterID != "test_gen_adapter" || f.last.Checkpoint != "/ckpt/t" {
		t.Fatalf("unexpected request: %+v", f.last)
	}
}

func TestBridge_BuildFailureRetries(t *testing.T) {
	fail := true
	b := NewBridge(func() (Generator, error) {
		if fail {
			return nil, errors.New("gguf_model_path is not set")
		}
		return &fakeGenerator{res: generation.Result{Text: "ok"}}, nil
	})
	if got := b.Generate("p", "test_gen_adapter", "/c"); got != "Error: gguf_model_path is not set" {
		t.Fatalf("Generate = %q", got)
	}
	fail = false
	if got := b.Generate("p", "test_gen_adapter", "/c"); got != "ok" {
		t.Fatalf("Generate after recovery = %q", got)
	}
}

func TestBridge_RealServiceUnsupported(t *testing.T) {
	d := t.TempDir()
	model := filepath.Join(d, "base.gguf")
	if err := os.WriteFile(model, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfgPath := filepath.Join(d, "model_config.json")
	if err := os.WriteFile(cfgPath, []byte(`{"gguf_model_path":"`+model+`"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(EnvConfig, cfgPath)
	t.Setenv("ADAPTERD_MODEL_PATH", "")
	b := NewBridge(FromEnv)
	if got := b.Generate("T", "not_a_real_adapter", "/ckpt/x"); got != "Adapter not supported: not_a_real_adapter" {
		t.Fatalf("Generate = %q", got)
	}
}

func TestFromEnv_MissingModel(t *testing.T) {
	d := t.TempDir()
	cfgPath := filepath.Join(d, "cfg.yaml")
	if err := os.WriteFile(cfgPath, []byte("gguf_model_path: "+filepath.Join(d, "nope.gguf")+"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(EnvConfig, cfgPath)
	t.Setenv("ADAPTERD_MODEL_PATH", "")
	got := NewBridge(FromEnv).Generate("p", "test_gen_adapter", "/c")
	if !strings.HasPrefix(got, "Error: ") || !strings.Contains(got, "model file not found") {
		t.Fatalf("Generate = %q", got)
	}
}
