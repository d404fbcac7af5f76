// Package ffi adapts the generation service to the plain-text calling
// convention of the C shared library: every call returns a string, and
// failures are encoded in the text rather than signalled out of band.
package ffi

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"adapterd/internal/config"
	"adapterd/internal/generation"
)

// EnvConfig names the environment variable holding the config file path.
const EnvConfig = "ADAPTERD_CONFIG"

// defaultConfigPath is tried when EnvConfig is unset.
const defaultConfigPath = "config/model_config.json"

const (
	unsupportedPrefix = "Adapter not supported: "
	errorPrefix       = "Error: "
)

// Generator is the part of the generation service the bridge drives.
type Generator interface {
	Generate(ctx context.Context, req generation.Request) generation.Result
}

// Text renders res using the library's text convention: the generated
// text on success, "Adapter not supported: <id>" for an unknown adapter,
// otherwise "Error: <description>". Failures never render as "".
func Text(res generation.Result) string {
	if res.Err == nil {
		return res.Text
	}
	var ue *generation.UnsupportedAdapterError
	if errors.As(res.Err, &ue) {
		return unsupportedPrefix + ue.ID
	}
	msg := strings.TrimSpace(res.Err.Error())
	if msg == "" {
		msg = "unknown error"
	}
	return errorPrefix + msg
}

// Bridge lazily builds its Generator on first use. A failed build is not
// remembered, so a later call retries.
type Bridge struct {
	build func() (Generator, error)

	mu  sync.Mutex
	gen Generator
}

// NewBridge returns a Bridge that obtains its Generator from build.
func NewBridge(build func() (Generator, error)) *Bridge {
	return &Bridge{build: build}
}

func (b *Bridge) generator() (Generator, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gen != nil {
		return b.gen, nil
	}
	g, err := b.build()
	if err != nil {
		return nil, err
	}
	b.gen = g
	return g, nil
}

// Generate runs checkpoint-addressed generation and returns the result as
// text. It blocks until generation completes.
func (b *Bridge) Generate(prompt, adapterID, checkpoint string) string {
	g, err := b.generator()
	if err != nil {
		return Text(generation.Result{Err: err})
	}
	return Text(g.Generate(context.Background(), generation.ByCheckpoint(prompt, adapterID, checkpoint)))
}

// FromEnv builds a Service from the file named by ADAPTERD_CONFIG (or
// config/model_config.json when unset) with environment overrides applied.
func FromEnv() (Generator, error) {
	path := os.Getenv(EnvConfig)
	if path == "" {
		path = defaultConfigPath
	}
	var cfg config.Config
	if _, err := os.Stat(path); err == nil || os.Getenv(EnvConfig) != "" {
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	cfg = config.ApplyEnv(cfg, os.Getenv)
	cfg, err := config.Validate(cfg)
	if err != nil {
		return nil, err
	}
	log := zerolog.New(os.Stderr).With().Timestamp().Str("component", "ffi").Logger().Level(parseLevel(cfg.LogLevel))
	svc, err := config.NewService(cfg, log, nil)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func parseLevel(s string) zerolog.Level {
	if s == "" {
		return zerolog.WarnLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zerolog.WarnLevel
	}
	return lvl
}
