package httpapi

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is the structured logger used by the HTTP layer.
var zlog = zerolog.New(os.Stderr).With().Timestamp().Logger()

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = l }

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// global default, read once
var defaultLogLevel = parseLevel(os.Getenv("ADAPTERD_LOG_LEVEL"))

// SetDefaultLogLevel overrides the request log level used when a request
// carries no override.
func SetDefaultLogLevel(s string) { defaultLogLevel = parseLevel(s) }

func requestLogLevel(r *http.Request) LogLevel {
	// Per-request overrides
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// requestEvent starts a log line for r when lvl admits it: failures log at
// LevelError and above, everything else at LevelInfo.
func requestEvent(r *http.Request, lvl LogLevel, status int) *zerolog.Event {
	var z *zerolog.Event
	switch {
	case status >= 500 && lvl >= LevelError:
		z = zlog.Error()
	case status >= 400 && lvl >= LevelError:
		z = zlog.Warn()
	case lvl >= LevelInfo:
		z = zlog.Info()
	default:
		return nil
	}
	z = z.Str("path", r.URL.Path).Int("status", status)
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		z = z.Str("request_id", rid)
	}
	return z
}

func logGenerate(r *http.Request, lvl LogLevel, status int, start time.Time, adapter string, err error) {
	z := requestEvent(r, lvl, status)
	if z == nil {
		return
	}
	z = z.Str("adapter", adapter).Dur("dur", time.Since(start))
	if err != nil {
		z = z.Err(err)
	}
	z.Msg("generate")
}
