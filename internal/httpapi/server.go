package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"adapterd/internal/generation"
	"adapterd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Generate(ctx context.Context, req generation.Request) generation.Result
	Adapters() types.AdaptersResponse
	Unload(checkpoint string) error
	Status() types.StatusResponse
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Post("/generate", handleGenerate(svc))

	r.Get("/adapters", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Adapters())
	})

	r.Post("/adapters/unload", handleUnload(svc))

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// decodeJSON enforces the content type and body limit and decodes into v.
// On failure it writes the error response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "", "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// oversize bodies also land here; report 400 without size details
		writeJSONError(w, http.StatusBadRequest, "", "invalid JSON body")
		return false
	}
	return true
}

// toRequest maps the wire payload onto an addressed generation request.
func toRequest(in types.GenerateRequest) generation.Request {
	var req generation.Request
	if in.AdapterID != "" {
		req = generation.ByCheckpoint(in.Prompt, in.AdapterID, in.Checkpoint)
	} else {
		brand := in.Brand
		if brand == "" {
			brand = defaultBrand
		}
		req = generation.ByBrand(in.Prompt, brand).WithCheckpoint(in.Checkpoint)
	}
	return req.WithParams(generation.SamplingParams{
		MaxTokens:     in.MaxTokens,
		Temperature:   float32(in.Temperature),
		TopP:          float32(in.TopP),
		TopK:          in.TopK,
		Stop:          in.Stop,
		Seed:          int(in.Seed),
		RepeatPenalty: float32(in.RepeatPenalty),
	})
}

func handleGenerate(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in types.GenerateRequest
		if !decodeJSON(w, r, &in) {
			return
		}
		// Basic validation
		if strings.TrimSpace(in.Prompt) == "" {
			writeJSONError(w, http.StatusBadRequest, "", "prompt is required")
			return
		}
		if in.AdapterID != "" && in.Brand != "" {
			writeJSONError(w, http.StatusBadRequest, "", "adapter_id and brand are mutually exclusive")
			return
		}
		if in.MaxTokens < 0 || in.Temperature < 0 {
			writeJSONError(w, http.StatusBadRequest, "", "max_tokens and temperature must not be negative")
			return
		}

		lvl := requestLogLevel(r)
		start := time.Now()
		ctx, cancel := generateContext(r)
		defer cancel()
		res := svc.Generate(ctx, toRequest(in))
		if res.Err != nil {
			if clientGone(r) {
				return
			}
			status := statusFor(res.Err)
			if status == http.StatusTooManyRequests {
				IncrementBackpressure(generation.BusyStage(res.Err))
			}
			writeJSONError(w, status, generation.ErrorKind(res.Err), res.Err.Error())
			logGenerate(r, lvl, status, start, res.AdapterID, res.Err)
			return
		}
		writeJSON(w, http.StatusOK, types.GenerateResponse{
			Text:       res.Text,
			Adapter:    res.AdapterID,
			Strategy:   res.Strategy,
			Checkpoint: res.Checkpoint,
			DurationMS: res.Duration.Milliseconds(),
		})
		logGenerate(r, lvl, http.StatusOK, start, res.AdapterID, nil)
		if lvl >= LevelDebug {
			zlog.Debug().Str("prompt", in.Prompt).Str("text", res.Text).Msg("generate io")
		}
	}
}

func handleUnload(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in types.UnloadRequest
		if !decodeJSON(w, r, &in) {
			return
		}
		if strings.TrimSpace(in.Checkpoint) == "" {
			writeJSONError(w, http.StatusBadRequest, "", "checkpoint is required")
			return
		}
		if err := svc.Unload(in.Checkpoint); err != nil {
			writeJSONError(w, statusFor(err), "", err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
