package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"adapterd/internal/common/fsutil"
)

// ErrNoModelPath is returned by Validate when no base model is configured.
var ErrNoModelPath = errors.New("gguf_model_path is not set")

// Brand binds a strategy name to an optional prompt tag and checkpoint.
type Brand struct {
	Name       string `json:"name" yaml:"name" toml:"name"`
	Tag        string `json:"tag" yaml:"tag" toml:"tag"`
	Checkpoint string `json:"checkpoint" yaml:"checkpoint" toml:"checkpoint"`
}

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by defaults downstream.
type Config struct {
	Addr        string `json:"addr" yaml:"addr" toml:"addr"`
	ModelPath   string `json:"gguf_model_path" yaml:"gguf_model_path" toml:"gguf_model_path"`
	AdaptersDir string `json:"adapters_dir" yaml:"adapters_dir" toml:"adapters_dir"`
	// Adapters maps supported adapter ids to an optional checkpoint path.
	Adapters     map[string]string `json:"adapters" yaml:"adapters" toml:"adapters"`
	Brands       []Brand           `json:"brands" yaml:"brands" toml:"brands"`
	DefaultBrand string            `json:"default_brand" yaml:"default_brand" toml:"default_brand"`
	Preload      []string          `json:"preload" yaml:"preload" toml:"preload"`

	MaxAdapters    int  `json:"max_adapters" yaml:"max_adapters" toml:"max_adapters"`
	SerializeLoads bool `json:"serialize_loads" yaml:"serialize_loads" toml:"serialize_loads"`
	ContextSize    int  `json:"context_size" yaml:"context_size" toml:"context_size"`
	GPULayers      *int `json:"gpu_layers" yaml:"gpu_layers" toml:"gpu_layers"`
	Threads        int  `json:"threads" yaml:"threads" toml:"threads"`
	MaxQueueDepth  int  `json:"max_queue_depth" yaml:"max_queue_depth" toml:"max_queue_depth"`
	MaxWaitSeconds int  `json:"max_wait_seconds" yaml:"max_wait_seconds" toml:"max_wait_seconds"`

	LogLevel    string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`

	// Token is an optional model-hub credential; only ever read from the
	// environment.
	Token string `json:"-" yaml:"-" toml:"-"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays environment values onto cfg. getenv is usually os.Getenv.
//
//	BRAND               default brand for brand-addressed requests
//	HF_TOKEN            model-hub credential
//	ADAPTERD_ADDR       listen address
//	ADAPTERD_MODEL_PATH base model path
//	ADAPTERD_LOG_LEVEL  log level
func ApplyEnv(cfg Config, getenv func(string) string) Config {
	if v := strings.TrimSpace(getenv("BRAND")); v != "" {
		cfg.DefaultBrand = v
	}
	if v := getenv("HF_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := getenv("ADAPTERD_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := strings.TrimSpace(getenv("ADAPTERD_MODEL_PATH")); v != "" {
		cfg.ModelPath = v
	}
	if v := getenv("ADAPTERD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return cfg
}

// Validate expands '~' in paths and fails fast when the base model is not
// configured or not present on disk.
func Validate(cfg Config) (Config, error) {
	cfg.ModelPath = strings.TrimSpace(cfg.ModelPath)
	if cfg.ModelPath == "" {
		return cfg, ErrNoModelPath
	}
	var err error
	if cfg.ModelPath, err = fsutil.ExpandHome(cfg.ModelPath); err != nil {
		return cfg, err
	}
	if !fsutil.PathExists(cfg.ModelPath) {
		return cfg, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}
	if cfg.AdaptersDir != "" {
		if cfg.AdaptersDir, err = fsutil.ExpandHome(cfg.AdaptersDir); err != nil {
			return cfg, err
		}
	}
	if cfg.MaxAdapters < 0 {
		return cfg, fmt.Errorf("max_adapters must be >= 0, got %d", cfg.MaxAdapters)
	}
	return cfg, nil
}
