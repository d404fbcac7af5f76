package generation

import (
	"time"

	"github.com/rs/zerolog"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultMaxQueueDepth = 32
	defaultMaxWait       = 30 * time.Second
	defaultDrainTimeout  = 5 * time.Second
	defaultContextSize   = 2048
	defaultGPULayers     = -1
	defaultThreads       = 8
)

// DefaultAdapterIDs are the adapter ids accepted in checkpoint addressing
// when Config.Adapters is nil.
var DefaultAdapterIDs = []string{"test_gen_adapter", "dynamic_documentation_adapter"}

// Brand binds a strategy name to an optional prompt tag and checkpoint.
// An empty Tag keeps the built-in strategy of the same name (if any).
type Brand struct {
	Name       string
	Tag        string
	Checkpoint string
}

// Config encapsulates all tunables for Service construction.
type Config struct {
	Source ModelSource
	// Runtime defaults to the llama runtime built from the fields below.
	Runtime     Runtime
	ContextSize int
	// GPULayers is the number of layers offloaded to the GPU. nil offloads
	// all of them (-1); an explicit 0 keeps the model on the CPU.
	GPULayers *int
	Threads   int

	// Adapters maps supported adapter ids to an optional bound checkpoint.
	// nil means DefaultAdapterIDs with no binding.
	Adapters map[string]string
	Brands   []Brand
	// Preload lists checkpoints loaded by Preload after the base model.
	Preload []string

	// MaxAdapters bounds the adapter cache; 0 keeps every adapter loaded.
	MaxAdapters int
	// SerializeLoads runs adapter loads one at a time across all keys.
	SerializeLoads bool
	MaxQueueDepth  int
	MaxWait        time.Duration
	DrainTimeout   time.Duration

	Logger    *zerolog.Logger
	Publisher EventPublisher
}

func (cfg Config) withDefaults() Config {
	if cfg.ContextSize <= 0 {
		cfg.ContextSize = defaultContextSize
	}
	if cfg.GPULayers == nil {
		n := defaultGPULayers
		cfg.GPULayers = &n
	}
	if cfg.Threads <= 0 {
		cfg.Threads = defaultThreads
	}
	if cfg.MaxQueueDepth <= 0 {
		cfg.MaxQueueDepth = defaultMaxQueueDepth
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = defaultMaxWait
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = defaultDrainTimeout
	}
	if cfg.Adapters == nil {
		cfg.Adapters = make(map[string]string, len(DefaultAdapterIDs))
		for _, id := range DefaultAdapterIDs {
			cfg.Adapters[id] = ""
		}
	}
	if cfg.Runtime == nil {
		cfg.Runtime = NewLlamaRuntime(cfg.ContextSize, *cfg.GPULayers, cfg.Threads)
	}
	if cfg.Publisher == nil {
		cfg.Publisher = noopPublisher{}
	}
	if cfg.Logger == nil {
		l := zerolog.Nop()
		cfg.Logger = &l
	}
	return cfg
}
