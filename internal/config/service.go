package config

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"adapterd/internal/generation"
	"adapterd/internal/registry"
)

// Generation maps cfg onto the generation layer's tunables.
func (c Config) Generation(log zerolog.Logger, pub generation.EventPublisher) generation.Config {
	gc := generation.Config{
		Source:         generation.ModelSource{Path: c.ModelPath, Token: c.Token},
		ContextSize:    c.ContextSize,
		Threads:        c.Threads,
		Preload:        append([]string(nil), c.Preload...),
		MaxAdapters:    c.MaxAdapters,
		SerializeLoads: c.SerializeLoads,
		MaxQueueDepth:  c.MaxQueueDepth,
		MaxWait:        time.Duration(c.MaxWaitSeconds) * time.Second,
		Logger:         &log,
		Publisher:      pub,
	}
	if c.GPULayers != nil {
		n := *c.GPULayers
		gc.GPULayers = &n
	}
	if c.Adapters != nil {
		gc.Adapters = make(map[string]string, len(c.Adapters))
		for id, ref := range c.Adapters {
			gc.Adapters[id] = ref
		}
	}
	for _, b := range c.Brands {
		gc.Brands = append(gc.Brands, generation.Brand{Name: b.Name, Tag: b.Tag, Checkpoint: b.Checkpoint})
	}
	return gc
}

// NewService builds a generation service from cfg and registers every
// checkpoint found under AdaptersDir as a supported adapter id.
func NewService(cfg Config, log zerolog.Logger, pub generation.EventPublisher) (*generation.Service, error) {
	svc, err := generation.New(cfg.Generation(log, pub))
	if err != nil {
		return nil, err
	}
	if cfg.AdaptersDir == "" {
		return svc, nil
	}
	cps, err := registry.LoadDir(cfg.AdaptersDir)
	if err != nil {
		return nil, fmt.Errorf("scan adapters: %w", err)
	}
	svc.AddCatalog(cps)
	log.Info().Int("count", len(cps)).Str("dir", cfg.AdaptersDir).Msg("adapter catalog loaded")
	return svc, nil
}
