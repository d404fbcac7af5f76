package generation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"adapterd/pkg/types"
)

// Service owns the base model registry, the adapter cache and the strategy
// table, and dispatches generation requests across them.
type Service struct {
	base       *BaseRegistry
	cache      *AdapterCache
	strategies *StrategySet
	pub        EventPublisher
	log        zerolog.Logger

	mu       sync.RWMutex
	adapters map[string]string // supported adapter id -> bound checkpoint
	brands   map[string]string // brand -> bound checkpoint
	preload  []string
	catalog  []types.Checkpoint

	startTime time.Time
}

// New constructs a Service. It fails fast when the model source is empty;
// the model itself is loaded lazily.
func New(cfg Config) (*Service, error) {
	if strings.TrimSpace(cfg.Source.Path) == "" {
		return nil, &ModelLoadError{Source: cfg.Source.Path, Err: ErrEmptySource}
	}
	cfg = cfg.withDefaults()
	log := cfg.Logger.With().Str("component", "generation").Logger()

	s := &Service{
		pub:       cfg.Publisher,
		log:       log,
		adapters:  make(map[string]string, len(cfg.Adapters)),
		brands:    make(map[string]string),
		preload:   append([]string(nil), cfg.Preload...),
		startTime: time.Now(),
	}
	for id, ref := range cfg.Adapters {
		s.adapters[id] = ref
	}
	var extra []Strategy
	for _, b := range cfg.Brands {
		name := normalizeName(b.Name)
		if name == "" {
			continue
		}
		if b.Tag != "" {
			extra = append(extra, NewTagStrategy(name, b.Tag))
		}
		if b.Checkpoint != "" {
			s.brands[name] = b.Checkpoint
		}
	}
	s.strategies = NewStrategySet(extra...)
	s.base = newBaseRegistry(cfg.Runtime, cfg.Source, cfg.Publisher, log, newGate(cfg.MaxQueueDepth, cfg.MaxWait))
	s.cache = newAdapterCache(cfg.Runtime, s.base, cfg.Publisher, log, cacheOptions{
		maxAdapters:    cfg.MaxAdapters,
		serializeLoads: cfg.SerializeLoads,
		queueDepth:     cfg.MaxQueueDepth,
		maxWait:        cfg.MaxWait,
		drainTimeout:   cfg.DrainTimeout,
	})
	return s, nil
}

// Base returns the base model registry.
func (s *Service) Base() *BaseRegistry { return s.base }

// Cache returns the adapter cache.
func (s *Service) Cache() *AdapterCache { return s.cache }

// Strategies returns the strategy table.
func (s *Service) Strategies() *StrategySet { return s.strategies }

// Ready reports whether the base model is loaded.
func (s *Service) Ready() bool { return s.base.Ready() }

// RegisterAdapter adds (or rebinds) a supported adapter id. Used to merge
// ids discovered on disk into the configured set.
func (s *Service) RegisterAdapter(id, checkpoint string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.adapters[id]; ok && prev != "" && checkpoint == "" {
		return
	}
	s.adapters[id] = checkpoint
}

// AddCatalog records checkpoints discovered on disk and registers each
// as a supported adapter id bound to its path.
func (s *Service) AddCatalog(cps []types.Checkpoint) {
	for _, cp := range cps {
		s.RegisterAdapter(cp.ID, cp.Path)
	}
	s.mu.Lock()
	s.catalog = append(s.catalog, cps...)
	s.mu.Unlock()
}

// Unload drops a loaded checkpoint from the adapter cache.
func (s *Service) Unload(ref string) error { return s.cache.Unload(ref) }

// Preload initializes the base model and then loads configured checkpoints.
// Preload failures for individual checkpoints are joined and returned
// after all have been attempted.
func (s *Service) Preload(ctx context.Context) error {
	if err := s.base.Initialize(ctx); err != nil {
		return err
	}
	var errs []error
	for _, ref := range s.preload {
		if _, err := s.cache.GetOrLoad(ctx, ref); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close releases every adapter and then the base model.
func (s *Service) Close() error {
	return errors.Join(s.cache.Close(), s.base.Finalize())
}
