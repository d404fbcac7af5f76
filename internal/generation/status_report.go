package generation

import (
	"sort"
	"time"

	"adapterd/pkg/types"
)

// Snapshot is a read-only projection of the base model state.
type Snapshot struct {
	State  State
	Source string
	Err    string
}

// Snapshot returns the base model state.
func (s *Service) Snapshot() Snapshot {
	st, err := s.base.state()
	return Snapshot{State: st, Source: s.base.Source().Path, Err: err}
}

// Adapters reports loaded adapters ordered by checkpoint.
func (c *AdapterCache) Adapters() []types.AdapterStatus {
	c.mu.Lock()
	out := make([]types.AdapterStatus, 0, len(c.entries))
	for ref, e := range c.entries {
		out = append(out, types.AdapterStatus{
			Checkpoint:    ref,
			LastUsed:      e.lastUsed.Unix(),
			LoadedAt:      e.handle.LoadedAt.Unix(),
			EstMB:         e.estMB,
			Pins:          e.pins,
			QueueLen:      e.gate.queueLen(),
			Inflight:      e.gate.inflight(),
			MaxQueueDepth: e.gate.depth(),
		})
	}
	c.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Checkpoint < out[j].Checkpoint })
	return out
}

// SupportedAdapters lists adapter ids accepted in checkpoint addressing.
func (s *Service) SupportedAdapters() []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.adapters))
	for id := range s.adapters {
		out = append(out, id)
	}
	s.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Brands lists known strategies with their bound checkpoints.
func (s *Service) Brands() []types.BrandInfo {
	names := s.strategies.Names()
	sort.Strings(names)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.BrandInfo, 0, len(names))
	for _, n := range names {
		out = append(out, types.BrandInfo{Name: n, Checkpoint: s.brands[n]})
	}
	return out
}

// Adapters reports the catalog, supported ids, brands and loaded adapters.
func (s *Service) Adapters() types.AdaptersResponse {
	s.mu.RLock()
	catalog := append([]types.Checkpoint{}, s.catalog...)
	s.mu.RUnlock()
	return types.AdaptersResponse{
		Catalog:   catalog,
		Supported: s.SupportedAdapters(),
		Brands:    s.Brands(),
		Loaded:    s.cache.Adapters(),
	}
}

// Status builds a detailed status response for /status.
func (s *Service) Status() types.StatusResponse {
	snap := s.Snapshot()
	resp := types.StatusResponse{
		State:             string(snap.State),
		BaseModel:         snap.Source,
		LastError:         snap.Err,
		Adapters:          s.cache.Adapters(),
		MaxAdapters:       s.cache.maxAdapters,
		BaseLoadsTotal:    s.base.Loads(),
		AdapterLoadsTotal: s.cache.Loads(),
		EvictionsTotal:    s.cache.Evictions(),
		LlamaBuilt:        llamaBuilt,
		UptimeSeconds:     int64(time.Since(s.startTime) / time.Second),
		ServerTimeUnix:    time.Now().Unix(),
	}
	if at := s.base.LoadedAt(); !at.IsZero() {
		resp.BaseLoadedAt = at.Unix()
	}
	return resp
}
