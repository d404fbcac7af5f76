package generation

// evictOverCapacity closes least-recently-used idle adapters until
// len(entries)+room fits maxAdapters. keep is never evicted; pinned or
// queued entries are skipped, so the bound is soft under full load.
func (c *AdapterCache) evictOverCapacity(room int, keep string) {
	if c.maxAdapters <= 0 {
		return
	}
	var victims []*cacheEntry
	c.mu.Lock()
	for len(c.entries)+room > c.maxAdapters {
		var lru *cacheEntry
		lruKey := ""
		for k, e := range c.entries {
			if k == keep || e.pins > 0 || e.gate.queueLen() > 0 {
				continue
			}
			if lru == nil || e.lastUsed.Before(lru.lastUsed) {
				lru, lruKey = e, k
			}
		}
		if lru == nil {
			// nothing idle to evict
			break
		}
		delete(c.entries, lruKey)
		lru.retireLocked()
		victims = append(victims, lru)
	}
	c.mu.Unlock()

	for _, v := range victims {
		ref := v.handle.Checkpoint
		if err := v.closeModel(); err != nil {
			c.log.Warn().Str("event", EventAdapterEvict).Str("checkpoint", ref).Err(err).Msg("close evicted adapter")
		}
		c.evictions.Add(1)
		c.log.Info().Str("event", EventAdapterEvict).Str("checkpoint", ref).Msg("adapter evicted")
		c.pub.Publish(Event{Name: EventAdapterEvict, Key: ref, Fields: map[string]any{}})
	}
}
