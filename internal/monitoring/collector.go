// Package monitoring counts pipeline activity: knowledge-source calls, cache
// traffic, and answered queries. The collector is constructed explicitly and
// injected; there is no package-level singleton.
package monitoring

import (
	"sync"
	"time"
)

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	Queries         int64            `json:"queries"`
	KnowledgeCalls  int64            `json:"knowledge_calls"`
	KnowledgeErrors int64            `json:"knowledge_errors"`
	CallsByKind     map[string]int64 `json:"calls_by_kind"`
	CacheHits       int64            `json:"cache_hits"`
	CacheMisses     int64            `json:"cache_misses"`
	UptimeSeconds   float64          `json:"uptime_seconds"`
}

// Collector accumulates counters. Safe for concurrent use; a nil *Collector
// is a valid no-op so components can run unmetered.
type Collector struct {
	mu      sync.Mutex
	started time.Time

	queries         int64
	knowledgeCalls  int64
	knowledgeErrors int64
	callsByKind     map[string]int64
	cacheHits       int64
	cacheMisses     int64
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{
		started:     time.Now(),
		callsByKind: make(map[string]int64),
	}
}

// RecordQuery counts one answered query.
func (c *Collector) RecordQuery() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries++
}

// RecordKnowledgeCall counts one knowledge-source call of the given kind
// (intent, equation, mapping, fallback_value, unit).
func (c *Collector) RecordKnowledgeCall(kind string, failed bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.knowledgeCalls++
	c.callsByKind[kind]++
	if failed {
		c.knowledgeErrors++
	}
}

// RecordCacheHit counts a cache hit (hit=true) or miss.
func (c *Collector) RecordCacheHit(hit bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if hit {
		c.cacheHits++
	} else {
		c.cacheMisses++
	}
}

// Snapshot returns a copy of the current counters.
func (c *Collector) Snapshot() MetricsSnapshot {
	if c == nil {
		return MetricsSnapshot{CallsByKind: map[string]int64{}}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	byKind := make(map[string]int64, len(c.callsByKind))
	for k, v := range c.callsByKind {
		byKind[k] = v
	}
	return MetricsSnapshot{
		Queries:         c.queries,
		KnowledgeCalls:  c.knowledgeCalls,
		KnowledgeErrors: c.knowledgeErrors,
		CallsByKind:     byKind,
		CacheHits:       c.cacheHits,
		CacheMisses:     c.cacheMisses,
		UptimeSeconds:   time.Since(c.started).Seconds(),
	}
}

// Reset zeroes every counter. Intended for test isolation.
func (c *Collector) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries = 0
	c.knowledgeCalls = 0
	c.knowledgeErrors = 0
	c.callsByKind = make(map[string]int64)
	c.cacheHits = 0
	c.cacheMisses = 0
	c.started = time.Now()
}
