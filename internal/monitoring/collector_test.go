package monitoring

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector()

	c.RecordQuery()
	c.RecordKnowledgeCall("intent", false)
	c.RecordKnowledgeCall("equation", true)
	c.RecordCacheHit(true)
	c.RecordCacheHit(false)
	c.RecordCacheHit(false)

	snap := c.Snapshot()
	assert.Equal(t, int64(1), snap.Queries)
	assert.Equal(t, int64(2), snap.KnowledgeCalls)
	assert.Equal(t, int64(1), snap.KnowledgeErrors)
	assert.Equal(t, int64(1), snap.CallsByKind["intent"])
	assert.Equal(t, int64(1), snap.CacheHits)
	assert.Equal(t, int64(2), snap.CacheMisses)
}

func TestCollectorReset(t *testing.T) {
	c := NewCollector()
	c.RecordQuery()
	c.RecordKnowledgeCall("fallback_value", false)

	c.Reset()

	snap := c.Snapshot()
	assert.Zero(t, snap.Queries)
	assert.Zero(t, snap.KnowledgeCalls)
	assert.Empty(t, snap.CallsByKind)
}

func TestNilCollectorIsNoOp(t *testing.T) {
	var c *Collector
	c.RecordQuery()
	c.RecordKnowledgeCall("intent", true)
	c.RecordCacheHit(true)
	c.Reset()
	assert.Zero(t, c.Snapshot().Queries)
}

func TestCollectorConcurrent(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordQuery()
			c.RecordCacheHit(true)
		}()
	}
	wg.Wait()
	snap := c.Snapshot()
	assert.Equal(t, int64(50), snap.Queries)
	assert.Equal(t, int64(50), snap.CacheHits)
}
