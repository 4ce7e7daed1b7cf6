package metrics

import "sync/atomic"

// Counter is a monotonically increasing event count.
type Counter struct {
	name string
	n    atomic.Int64
}

func newCounter(name string) *Counter { return &Counter{name: name} }

// Inc adds one.
func (c *Counter) Inc() {
	if Enabled() {
		c.n.Add(1)
	}
}

// Name returns the counter name.
func (c *Counter) Name() string { return c.name }

// Value returns the current count.
func (c *Counter) Value() int64 { return c.n.Load() }

// Reset sets the count to zero.
func (c *Counter) Reset() { c.n.Store(0) }

var (
	CacheHits     = newCounter("cache_hits")
	CacheMisses   = newCounter("cache_misses")
	StaleResults  = newCounter("stale_results")
	SchemaRejects = newCounter("schema_mismatches")
)

// AllCounters returns every registered counter.
func AllCounters() []*Counter {
	return []*Counter{CacheHits, CacheMisses, StaleResults, SchemaRejects}
}

// CounterValues maps counter names to their values.
func CounterValues() map[string]int64 {
	out := make(map[string]int64)
	for _, c := range AllCounters() {
		out[c.Name()] = c.Value()
	}
	return out
}
