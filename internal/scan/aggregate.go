package scan

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Aggregator accumulates probe results as they complete, in any order, and
// finalizes them into an ordered Summary. It is safe for concurrent
// contribution from many workers. No result is ever dropped; partial
// summaries from a cancelled run are valid.
type Aggregator struct {
	mu      sync.Mutex
	results []Result
	started time.Time
}

// NewAggregator creates an aggregator and stamps the run's start time.
func NewAggregator(capacity int) *Aggregator {
	return &Aggregator{
		results: make([]Result, 0, capacity),
		started: time.Now().UTC(),
	}
}

// Add records one completed probe result.
func (a *Aggregator) Add(r Result) {
	a.mu.Lock()
	a.results = append(a.results, r)
	a.mu.Unlock()
}

// Len returns the number of results collected so far.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.results)
}

// Finalize sorts the collected results ascending by port, counts open ports,
// and produces the immutable Summary. It must be called exactly once, after
// all workers have settled.
func (a *Aggregator) Finalize(cfg *Config, address string, interrupted bool) *Summary {
	a.mu.Lock()
	defer a.mu.Unlock()

	sort.Slice(a.results, func(i, j int) bool {
		return a.results[i].Port < a.results[j].Port
	})

	openCount := 0
	for i := range a.results {
		if a.results[i].Status == StatusOpen {
			openCount++
		}
	}

	start, end := ClampRange(cfg.StartPort, cfg.EndPort)
	now := time.Now().UTC()

	return &Summary{
		RunID:       uuid.New(),
		Target:      cfg.Target,
		Address:     address,
		StartPort:   start,
		EndPort:     end,
		Results:     a.results,
		OpenCount:   openCount,
		Interrupted: interrupted,
		StartTime:   a.started,
		EndTime:     now,
		Duration:    now.Sub(a.started),
	}
}
