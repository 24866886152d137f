package metrics

import (
	"context"
	"time"

	"medialist/internal/logging"
)

// StatsProvider supplies catalog counts for the collector.
type StatsProvider interface {
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// DBStatsProvider is optionally implemented by providers that can report
// connection pool state.
type DBStatsProvider interface {
	UpdateDBMetrics()
}

// Collector periodically collects and updates catalog metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
	seen          map[string]bool
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
		seen:          make(map[string]bool),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	counts, err := c.statsProvider.CountByStatus(ctx)
	if err != nil {
		logging.Warn("Metrics collection failed: %v", err)
		return
	}

	// Statuses that disappeared since the last pass drop to zero instead of
	// keeping a stale value.
	for status := range c.seen {
		if _, ok := counts[status]; !ok {
			CatalogItemsTotal.WithLabelValues(status).Set(0)
		}
	}

	total := 0
	for status, n := range counts {
		CatalogItemsTotal.WithLabelValues(status).Set(float64(n))
		c.seen[status] = true
		total += n
	}

	if p, ok := c.statsProvider.(DBStatsProvider); ok {
		p.UpdateDBMetrics()
	}

	logging.Debug("Metrics collected: catalog items=%d, statuses=%d", total, len(counts))
}
