package metrics

import (
	"context"
	"time"

	"art-vault/internal/logging"
)

// StatsProvider supplies library statistics and connection pool metrics to
// the collector.
type StatsProvider interface {
	GetStats(ctx context.Context) (Stats, error)
	UpdateDBMetrics()
}

// Stats holds library totals pushed into gauges on each collection.
type Stats struct {
	Images      int
	Models      int
	Textures    int
	Other       int
	Deleted     int
	Favorites   int
	Tags        int
	Folders     int
	Collections int
}

// Collector periodically collects and updates library gauges.
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
	}
}

// Run collects immediately and then on every interval until ctx is done.
func (c *Collector) Run(ctx context.Context) error {
	c.collect(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Collector) collect(ctx context.Context) {
	if c.statsProvider == nil {
		return
	}

	c.statsProvider.UpdateDBMetrics()

	stats, err := c.statsProvider.GetStats(ctx)
	if err != nil {
		logging.Warn("Metrics collection failed: %v", err)
		return
	}

	AssetsTotal.WithLabelValues("image").Set(float64(stats.Images))
	AssetsTotal.WithLabelValues("model").Set(float64(stats.Models))
	AssetsTotal.WithLabelValues("texture").Set(float64(stats.Textures))
	AssetsTotal.WithLabelValues("other").Set(float64(stats.Other))
	AssetsDeletedTotal.Set(float64(stats.Deleted))
	FavoritesTotal.Set(float64(stats.Favorites))
	TagsTotal.Set(float64(stats.Tags))
	ScanFoldersTotal.Set(float64(stats.Folders))
	CollectionsTotal.Set(float64(stats.Collections))

	logging.Debug("Metrics collected: images=%d models=%d textures=%d other=%d favorites=%d tags=%d",
		stats.Images, stats.Models, stats.Textures, stats.Other, stats.Favorites, stats.Tags)
}
