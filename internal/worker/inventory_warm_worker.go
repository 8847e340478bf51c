package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// InventoryWarmer reloads the cached inventory.
type InventoryWarmer interface {
	WarmInventory(ctx context.Context) (int, error)
}

// InventoryWarmWorker keeps the inventory cache warm so panels open without
// a cold read of the whole catalog.
type InventoryWarmWorker struct {
	warmer   InventoryWarmer
	interval time.Duration
}

// NewInventoryWarmWorker constructs an InventoryWarmWorker.
func NewInventoryWarmWorker(warmer InventoryWarmer, interval time.Duration) *InventoryWarmWorker {
	return &InventoryWarmWorker{warmer: warmer, interval: interval}
}

// Start warms once, then periodically until context is canceled.
func (w *InventoryWarmWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting inventory warm worker")
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Inventory warm worker stopped")
			return
		}
	}
}

func (w *InventoryWarmWorker) run(ctx context.Context) {
	n, err := w.warmer.WarmInventory(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Error().Err(err).Msg("Failed to warm inventory cache")
		}
		return
	}
	log.Debug().Int("items", n).Msg("Inventory cache warmed")
}
