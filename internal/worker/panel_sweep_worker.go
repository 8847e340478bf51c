package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// PanelSweeper closes idle panels.
type PanelSweeper interface {
	Sweep(ttl time.Duration) int
}

// PanelSweepWorker closes selection panels nobody has touched for ttl.
type PanelSweepWorker struct {
	sweeper  PanelSweeper
	ttl      time.Duration
	interval time.Duration
}

// NewPanelSweepWorker constructs a PanelSweepWorker.
func NewPanelSweepWorker(sweeper PanelSweeper, ttl, interval time.Duration) *PanelSweepWorker {
	return &PanelSweepWorker{sweeper: sweeper, ttl: ttl, interval: interval}
}

// Start begins the periodic sweep loop until context is canceled.
func (w *PanelSweepWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Dur("ttl", w.ttl).Msg("Starting panel sweep worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := w.sweeper.Sweep(w.ttl); n > 0 {
				log.Info().Int("closed", n).Msg("Closed idle selection panels")
			}
		case <-ctx.Done():
			log.Info().Msg("Panel sweep worker stopped")
			return
		}
	}
}
