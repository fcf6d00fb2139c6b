// internal/app/system/workers/orphansweep.go
package workers

import (
	"context"
	"sync"
	"time"

	mapstore "github.com/Praytic/places-sub000/internal/app/store/maps"
	placestore "github.com/Praytic/places-sub000/internal/app/store/places"
	"go.uber.org/zap"
)

// OrphanSweep is a background worker that reclaims places whose parent map
// no longer exists. Map deletion removes the map and its grants in one
// transaction but cascades to places best-effort afterwards; if that phase
// is interrupted, the leftover places are unreachable through any access
// path and this sweep deletes them.
type OrphanSweep struct {
	maps     *mapstore.Store
	places   *placestore.Store
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewOrphanSweep creates a new orphan sweep worker.
func NewOrphanSweep(maps *mapstore.Store, places *placestore.Store, logger *zap.Logger, interval time.Duration) *OrphanSweep {
	return &OrphanSweep{
		maps:     maps,
		places:   places,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *OrphanSweep) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("orphan sweep worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *OrphanSweep) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("orphan sweep worker stopped")
}

func (w *OrphanSweep) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			if _, err := w.SweepOnce(ctx); err != nil {
				w.log.Error("orphan sweep failed", zap.Error(err))
			}
			cancel()
		}
	}
}

// SweepOnce scans for places whose map is gone and deletes them. Returns
// the number of places removed. Safe to call concurrently with ordinary
// traffic: a map id observed here either still exists (skipped) or was
// deleted, and deleted maps never come back.
func (w *OrphanSweep) SweepOnce(ctx context.Context) (int64, error) {
	mapIDs, err := w.places.DistinctMapIDs(ctx)
	if err != nil {
		return 0, err
	}

	var removed int64
	for _, id := range mapIDs {
		exists, err := w.maps.Exists(ctx, id)
		if err != nil {
			return removed, err
		}
		if exists {
			continue
		}
		n, err := w.places.DeleteByMap(ctx, id)
		if err != nil {
			return removed, err
		}
		removed += n
		w.log.Info("reclaimed orphaned places",
			zap.String("map_id", id.Hex()),
			zap.Int64("count", n))
	}
	return removed, nil
}
