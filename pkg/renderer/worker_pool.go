package renderer

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// progressInterval throttles tile progress logging
const progressInterval = time.Second

// TileFunc renders one tile and reports what it did
type TileFunc func(tile *Tile) (RenderStats, error)

// ProgressFunc is told the running count of finished tiles. It is called
// from worker goroutines and must be safe for concurrent use.
type ProgressFunc func(done, total int)

// WorkerPool runs tile renders in parallel with a bounded number of goroutines
type WorkerPool struct {
	numWorkers int
	logger     zerolog.Logger
}

// NewWorkerPool creates a worker pool with the specified number of workers.
// A non-positive count means one worker per CPU.
func NewWorkerPool(numWorkers int, logger zerolog.Logger) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{numWorkers: numWorkers, logger: logger}
}

// NumWorkers returns the number of workers in the pool
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}

// Run renders each tile once and waits for all of them. Each tile
// writes its result to its own slot, so no locking is needed while workers
// run. The first tile error is returned once every started tile has finished;
// tiles that have not started when ctx is cancelled or a tile fails are skipped.
// progress may be nil.
func (wp *WorkerPool) Run(ctx context.Context, tiles []*Tile, render TileFunc, progress ProgressFunc) (RenderStats, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(wp.numWorkers)

	results := make([]RenderStats, len(tiles))
	var completed atomic.Int64
	logProgress := rate.Sometimes{Interval: progressInterval}

	for idx, tile := range tiles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			stats, err := render(tile)
			if err != nil {
				return err
			}
			results[idx] = stats

			done := completed.Add(1)
			if progress != nil {
				progress(int(done), len(tiles))
			}
			logProgress.Do(func() {
				wp.logger.Debug().
					Int64("done", done).
					Int("total", len(tiles)).
					Msg("tiles rendered")
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return RenderStats{}, err
	}

	total := RenderStats{Tiles: len(tiles), Workers: wp.numWorkers}
	for _, stats := range results {
		total.Merge(stats)
	}
	return total, nil
}
