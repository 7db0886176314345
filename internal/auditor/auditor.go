// Package auditor provides the best-effort audit recorder. Records are
// handed to a bounded worker pool and written to the audit store off the
// request path; a write failure never fails the triggering business
// operation, but it is logged and counted for operational visibility.
package auditor

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/duca-customs-backend/internal/domain/audit"
)

// Recorder implements audit.Recorder over a worker pool.
type Recorder struct {
	repo         audit.Repository
	pool         *ants.Pool
	logger       *slog.Logger
	writeTimeout time.Duration
	dropped      atomic.Uint64
}

type Config struct {
	PoolSize     int
	WriteTimeout time.Duration
}

// NewRecorder creates the recorder and its worker pool.
func NewRecorder(logger *slog.Logger, repo audit.Repository, cfg Config) (*Recorder, error) {
	pool, err := ants.NewPool(cfg.PoolSize, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}

	return &Recorder{
		repo:         repo,
		pool:         pool,
		logger:       logger,
		writeTimeout: cfg.WriteTimeout,
	}, nil
}

// Record submits the record for asynchronous persistence. The caller's
// context is not reused: the request may complete before the write does, so
// each write gets its own deadline.
func (r *Recorder) Record(_ context.Context, rec audit.Record) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	err := r.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
		defer cancel()

		if err := r.repo.Insert(ctx, &rec); err != nil {
			dropped := r.dropped.Add(1)
			r.logger.Error("Dropped audit record",
				"actor_id", rec.ActorID.String(),
				"operation", rec.Operation,
				"dropped_total", dropped,
				"error", err,
			)
		}
	})
	if err != nil {
		// Pool saturated or released. The record is lost; the business
		// operation is not.
		dropped := r.dropped.Add(1)
		r.logger.Error("Dropped audit record, worker pool unavailable",
			"actor_id", rec.ActorID.String(),
			"operation", rec.Operation,
			"dropped_total", dropped,
			"error", err,
		)
	}
}

// Dropped reports how many records could not be written since startup.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Close releases the worker pool, waiting briefly for in-flight writes.
func (r *Recorder) Close() {
	r.pool.Release()
	r.logger.Info("Audit recorder stopped", "dropped_total", r.dropped.Load())
}
