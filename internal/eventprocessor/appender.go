// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package eventprocessor

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/acmiyaguchi/telemetry-churn/internal/database"
	"github.com/acmiyaguchi/telemetry-churn/internal/logging"
	"github.com/acmiyaguchi/telemetry-churn/internal/metrics"
	"github.com/acmiyaguchi/telemetry-churn/internal/models"
)

// ErrAppenderClosed is returned by Enqueue after Close.
var ErrAppenderClosed = errors.New("appender closed")

// ErrQueueFull is returned by Enqueue when the buffered queue is at capacity.
var ErrQueueFull = errors.New("appender queue full")

// Appender batches pings and writes them to DuckDB. Single-row inserts are
// ruinous for an OLAP store, so every ingest path funnels through here.
type Appender struct {
	db      *database.DB
	cfg     AppenderConfig
	queue   chan models.Ping
	limiter *rate.Limiter

	mu     sync.Mutex
	closed bool

	done chan struct{}
	wg   sync.WaitGroup
}

// NewAppender creates a batching appender. Serve must be called before
// enqueued pings reach the database.
func NewAppender(db *database.DB, cfg AppenderConfig) *Appender {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1000
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = cfg.BatchSize * 4
	}

	a := &Appender{
		db:    db,
		cfg:   cfg,
		queue: make(chan models.Ping, cfg.QueueCapacity),
		done:  make(chan struct{}),
	}
	if cfg.RateLimitPerSecond > 0 {
		a.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitPerSecond), cfg.BatchSize)
	}
	return a
}

// Enqueue adds a ping to the write queue without blocking.
func (a *Appender) Enqueue(ping models.Ping) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrAppenderClosed
	}
	a.mu.Unlock()

	select {
	case a.queue <- ping:
		metrics.IngestQueueDepth.Set(float64(len(a.queue)))
		return nil
	default:
		return ErrQueueFull
	}
}

// Serve drains the queue until the context is canceled or Close is called,
// flushing when a batch fills or the flush interval elapses. It satisfies
// suture.Service.
func (a *Appender) Serve(ctx context.Context) error {
	a.wg.Add(1)
	defer a.wg.Done()

	batch := make([]models.Ping, 0, a.cfg.BatchSize)
	ticker := time.NewTicker(a.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.flush(batch)
			return ctx.Err()
		case <-a.done:
			// Drain whatever is still queued before shutting down.
			for {
				select {
				case ping := <-a.queue:
					batch = append(batch, ping)
					if len(batch) >= a.cfg.BatchSize {
						a.flush(batch)
						batch = batch[:0]
					}
				default:
					a.flush(batch)
					return nil
				}
			}
		case ping := <-a.queue:
			batch = append(batch, ping)
			if len(batch) >= a.cfg.BatchSize {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				a.flush(batch)
				batch = batch[:0]
			}
		}
	}
}

// flush writes a batch to the database. Failures are logged and the batch is
// dropped; upstream retention (JetStream or backfill files) is the replay
// mechanism.
func (a *Appender) flush(batch []models.Ping) {
	if len(batch) == 0 {
		return
	}

	if a.limiter != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.FlushInterval)
		if err := a.limiter.WaitN(ctx, len(batch)); err != nil {
			logging.Warn().Err(err).Int("batch_size", len(batch)).Msg("Rate limiter wait aborted")
		}
		cancel()
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := a.db.InsertPings(ctx, batch)
	metrics.RecordBatchFlush(time.Since(start), len(batch))
	metrics.IngestQueueDepth.Set(float64(len(a.queue)))
	if err != nil {
		logging.Error().Err(err).Int("batch_size", len(batch)).Msg("Batch flush failed")
		return
	}
	logging.Debug().
		Int("batch_size", len(batch)).
		Int("inserted", n).
		Dur("duration", time.Since(start)).
		Msg("Batch flushed")
}

// Close stops accepting pings and waits for the queue to drain.
func (a *Appender) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	close(a.done)
	a.wg.Wait()
	return nil
}

// QueueDepth reports the number of pings waiting to be flushed.
func (a *Appender) QueueDepth() int {
	return len(a.queue)
}
