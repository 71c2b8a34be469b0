// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package etl

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/acmiyaguchi/telemetry-churn/internal/logging"
	"github.com/acmiyaguchi/telemetry-churn/internal/metrics"
	"github.com/acmiyaguchi/telemetry-churn/internal/models"
)

// backfillBatchSize is the number of pings written per transaction during a
// backfill load.
const backfillBatchSize = 1000

// maxNDJSONLineBytes bounds a single ping line; the default bufio limit of
// 64KB is too small for pings with large attribution payloads.
const maxNDJSONLineBytes = 4 << 20

// BackfillResult reports the outcome of an NDJSON load.
type BackfillResult struct {
	Loaded   int
	Rejected int
}

// LoadNDJSON streams a newline-delimited JSON ping dump into the database.
// Unparseable lines are counted and skipped, not fatal; a dump of historical
// telemetry always contains some malformed rows.
func (r *Runner) LoadNDJSON(ctx context.Context, path string) (*BackfillResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open backfill file: %w", err)
	}
	defer func() { _ = f.Close() }()

	log := logging.WithComponent("backfill")
	log.Info().Str("path", path).Msg("Backfill load started")

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxNDJSONLineBytes)

	result := &BackfillResult{}
	batch := make([]models.Ping, 0, backfillBatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := r.db.InsertPings(ctx, batch)
		if err != nil {
			return err
		}
		result.Loaded += n
		result.Rejected += len(batch) - n
		metrics.PingsReceived.WithLabelValues("backfill").Add(float64(n))
		batch = batch[:0]
		return nil
	}

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var p models.Ping
		if err := json.Unmarshal(raw, &p); err != nil {
			result.Rejected++
			metrics.PingsRejected.WithLabelValues("parse").Inc()
			log.Debug().Int("line", line).Err(err).Msg("Skipping malformed backfill line")
			continue
		}

		batch = append(batch, p)
		if len(batch) >= backfillBatchSize {
			if err := flush(); err != nil {
				return result, fmt.Errorf("failed to flush backfill batch at line %d: %w", line, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("failed to read backfill file: %w", err)
	}
	if err := flush(); err != nil {
		return result, fmt.Errorf("failed to flush final backfill batch: %w", err)
	}

	log.Info().
		Str("path", path).
		Int("loaded", result.Loaded).
		Int("rejected", result.Rejected).
		Msg("Backfill load complete")

	return result, nil
}
