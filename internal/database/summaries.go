// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/acmiyaguchi/telemetry-churn/internal/metrics"
	"github.com/acmiyaguchi/telemetry-churn/internal/models"
)

// ReplaceWeekSummaries atomically replaces all summary rows for a week.
// Delete-then-insert in one transaction makes recomputation idempotent:
// rerunning a week converges to the same stored rows.
func (db *DB) ReplaceWeekSummaries(ctx context.Context, weekStart string, summaries []models.ChurnSummary) error {
	start := time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM churn_summaries WHERE week_start = ?", weekStart); err != nil {
		metrics.RecordDBQuery("DELETE", "churn_summaries", time.Since(start), err)
		return fmt.Errorf("failed to clear week %s: %w", weekStart, err)
	}

	if len(summaries) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO churn_summaries (
			week_start, current_week, channel, country, medium, content,
			distribution_id, default_search_engine, locale, n_profiles, usage_hours
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare summary insert: %w", err)
		}
		defer closeWithLog(stmt, "prepared statement")

		for i := range summaries {
			s := &summaries[i]
			if _, err := stmt.ExecContext(ctx,
				s.WeekStart, s.CurrentWeek, s.Channel, s.Country, s.Medium, s.Content,
				s.DistributionID, s.DefaultSearchEngine, s.Locale, s.NProfiles, s.UsageHours,
			); err != nil {
				metrics.RecordDBQuery("INSERT", "churn_summaries", time.Since(start), err)
				return fmt.Errorf("failed to insert summary row: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		metrics.RecordDBQuery("INSERT", "churn_summaries", time.Since(start), err)
		return fmt.Errorf("failed to commit summaries for week %s: %w", weekStart, err)
	}

	metrics.RecordDBQuery("INSERT", "churn_summaries", time.Since(start), nil)
	return nil
}

// SummaryFilter narrows and paginates summary queries. Zero values mean
// "no constraint"; Limit 0 means no limit.
type SummaryFilter struct {
	WeekStart string
	Channel   string
	Country   string
	Limit     int
	Offset    int
}

// Summaries returns stored churn rows matching the filter, ordered by week
// then group key so pagination is stable.
func (db *DB) Summaries(ctx context.Context, filter SummaryFilter) ([]models.ChurnSummary, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT week_start, current_week, channel, country, medium, content,
		distribution_id, default_search_engine, locale, n_profiles, usage_hours
	FROM churn_summaries`)

	var conditions []string
	var args []interface{}
	if filter.WeekStart != "" {
		conditions = append(conditions, "week_start = ?")
		args = append(args, filter.WeekStart)
	}
	if filter.Channel != "" {
		conditions = append(conditions, "channel = ?")
		args = append(args, filter.Channel)
	}
	if filter.Country != "" {
		conditions = append(conditions, "country = ?")
		args = append(args, filter.Country)
	}
	if len(conditions) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conditions, " AND "))
	}

	sb.WriteString(` ORDER BY week_start, current_week, channel, country, medium,
		content, distribution_id, default_search_engine, locale`)
	if filter.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		sb.WriteString(" OFFSET ?")
		args = append(args, filter.Offset)
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, sb.String(), args...)
	metrics.RecordDBQuery("SELECT", "churn_summaries", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var summaries []models.ChurnSummary
	for rows.Next() {
		var s models.ChurnSummary
		if err := rows.Scan(
			&s.WeekStart, &s.CurrentWeek, &s.Channel, &s.Country, &s.Medium, &s.Content,
			&s.DistributionID, &s.DefaultSearchEngine, &s.Locale, &s.NProfiles, &s.UsageHours,
		); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate summaries: %w", err)
	}
	return summaries, nil
}

// ComputedWeeks returns the distinct week starts present in the summary
// table, most recent first.
func (db *DB) ComputedWeeks(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT DISTINCT week_start FROM churn_summaries ORDER BY week_start DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query computed weeks: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var weeks []string
	for rows.Next() {
		var week string
		if err := rows.Scan(&week); err != nil {
			return nil, fmt.Errorf("failed to scan week: %w", err)
		}
		weeks = append(weeks, week)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate weeks: %w", err)
	}
	return weeks, nil
}
