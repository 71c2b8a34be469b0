// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/acmiyaguchi/telemetry-churn/internal/churn"
	"github.com/acmiyaguchi/telemetry-churn/internal/metrics"
	"github.com/acmiyaguchi/telemetry-churn/internal/models"
)

// InsertPings writes a batch of pings inside a single transaction. Pings
// without a submission date are skipped; the returned count is the number of
// rows actually written.
func (db *DB) InsertPings(ctx context.Context, pings []models.Ping) (int, error) {
	if len(pings) == 0 {
		return 0, nil
	}

	start := time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO pings (
		client_id, submission_date_s3, subsession_start_date, subsession_length,
		profile_creation_date, channel, normalized_channel, app_version,
		country, locale, distribution_id, default_search_engine,
		attribution_source, attribution_medium, attribution_campaign, attribution_content,
		sync_configured, sync_count_desktop, sync_count_mobile,
		event_timestamp, total_uri_count, unique_domains_count
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer closeWithLog(stmt, "prepared statement")

	inserted := 0
	for i := range pings {
		p := &pings[i]
		if p.SubmissionDateS3 == "" {
			continue
		}

		var pcd sql.NullInt64
		if p.ProfileCreationDate != nil {
			pcd = sql.NullInt64{Int64: *p.ProfileCreationDate, Valid: true}
		}
		var syncConfigured sql.NullBool
		if p.SyncConfigured != nil {
			syncConfigured = sql.NullBool{Bool: *p.SyncConfigured, Valid: true}
		}

		var attrSource, attrMedium, attrCampaign, attrContent sql.NullString
		if p.Attribution != nil {
			attrSource = nullableString(p.Attribution.Source)
			attrMedium = nullableString(p.Attribution.Medium)
			attrCampaign = nullableString(p.Attribution.Campaign)
			attrContent = nullableString(p.Attribution.Content)
		}

		if _, err := stmt.ExecContext(ctx,
			p.ClientID, p.SubmissionDateS3, nullableString(p.SubsessionStartDate), p.SubsessionLength,
			pcd, nullableString(p.Channel), nullableString(p.NormalizedChannel), nullableString(p.AppVersion),
			nullableString(p.Country), nullableString(p.Locale), nullableString(p.DistributionID), nullableString(p.DefaultSearchEngine),
			attrSource, attrMedium, attrCampaign, attrContent,
			syncConfigured, p.SyncCountDesktop, p.SyncCountMobile,
			p.Timestamp, p.TotalURICount, p.UniqueDomainsCount,
		); err != nil {
			metrics.RecordDBQuery("INSERT", "pings", time.Since(start), err)
			return inserted, fmt.Errorf("failed to insert ping: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		metrics.RecordDBQuery("INSERT", "pings", time.Since(start), err)
		return 0, fmt.Errorf("failed to commit ping batch: %w", err)
	}

	metrics.RecordDBQuery("INSERT", "pings", time.Since(start), nil)
	return inserted, nil
}

// EligiblePings loads pings whose submission date falls in the 17-day window
// of the given week. This is a coarse prefilter: the aggregator re-checks
// both windows, so rows at the boundary are cheap to include here.
//
// Compact YYYYMMDD dates compare correctly as strings, which keeps the
// window predicate sargable against the submission date index.
func (db *DB) EligiblePings(ctx context.Context, weekStart string) ([]models.Ping, error) {
	ws, err := churn.ParseWeekStart(weekStart)
	if err != nil {
		return nil, err
	}
	windowEnd := churn.FormatWeekStart(ws.AddDate(0, 0, churn.SubmissionWindowDays))

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `SELECT
		client_id, submission_date_s3, subsession_start_date, subsession_length,
		profile_creation_date, channel, normalized_channel, app_version,
		country, locale, distribution_id, default_search_engine,
		attribution_source, attribution_medium, attribution_campaign, attribution_content,
		sync_configured, sync_count_desktop, sync_count_mobile,
		event_timestamp, total_uri_count, unique_domains_count
	FROM pings
	WHERE submission_date_s3 >= ? AND submission_date_s3 <= ?`,
		weekStart, windowEnd)
	metrics.RecordDBQuery("SELECT", "pings", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query eligible pings: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var pings []models.Ping
	for rows.Next() {
		p, err := scanPing(rows)
		if err != nil {
			return nil, err
		}
		pings = append(pings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pings: %w", err)
	}
	return pings, nil
}

// scanPing reconstructs a models.Ping from a pings row.
func scanPing(rows *sql.Rows) (models.Ping, error) {
	var p models.Ping
	var subsessionStart, channel, normalizedChannel, appVersion sql.NullString
	var country, locale, distributionID, searchEngine sql.NullString
	var attrSource, attrMedium, attrCampaign, attrContent sql.NullString
	var pcd sql.NullInt64
	var syncConfigured sql.NullBool

	if err := rows.Scan(
		&p.ClientID, &p.SubmissionDateS3, &subsessionStart, &p.SubsessionLength,
		&pcd, &channel, &normalizedChannel, &appVersion,
		&country, &locale, &distributionID, &searchEngine,
		&attrSource, &attrMedium, &attrCampaign, &attrContent,
		&syncConfigured, &p.SyncCountDesktop, &p.SyncCountMobile,
		&p.Timestamp, &p.TotalURICount, &p.UniqueDomainsCount,
	); err != nil {
		return p, fmt.Errorf("failed to scan ping: %w", err)
	}

	p.SubsessionStartDate = subsessionStart.String
	p.Channel = channel.String
	p.NormalizedChannel = normalizedChannel.String
	p.AppVersion = appVersion.String
	p.Country = country.String
	p.Locale = locale.String
	p.DistributionID = distributionID.String
	p.DefaultSearchEngine = searchEngine.String

	if pcd.Valid {
		v := pcd.Int64
		p.ProfileCreationDate = &v
	}
	if syncConfigured.Valid {
		v := syncConfigured.Bool
		p.SyncConfigured = &v
	}
	if attrSource.Valid || attrMedium.Valid || attrCampaign.Valid || attrContent.Valid {
		p.Attribution = &models.Attribution{
			Source:   attrSource.String,
			Medium:   attrMedium.String,
			Campaign: attrCampaign.String,
			Content:  attrContent.String,
		}
	}
	return p, nil
}

// CountPings returns the total number of stored pings.
func (db *DB) CountPings(ctx context.Context) (int64, error) {
	var count int64
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM pings").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pings: %w", err)
	}
	return count, nil
}

// nullableString maps the empty string to SQL NULL so absent dimensions stay
// distinguishable in the raw store.
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
