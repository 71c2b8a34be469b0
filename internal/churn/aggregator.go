// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package churn

import (
	"sort"
	"time"

	"github.com/acmiyaguchi/telemetry-churn/internal/models"
)

// group accumulates the reduce state for one output dimension tuple.
type group struct {
	clients map[string]struct{}
	seconds int64
}

// ComputeChurnWeek aggregates churn for the retention week starting at
// weekStart ("YYYYMMDD" form). The input collection is unordered and may be
// empty; ineligible pings contribute nothing. One ChurnSummary is emitted
// per non-empty dimension group, sorted by group key so repeated runs over
// the same input produce identical output.
//
// The only error condition is a malformed weekStart; malformed ping fields
// are data noise and are handled by dropping or coalescing, never by
// failing the run.
func ComputeChurnWeek(pings []models.Ping, weekStart string) ([]models.ChurnSummary, error) {
	ws, err := ParseWeekStart(weekStart)
	if err != nil {
		return nil, err
	}

	wsDays := EpochDays(ws)
	submissionEnd := ws.AddDate(0, 0, SubmissionWindowDays)
	retentionEnd := ws.AddDate(0, 0, RetentionWindowDays)

	groups := make(map[models.GroupKey]*group)

	for i := range pings {
		p := &pings[i]

		sub, err := time.Parse(WeekStartLayout, p.SubmissionDateS3)
		if err != nil || sub.Before(ws) || sub.After(submissionEnd) {
			continue
		}

		ssd, ok := ParseClientDate(p.SubsessionStartDate)
		if !ok || ssd.Before(ws) || !ssd.Before(retentionEnd) {
			continue
		}

		// Absent profile creation dates bucket into the target week's own
		// cohort rather than dropping the ping.
		pcdDays := wsDays
		if p.ProfileCreationDate != nil {
			pcdDays = *p.ProfileCreationDate
		}

		key := models.GroupKey{
			CurrentWeek:         CohortWeeks(wsDays, pcdDays),
			Channel:             CompositeChannel(p.NormalizedChannel, p.DistributionID),
			Country:             unknownIfEmpty(p.Country),
			Medium:              unknownIfEmpty(p.Medium()),
			Content:             unknownIfEmpty(p.Content()),
			DistributionID:      unknownIfEmpty(p.DistributionID),
			DefaultSearchEngine: unknownIfEmpty(p.DefaultSearchEngine),
			Locale:              unknownIfEmpty(p.Locale),
		}

		g := groups[key]
		if g == nil {
			g = &group{clients: make(map[string]struct{})}
			groups[key] = g
		}
		g.clients[p.ClientID] = struct{}{}
		// Negative and absurd lengths are summed as-is; clamping here would
		// silently change totals relative to the upstream dataset.
		g.seconds += p.SubsessionLength
	}

	summaries := make([]models.ChurnSummary, 0, len(groups))
	for key, g := range groups {
		summaries = append(summaries, models.ChurnSummary{
			WeekStart:           weekStart,
			CurrentWeek:         key.CurrentWeek,
			Channel:             key.Channel,
			Country:             key.Country,
			Medium:              key.Medium,
			Content:             key.Content,
			DistributionID:      key.DistributionID,
			DefaultSearchEngine: key.DefaultSearchEngine,
			Locale:              key.Locale,
			NProfiles:           int64(len(g.clients)),
			UsageHours:          float64(g.seconds) / 3600,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return lessKey(summaries[i].Key(), summaries[j].Key())
	})

	return summaries, nil
}

// lessKey orders group keys field by field, cohort week first.
func lessKey(a, b models.GroupKey) bool {
	if a.CurrentWeek != b.CurrentWeek {
		return a.CurrentWeek < b.CurrentWeek
	}
	if a.Channel != b.Channel {
		return a.Channel < b.Channel
	}
	if a.Country != b.Country {
		return a.Country < b.Country
	}
	if a.Medium != b.Medium {
		return a.Medium < b.Medium
	}
	if a.Content != b.Content {
		return a.Content < b.Content
	}
	if a.DistributionID != b.DistributionID {
		return a.DistributionID < b.DistributionID
	}
	if a.DefaultSearchEngine != b.DefaultSearchEngine {
		return a.DefaultSearchEngine < b.DefaultSearchEngine
	}
	return a.Locale < b.Locale
}
