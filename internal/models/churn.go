// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package models

// ChurnSummary is one aggregated output row for a target week: the usage and
// profile counts for a single (cohort week, channel, dimension) group.
//
// Dimension columns are never empty; absent input values are coalesced to
// the "unknown" sentinel before grouping, so a summary row can be keyed and
// joined without null handling downstream.
type ChurnSummary struct {
	// WeekStart is the target retention week in "YYYYMMDD" form.
	WeekStart string `json:"week_start"`

	// CurrentWeek is the cohort offset: whole weeks between the profile
	// creation date and the target week start.
	CurrentWeek int64 `json:"current_week"`

	Channel             string `json:"channel"`
	Country             string `json:"country"`
	Medium              string `json:"medium"`
	Content             string `json:"content"`
	DistributionID      string `json:"distribution_id"`
	DefaultSearchEngine string `json:"default_search_engine"`
	Locale              string `json:"locale"`

	// NProfiles is the count of distinct clients in the group.
	NProfiles int64 `json:"n_profiles"`

	// UsageHours is the sum of subsession lengths across all eligible pings
	// in the group, converted from seconds to hours. Garbage (negative or
	// absurd) lengths are summed as-is.
	UsageHours float64 `json:"usage_hours"`
}

// GroupKey identifies the dimension tuple of a summary row within a week.
// Two rows of the same week with equal keys describe the same group.
type GroupKey struct {
	CurrentWeek         int64
	Channel             string
	Country             string
	Medium              string
	Content             string
	DistributionID      string
	DefaultSearchEngine string
	Locale              string
}

// Key returns the dimension tuple of the summary row.
func (s *ChurnSummary) Key() GroupKey {
	return GroupKey{
		CurrentWeek:         s.CurrentWeek,
		Channel:             s.Channel,
		Country:             s.Country,
		Medium:              s.Medium,
		Content:             s.Content,
		DistributionID:      s.DistributionID,
		DefaultSearchEngine: s.DefaultSearchEngine,
		Locale:              s.Locale,
	}
}
