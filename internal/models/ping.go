// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package models

// Attribution is the optional acquisition-funnel sub-record attached to a
// ping. Any field, or the whole structure, may be absent.
type Attribution struct {
	Source   string `json:"source,omitempty"`
	Medium   string `json:"medium,omitempty"`
	Campaign string `json:"campaign,omitempty"`
	Content  string `json:"content,omitempty"`
}

// Ping is one telemetry submission from a client profile.
//
// All fields except SubmissionDateS3 are nullable in the upstream schema.
// String fields use the empty string for absent values; numeric fields that
// must distinguish absent from zero use pointers.
//
// Date representations follow the wire format:
//   - SubmissionDateS3: server-received date, "YYYYMMDD"
//   - SubsessionStartDate: client-observed date, "YYYY-MM-DD" (may carry a
//     time suffix from older clients; only the date prefix is meaningful)
//   - ProfileCreationDate: days since the Unix epoch
//   - Timestamp: microseconds since the Unix epoch
type Ping struct {
	AppVersion          string       `json:"app_version,omitempty"`
	Attribution         *Attribution `json:"attribution,omitempty"`
	Channel             string       `json:"channel,omitempty"`
	ClientID            string       `json:"client_id,omitempty"`
	Country             string       `json:"country,omitempty"`
	DefaultSearchEngine string       `json:"default_search_engine,omitempty"`
	DistributionID      string       `json:"distribution_id,omitempty"`
	Locale              string       `json:"locale,omitempty"`
	NormalizedChannel   string       `json:"normalized_channel,omitempty"`
	ProfileCreationDate *int64       `json:"profile_creation_date,omitempty"`
	SubmissionDateS3    string       `json:"submission_date_s3"`
	SubsessionLength    int64        `json:"subsession_length,omitempty"`
	SubsessionStartDate string       `json:"subsession_start_date,omitempty"`
	SyncConfigured      *bool        `json:"sync_configured,omitempty"`
	SyncCountDesktop    int32        `json:"sync_count_desktop,omitempty"`
	SyncCountMobile     int32        `json:"sync_count_mobile,omitempty"`
	Timestamp           int64        `json:"timestamp,omitempty"`
	TotalURICount       int32        `json:"total_uri_count,omitempty"`
	UniqueDomainsCount  int32        `json:"unique_domains_count,omitempty"`
}

// AttributionField returns the named attribution field, or the empty string
// when the attribution record or the field itself is absent.
func (p *Ping) AttributionField(get func(*Attribution) string) string {
	if p.Attribution == nil {
		return ""
	}
	return get(p.Attribution)
}

// Medium returns attribution.medium, or "" when absent.
func (p *Ping) Medium() string {
	return p.AttributionField(func(a *Attribution) string { return a.Medium })
}

// Content returns attribution.content, or "" when absent.
func (p *Ping) Content() string {
	return p.AttributionField(func(a *Attribution) string { return a.Content })
}
