// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package churn

// Unknown is the sentinel substituted for every absent optional dimension.
// Output rows never carry empty or null dimension values.
const Unknown = "unknown"

// CompositeChannel folds the release channel and distribution id into a
// single label for campaign-tagged (CCK) builds: a release-channel ping from
// the "mozilla42" distribution reports as "release-cck-mozilla42". Builds
// without a distribution id keep the bare channel.
func CompositeChannel(normalizedChannel, distributionID string) string {
	ch := unknownIfEmpty(normalizedChannel)
	if distributionID == "" {
		return ch
	}
	return ch + "-cck-" + distributionID
}

// unknownIfEmpty is the uniform default-if-absent policy applied to every
// optional dimension at output time.
func unknownIfEmpty(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}
