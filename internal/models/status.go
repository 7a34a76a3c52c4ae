package models

import "strings"

// Status buckets used for discovery breakdowns
const (
	BucketFinal      = "final"
	BucketInProgress = "in_progress"
	BucketScheduled  = "scheduled"
	BucketPostponed  = "postponed"
	BucketOther      = "other"
)

// IsFinalStatus reports whether a detailed game status is terminal.
// The feed uses both the long form and the coded form.
func IsFinalStatus(status string) bool {
	return status == "Final" || status == "F"
}

// IsNotStartedStatus reports whether a game has not begun play
func IsNotStartedStatus(status string) bool {
	return status == "Scheduled" || status == "Pre-Game"
}

// StatusBucket classifies a detailed status for reporting
func StatusBucket(status string) string {
	switch {
	case IsFinalStatus(status):
		return BucketFinal
	case strings.Contains(status, "Progress") || strings.Contains(status, "Live"):
		return BucketInProgress
	case IsNotStartedStatus(status) || status == "Warmup":
		return BucketScheduled
	case strings.Contains(status, "Postponed") || strings.Contains(status, "Suspended"):
		return BucketPostponed
	default:
		return BucketOther
	}
}
