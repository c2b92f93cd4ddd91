// Package quota holds the daily earn-quota arithmetic. Clip is the single
// place where the policy is computed so it stays auditable in isolation.
package quota

import "time"

// Clip returns how many of the reported units may still be credited today.
// Reported values <= 0 yield 0; the result never pushes alreadyDone past cap.
func Clip(reported, alreadyDone, cap int64) int64 {
	if reported <= 0 {
		return 0
	}

	remaining := cap - alreadyDone
	if remaining <= 0 {
		return 0
	}

	if reported < remaining {
		return reported
	}
	return remaining
}

// Day renders the calendar day used for daily counter keys. Days roll over at
// UTC midnight regardless of the caller's locale.
func Day(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
