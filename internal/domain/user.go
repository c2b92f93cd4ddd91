// Package domain defines the core types shared across the rewards service.
package domain

import "time"

// User is a player profile stored in the ledger. Created on first contact,
// never deleted; only the display name may be refreshed afterwards.
type User struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joined_at"`
}

// Identity is the authenticated result of verifying a Telegram WebApp
// initData blob.
type Identity struct {
	ID   string
	Name string
}

// ClaimResult describes what a claim actually credited after quota clipping.
type ClaimResult struct {
	CreditedUnits int64  `json:"creditedQ"`
	Coins         int64  `json:"coins"`
	Today         int64  `json:"today"`
	DailyCap      int64  `json:"dailyCap"`
	Balance       int64  `json:"balance"`
	Message       string `json:"message,omitempty"`
}

// LeaderboardEntry is one row of the rank-ordered balance index. The index is
// a derived view; Balance here may lag the authoritative counter.
type LeaderboardEntry struct {
	UserID  string `json:"user_id"`
	Name    string `json:"name,omitempty"`
	Balance int64  `json:"balance"`
}
