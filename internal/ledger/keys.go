package ledger

import "fmt"

// Logical key space. Balances are the source of truth; the leaderboard sorted
// set is a derived index over them.
//
//	user:<id>               JSON user record
//	bal:<id>                integer balance
//	daily:<id>:<YYYY-MM-DD> integer units credited that day
//	ref_claimed:<invitee>   inviter id, written at most once
//	lb                      sorted set, score=balance member=user id
const (
	keyUserPattern       = "user:%s"
	keyBalancePattern    = "bal:%s"
	keyDailyPattern      = "daily:%s:%s"
	keyRefClaimedPattern = "ref_claimed:%s"
	keyLeaderboard       = "lb"
)

func userKey(id string) string {
	return fmt.Sprintf(keyUserPattern, id)
}

func balanceKey(id string) string {
	return fmt.Sprintf(keyBalancePattern, id)
}

func dailyKey(id, day string) string {
	return fmt.Sprintf(keyDailyPattern, id, day)
}

func refClaimedKey(inviteeID string) string {
	return fmt.Sprintf(keyRefClaimedPattern, inviteeID)
}
