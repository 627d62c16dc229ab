// Package claim implements the daily reward claim: a role-derived payout
// granted at most once per cooldown window.
package claim

// PayoutTable maps a role identifier to its daily reward.
type PayoutTable map[int64]int64

// EligiblePayout returns the highest payout among roles. It reports false
// when none of the roles is in the table.
func (t PayoutTable) EligiblePayout(roles []int64) (int64, bool) {
	var (
		best  int64
		found bool
	)

	for _, role := range roles {
		amount, ok := t[role]
		if !ok {
			continue
		}
		if !found || amount > best {
			best = amount
			found = true
		}
	}

	return best, found
}
