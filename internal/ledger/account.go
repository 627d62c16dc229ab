// Package ledger owns the per-user balances of both currencies and their
// durable snapshot file.
package ledger

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Namespace selects one of the two independent currency books.
type Namespace string

const (
	// NamespaceEconomy is the primary currency. Balances may go negative.
	NamespaceEconomy Namespace = "economy"
	// NamespaceShulk is the secondary ShulkCredit currency, floored at zero.
	NamespaceShulk Namespace = "shulk"
)

// ClaimTimeLayout is the ISO-8601 layout written for last_claim values.
const ClaimTimeLayout = "2006-01-02T15:04:05.000000-07:00"

var (
	// ErrUnknownNamespace is returned for a namespace other than economy or shulk.
	ErrUnknownNamespace = errors.New("unknown ledger namespace")
	// ErrNotLoaded is returned when a mutation is attempted before Load.
	ErrNotLoaded = errors.New("ledger is not loaded")
	// ErrCorruptLedger wraps decode failures of an existing ledger file.
	ErrCorruptLedger = errors.New("ledger file is corrupt")
	// ErrBalanceOverflow is returned when a delta would overflow int64.
	ErrBalanceOverflow = errors.New("balance overflow")
)

// Validate reports whether ns is a known namespace.
func (ns Namespace) Validate() error {
	switch ns {
	case NamespaceEconomy, NamespaceShulk:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownNamespace, string(ns))
	}
}

// Account is one user's record in a namespace.
type Account struct {
	Balance int64
	// LastClaim is the raw stored timestamp; empty when the user never claimed.
	LastClaim string
}

// ClaimedAt parses LastClaim. It reports false when the user never claimed or
// the stored value is not a valid timestamp.
func (a Account) ClaimedAt() (time.Time, bool) {
	return ParseClaimTime(a.LastClaim)
}

// FormatClaimTime renders t the way last_claim values are stored.
func FormatClaimTime(t time.Time) string {
	return t.UTC().Format(ClaimTimeLayout)
}

var naiveClaimLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseClaimTime accepts RFC 3339 timestamps with any fractional precision,
// and offset-less ones which are taken as UTC.
func ParseClaimTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), true
	}

	for _, layout := range naiveClaimLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func userKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
