package compliance

import (
	"strings"
	"time"
)

// UrgencyLevel is the compliance urgency tier derived from an expiration date.
type UrgencyLevel string

const (
	UrgencyCritical UrgencyLevel = "critical"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyMedium   UrgencyLevel = "medium"
	UrgencyLow      UrgencyLevel = "low"
)

const dayMillis = 24 * 60 * 60 * 1000

// UrgencyFacts are the derived expiration facts merged onto documents for
// dashboard cards, notifications, and the audit score. Documents without an
// expiration date are treated as never expiring: valid now, nil days, nil tier.
type UrgencyFacts struct {
	IsValidNow          bool          `json:"isValidNow"`
	DaysUntilExpiration *int          `json:"daysUntilExpiration"`
	UrgencyLevel        *UrgencyLevel `json:"urgencyLevel"`
}

// ComputeUrgency derives validity and urgency from an expiration date and the
// current moment. Pure and deterministic: safe to call concurrently, owns no
// state. An empty or unparseable expiration yields the "never expires" facts.
//
// Days until expiration is the ceiling of the millisecond difference divided
// by a day's milliseconds, so a document expiring in a fraction of a day
// still reads "1 day" and one that expired a fraction of a day ago reads "0".
func ComputeUrgency(expirationDate string, now time.Time) UrgencyFacts {
	expiration, ok := parseExpiration(expirationDate)
	if !ok {
		return UrgencyFacts{IsValidNow: true}
	}

	diffMillis := expiration.Sub(now).Milliseconds()
	days := ceilDiv(diffMillis, dayMillis)

	level := tierFor(days)
	return UrgencyFacts{
		IsValidNow:          days >= 0,
		DaysUntilExpiration: &days,
		UrgencyLevel:        &level,
	}
}

func tierFor(days int) UrgencyLevel {
	switch {
	case days <= 30: // includes already expired
		return UrgencyCritical
	case days <= 60:
		return UrgencyHigh
	case days <= 90:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// parseExpiration accepts RFC 3339 timestamps or bare ISO dates; bare dates
// anchor to UTC midnight.
func parseExpiration(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// ceilDiv divides with ceiling semantics for a positive divisor; Go's
// truncation toward zero already is the ceiling for negative dividends.
func ceilDiv(a, b int64) int {
	q := a / b
	if a%b > 0 {
		q++
	}
	return int(q)
}
