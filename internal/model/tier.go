package model

import (
	"time"
)

// CreditTier holds the quota limits of one provider subscription plan.
// ResetTime is the time-of-day offset from local midnight at which the
// daily window resets.
type CreditTier struct {
	DailyLimit  int
	MinuteLimit int
	ResetTime   time.Duration
	PlanName    string
}

// TierFree is the provider's free plan: 800 credits per day, 8 per minute,
// resetting at midnight.
var TierFree = CreditTier{
	DailyLimit:  800,
	MinuteLimit: 8,
	ResetTime:   0,
	PlanName:    "Basic",
}

// TimeUntilReset returns the duration from now until the next occurrence of
// the tier's daily reset. When today's reset has already passed, the next
// occurrence is tomorrow's.
func (t CreditTier) TimeUntilReset(now time.Time) time.Duration {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	reset := midnight.Add(t.ResetTime)
	if !reset.After(now) {
		reset = reset.AddDate(0, 0, 1)
	}
	return reset.Sub(now)
}
