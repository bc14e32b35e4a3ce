package service

import (
	"time"
)

// Provider reports the quota state of one wrapped market-data API. A new
// provider is a new implementation of this interface, not a variant of an
// existing one.
type Provider interface {
	// Name identifies the provider+interval pairing, e.g. "TwelveData_1day"
	Name() string
	// RequestLimit is the remaining daily request budget
	RequestLimit() int
	// RequestsRemaining is the remaining budget of the current minute window
	RequestsRemaining() int
	// TimeUntilReset is the duration until the daily window resets
	TimeUntilReset() time.Duration
}
