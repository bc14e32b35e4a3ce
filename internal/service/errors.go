package service

import (
	"errors"
	"fmt"
	"time"
)

// Terminal error conditions surfaced to callers. None are retried
// internally; the values distinguish "ask for a different symbol" from
// "ask for a different range" from "upstream problem, maybe retry".
var (
	// ErrSymbolNotFound means the symbol is not in the provider's
	// plan-filtered universe
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrUpstreamRequestFailed means the provider call failed or returned a
	// non-success status
	ErrUpstreamRequestFailed = errors.New("upstream request failed")

	// ErrInvalidDateRange matches any *DateRangeError via errors.Is
	ErrInvalidDateRange = errors.New("invalid date range")
)

// DateRangeReason identifies which validation rule a request violated
type DateRangeReason string

const (
	ReasonStartInFuture         DateRangeReason = "start_in_future"
	ReasonStartAfterEnd         DateRangeReason = "start_after_end"
	ReasonStartBeforeEarliest   DateRangeReason = "start_before_earliest"
	ReasonEndInFuture           DateRangeReason = "end_in_future"
	ReasonEndAfterLatestSettled DateRangeReason = "end_after_latest_settled"
)

// DateRangeError reports a rejected [start, end] request range along with
// the specific rule it violated
type DateRangeError struct {
	Reason DateRangeReason
	Start  time.Time
	End    time.Time
}

func (e *DateRangeError) Error() string {
	switch e.Reason {
	case ReasonStartInFuture:
		return "start cannot be after the current date"
	case ReasonStartAfterEnd:
		return fmt.Sprintf("start cannot be after end %s", e.End.Format("2006-01-02"))
	case ReasonStartBeforeEarliest:
		return "start cannot be before the earliest date available"
	case ReasonEndInFuture:
		return "end cannot be after the current date"
	case ReasonEndAfterLatestSettled:
		return "end cannot be after the latest settled trading day"
	default:
		return "invalid date range"
	}
}

// Is makes errors.Is(err, ErrInvalidDateRange) match every reason
func (e *DateRangeError) Is(target error) bool {
	return target == ErrInvalidDateRange
}
