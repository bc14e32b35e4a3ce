package model

import (
	"fmt"
	"time"
)

// Interval is a provider bar size. The string values are the provider's wire
// tokens and double as the interval half of the provider+interval identity.
type Interval string

const (
	IntervalOneMin       Interval = "1min"
	IntervalFiveMin      Interval = "5min"
	IntervalFifteenMin   Interval = "15min"
	IntervalThirtyMin    Interval = "30min"
	IntervalFortyFiveMin Interval = "45min"
	IntervalOneHour      Interval = "1hour"
	IntervalTwoHour      Interval = "2hour"
	IntervalFourHour     Interval = "4hour"
	IntervalOneDay       Interval = "1day"
	IntervalOneWeek      Interval = "1week"
	IntervalOneMonth     Interval = "1month"
)

// Calendar intervals use nominal durations (30-day month).
var intervalDurations = map[Interval]time.Duration{
	IntervalOneMin:       time.Minute,
	IntervalFiveMin:      5 * time.Minute,
	IntervalFifteenMin:   15 * time.Minute,
	IntervalThirtyMin:    30 * time.Minute,
	IntervalFortyFiveMin: 45 * time.Minute,
	IntervalOneHour:      time.Hour,
	IntervalTwoHour:      2 * time.Hour,
	IntervalFourHour:     4 * time.Hour,
	IntervalOneDay:       24 * time.Hour,
	IntervalOneWeek:      7 * 24 * time.Hour,
	IntervalOneMonth:     30 * 24 * time.Hour,
}

// Intervals lists every supported interval, shortest first
func Intervals() []Interval {
	return []Interval{
		IntervalOneMin,
		IntervalFiveMin,
		IntervalFifteenMin,
		IntervalThirtyMin,
		IntervalFortyFiveMin,
		IntervalOneHour,
		IntervalTwoHour,
		IntervalFourHour,
		IntervalOneDay,
		IntervalOneWeek,
		IntervalOneMonth,
	}
}

// ParseInterval validates a raw interval token
func ParseInterval(s string) (Interval, error) {
	interval := Interval(s)
	if _, ok := intervalDurations[interval]; !ok {
		return "", fmt.Errorf("unsupported interval: %q", s)
	}
	return interval, nil
}

// Duration returns the nominal length of one bar
func (i Interval) Duration() time.Duration {
	return intervalDurations[i]
}

func (i Interval) String() string {
	return string(i)
}
