package model

import (
	"fmt"
	"strings"
	"time"
)

// Timeframe windows leaderboard activity.
type Timeframe string

const (
	TimeframeDaily   Timeframe = "daily"
	TimeframeWeekly  Timeframe = "weekly"
	TimeframeMonthly Timeframe = "monthly"
	TimeframeAll     Timeframe = "all"
)

// ParseTimeframe parses a timeframe name.
func ParseTimeframe(input string) (Timeframe, error) {
	switch Timeframe(strings.ToLower(strings.TrimSpace(input))) {
	case TimeframeDaily:
		return TimeframeDaily, nil
	case TimeframeWeekly:
		return TimeframeWeekly, nil
	case TimeframeMonthly:
		return TimeframeMonthly, nil
	case TimeframeAll, "":
		return TimeframeAll, nil
	default:
		return "", fmt.Errorf("unsupported timeframe: %s", input)
	}
}

// Period returns the trailing window length; zero means unbounded.
func (t Timeframe) Period() time.Duration {
	switch t {
	case TimeframeDaily:
		return 24 * time.Hour
	case TimeframeWeekly:
		return 7 * 24 * time.Hour
	case TimeframeMonthly:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}
