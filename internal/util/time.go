package util

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// NextMarketClose returns the next moment end-of-day quote data is expected:
// the next weekday at 4:30 PM New York time, in UTC. Used to schedule the
// daily collection job. Market holidays are not modeled; a holiday run simply
// finds no new bars.
func NextMarketClose(input time.Time) time.Time {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		log.Errorf("Failed to load location 'America/New_York': %v. Falling back to UTC.", err)
		loc = time.UTC
	}
	nowET := input.In(loc)

	next := time.Date(nowET.Year(), nowET.Month(), nowET.Day(), 16, 30, 0, 0, loc)
	if nowET.After(next) {
		next = next.AddDate(0, 0, 1)
	}
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}
	return next.UTC()
}

// NextMidnightUTC returns the first instant of the next UTC day. Used to
// schedule the daily summary roll-up, which covers the day just ended.
func NextMidnightUTC(input time.Time) time.Time {
	t := input.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}
