// Package schedule implements the fixed interval ladder that decides when a
// card is due and how its step moves after a review. It is pure logic with no
// I/O so the policy can be tested apart from storage.
package schedule

import "time"

const day = 24 * time.Hour

// Intervals is the review ladder. A card at step i becomes due once
// Intervals[i] has elapsed since its last update. Each rung doubles the
// previous one, except the first, which makes new cards due immediately.
var Intervals = [...]time.Duration{
	0 * day,
	1 * day,
	2 * day,
	4 * day,
	8 * day,
	16 * day,
	32 * day,
	64 * day,
}

// Steps is the number of rungs on the ladder.
const Steps = len(Intervals)

// Clamp forces stepIndex into the valid ladder range. Writers clamp before
// persisting so stored step indexes always index Intervals.
func Clamp(stepIndex int) int {
	if stepIndex < 0 {
		return 0
	}
	if stepIndex >= Steps {
		return Steps - 1
	}
	return stepIndex
}

// IsDue reports whether a card at the given step, last updated at updatedAt,
// is due for review at now. stepIndex must be a valid ladder index.
func IsDue(stepIndex int, updatedAt, now time.Time) bool {
	return !now.Before(updatedAt.Add(Intervals[stepIndex]))
}

// NextStep returns the step a card moves to after a review. A pass advances
// one rung, saturating at the top. A fail drops the card to step 1, not 0:
// a freshly failed card should come back tomorrow, not instantly.
func NextStep(stepIndex int, passed bool) int {
	if passed {
		if stepIndex+1 >= Steps {
			return Steps - 1
		}
		return stepIndex + 1
	}
	return 1
}
