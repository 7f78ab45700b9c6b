package gamification

import "time"

// Streak is the activity streak portion of a user's progress.
type Streak struct {
	Count        int
	LastActivity *time.Time
}

// AdvanceStreak applies one qualifying activity at now.
//
// First activity starts the streak at 1. Activity on the same calendar day
// leaves it alone, except that a zero count is lifted to 1. The next day
// extends it by one; any longer gap restarts it at 1.
func AdvanceStreak(s Streak, now time.Time) Streak {
	if s.LastActivity == nil {
		t := now
		return Streak{Count: 1, LastActivity: &t}
	}

	diff := DaysBetween(*s.LastActivity, now)
	switch {
	case diff <= 0:
		// A last activity in the future (clock skew) counts as today.
		if s.Count < 1 {
			s.Count = 1
		}
		return s
	case diff == 1:
		t := now
		return Streak{Count: s.Count + 1, LastActivity: &t}
	default:
		t := now
		return Streak{Count: 1, LastActivity: &t}
	}
}
