// Package gamification holds the rules that turn user actions into points,
// levels, streaks, daily challenges and achievements. It does no I/O; the
// services package loads state, applies these rules and persists the result.
package gamification

import "time"

const dayKeyLayout = "2006-01-02"

// DayOf returns local midnight of t, in t's own location.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayKey formats the calendar day of t as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.Format(dayKeyLayout)
}

// ParseDayKey is the inverse of DayKey in the given location.
func ParseDayKey(key string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dayKeyLayout, key, loc)
}

// DaysBetween counts calendar days from a to b as seen in b's location.
// The count is negative when a falls on a later day than b.
func DaysBetween(a, b time.Time) int {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	// Compare dates on a UTC grid so DST transitions don't produce 23h/25h days.
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
