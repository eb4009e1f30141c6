package schedule

import "time"

// ResolvedSession is one concrete occurrence of a slot on a calendar date.
// It is derived on every read and never persisted.
type ResolvedSession struct {
	ClassID   string
	Date      string // "YYYY-MM-DD"
	StartTime string // "HH:MM"
	EndTime   string // "HH:MM"
}

const dateLayout = "2006-01-02"

// SessionsForDate resolves the sessions a class holds on the given date.
//
// The weekday is computed from a UTC-anchored reconstruction of the date.
// This is a correctness requirement, not a stylistic choice: parsing a bare
// "YYYY-MM-DD" in the server's local zone can roll the weekday to the
// previous or next calendar day depending on the zone offset, and the same
// class row must resolve identically on every host.
//
// A slot without an end time takes start + DurationMinutes; sessions are
// assumed to stay within one calendar day. Dates outside the class's
// inclusive [StartDate, EndDate] term resolve to nothing regardless of
// weekday. Malformed input degrades to an empty result.
func SessionsForDate(class Class, dateISO string) []ResolvedSession {
	weekday, ok := weekdayOf(dateISO)
	if !ok {
		return nil
	}
	if !withinTerm(class, dateISO) {
		return nil
	}

	var sessions []ResolvedSession
	for _, slot := range class.Slots {
		if slot.Day != weekday {
			continue
		}
		start, end, ok := slotWindow(slot, class.DurationMinutes)
		if !ok {
			continue
		}
		sessions = append(sessions, ResolvedSession{
			ClassID:   class.ID,
			Date:      dateISO,
			StartTime: FormatClock(start),
			EndTime:   FormatClock(end),
		})
	}
	return sessions
}

// MatchSession finds the session active at the requested "HH:MM" label on
// the given date.
//
// A label matches a slot when it falls within [start, end] inclusive of both
// bounds; a label equal to the slot's exact start always matches. When slots
// overlap, the first matching slot in schedule order wins. Overlap should
// not occur in valid data, but the pick must stay deterministic; rejecting
// overlaps instead belongs to validation, not matching.
func MatchSession(class Class, dateISO, label string) (ResolvedSession, bool) {
	requested, ok := ParseClock(label)
	if !ok {
		return ResolvedSession{}, false
	}
	weekday, ok := weekdayOf(dateISO)
	if !ok {
		return ResolvedSession{}, false
	}
	if !withinTerm(class, dateISO) {
		return ResolvedSession{}, false
	}

	for _, slot := range class.Slots {
		if slot.Day != weekday {
			continue
		}
		start, end, ok := slotWindow(slot, class.DurationMinutes)
		if !ok {
			continue
		}
		if requested == start || (requested >= start && requested <= end) {
			return ResolvedSession{
				ClassID:   class.ID,
				Date:      dateISO,
				StartTime: FormatClock(start),
				EndTime:   FormatClock(end),
			}, true
		}
	}
	return ResolvedSession{}, false
}

// NormalizeToHourSlot buckets a wall-clock time into the coarse hour label
// the session pickers display. Minutes are discarded and the hour is clamped
// to the center's 06:00–22:00 operating range; the boundary clamps are
// load-bearing for rows imported with out-of-range times.
func NormalizeToHourSlot(value string) string {
	minutes, ok := ParseClock(value)
	if !ok {
		return "06:00"
	}
	hour := minutes / 60
	if hour < 6 {
		hour = 6
	}
	if hour > 22 {
		hour = 22
	}
	return FormatClock(hour * 60)
}

// weekdayOf returns the 0=Sunday weekday of an ISO date, anchored to UTC.
// time.Parse of a bare date yields midnight UTC, so the weekday cannot shift
// with the host zone.
func weekdayOf(dateISO string) (int, bool) {
	t, err := time.Parse(dateLayout, dateISO)
	if err != nil {
		return 0, false
	}
	return int(t.Weekday()), true
}

// withinTerm reports whether the date falls inside the class's inclusive
// term. Open bounds (empty or malformed stored dates) do not constrain.
func withinTerm(class Class, dateISO string) bool {
	date, err := time.Parse(dateLayout, dateISO)
	if err != nil {
		return false
	}
	if start, err := time.Parse(dateLayout, class.StartDate); err == nil {
		if date.Before(start) {
			return false
		}
	}
	if end, err := time.Parse(dateLayout, class.EndDate); err == nil {
		if date.After(end) {
			return false
		}
	}
	return true
}

func slotWindow(slot Slot, fallbackDuration int) (start, end int, ok bool) {
	start, ok = ParseClock(slot.StartTime)
	if !ok {
		return 0, 0, false
	}
	if slot.EndTime != "" {
		if end, ok = ParseClock(slot.EndTime); ok {
			return start, end, true
		}
	}
	if fallbackDuration <= 0 {
		// No stored end and no usable duration: treat the session as a
		// point-in-time window so an exact start label still matches.
		return start, start, true
	}
	return start, start + fallbackDuration, true
}
