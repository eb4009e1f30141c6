package schedule

import (
	"testing"
	"time"
)

func termClass() Class {
	return Class{
		ID:              "class-1",
		StartDate:       "2024-01-01",
		EndDate:         "2024-06-30",
		DurationMinutes: 90,
		Slots: []Slot{
			{Day: 1, StartTime: "08:00", EndTime: "09:30"}, // Monday morning
			{Day: 1, StartTime: "18:00"},                   // Monday evening, derived end
			{Day: 4, StartTime: "14:00"},                   // Thursday
		},
	}
}

func TestSessionsForDate(t *testing.T) {
	t.Run("resolves every slot on the weekday", func(t *testing.T) {
		t.Parallel()
		// 2024-03-04 is a Monday.
		sessions := SessionsForDate(termClass(), "2024-03-04")
		if len(sessions) != 2 {
			t.Fatalf("expected 2 sessions, got %+v", sessions)
		}
		if sessions[0].StartTime != "08:00" || sessions[0].EndTime != "09:30" {
			t.Fatalf("unexpected first session: %+v", sessions[0])
		}
		if sessions[1].StartTime != "18:00" || sessions[1].EndTime != "19:30" {
			t.Fatalf("derived end time wrong: %+v", sessions[1])
		}
		if sessions[0].ClassID != "class-1" || sessions[0].Date != "2024-03-04" {
			t.Fatalf("session identity wrong: %+v", sessions[0])
		}
	})

	t.Run("derives end from duration", func(t *testing.T) {
		t.Parallel()
		// 2024-03-07 is a Thursday; slot has no stored end.
		sessions := SessionsForDate(termClass(), "2024-03-07")
		if len(sessions) != 1 {
			t.Fatalf("expected 1 session, got %+v", sessions)
		}
		if sessions[0].EndTime != "15:30" {
			t.Fatalf("expected 14:00 + 90m = 15:30, got %q", sessions[0].EndTime)
		}
	})

	t.Run("returns nothing on other weekdays", func(t *testing.T) {
		t.Parallel()
		// 2024-03-05 is a Tuesday.
		if sessions := SessionsForDate(termClass(), "2024-03-05"); len(sessions) != 0 {
			t.Fatalf("expected no sessions, got %+v", sessions)
		}
	})

	t.Run("excludes dates outside the class term", func(t *testing.T) {
		t.Parallel()
		// 2024-07-01 is a Monday, but the term ended 2024-06-30.
		if sessions := SessionsForDate(termClass(), "2024-07-01"); len(sessions) != 0 {
			t.Fatalf("expected no sessions past the term end, got %+v", sessions)
		}
		// 2023-12-25 is a Monday before the term start.
		if sessions := SessionsForDate(termClass(), "2023-12-25"); len(sessions) != 0 {
			t.Fatalf("expected no sessions before the term start, got %+v", sessions)
		}
	})

	t.Run("term bounds are inclusive", func(t *testing.T) {
		t.Parallel()
		class := termClass()
		class.StartDate = "2024-03-04"
		class.EndDate = "2024-03-04"
		if sessions := SessionsForDate(class, "2024-03-04"); len(sessions) != 2 {
			t.Fatalf("expected sessions on the boundary date, got %+v", sessions)
		}
	})

	t.Run("rejects a malformed date", func(t *testing.T) {
		t.Parallel()
		if sessions := SessionsForDate(termClass(), "03/04/2024"); len(sessions) != 0 {
			t.Fatalf("expected no sessions, got %+v", sessions)
		}
	})

	t.Run("weekday is stable across host zones", func(t *testing.T) {
		// Deliberately not parallel: this subtest swaps the process zone to
		// prove the engine never consults it. A naive local-time parse of
		// "2024-03-04" rolls to Sunday in UTC-11 and the sessions vanish.
		original := time.Local
		defer func() { time.Local = original }()

		var baseline []ResolvedSession
		for _, zone := range []*time.Location{
			time.UTC,
			time.FixedZone("UTC-11", -11*60*60),
			time.FixedZone("UTC+13", 13*60*60),
		} {
			time.Local = zone
			sessions := SessionsForDate(termClass(), "2024-03-04")
			if baseline == nil {
				baseline = sessions
				continue
			}
			if len(sessions) != len(baseline) {
				t.Fatalf("zone %v changed the result: %+v vs %+v", zone, sessions, baseline)
			}
			for i := range sessions {
				if sessions[i] != baseline[i] {
					t.Fatalf("zone %v changed session %d: %+v vs %+v", zone, i, sessions[i], baseline[i])
				}
			}
		}
		if len(baseline) != 2 {
			t.Fatalf("expected 2 Monday sessions, got %+v", baseline)
		}
	})
}

func TestMatchSession(t *testing.T) {
	t.Parallel()

	t.Run("matches labels across the inclusive window", func(t *testing.T) {
		t.Parallel()
		class := termClass()
		for _, label := range []string{"08:00", "09:00", "09:30"} {
			session, ok := MatchSession(class, "2024-03-04", label)
			if !ok {
				t.Fatalf("label %q should match", label)
			}
			if session.StartTime != "08:00" {
				t.Fatalf("label %q matched wrong slot: %+v", label, session)
			}
		}
		for _, label := range []string{"07:59", "09:31"} {
			if _, ok := MatchSession(class, "2024-03-04", label); ok {
				t.Fatalf("label %q should not match", label)
			}
		}
	})

	t.Run("exact start always matches", func(t *testing.T) {
		t.Parallel()
		class := termClass()
		class.DurationMinutes = 0
		session, ok := MatchSession(class, "2024-03-07", "14:00")
		if !ok {
			t.Fatal("exact start label should match even without a duration")
		}
		if session.StartTime != "14:00" {
			t.Fatalf("unexpected session: %+v", session)
		}
	})

	t.Run("first slot in schedule order wins on overlap", func(t *testing.T) {
		t.Parallel()
		class := Class{
			ID:              "class-2",
			StartDate:       "2024-01-01",
			EndDate:         "2024-12-31",
			DurationMinutes: 120,
			Slots: []Slot{
				{Day: 1, StartTime: "08:00", EndTime: "10:00"},
				{Day: 1, StartTime: "09:00", EndTime: "11:00"},
			},
		}
		session, ok := MatchSession(class, "2024-03-04", "09:30")
		if !ok {
			t.Fatal("overlapping window should match")
		}
		if session.StartTime != "08:00" {
			t.Fatalf("expected the first slot in schedule order, got %+v", session)
		}
	})

	t.Run("never matches outside the class term", func(t *testing.T) {
		t.Parallel()
		if _, ok := MatchSession(termClass(), "2024-07-01", "08:00"); ok {
			t.Fatal("dates past the term end must not match")
		}
	})

	t.Run("rejects a malformed label", func(t *testing.T) {
		t.Parallel()
		if _, ok := MatchSession(termClass(), "2024-03-04", "morning"); ok {
			t.Fatal("non-clock labels must not match")
		}
	})
}

func TestNormalizeToHourSlot(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  string
	}{
		{"05:45", "06:00"},
		{"06:00", "06:00"},
		{"14:37", "14:00"},
		{"22:59", "22:00"},
		{"23:10", "22:00"},
	}
	for _, tc := range cases {
		if got := NormalizeToHourSlot(tc.input); got != tc.want {
			t.Errorf("NormalizeToHourSlot(%q) = %q; want %q", tc.input, got, tc.want)
		}
	}
}
