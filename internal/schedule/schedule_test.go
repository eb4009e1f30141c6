package schedule

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseSlots(t *testing.T) {
	t.Parallel()

	t.Run("accepts a native slice", func(t *testing.T) {
		t.Parallel()
		slots := ParseSlots([]Slot{
			{Day: 1, StartTime: "08:00", EndTime: "09:30"},
			{Day: 3, StartTime: "14:00"},
		})
		if len(slots) != 2 {
			t.Fatalf("expected 2 slots, got %d", len(slots))
		}
		if slots[1].Day != 3 || slots[1].StartTime != "14:00" || slots[1].EndTime != "" {
			t.Fatalf("unexpected second slot: %+v", slots[1])
		}
	})

	t.Run("accepts a JSON string", func(t *testing.T) {
		t.Parallel()
		raw := `[{"day":0,"start_time":"09:00","end_time":"10:30"},{"day":5,"start_time":"18:00"}]`
		slots := ParseSlots(raw)
		if len(slots) != 2 {
			t.Fatalf("expected 2 slots, got %d", len(slots))
		}
		if slots[0].Day != 0 || slots[0].EndTime != "10:30" {
			t.Fatalf("unexpected first slot: %+v", slots[0])
		}
	})

	t.Run("accepts decoded JSON values", func(t *testing.T) {
		t.Parallel()
		var decoded any
		if err := json.Unmarshal([]byte(`[{"day":2,"start_time":"10:00"}]`), &decoded); err != nil {
			t.Fatal(err)
		}
		slots := ParseSlots(decoded)
		if len(slots) != 1 || slots[0].Day != 2 {
			t.Fatalf("unexpected slots: %+v", slots)
		}
	})

	t.Run("returns empty for malformed JSON", func(t *testing.T) {
		t.Parallel()
		if slots := ParseSlots("{not valid json"); len(slots) != 0 {
			t.Fatalf("expected no slots, got %+v", slots)
		}
	})

	t.Run("returns empty for nil", func(t *testing.T) {
		t.Parallel()
		if slots := ParseSlots(nil); len(slots) != 0 {
			t.Fatalf("expected no slots, got %+v", slots)
		}
	})

	t.Run("drops malformed entries without aborting the rest", func(t *testing.T) {
		t.Parallel()
		raw := `[
			{"day":"not a number","start_time":"08:00"},
			{"day":9,"start_time":"08:00"},
			{"start_time":"08:00"},
			{"day":1},
			{"day":1,"start_time":"25:61"},
			{"day":4,"start_time":"16:00","end_time":"17:30"}
		]`
		slots := ParseSlots(raw)
		if len(slots) != 1 {
			t.Fatalf("expected 1 surviving slot, got %+v", slots)
		}
		if slots[0].Day != 4 || slots[0].StartTime != "16:00" {
			t.Fatalf("unexpected surviving slot: %+v", slots[0])
		}
	})

	t.Run("zero-pads times missing a leading zero", func(t *testing.T) {
		t.Parallel()
		slots := ParseSlots(`[{"day":6,"start_time":"8:00","end_time":"9:30"}]`)
		if len(slots) != 1 {
			t.Fatalf("expected 1 slot, got %+v", slots)
		}
		if slots[0].StartTime != "08:00" || slots[0].EndTime != "09:30" {
			t.Fatalf("times not normalized: %+v", slots[0])
		}
	})

	t.Run("keeps a slot whose end time is broken", func(t *testing.T) {
		t.Parallel()
		slots := ParseSlots(`[{"day":2,"start_time":"14:00","end_time":"oops"}]`)
		if len(slots) != 1 || slots[0].EndTime != "" {
			t.Fatalf("expected slot with cleared end time, got %+v", slots)
		}
	})
}

func TestValidateSlots(t *testing.T) {
	t.Parallel()

	t.Run("accepts a clean schedule", func(t *testing.T) {
		t.Parallel()
		err := ValidateSlots([]Slot{
			{Day: 1, StartTime: "08:00", EndTime: "09:30"},
			{Day: 1, StartTime: "18:00"},
			{Day: 4, StartTime: "08:00"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("rejects duplicate day and start time", func(t *testing.T) {
		t.Parallel()
		err := ValidateSlots([]Slot{
			{Day: 2, StartTime: "08:00"},
			{Day: 2, StartTime: "8:00", EndTime: "09:30"},
		})
		if !errors.Is(err, ErrDuplicateSlot) {
			t.Fatalf("expected ErrDuplicateSlot, got %v", err)
		}
	})

	t.Run("rejects an out-of-range day", func(t *testing.T) {
		t.Parallel()
		err := ValidateSlots([]Slot{{Day: 7, StartTime: "08:00"}})
		if !errors.Is(err, ErrInvalidSlot) {
			t.Fatalf("expected ErrInvalidSlot, got %v", err)
		}
	})

	t.Run("rejects an end before the start", func(t *testing.T) {
		t.Parallel()
		err := ValidateSlots([]Slot{{Day: 3, StartTime: "10:00", EndTime: "09:00"}})
		if !errors.Is(err, ErrInvalidSlot) {
			t.Fatalf("expected ErrInvalidSlot, got %v", err)
		}
	})
}

func TestParseClock(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input   string
		minutes int
		ok      bool
	}{
		{"00:00", 0, true},
		{"08:15", 495, true},
		{"8:15", 495, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"noon", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseClock(tc.input)
		if ok != tc.ok || got != tc.minutes {
			t.Errorf("ParseClock(%q) = %d, %v; want %d, %v", tc.input, got, ok, tc.minutes, tc.ok)
		}
	}
}

func TestFormatClock(t *testing.T) {
	t.Parallel()

	cases := []struct {
		minutes int
		want    string
	}{
		{0, "00:00"},
		{495, "08:15"},
		{930, "15:30"},
		{1439, "23:59"},
		{1470, "00:30"}, // wraps past midnight
	}
	for _, tc := range cases {
		if got := FormatClock(tc.minutes); got != tc.want {
			t.Errorf("FormatClock(%d) = %q; want %q", tc.minutes, got, tc.want)
		}
	}
}
