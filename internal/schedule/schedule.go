package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Slot is one recurring weekly time window in a class's schedule.
//
// Day uses 0 = Sunday numbering. The center's class data was imported from
// spreadsheets that follow this convention, and every stored row relies on it.
type Slot struct {
	Day       int    `json:"day"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time,omitempty"`
}

// Class carries the schedule-relevant fields of one class.
type Class struct {
	ID              string
	StartDate       string // "YYYY-MM-DD", inclusive
	EndDate         string // "YYYY-MM-DD", inclusive
	DurationMinutes int
	Slots           []Slot
}

// ErrDuplicateSlot indicates two slots share the same day and start time.
var ErrDuplicateSlot = errors.New("schedule: duplicate slot")

// ErrInvalidSlot indicates a slot fails basic shape validation.
var ErrInvalidSlot = errors.New("schedule: invalid slot")

// ParseSlots normalizes a stored weekly schedule into canonical slots.
//
// Raw may be a native slice of slot objects, a JSON string (or byte slice)
// encoding such a slice, or nil. Class rows predating the current importer
// hold the JSON-string form, newer rows the native form; both must decode
// through the same path so downstream code only ever sees []Slot.
//
// Parsing is fail-soft: malformed entries are dropped, malformed JSON yields
// an empty schedule, and no input causes an error. Callers treat an empty
// result as "no schedule".
func ParseSlots(raw any) []Slot {
	switch v := raw.(type) {
	case nil:
		return nil
	case []Slot:
		return normalizeSlots(v)
	case json.RawMessage:
		return parseSlotsJSON([]byte(v))
	case []byte:
		return parseSlotsJSON(v)
	case string:
		return parseSlotsJSON([]byte(v))
	case []any:
		slots := make([]Slot, 0, len(v))
		for _, item := range v {
			if slot, ok := slotFromValue(item); ok {
				slots = append(slots, slot)
			}
		}
		return slots
	case []map[string]any:
		slots := make([]Slot, 0, len(v))
		for _, item := range v {
			if slot, ok := slotFromMap(item); ok {
				slots = append(slots, slot)
			}
		}
		return slots
	default:
		return nil
	}
}

// ValidateSlots reports problems that must block persisting a schedule.
//
// Duplicate (day, start_time) pairs are rejected here rather than silently
// merged at read time: a duplicated slot would double-count sessions in
// attendance aggregation.
func ValidateSlots(slots []Slot) error {
	seen := make(map[string]struct{}, len(slots))
	for i, slot := range slots {
		if slot.Day < 0 || slot.Day > 6 {
			return fmt.Errorf("%w: slot %d day %d out of range", ErrInvalidSlot, i, slot.Day)
		}
		start, ok := ParseClock(slot.StartTime)
		if !ok {
			return fmt.Errorf("%w: slot %d start time %q", ErrInvalidSlot, i, slot.StartTime)
		}
		if slot.EndTime != "" {
			end, ok := ParseClock(slot.EndTime)
			if !ok {
				return fmt.Errorf("%w: slot %d end time %q", ErrInvalidSlot, i, slot.EndTime)
			}
			if end <= start {
				return fmt.Errorf("%w: slot %d ends at or before it starts", ErrInvalidSlot, i)
			}
		}
		key := strconv.Itoa(slot.Day) + "@" + FormatClock(start)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: day %d at %s", ErrDuplicateSlot, slot.Day, FormatClock(start))
		}
		seen[key] = struct{}{}
	}
	return nil
}

// ParseClock converts an "HH:MM" wall-clock string to minutes since midnight.
// A missing leading zero is tolerated ("8:00") because imported rows carry
// both forms; anything else fails.
func ParseClock(value string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

// FormatClock renders minutes since midnight as zero-padded "HH:MM".
// Values outside one day wrap; sessions never legitimately cross midnight.
func FormatClock(minutes int) string {
	minutes %= 24 * 60
	if minutes < 0 {
		minutes += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func parseSlotsJSON(data []byte) []Slot {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
		// Imported rows are sometimes double-encoded: a JSON string whose
		// content is the slot array. Unwrap one level and retry.
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err == nil && strings.TrimSpace(inner) != trimmed {
			return parseSlotsJSON([]byte(inner))
		}
		return nil
	}
	slots := make([]Slot, 0, len(items))
	for _, item := range items {
		var decoded map[string]any
		if err := json.Unmarshal(item, &decoded); err != nil {
			continue
		}
		if slot, ok := slotFromMap(decoded); ok {
			slots = append(slots, slot)
		}
	}
	return slots
}

func slotFromValue(value any) (Slot, bool) {
	switch v := value.(type) {
	case Slot:
		return normalizeSlot(v)
	case map[string]any:
		return slotFromMap(v)
	default:
		return Slot{}, false
	}
}

func slotFromMap(item map[string]any) (Slot, bool) {
	day, ok := intFromValue(item["day"])
	if !ok || day < 0 || day > 6 {
		return Slot{}, false
	}
	start, ok := item["start_time"].(string)
	if !ok {
		return Slot{}, false
	}
	slot := Slot{Day: day, StartTime: start}
	if end, ok := item["end_time"].(string); ok {
		slot.EndTime = end
	}
	return normalizeSlot(slot)
}

func normalizeSlot(slot Slot) (Slot, bool) {
	if slot.Day < 0 || slot.Day > 6 {
		return Slot{}, false
	}
	start, ok := ParseClock(slot.StartTime)
	if !ok {
		return Slot{}, false
	}
	slot.StartTime = FormatClock(start)
	if slot.EndTime != "" {
		end, ok := ParseClock(slot.EndTime)
		if !ok {
			// A broken end time is recoverable: the class duration supplies
			// one at resolution time. Keep the slot.
			slot.EndTime = ""
		} else {
			slot.EndTime = FormatClock(end)
		}
	}
	return slot, true
}

func normalizeSlots(slots []Slot) []Slot {
	out := make([]Slot, 0, len(slots))
	for _, slot := range slots {
		if normalized, ok := normalizeSlot(slot); ok {
			out = append(out, normalized)
		}
	}
	return out
}

func intFromValue(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
