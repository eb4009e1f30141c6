package schedule

// SubjectKind distinguishes whose attendance a record tracks.
type SubjectKind string

const (
	// SubjectTeacher marks a teacher attendance record.
	SubjectTeacher SubjectKind = "teacher"
	// SubjectStudent marks a student attendance record.
	SubjectStudent SubjectKind = "student"
)

// AttendanceRecord is the read-side shape of one attendance row. The engine
// only aggregates these; their lifecycle belongs to the marking services.
type AttendanceRecord struct {
	ClassID     string
	Date        string // "YYYY-MM-DD"
	StartTime   string // "HH:MM" session start
	SubjectID   string
	SubjectKind SubjectKind
	Present     bool
	MarkedBy    string
}

// SessionKey identifies one concrete session. A struct key is collision-free
// by construction; concatenated strings would need a delimiter no ID can
// contain.
type SessionKey struct {
	ClassID   string
	Date      string
	StartTime string
}

// Key returns the session identity of a resolved session.
func (s ResolvedSession) Key() SessionKey {
	return SessionKey{ClassID: s.ClassID, Date: s.Date, StartTime: s.StartTime}
}

// SessionAggregate summarizes attendance for one session.
type SessionAggregate struct {
	PresentTeachers int
	TotalTeachers   int
	PresentStudents int
	TotalStudents   int
	// Orphaned is set when no resolved session backs the records, which
	// happens after a class's schedule changes. The history stays visible;
	// the flag only feeds diagnostics.
	Orphaned bool
}

// AggregateAttendance folds attendance records into per-session summaries.
//
// Every record is counted, including ones whose (class, start time) no
// longer corresponds to a resolved session; those aggregates are flagged
// orphaned rather than dropped so past sheets survive schedule edits.
func AggregateAttendance(records []AttendanceRecord, sessions []ResolvedSession) map[SessionKey]*SessionAggregate {
	known := make(map[string]struct{}, len(sessions))
	for _, session := range sessions {
		known[session.ClassID+"\x00"+session.StartTime] = struct{}{}
	}

	aggregates := make(map[SessionKey]*SessionAggregate, len(sessions))
	for _, session := range sessions {
		key := session.Key()
		if _, ok := aggregates[key]; !ok {
			aggregates[key] = &SessionAggregate{}
		}
	}

	for _, record := range records {
		start, ok := ParseClock(record.StartTime)
		if !ok {
			continue
		}
		key := SessionKey{
			ClassID:   record.ClassID,
			Date:      record.Date,
			StartTime: FormatClock(start),
		}
		aggregate, ok := aggregates[key]
		if !ok {
			aggregate = &SessionAggregate{}
			aggregates[key] = aggregate
		}
		if _, resolved := known[key.ClassID+"\x00"+key.StartTime]; !resolved {
			aggregate.Orphaned = true
		}
		switch record.SubjectKind {
		case SubjectTeacher:
			aggregate.TotalTeachers++
			if record.Present {
				aggregate.PresentTeachers++
			}
		case SubjectStudent:
			aggregate.TotalStudents++
			if record.Present {
				aggregate.PresentStudents++
			}
		}
	}

	return aggregates
}

// BillableSessions counts delivered sessions per class.
//
// Only present records count, and duplicates of the same (class, date, start)
// collapse to a single session: a session is either delivered or not, no
// matter how many subjects were marked in it. Salary computation multiplies
// these counts by the class's per-session rate.
func BillableSessions(records []AttendanceRecord) map[string]int {
	seen := make(map[SessionKey]struct{}, len(records))
	counts := make(map[string]int)
	for _, record := range records {
		if !record.Present {
			continue
		}
		start, ok := ParseClock(record.StartTime)
		if !ok {
			continue
		}
		key := SessionKey{
			ClassID:   record.ClassID,
			Date:      record.Date,
			StartTime: FormatClock(start),
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		counts[record.ClassID]++
	}
	return counts
}
