package schedule

import "testing"

func TestAggregateAttendance(t *testing.T) {
	t.Parallel()

	sessions := []ResolvedSession{
		{ClassID: "class-1", Date: "2024-03-04", StartTime: "08:00", EndTime: "09:30"},
	}

	t.Run("counts present and total per subject kind", func(t *testing.T) {
		t.Parallel()
		records := []AttendanceRecord{
			{ClassID: "class-1", Date: "2024-03-04", StartTime: "08:00", SubjectID: "t-1", SubjectKind: SubjectTeacher, Present: true},
			{ClassID: "class-1", Date: "2024-03-04", StartTime: "08:00", SubjectID: "s-1", SubjectKind: SubjectStudent, Present: true},
			{ClassID: "class-1", Date: "2024-03-04", StartTime: "08:00", SubjectID: "s-2", SubjectKind: SubjectStudent, Present: false},
		}
		aggregates := AggregateAttendance(records, sessions)
		key := SessionKey{ClassID: "class-1", Date: "2024-03-04", StartTime: "08:00"}
		aggregate, ok := aggregates[key]
		if !ok {
			t.Fatalf("missing aggregate for %+v", key)
		}
		if aggregate.PresentTeachers != 1 || aggregate.TotalTeachers != 1 {
			t.Fatalf("teacher counts wrong: %+v", aggregate)
		}
		if aggregate.PresentStudents != 1 || aggregate.TotalStudents != 2 {
			t.Fatalf("student counts wrong: %+v", aggregate)
		}
		if aggregate.Orphaned {
			t.Fatal("resolved session must not be orphaned")
		}
	})

	t.Run("keeps records without a resolved session and flags them", func(t *testing.T) {
		t.Parallel()
		records := []AttendanceRecord{
			// The class's schedule no longer holds a 10:00 slot.
			{ClassID: "class-1", Date: "2024-02-05", StartTime: "10:00", SubjectID: "s-1", SubjectKind: SubjectStudent, Present: true},
		}
		aggregates := AggregateAttendance(records, sessions)
		key := SessionKey{ClassID: "class-1", Date: "2024-02-05", StartTime: "10:00"}
		aggregate, ok := aggregates[key]
		if !ok {
			t.Fatal("orphaned records must still aggregate")
		}
		if !aggregate.Orphaned {
			t.Fatal("expected the aggregate to be flagged orphaned")
		}
		if aggregate.TotalStudents != 1 || aggregate.PresentStudents != 1 {
			t.Fatalf("orphaned counts wrong: %+v", aggregate)
		}
	})

	t.Run("seeds empty aggregates for resolved sessions", func(t *testing.T) {
		t.Parallel()
		aggregates := AggregateAttendance(nil, sessions)
		key := sessions[0].Key()
		aggregate, ok := aggregates[key]
		if !ok {
			t.Fatal("expected an empty aggregate for the resolved session")
		}
		if aggregate.TotalStudents != 0 || aggregate.TotalTeachers != 0 {
			t.Fatalf("expected zero counts, got %+v", aggregate)
		}
	})

	t.Run("normalizes record start times before keying", func(t *testing.T) {
		t.Parallel()
		records := []AttendanceRecord{
			{ClassID: "class-1", Date: "2024-03-04", StartTime: "8:00", SubjectID: "s-1", SubjectKind: SubjectStudent, Present: true},
		}
		aggregates := AggregateAttendance(records, sessions)
		key := SessionKey{ClassID: "class-1", Date: "2024-03-04", StartTime: "08:00"}
		aggregate, ok := aggregates[key]
		if !ok || aggregate.TotalStudents != 1 {
			t.Fatalf("imported time format must fold into the padded key: %+v", aggregates)
		}
	})
}

func TestBillableSessions(t *testing.T) {
	t.Parallel()

	t.Run("collapses duplicates of the same session", func(t *testing.T) {
		t.Parallel()
		records := []AttendanceRecord{
			{ClassID: "class-1", Date: "2024-03-04", StartTime: "08:00", SubjectID: "s-1", SubjectKind: SubjectStudent, Present: true},
			{ClassID: "class-1", Date: "2024-03-04", StartTime: "08:00", SubjectID: "s-2", SubjectKind: SubjectStudent, Present: true},
			{ClassID: "class-1", Date: "2024-03-04", StartTime: "18:00", SubjectID: "s-1", SubjectKind: SubjectStudent, Present: true},
		}
		counts := BillableSessions(records)
		if counts["class-1"] != 2 {
			t.Fatalf("expected 2 billable sessions, got %d", counts["class-1"])
		}
	})

	t.Run("ignores absent records", func(t *testing.T) {
		t.Parallel()
		records := []AttendanceRecord{
			{ClassID: "class-1", Date: "2024-03-04", StartTime: "08:00", SubjectID: "t-1", SubjectKind: SubjectTeacher, Present: false},
		}
		if counts := BillableSessions(records); len(counts) != 0 {
			t.Fatalf("absent records must not bill, got %+v", counts)
		}
	})

	t.Run("separates classes", func(t *testing.T) {
		t.Parallel()
		records := []AttendanceRecord{
			{ClassID: "class-1", Date: "2024-03-04", StartTime: "08:00", SubjectID: "t-1", SubjectKind: SubjectTeacher, Present: true},
			{ClassID: "class-2", Date: "2024-03-04", StartTime: "08:00", SubjectID: "t-1", SubjectKind: SubjectTeacher, Present: true},
		}
		counts := BillableSessions(records)
		if counts["class-1"] != 1 || counts["class-2"] != 1 {
			t.Fatalf("unexpected counts: %+v", counts)
		}
	})
}
