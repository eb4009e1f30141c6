package application

import (
	"context"
	"errors"
	"testing"

	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/persistence"
	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/schedule"
)

type attendanceRepoStub struct {
	records []persistence.AttendanceRecord

	createErr error
	updateErr error
	findErr   error
	listErr   error
}

func (r *attendanceRepoStub) CreateRecord(ctx context.Context, record persistence.AttendanceRecord) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.records = append(r.records, record)
	return nil
}

func (r *attendanceRepoStub) UpdateRecord(ctx context.Context, record persistence.AttendanceRecord) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	for i := range r.records {
		if r.records[i].ID == record.ID {
			r.records[i] = record
			return nil
		}
	}
	return persistence.ErrNotFound
}

func (r *attendanceRepoStub) FindRecord(ctx context.Context, classID, date, sessionTime, subjectID, subjectKind string) (persistence.AttendanceRecord, error) {
	if r.findErr != nil {
		return persistence.AttendanceRecord{}, r.findErr
	}
	for _, record := range r.records {
		if record.ClassID == classID && record.Date == date && record.SessionTime == sessionTime &&
			record.SubjectID == subjectID && record.SubjectKind == subjectKind {
			return record, nil
		}
	}
	return persistence.AttendanceRecord{}, persistence.ErrNotFound
}

func (r *attendanceRepoStub) ListRecords(ctx context.Context, filter persistence.AttendanceFilter) ([]persistence.AttendanceRecord, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []persistence.AttendanceRecord
	for _, record := range r.records {
		if filter.ClassID != "" && record.ClassID != filter.ClassID {
			continue
		}
		if filter.Date != "" && record.Date != filter.Date {
			continue
		}
		if filter.DatePrefix != "" && (len(record.Date) < len(filter.DatePrefix) || record.Date[:len(filter.DatePrefix)] != filter.DatePrefix) {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

// pianoClass holds sessions on Monday 08:00 and Thursday 14:00, 90 minutes
// each, taught by teacher-1.
func pianoClass() persistence.Class {
	return persistence.Class{
		ID:               "class-1",
		Name:             "Piano Beginners",
		TeacherID:        strPtr("teacher-1"),
		StartDate:        "2024-01-01",
		EndDate:          "2024-06-30",
		DurationMinutes:  90,
		DaysOfWeek:       `[{"day":1,"start_time":"08:00"},{"day":4,"start_time":"14:00"}]`,
		SalaryPerSession: 200_000,
	}
}

func markParams() MarkAttendanceParams {
	return MarkAttendanceParams{
		Principal:   Principal{AccountID: "account-1", IsAdmin: true},
		ClassID:     "class-1",
		Date:        "2024-03-07", // Thursday
		SessionTime: "14:00",
		SubjectID:   "student-1",
		SubjectKind: schedule.SubjectStudent,
		Present:     true,
	}
}

func TestAttendanceService_MarkAttendance(t *testing.T) {
	t.Run("stores the matched session start, not the label", func(t *testing.T) {
		attendance := &attendanceRepoStub{}
		classes := &classRepoStub{getClass: pianoClass()}
		svc := NewAttendanceService(attendance, classes, func() string { return "record-1" }, fixedNow)

		params := markParams()
		params.SessionTime = "15:30" // inclusive end of the 14:00 session

		record, err := svc.MarkAttendance(context.Background(), params)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if record.StartTime != "14:00" {
			t.Fatalf("expected matched start 14:00, got %q", record.StartTime)
		}
		if len(attendance.records) != 1 || attendance.records[0].SessionTime != "14:00" {
			t.Fatalf("unexpected stored records: %+v", attendance.records)
		}
		if attendance.records[0].MarkedBy != "account-1" {
			t.Fatalf("expected marker account-1, got %q", attendance.records[0].MarkedBy)
		}
	})

	t.Run("remarking overwrites the earlier mark", func(t *testing.T) {
		attendance := &attendanceRepoStub{}
		classes := &classRepoStub{getClass: pianoClass()}
		svc := NewAttendanceService(attendance, classes, func() string { return "record-1" }, fixedNow)

		params := markParams()
		if _, err := svc.MarkAttendance(context.Background(), params); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		params.Present = false
		if _, err := svc.MarkAttendance(context.Background(), params); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(attendance.records) != 1 {
			t.Fatalf("expected a single record, got %d", len(attendance.records))
		}
		if attendance.records[0].Present {
			t.Fatalf("expected the later mark to win")
		}
	})

	t.Run("rejects a label outside every session window", func(t *testing.T) {
		svc := NewAttendanceService(&attendanceRepoStub{}, &classRepoStub{getClass: pianoClass()}, nil, fixedNow)

		params := markParams()
		params.SessionTime = "15:31"

		_, err := svc.MarkAttendance(context.Background(), params)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["session_time"]; !ok {
			t.Fatalf("expected session_time validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("rejects dates outside the class term", func(t *testing.T) {
		svc := NewAttendanceService(&attendanceRepoStub{}, &classRepoStub{getClass: pianoClass()}, nil, fixedNow)

		params := markParams()
		params.Date = "2024-07-04" // Thursday past the term end

		_, err := svc.MarkAttendance(context.Background(), params)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("teachers may only mark their own classes", func(t *testing.T) {
		svc := NewAttendanceService(&attendanceRepoStub{}, &classRepoStub{getClass: pianoClass()}, nil, fixedNow)

		params := markParams()
		params.Principal = Principal{AccountID: "account-2", TeacherID: "teacher-2"}

		_, err := svc.MarkAttendance(context.Background(), params)
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("validates required attributes", func(t *testing.T) {
		svc := NewAttendanceService(&attendanceRepoStub{}, &classRepoStub{getClass: pianoClass()}, nil, fixedNow)

		_, err := svc.MarkAttendance(context.Background(), MarkAttendanceParams{
			Principal:   Principal{IsAdmin: true},
			Date:        "not-a-date",
			SessionTime: "noon",
			SubjectKind: "visitor",
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"class_id", "date", "session_time", "subject_id", "subject_kind"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s validation error, got %v", field, vErr.FieldErrors)
			}
		}
	})
}

func TestAttendanceService_DailySheet(t *testing.T) {
	t.Run("lists every resolved session, marked or not", func(t *testing.T) {
		attendance := &attendanceRepoStub{records: []persistence.AttendanceRecord{
			{ID: "r1", ClassID: "class-1", Date: "2024-03-04", SessionTime: "08:00", SubjectID: "teacher-1", SubjectKind: "teacher", Present: true},
			{ID: "r2", ClassID: "class-1", Date: "2024-03-04", SessionTime: "08:00", SubjectID: "student-1", SubjectKind: "student", Present: true},
			{ID: "r3", ClassID: "class-1", Date: "2024-03-04", SessionTime: "08:00", SubjectID: "student-2", SubjectKind: "student", Present: false},
		}}
		class := pianoClass()
		class.DaysOfWeek = `[{"day":1,"start_time":"08:00"},{"day":1,"start_time":"18:00"}]`
		svc := NewAttendanceService(attendance, &classRepoStub{getClass: class}, nil, fixedNow)

		sheet, err := svc.DailySheet(context.Background(), DailySheetParams{
			Principal: Principal{IsAdmin: true},
			ClassID:   "class-1",
			Date:      "2024-03-04", // Monday
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(sheet.Sessions) != 2 {
			t.Fatalf("expected 2 sessions, got %d", len(sheet.Sessions))
		}
		if sheet.Sessions[0].Session.StartTime != "08:00" || sheet.Sessions[1].Session.StartTime != "18:00" {
			t.Fatalf("expected sessions ordered by start time, got %+v", sheet.Sessions)
		}

		morning := sheet.Sessions[0].Aggregate
		if morning.PresentTeachers != 1 || morning.TotalTeachers != 1 {
			t.Fatalf("unexpected teacher counts: %+v", morning)
		}
		if morning.PresentStudents != 1 || morning.TotalStudents != 2 {
			t.Fatalf("unexpected student counts: %+v", morning)
		}
		if morning.Orphaned {
			t.Fatalf("expected resolved session not to be orphaned")
		}

		evening := sheet.Sessions[1]
		if evening.Aggregate.TotalStudents != 0 || len(evening.Records) != 0 {
			t.Fatalf("expected empty evening session, got %+v", evening)
		}
	})

	t.Run("keeps records orphaned by a schedule change", func(t *testing.T) {
		attendance := &attendanceRepoStub{records: []persistence.AttendanceRecord{
			{ID: "r1", ClassID: "class-1", Date: "2024-03-04", SessionTime: "10:00", SubjectID: "student-1", SubjectKind: "student", Present: true},
		}}
		class := pianoClass()
		class.DaysOfWeek = `[{"day":1,"start_time":"08:00"}]`
		svc := NewAttendanceService(attendance, &classRepoStub{getClass: class}, nil, fixedNow)

		sheet, err := svc.DailySheet(context.Background(), DailySheetParams{
			Principal: Principal{IsAdmin: true},
			ClassID:   "class-1",
			Date:      "2024-03-04",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(sheet.Sessions) != 2 {
			t.Fatalf("expected resolved plus orphaned session, got %d", len(sheet.Sessions))
		}
		orphan := sheet.Sessions[1]
		if orphan.Session.StartTime != "10:00" || !orphan.Aggregate.Orphaned {
			t.Fatalf("expected orphaned 10:00 entry, got %+v", orphan)
		}
		if len(orphan.Records) != 1 {
			t.Fatalf("expected the orphaned record to stay visible, got %+v", orphan.Records)
		}
	})

	t.Run("teachers may only read their own classes", func(t *testing.T) {
		svc := NewAttendanceService(&attendanceRepoStub{}, &classRepoStub{getClass: pianoClass()}, nil, fixedNow)

		_, err := svc.DailySheet(context.Background(), DailySheetParams{
			Principal: Principal{AccountID: "account-2", TeacherID: "teacher-2"},
			ClassID:   "class-1",
			Date:      "2024-03-04",
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}
