package application

import (
	"context"
	"errors"
	"testing"

	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/persistence"
)

func TestSalaryService_MonthlyReport(t *testing.T) {
	t.Run("bills each delivered session once", func(t *testing.T) {
		classes := &classRepoStub{listForTeacher: []persistence.Class{pianoClass()}}
		attendance := &attendanceRepoStub{records: []persistence.AttendanceRecord{
			// One session with three present marks and one absence.
			{ID: "r1", ClassID: "class-1", Date: "2024-03-04", SessionTime: "08:00", SubjectID: "teacher-1", SubjectKind: "teacher", Present: true},
			{ID: "r2", ClassID: "class-1", Date: "2024-03-04", SessionTime: "08:00", SubjectID: "student-1", SubjectKind: "student", Present: true},
			{ID: "r3", ClassID: "class-1", Date: "2024-03-04", SessionTime: "08:00", SubjectID: "student-2", SubjectKind: "student", Present: true},
			{ID: "r4", ClassID: "class-1", Date: "2024-03-04", SessionTime: "18:00", SubjectID: "student-1", SubjectKind: "student", Present: false},
			// A second delivered session on another day.
			{ID: "r5", ClassID: "class-1", Date: "2024-03-07", SessionTime: "14:00", SubjectID: "teacher-1", SubjectKind: "teacher", Present: true},
			// Outside the requested month.
			{ID: "r6", ClassID: "class-1", Date: "2024-04-01", SessionTime: "08:00", SubjectID: "teacher-1", SubjectKind: "teacher", Present: true},
		}}
		svc := NewSalaryService(classes, attendance)

		report, err := svc.MonthlyReport(context.Background(), SalaryReportParams{
			Principal: Principal{IsAdmin: true},
			TeacherID: "teacher-1",
			Month:     "2024-03",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(report.Lines) != 1 {
			t.Fatalf("expected 1 line, got %d", len(report.Lines))
		}
		line := report.Lines[0]
		if line.SessionsTaught != 2 {
			t.Fatalf("expected 2 billable sessions, got %d", line.SessionsTaught)
		}
		if line.Amount != 400_000 || report.Total != 400_000 {
			t.Fatalf("unexpected amounts: line=%d total=%d", line.Amount, report.Total)
		}
	})

	t.Run("remarking attendance leaves the report unchanged", func(t *testing.T) {
		classes := &classRepoStub{
			getClass:       pianoClass(),
			listForTeacher: []persistence.Class{pianoClass()},
		}
		attendance := &attendanceRepoStub{}
		marker := NewAttendanceService(attendance, classes, func() string { return "record-1" }, fixedNow)
		svc := NewSalaryService(classes, attendance)

		params := markParams()
		params.SubjectID = "teacher-1"
		params.SubjectKind = "teacher"
		for i := 0; i < 3; i++ {
			if _, err := marker.MarkAttendance(context.Background(), params); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		report, err := svc.MonthlyReport(context.Background(), SalaryReportParams{
			Principal: Principal{IsAdmin: true},
			TeacherID: "teacher-1",
			Month:     "2024-03",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Total != 200_000 {
			t.Fatalf("expected one billable session worth 200000, got %d", report.Total)
		}
	})

	t.Run("teachers may only read their own report", func(t *testing.T) {
		svc := NewSalaryService(&classRepoStub{}, &attendanceRepoStub{})

		_, err := svc.MonthlyReport(context.Background(), SalaryReportParams{
			Principal: Principal{TeacherID: "teacher-2"},
			TeacherID: "teacher-1",
			Month:     "2024-03",
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("validates the month format", func(t *testing.T) {
		svc := NewSalaryService(&classRepoStub{}, &attendanceRepoStub{})

		_, err := svc.MonthlyReport(context.Background(), SalaryReportParams{
			Principal: Principal{IsAdmin: true},
			TeacherID: "teacher-1",
			Month:     "March 2024",
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["month"]; !ok {
			t.Fatalf("expected month validation error, got %v", vErr.FieldErrors)
		}
	})
}
