package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/persistence"
	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/schedule"
)

// SalaryService computes monthly salary reports from attendance history.
type SalaryService struct {
	classes    ClassRepository
	attendance AttendanceRepository
	logger     *slog.Logger
}

// NewSalaryService wires dependencies for salary reporting.
func NewSalaryService(classes ClassRepository, attendance AttendanceRepository) *SalaryService {
	return NewSalaryServiceWithLogger(classes, attendance, nil)
}

// NewSalaryServiceWithLogger constructs a salary service with a specified logger.
func NewSalaryServiceWithLogger(classes ClassRepository, attendance AttendanceRepository, logger *slog.Logger) *SalaryService {
	return &SalaryService{
		classes:    classes,
		attendance: attendance,
		logger:     defaultLogger(logger),
	}
}

func (s *SalaryService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SalaryService", operation, attrs...)
}

// MonthlyReport computes the salary a teacher earned in one month.
//
// A session is billable when at least one present mark exists for it; extra
// marks in the same session never bill twice, so re-marking attendance
// leaves the report unchanged. Each class line multiplies its billable
// session count by the class's per-session rate.
func (s *SalaryService) MonthlyReport(ctx context.Context, params SalaryReportParams) (report SalaryReport, err error) {
	if s == nil || s.classes == nil || s.attendance == nil {
		err = fmt.Errorf("salary service not configured")
		return
	}

	logger := s.loggerWith(ctx, "MonthlyReport", "teacher_id", params.TeacherID, "month", params.Month)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to compute salary report", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("total", report.Total).InfoContext(ctx, "salary report computed")
	}()

	if !params.Principal.IsAdmin && params.Principal.TeacherID != params.TeacherID {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	if params.TeacherID == "" {
		vErr.add("teacher_id", "teacher_id is required")
	}
	if !isValidMonth(params.Month) {
		vErr.add("month", "month must be YYYY-MM")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	classRecords, err := s.classes.ListClassesForTeacher(ctx, params.TeacherID)
	if err != nil {
		err = mapClassRepoError(err)
		return
	}

	report = SalaryReport{TeacherID: params.TeacherID, Month: params.Month}
	for _, classRecord := range classRecords {
		class := classFromRecord(classRecord)

		rows, listErr := s.attendance.ListRecords(ctx, persistence.AttendanceFilter{
			ClassID:    class.ID,
			DatePrefix: params.Month,
		})
		if listErr != nil {
			err = mapAttendanceRepoError(listErr)
			return
		}

		sessions := schedule.BillableSessions(scheduleRecords(rows))[class.ID]
		line := SalaryLine{
			ClassID:          class.ID,
			ClassName:        class.Name,
			SessionsTaught:   sessions,
			SalaryPerSession: class.SalaryPerSession,
			Amount:           int64(sessions) * class.SalaryPerSession,
		}
		report.Lines = append(report.Lines, line)
		report.Total += line.Amount
	}
	return
}

func isValidMonth(value string) bool {
	_, err := time.Parse("2006-01", value)
	return err == nil
}
