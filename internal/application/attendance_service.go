package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/persistence"
	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/schedule"
)

// AttendanceRepository captures the persistence interactions needed by the service.
type AttendanceRepository interface {
	CreateRecord(ctx context.Context, record persistence.AttendanceRecord) error
	UpdateRecord(ctx context.Context, record persistence.AttendanceRecord) error
	FindRecord(ctx context.Context, classID, date, sessionTime, subjectID, subjectKind string) (persistence.AttendanceRecord, error)
	ListRecords(ctx context.Context, filter persistence.AttendanceFilter) ([]persistence.AttendanceRecord, error)
}

// AttendanceService marks attendance and assembles daily sheets.
type AttendanceService struct {
	attendance  AttendanceRepository
	classes     ClassRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewAttendanceService wires dependencies for attendance operations.
func NewAttendanceService(attendance AttendanceRepository, classes ClassRepository, idGenerator func() string, now func() time.Time) *AttendanceService {
	return NewAttendanceServiceWithLogger(attendance, classes, idGenerator, now, nil)
}

// NewAttendanceServiceWithLogger constructs an attendance service with a specified logger.
func NewAttendanceServiceWithLogger(attendance AttendanceRepository, classes ClassRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AttendanceService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AttendanceService{
		attendance:  attendance,
		classes:     classes,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *AttendanceService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AttendanceService", operation, attrs...)
}

// MarkAttendance records one subject's attendance for a session.
//
// The caller's session time is a label, not an identity: it is resolved
// against the class schedule and the matched session's exact start time is
// what gets stored. Marking the same subject in the same session again
// overwrites the earlier mark.
func (s *AttendanceService) MarkAttendance(ctx context.Context, params MarkAttendanceParams) (record schedule.AttendanceRecord, err error) {
	if s == nil || s.attendance == nil || s.classes == nil {
		err = fmt.Errorf("attendance repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "MarkAttendance",
		"class_id", params.ClassID,
		"date", params.Date,
		"subject_id", params.SubjectID,
		"subject_kind", string(params.SubjectKind),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to mark attendance", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("session_time", record.StartTime).InfoContext(ctx, "attendance marked")
	}()

	if vErr := validateMarkParams(params); vErr.HasErrors() {
		err = vErr
		return
	}

	classRecord, err := s.classes.GetClass(ctx, params.ClassID)
	if err != nil {
		err = mapClassRepoError(err)
		return
	}
	class := classFromRecord(classRecord)

	if !params.Principal.IsAdmin {
		if class.TeacherID == nil || params.Principal.TeacherID == "" || *class.TeacherID != params.Principal.TeacherID {
			err = ErrUnauthorized
			return
		}
	}

	session, ok := schedule.MatchSession(class.ScheduleClass(), params.Date, params.SessionTime)
	if !ok {
		vErr := &ValidationError{}
		vErr.add("session_time", "no session of this class matches the requested date and time")
		err = vErr
		return
	}

	record = schedule.AttendanceRecord{
		ClassID:     params.ClassID,
		Date:        params.Date,
		StartTime:   session.StartTime,
		SubjectID:   params.SubjectID,
		SubjectKind: params.SubjectKind,
		Present:     params.Present,
		MarkedBy:    params.Principal.AccountID,
	}

	err = s.upsertRecord(ctx, record)
	return
}

// upsertRecord follows the check-then-write pattern: find the row carrying
// the full composite identity, update it when present, insert otherwise.
// Concurrent marks for the same subject race and the later write wins.
func (s *AttendanceService) upsertRecord(ctx context.Context, record schedule.AttendanceRecord) error {
	existing, err := s.attendance.FindRecord(ctx, record.ClassID, record.Date, record.StartTime, record.SubjectID, string(record.SubjectKind))
	switch {
	case err == nil:
		existing.Present = record.Present
		existing.MarkedBy = record.MarkedBy
		existing.UpdatedAt = s.now()
		if err := s.attendance.UpdateRecord(ctx, existing); err != nil {
			return mapAttendanceRepoError(err)
		}
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		createdAt := s.now()
		if err := s.attendance.CreateRecord(ctx, persistence.AttendanceRecord{
			ID:          s.idGenerator(),
			ClassID:     record.ClassID,
			Date:        record.Date,
			SessionTime: record.StartTime,
			SubjectID:   record.SubjectID,
			SubjectKind: string(record.SubjectKind),
			Present:     record.Present,
			MarkedBy:    record.MarkedBy,
			CreatedAt:   createdAt,
			UpdatedAt:   createdAt,
		}); err != nil {
			return mapAttendanceRepoError(err)
		}
		return nil
	default:
		return mapAttendanceRepoError(err)
	}
}

// DailySheet assembles the attendance sheet of a class on one date.
//
// Every session the schedule resolves for that date appears, marked or not.
// Records whose start time no longer matches any resolved session are kept
// under an orphaned session entry instead of being dropped.
func (s *AttendanceService) DailySheet(ctx context.Context, params DailySheetParams) (DailySheet, error) {
	if s == nil || s.attendance == nil || s.classes == nil {
		return DailySheet{}, fmt.Errorf("attendance repository not configured")
	}

	vErr := &ValidationError{}
	if params.ClassID == "" {
		vErr.add("class_id", "class_id is required")
	}
	if !isValidDate(params.Date) {
		vErr.add("date", "date must be YYYY-MM-DD")
	}
	if vErr.HasErrors() {
		return DailySheet{}, vErr
	}

	classRecord, err := s.classes.GetClass(ctx, params.ClassID)
	if err != nil {
		return DailySheet{}, mapClassRepoError(err)
	}
	class := classFromRecord(classRecord)

	if !params.Principal.IsAdmin && params.Principal.TeacherID != "" {
		if class.TeacherID == nil || *class.TeacherID != params.Principal.TeacherID {
			return DailySheet{}, ErrUnauthorized
		}
	}

	rows, err := s.attendance.ListRecords(ctx, persistence.AttendanceFilter{
		ClassID: params.ClassID,
		Date:    params.Date,
	})
	if err != nil {
		return DailySheet{}, mapAttendanceRepoError(err)
	}
	records := scheduleRecords(rows)

	sessions := schedule.SessionsForDate(class.ScheduleClass(), params.Date)
	aggregates := schedule.AggregateAttendance(records, sessions)

	endTimes := make(map[schedule.SessionKey]string, len(sessions))
	for _, session := range sessions {
		endTimes[session.Key()] = session.EndTime
	}

	sheet := DailySheet{ClassID: params.ClassID, Date: params.Date}
	for key, aggregate := range aggregates {
		entry := SessionSheet{
			Session: schedule.ResolvedSession{
				ClassID:   key.ClassID,
				Date:      key.Date,
				StartTime: key.StartTime,
				EndTime:   endTimes[key],
			},
			Aggregate: *aggregate,
		}
		for _, record := range records {
			if record.ClassID == key.ClassID && record.Date == key.Date && normalizeClock(record.StartTime) == key.StartTime {
				entry.Records = append(entry.Records, record)
			}
		}
		sheet.Sessions = append(sheet.Sessions, entry)
	}

	sort.Slice(sheet.Sessions, func(i, j int) bool {
		return sheet.Sessions[i].Session.StartTime < sheet.Sessions[j].Session.StartTime
	})
	return sheet, nil
}

func validateMarkParams(params MarkAttendanceParams) *ValidationError {
	vErr := &ValidationError{}
	if params.ClassID == "" {
		vErr.add("class_id", "class_id is required")
	}
	if !isValidDate(params.Date) {
		vErr.add("date", "date must be YYYY-MM-DD")
	}
	if _, ok := schedule.ParseClock(params.SessionTime); !ok {
		vErr.add("session_time", "session_time must be HH:MM")
	}
	if params.SubjectID == "" {
		vErr.add("subject_id", "subject_id is required")
	}
	switch params.SubjectKind {
	case schedule.SubjectTeacher, schedule.SubjectStudent:
	default:
		vErr.add("subject_kind", "subject_kind must be teacher or student")
	}
	return vErr
}

func normalizeClock(value string) string {
	minutes, ok := schedule.ParseClock(value)
	if !ok {
		return value
	}
	return schedule.FormatClock(minutes)
}

func scheduleRecords(rows []persistence.AttendanceRecord) []schedule.AttendanceRecord {
	records := make([]schedule.AttendanceRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, schedule.AttendanceRecord{
			ClassID:     row.ClassID,
			Date:        row.Date,
			StartTime:   row.SessionTime,
			SubjectID:   row.SubjectID,
			SubjectKind: schedule.SubjectKind(row.SubjectKind),
			Present:     row.Present,
			MarkedBy:    row.MarkedBy,
		})
	}
	return records
}

func mapAttendanceRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("class_id", "class does not exist")
		return vErr
	}
	return err
}
