package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/persistence"
	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/schedule"
)

// ClassRepository captures the persistence interactions needed by the service.
type ClassRepository interface {
	CreateClass(ctx context.Context, class persistence.Class) error
	UpdateClass(ctx context.Context, class persistence.Class) error
	GetClass(ctx context.Context, id string) (persistence.Class, error)
	ListClasses(ctx context.Context) ([]persistence.Class, error)
	ListClassesForTeacher(ctx context.Context, teacherID string) ([]persistence.Class, error)
	DeleteClass(ctx context.Context, id string) error
}

// TeacherDirectory exposes teacher lookup operations.
type TeacherDirectory interface {
	TeacherExists(ctx context.Context, id string) (bool, error)
}

// ClassService orchestrates validation and persistence for class operations.
type ClassService struct {
	classes     ClassRepository
	teachers    TeacherDirectory
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
	sessions    *sessionCache
}

// NewClassService wires dependencies for class operations.
func NewClassService(classes ClassRepository, teachers TeacherDirectory, idGenerator func() string, now func() time.Time) *ClassService {
	return NewClassServiceWithLogger(classes, teachers, idGenerator, now, nil)
}

// NewClassServiceWithLogger constructs a class service with a specified logger.
func NewClassServiceWithLogger(classes ClassRepository, teachers TeacherDirectory, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ClassService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ClassService{
		classes:     classes,
		teachers:    teachers,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
		sessions:    newSessionCache(30*time.Second, 256, now),
	}
}

func (s *ClassService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ClassService", operation, attrs...)
}

// CreateClass validates input and persists a new class for administrators.
func (s *ClassService) CreateClass(ctx context.Context, params CreateClassParams) (class Class, err error) {
	if s == nil {
		err = fmt.Errorf("ClassService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateClass", "principal_id", params.Principal.AccountID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create class", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("class_id", class.ID).InfoContext(ctx, "class created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	slots, vErr := normalizeClassInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if err = s.ensureTeacherExists(ctx, params.Input.TeacherID); err != nil {
		return
	}

	createdAt := s.now()
	class = Class{
		ID:               s.idGenerator(),
		Name:             strings.TrimSpace(params.Input.Name),
		Subject:          strings.TrimSpace(params.Input.Subject),
		TeacherID:        params.Input.TeacherID,
		StartDate:        params.Input.StartDate,
		EndDate:          params.Input.EndDate,
		DurationMinutes:  params.Input.DurationMinutes,
		Slots:            slots,
		SalaryPerSession: params.Input.SalaryPerSession,
		MonthlyFee:       params.Input.MonthlyFee,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}

	if s.classes == nil {
		return
	}

	if err = s.classes.CreateClass(ctx, classToRecord(class)); err != nil {
		err = mapClassRepoError(err)
		return
	}

	s.sessions.Invalidate()
	return
}

// UpdateClass validates input and updates an existing class for administrators.
func (s *ClassService) UpdateClass(ctx context.Context, params UpdateClassParams) (class Class, err error) {
	if s == nil {
		err = fmt.Errorf("ClassService is nil")
		return
	}
	if s.classes == nil {
		err = fmt.Errorf("class repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateClass", "class_id", params.ClassID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update class", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "class updated")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	existingRecord, err := s.classes.GetClass(ctx, params.ClassID)
	if err != nil {
		err = mapClassRepoError(err)
		return
	}
	existing := classFromRecord(existingRecord)

	slots, vErr := normalizeClassInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if err = s.ensureTeacherExists(ctx, params.Input.TeacherID); err != nil {
		return
	}

	class = existing
	class.Name = strings.TrimSpace(params.Input.Name)
	class.Subject = strings.TrimSpace(params.Input.Subject)
	class.TeacherID = params.Input.TeacherID
	class.StartDate = params.Input.StartDate
	class.EndDate = params.Input.EndDate
	class.DurationMinutes = params.Input.DurationMinutes
	class.Slots = slots
	class.SalaryPerSession = params.Input.SalaryPerSession
	class.MonthlyFee = params.Input.MonthlyFee
	class.UpdatedAt = s.now()

	if err = s.classes.UpdateClass(ctx, classToRecord(class)); err != nil {
		err = mapClassRepoError(err)
		return
	}

	s.sessions.Invalidate()
	return
}

// GetClass retrieves one class with its normalized schedule.
func (s *ClassService) GetClass(ctx context.Context, principal Principal, classID string) (Class, error) {
	if s == nil || s.classes == nil {
		return Class{}, fmt.Errorf("class repository not configured")
	}
	record, err := s.classes.GetClass(ctx, classID)
	if err != nil {
		return Class{}, mapClassRepoError(err)
	}
	return classFromRecord(record), nil
}

// ListClasses enumerates classes. Teacher principals see their own classes;
// administrators see everything.
func (s *ClassService) ListClasses(ctx context.Context, principal Principal) ([]Class, error) {
	if s == nil || s.classes == nil {
		return nil, fmt.Errorf("class repository not configured")
	}

	var (
		records []persistence.Class
		err     error
	)
	if principal.IsAdmin || principal.TeacherID == "" {
		records, err = s.classes.ListClasses(ctx)
	} else {
		records, err = s.classes.ListClassesForTeacher(ctx, principal.TeacherID)
	}
	if err != nil {
		return nil, mapClassRepoError(err)
	}

	classes := make([]Class, 0, len(records))
	for _, record := range records {
		classes = append(classes, classFromRecord(record))
	}
	return classes, nil
}

// DeleteClass removes a class for administrators.
func (s *ClassService) DeleteClass(ctx context.Context, principal Principal, classID string) error {
	if s == nil || s.classes == nil {
		return fmt.Errorf("class repository not configured")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteClass", "class_id", classID)
	if err := s.classes.DeleteClass(ctx, classID); err != nil {
		err = mapClassRepoError(err)
		logger.ErrorContext(ctx, "failed to delete class", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	s.sessions.Invalidate()
	logger.InfoContext(ctx, "class deleted")
	return nil
}

// SessionsOn resolves the sessions a class holds on the given date. Results
// are memoized briefly per (class, date); class writes invalidate the cache.
func (s *ClassService) SessionsOn(ctx context.Context, principal Principal, classID, dateISO string) ([]schedule.ResolvedSession, error) {
	if s == nil || s.classes == nil {
		return nil, fmt.Errorf("class repository not configured")
	}

	key := sessionCacheKey(classID, dateISO)
	if sessions, ok := s.sessions.Get(key); ok {
		return sessions, nil
	}

	record, err := s.classes.GetClass(ctx, classID)
	if err != nil {
		return nil, mapClassRepoError(err)
	}

	sessions := schedule.SessionsForDate(classFromRecord(record).ScheduleClass(), dateISO)
	s.sessions.Store(key, sessions)
	return sessions, nil
}

func (s *ClassService) ensureTeacherExists(ctx context.Context, teacherID *string) error {
	if teacherID == nil || s.teachers == nil {
		return nil
	}
	exists, err := s.teachers.TeacherExists(ctx, *teacherID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	vErr := &ValidationError{}
	vErr.add("teacher_id", "teacher does not exist")
	return vErr
}

// normalizeClassInput validates caller input and returns the canonical slots.
//
// The schedule goes through the fail-soft parser first, then through strict
// validation: a malformed stored row must degrade quietly at read time, but
// a write that loses slots or duplicates a (day, start) pair is rejected.
func normalizeClassInput(input ClassInput) ([]schedule.Slot, *ValidationError) {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if !isValidDate(input.StartDate) {
		vErr.add("start_date", "start_date must be YYYY-MM-DD")
	}
	if !isValidDate(input.EndDate) {
		vErr.add("end_date", "end_date must be YYYY-MM-DD")
	}
	if isValidDate(input.StartDate) && isValidDate(input.EndDate) && input.EndDate < input.StartDate {
		vErr.add("end_date", "end_date must not be before start_date")
	}
	if input.DurationMinutes <= 0 {
		vErr.add("duration_minutes", "duration_minutes must be positive")
	}
	if input.SalaryPerSession < 0 {
		vErr.add("salary_per_session", "salary_per_session must not be negative")
	}
	if input.MonthlyFee < 0 {
		vErr.add("monthly_fee", "monthly_fee must not be negative")
	}

	slots := schedule.ParseSlots(input.Slots)
	if input.Slots != nil && len(slots) == 0 {
		vErr.add("days_of_week", "schedule could not be parsed")
	}
	if err := schedule.ValidateSlots(slots); err != nil {
		switch {
		case errors.Is(err, schedule.ErrDuplicateSlot):
			vErr.add("days_of_week", "schedule holds two slots with the same day and start time")
		default:
			vErr.add("days_of_week", "schedule holds an invalid slot")
		}
	}

	return slots, vErr
}

func isValidDate(value string) bool {
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}

func classFromRecord(record persistence.Class) Class {
	return Class{
		ID:               record.ID,
		Name:             record.Name,
		Subject:          record.Subject,
		TeacherID:        record.TeacherID,
		StartDate:        record.StartDate,
		EndDate:          record.EndDate,
		DurationMinutes:  record.DurationMinutes,
		Slots:            schedule.ParseSlots(record.DaysOfWeek),
		SalaryPerSession: record.SalaryPerSession,
		MonthlyFee:       record.MonthlyFee,
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
	}
}

func classToRecord(class Class) persistence.Class {
	encoded, err := json.Marshal(class.Slots)
	if err != nil || class.Slots == nil {
		encoded = []byte("[]")
	}
	return persistence.Class{
		ID:               class.ID,
		Name:             class.Name,
		Subject:          class.Subject,
		TeacherID:        class.TeacherID,
		StartDate:        class.StartDate,
		EndDate:          class.EndDate,
		DurationMinutes:  class.DurationMinutes,
		DaysOfWeek:       string(encoded),
		SalaryPerSession: class.SalaryPerSession,
		MonthlyFee:       class.MonthlyFee,
		CreatedAt:        class.CreatedAt,
		UpdatedAt:        class.UpdatedAt,
	}
}

func mapClassRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("end_date", "end_date must not be before start_date")
		return vErr
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("teacher_id", "teacher does not exist")
		return vErr
	}
	return err
}
