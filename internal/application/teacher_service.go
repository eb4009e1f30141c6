package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/persistence"
)

// TeacherRepository captures the persistence interactions needed by the service.
type TeacherRepository interface {
	CreateTeacher(ctx context.Context, teacher persistence.Teacher) error
	UpdateTeacher(ctx context.Context, teacher persistence.Teacher) error
	GetTeacher(ctx context.Context, id string) (persistence.Teacher, error)
	ListTeachers(ctx context.Context) ([]persistence.Teacher, error)
	DeleteTeacher(ctx context.Context, id string) error
}

// TeacherService orchestrates validation and persistence for teacher records.
type TeacherService struct {
	teachers    TeacherRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewTeacherService wires dependencies for teacher operations.
func NewTeacherService(teachers TeacherRepository, idGenerator func() string, now func() time.Time) *TeacherService {
	return NewTeacherServiceWithLogger(teachers, idGenerator, now, nil)
}

// NewTeacherServiceWithLogger constructs a teacher service with a specified logger.
func NewTeacherServiceWithLogger(teachers TeacherRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *TeacherService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &TeacherService{
		teachers:    teachers,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *TeacherService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TeacherService", operation, attrs...)
}

// CreateTeacher validates input and persists a new teacher for administrators.
func (s *TeacherService) CreateTeacher(ctx context.Context, params CreateTeacherParams) (teacher Teacher, err error) {
	if s == nil || s.teachers == nil {
		err = fmt.Errorf("teacher repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateTeacher", "principal_id", params.Principal.AccountID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create teacher", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("teacher_id", teacher.ID).InfoContext(ctx, "teacher created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if vErr := validateTeacherInput(params.Input); vErr.HasErrors() {
		err = vErr
		return
	}

	createdAt := s.now()
	teacher = Teacher{
		ID:        s.idGenerator(),
		FullName:  strings.TrimSpace(params.Input.FullName),
		Email:     strings.ToLower(strings.TrimSpace(params.Input.Email)),
		Phone:     strings.TrimSpace(params.Input.Phone),
		Specialty: strings.TrimSpace(params.Input.Specialty),
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	if err = s.teachers.CreateTeacher(ctx, teacherToRecord(teacher)); err != nil {
		err = mapTeacherRepoError(err)
		return
	}
	return
}

// UpdateTeacher validates input and updates an existing teacher for administrators.
func (s *TeacherService) UpdateTeacher(ctx context.Context, params UpdateTeacherParams) (teacher Teacher, err error) {
	if s == nil || s.teachers == nil {
		err = fmt.Errorf("teacher repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateTeacher", "teacher_id", params.TeacherID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update teacher", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "teacher updated")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if vErr := validateTeacherInput(params.Input); vErr.HasErrors() {
		err = vErr
		return
	}

	record, err := s.teachers.GetTeacher(ctx, params.TeacherID)
	if err != nil {
		err = mapTeacherRepoError(err)
		return
	}

	teacher = teacherFromRecord(record)
	teacher.FullName = strings.TrimSpace(params.Input.FullName)
	teacher.Email = strings.ToLower(strings.TrimSpace(params.Input.Email))
	teacher.Phone = strings.TrimSpace(params.Input.Phone)
	teacher.Specialty = strings.TrimSpace(params.Input.Specialty)
	teacher.UpdatedAt = s.now()

	if err = s.teachers.UpdateTeacher(ctx, teacherToRecord(teacher)); err != nil {
		err = mapTeacherRepoError(err)
		return
	}
	return
}

// GetTeacher retrieves a single teacher.
func (s *TeacherService) GetTeacher(ctx context.Context, principal Principal, teacherID string) (Teacher, error) {
	if s == nil || s.teachers == nil {
		return Teacher{}, fmt.Errorf("teacher repository not configured")
	}
	record, err := s.teachers.GetTeacher(ctx, teacherID)
	if err != nil {
		return Teacher{}, mapTeacherRepoError(err)
	}
	return teacherFromRecord(record), nil
}

// ListTeachers enumerates all teachers.
func (s *TeacherService) ListTeachers(ctx context.Context, principal Principal) ([]Teacher, error) {
	if s == nil || s.teachers == nil {
		return nil, fmt.Errorf("teacher repository not configured")
	}
	records, err := s.teachers.ListTeachers(ctx)
	if err != nil {
		return nil, mapTeacherRepoError(err)
	}
	teachers := make([]Teacher, 0, len(records))
	for _, record := range records {
		teachers = append(teachers, teacherFromRecord(record))
	}
	return teachers, nil
}

// DeleteTeacher removes a teacher for administrators. Classes still
// referencing the teacher keep the persistence layer from deleting the row.
func (s *TeacherService) DeleteTeacher(ctx context.Context, principal Principal, teacherID string) error {
	if s == nil || s.teachers == nil {
		return fmt.Errorf("teacher repository not configured")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteTeacher", "teacher_id", teacherID)
	if err := s.teachers.DeleteTeacher(ctx, teacherID); err != nil {
		err = mapTeacherRepoError(err)
		logger.ErrorContext(ctx, "failed to delete teacher", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "teacher deleted")
	return nil
}

// TeacherExists reports whether the teacher is on record. Satisfies the
// TeacherDirectory dependency of the class service.
func (s *TeacherService) TeacherExists(ctx context.Context, teacherID string) (bool, error) {
	if s == nil || s.teachers == nil {
		return false, fmt.Errorf("teacher repository not configured")
	}
	_, err := s.teachers.GetTeacher(ctx, teacherID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return false, nil
		}
		return false, mapTeacherRepoError(err)
	}
	return true, nil
}

func validateTeacherInput(input TeacherInput) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.FullName) == "" {
		vErr.add("full_name", "full_name is required")
	}
	if email := strings.TrimSpace(input.Email); email != "" && !strings.Contains(email, "@") {
		vErr.add("email", "email must hold an @ sign")
	}
	return vErr
}

func teacherFromRecord(record persistence.Teacher) Teacher {
	return Teacher(record)
}

func teacherToRecord(teacher Teacher) persistence.Teacher {
	return persistence.Teacher(teacher)
}

func mapTeacherRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		return ErrInUse
	}
	return err
}
