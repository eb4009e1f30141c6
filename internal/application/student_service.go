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

// StudentRepository captures the persistence interactions needed by the service.
type StudentRepository interface {
	CreateStudent(ctx context.Context, student persistence.Student) error
	UpdateStudent(ctx context.Context, student persistence.Student) error
	GetStudent(ctx context.Context, id string) (persistence.Student, error)
	ListStudents(ctx context.Context) ([]persistence.Student, error)
	DeleteStudent(ctx context.Context, id string) error
}

// StudentService orchestrates validation and persistence for student records.
type StudentService struct {
	students    StudentRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewStudentService wires dependencies for student operations.
func NewStudentService(students StudentRepository, idGenerator func() string, now func() time.Time) *StudentService {
	return NewStudentServiceWithLogger(students, idGenerator, now, nil)
}

// NewStudentServiceWithLogger constructs a student service with a specified logger.
func NewStudentServiceWithLogger(students StudentRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *StudentService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &StudentService{
		students:    students,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *StudentService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "StudentService", operation, attrs...)
}

// CreateStudent validates input and persists a new student.
func (s *StudentService) CreateStudent(ctx context.Context, params CreateStudentParams) (student Student, err error) {
	if s == nil || s.students == nil {
		err = fmt.Errorf("student repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateStudent", "principal_id", params.Principal.AccountID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create student", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("student_id", student.ID).InfoContext(ctx, "student created")
	}()

	if vErr := validateStudentInput(params.Input); vErr.HasErrors() {
		err = vErr
		return
	}

	createdAt := s.now()
	student = Student{
		ID:         s.idGenerator(),
		FullName:   strings.TrimSpace(params.Input.FullName),
		Phone:      strings.TrimSpace(params.Input.Phone),
		ParentName: strings.TrimSpace(params.Input.ParentName),
		Note:       params.Input.Note,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}

	if err = s.students.CreateStudent(ctx, studentToRecord(student)); err != nil {
		err = mapStudentRepoError(err)
		return
	}
	return
}

// UpdateStudent validates input and updates an existing student.
func (s *StudentService) UpdateStudent(ctx context.Context, params UpdateStudentParams) (student Student, err error) {
	if s == nil || s.students == nil {
		err = fmt.Errorf("student repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateStudent", "student_id", params.StudentID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update student", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "student updated")
	}()

	if vErr := validateStudentInput(params.Input); vErr.HasErrors() {
		err = vErr
		return
	}

	record, err := s.students.GetStudent(ctx, params.StudentID)
	if err != nil {
		err = mapStudentRepoError(err)
		return
	}

	student = studentFromRecord(record)
	student.FullName = strings.TrimSpace(params.Input.FullName)
	student.Phone = strings.TrimSpace(params.Input.Phone)
	student.ParentName = strings.TrimSpace(params.Input.ParentName)
	student.Note = params.Input.Note
	student.UpdatedAt = s.now()

	if err = s.students.UpdateStudent(ctx, studentToRecord(student)); err != nil {
		err = mapStudentRepoError(err)
		return
	}
	return
}

// GetStudent retrieves a single student.
func (s *StudentService) GetStudent(ctx context.Context, principal Principal, studentID string) (Student, error) {
	if s == nil || s.students == nil {
		return Student{}, fmt.Errorf("student repository not configured")
	}
	record, err := s.students.GetStudent(ctx, studentID)
	if err != nil {
		return Student{}, mapStudentRepoError(err)
	}
	return studentFromRecord(record), nil
}

// ListStudents enumerates all students.
func (s *StudentService) ListStudents(ctx context.Context, principal Principal) ([]Student, error) {
	if s == nil || s.students == nil {
		return nil, fmt.Errorf("student repository not configured")
	}
	records, err := s.students.ListStudents(ctx)
	if err != nil {
		return nil, mapStudentRepoError(err)
	}
	students := make([]Student, 0, len(records))
	for _, record := range records {
		students = append(students, studentFromRecord(record))
	}
	return students, nil
}

// DeleteStudent removes a student for administrators.
func (s *StudentService) DeleteStudent(ctx context.Context, principal Principal, studentID string) error {
	if s == nil || s.students == nil {
		return fmt.Errorf("student repository not configured")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteStudent", "student_id", studentID)
	if err := s.students.DeleteStudent(ctx, studentID); err != nil {
		err = mapStudentRepoError(err)
		logger.ErrorContext(ctx, "failed to delete student", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "student deleted")
	return nil
}

func validateStudentInput(input StudentInput) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.FullName) == "" {
		vErr.add("full_name", "full_name is required")
	}
	return vErr
}

func studentFromRecord(record persistence.Student) Student {
	return Student(record)
}

func studentToRecord(student Student) persistence.Student {
	return persistence.Student(student)
}

func mapStudentRepoError(err error) error {
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
