package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/persistence"
)

// EnrollmentRepository captures the persistence interactions needed by the service.
type EnrollmentRepository interface {
	CreateEnrollment(ctx context.Context, enrollment persistence.Enrollment) error
	DeleteEnrollment(ctx context.Context, classID, studentID string) error
	ListEnrollmentsForClass(ctx context.Context, classID string) ([]persistence.Enrollment, error)
	ListEnrollmentsForStudent(ctx context.Context, studentID string) ([]persistence.Enrollment, error)
}

// EnrollmentService links students to classes.
type EnrollmentService struct {
	enrollments EnrollmentRepository
	students    StudentRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewEnrollmentService wires dependencies for enrollment operations.
func NewEnrollmentService(enrollments EnrollmentRepository, students StudentRepository, idGenerator func() string, now func() time.Time) *EnrollmentService {
	return NewEnrollmentServiceWithLogger(enrollments, students, idGenerator, now, nil)
}

// NewEnrollmentServiceWithLogger constructs an enrollment service with a specified logger.
func NewEnrollmentServiceWithLogger(enrollments EnrollmentRepository, students StudentRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *EnrollmentService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &EnrollmentService{
		enrollments: enrollments,
		students:    students,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *EnrollmentService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EnrollmentService", operation, attrs...)
}

// Enroll adds a student to a class for administrators.
func (s *EnrollmentService) Enroll(ctx context.Context, params EnrollParams) (enrollment Enrollment, err error) {
	if s == nil || s.enrollments == nil {
		err = fmt.Errorf("enrollment repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Enroll", "class_id", params.ClassID, "student_id", params.StudentID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to enroll student", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "student enrolled")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	if params.ClassID == "" {
		vErr.add("class_id", "class_id is required")
	}
	if params.StudentID == "" {
		vErr.add("student_id", "student_id is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	enrollment = Enrollment{
		ID:        s.idGenerator(),
		ClassID:   params.ClassID,
		StudentID: params.StudentID,
		CreatedAt: s.now(),
	}

	if err = s.enrollments.CreateEnrollment(ctx, persistence.Enrollment(enrollment)); err != nil {
		err = mapEnrollmentRepoError(err)
		return
	}
	return
}

// Unenroll removes a student from a class for administrators.
func (s *EnrollmentService) Unenroll(ctx context.Context, params EnrollParams) error {
	if s == nil || s.enrollments == nil {
		return fmt.Errorf("enrollment repository not configured")
	}
	if !params.Principal.IsAdmin {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "Unenroll", "class_id", params.ClassID, "student_id", params.StudentID)
	if err := s.enrollments.DeleteEnrollment(ctx, params.ClassID, params.StudentID); err != nil {
		err = mapEnrollmentRepoError(err)
		logger.ErrorContext(ctx, "failed to unenroll student", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "student unenrolled")
	return nil
}

// ClassRoster lists the students enrolled in a class, in enrollment order.
func (s *EnrollmentService) ClassRoster(ctx context.Context, principal Principal, classID string) ([]Student, error) {
	if s == nil || s.enrollments == nil || s.students == nil {
		return nil, fmt.Errorf("enrollment repository not configured")
	}

	enrollments, err := s.enrollments.ListEnrollmentsForClass(ctx, classID)
	if err != nil {
		return nil, mapEnrollmentRepoError(err)
	}

	roster := make([]Student, 0, len(enrollments))
	for _, enrollment := range enrollments {
		record, err := s.students.GetStudent(ctx, enrollment.StudentID)
		if err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				continue
			}
			return nil, mapStudentRepoError(err)
		}
		roster = append(roster, studentFromRecord(record))
	}
	return roster, nil
}

func mapEnrollmentRepoError(err error) error {
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
		vErr := &ValidationError{}
		vErr.add("class_id", "class or student does not exist")
		return vErr
	}
	return err
}
