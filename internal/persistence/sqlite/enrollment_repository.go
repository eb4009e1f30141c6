package sqlite

import (
	"context"
	"time"

	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/persistence"
)

// EnrollmentRepository implements persistence.EnrollmentRepository on SQLite.
type EnrollmentRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewEnrollmentRepository creates a SQLite-backed enrollment repository.
func NewEnrollmentRepository(pool *ConnectionPool) *EnrollmentRepository {
	return &EnrollmentRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateEnrollment links a student to a class.
func (r *EnrollmentRepository) CreateEnrollment(ctx context.Context, enrollment persistence.Enrollment) error {
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = time.Now().UTC()
	}
	_, err := r.helper.Exec(ctx, `
		INSERT INTO enrollments (id, class_id, student_id, created_at)
		VALUES (?, ?, ?, ?)`,
		enrollment.ID,
		enrollment.ClassID,
		enrollment.StudentID,
		formatTime(enrollment.CreatedAt),
	)
	return r.mapper.MapError(err)
}

// DeleteEnrollment removes the link between a student and a class.
func (r *EnrollmentRepository) DeleteEnrollment(ctx context.Context, classID, studentID string) error {
	result, err := r.helper.Exec(ctx,
		`DELETE FROM enrollments WHERE class_id = ? AND student_id = ?`,
		classID, studentID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowAffected(result)
}

// ListEnrollmentsForClass returns the enrollments of one class.
func (r *EnrollmentRepository) ListEnrollmentsForClass(ctx context.Context, classID string) ([]persistence.Enrollment, error) {
	return r.list(ctx, `SELECT id, class_id, student_id, created_at FROM enrollments WHERE class_id = ? ORDER BY created_at, id`, classID)
}

// ListEnrollmentsForStudent returns the enrollments of one student.
func (r *EnrollmentRepository) ListEnrollmentsForStudent(ctx context.Context, studentID string) ([]persistence.Enrollment, error) {
	return r.list(ctx, `SELECT id, class_id, student_id, created_at FROM enrollments WHERE student_id = ? ORDER BY created_at, id`, studentID)
}

func (r *EnrollmentRepository) list(ctx context.Context, query string, args ...any) ([]persistence.Enrollment, error) {
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var enrollments []persistence.Enrollment
	for rows.Next() {
		var (
			enrollment persistence.Enrollment
			createdAt  string
		)
		if err := rows.Scan(&enrollment.ID, &enrollment.ClassID, &enrollment.StudentID, &createdAt); err != nil {
			return nil, r.mapper.MapError(err)
		}
		enrollment.CreatedAt = parseTime(createdAt)
		enrollments = append(enrollments, enrollment)
	}
	return enrollments, rows.Err()
}
