package sqlite

import (
	"context"
	"time"

	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/persistence"
)

// TeacherRepository implements persistence.TeacherRepository on SQLite.
type TeacherRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewTeacherRepository creates a SQLite-backed teacher repository.
func NewTeacherRepository(pool *ConnectionPool) *TeacherRepository {
	return &TeacherRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const teacherColumns = `id, full_name, email, phone, specialty, created_at, updated_at`

// CreateTeacher inserts a new teacher row.
func (r *TeacherRepository) CreateTeacher(ctx context.Context, teacher persistence.Teacher) error {
	now := time.Now().UTC()
	if teacher.CreatedAt.IsZero() {
		teacher.CreatedAt = now
	}
	teacher.UpdatedAt = teacher.CreatedAt

	_, err := r.helper.Exec(ctx, `
		INSERT INTO teachers (`+teacherColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		teacher.ID,
		teacher.FullName,
		teacher.Email,
		teacher.Phone,
		teacher.Specialty,
		formatTime(teacher.CreatedAt),
		formatTime(teacher.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateTeacher updates an existing teacher row.
func (r *TeacherRepository) UpdateTeacher(ctx context.Context, teacher persistence.Teacher) error {
	result, err := r.helper.Exec(ctx, `
		UPDATE teachers
		SET full_name = ?, email = ?, phone = ?, specialty = ?, updated_at = ?
		WHERE id = ?`,
		teacher.FullName,
		teacher.Email,
		teacher.Phone,
		teacher.Specialty,
		formatTime(time.Now().UTC()),
		teacher.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowAffected(result)
}

// GetTeacher retrieves a teacher by ID.
func (r *TeacherRepository) GetTeacher(ctx context.Context, id string) (persistence.Teacher, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+teacherColumns+` FROM teachers WHERE id = ?`, id)
	teacher, err := scanTeacher(row)
	if err != nil {
		return persistence.Teacher{}, r.mapper.MapError(err)
	}
	return teacher, nil
}

// ListTeachers returns all teachers ordered by name.
func (r *TeacherRepository) ListTeachers(ctx context.Context) ([]persistence.Teacher, error) {
	rows, err := r.helper.Query(ctx, `SELECT `+teacherColumns+` FROM teachers ORDER BY full_name, id`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var teachers []persistence.Teacher
	for rows.Next() {
		teacher, err := scanTeacher(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		teachers = append(teachers, teacher)
	}
	return teachers, rows.Err()
}

// DeleteTeacher removes a teacher row.
func (r *TeacherRepository) DeleteTeacher(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM teachers WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowAffected(result)
}

func scanTeacher(row rowScanner) (persistence.Teacher, error) {
	var (
		teacher   persistence.Teacher
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&teacher.ID,
		&teacher.FullName,
		&teacher.Email,
		&teacher.Phone,
		&teacher.Specialty,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Teacher{}, err
	}
	teacher.CreatedAt = parseTime(createdAt)
	teacher.UpdatedAt = parseTime(updatedAt)
	return teacher, nil
}
