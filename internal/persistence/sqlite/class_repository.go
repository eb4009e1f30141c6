package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/persistence"
)

// ClassRepository implements persistence.ClassRepository on SQLite.
type ClassRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewClassRepository creates a SQLite-backed class repository.
func NewClassRepository(pool *ConnectionPool) *ClassRepository {
	return &ClassRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const classColumns = `id, name, subject, teacher_id, start_date, end_date, duration_minutes, days_of_week, salary_per_session, monthly_fee, created_at, updated_at`

// CreateClass inserts a new class row.
func (r *ClassRepository) CreateClass(ctx context.Context, class persistence.Class) error {
	now := time.Now().UTC()
	if class.CreatedAt.IsZero() {
		class.CreatedAt = now
	}
	class.UpdatedAt = class.CreatedAt

	_, err := r.helper.Exec(ctx, `
		INSERT INTO classes (`+classColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		class.ID,
		class.Name,
		class.Subject,
		nullString(class.TeacherID),
		class.StartDate,
		class.EndDate,
		class.DurationMinutes,
		class.DaysOfWeek,
		class.SalaryPerSession,
		class.MonthlyFee,
		formatTime(class.CreatedAt),
		formatTime(class.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateClass updates an existing class row.
func (r *ClassRepository) UpdateClass(ctx context.Context, class persistence.Class) error {
	result, err := r.helper.Exec(ctx, `
		UPDATE classes
		SET name = ?, subject = ?, teacher_id = ?, start_date = ?, end_date = ?,
		    duration_minutes = ?, days_of_week = ?, salary_per_session = ?, monthly_fee = ?, updated_at = ?
		WHERE id = ?`,
		class.Name,
		class.Subject,
		nullString(class.TeacherID),
		class.StartDate,
		class.EndDate,
		class.DurationMinutes,
		class.DaysOfWeek,
		class.SalaryPerSession,
		class.MonthlyFee,
		formatTime(time.Now().UTC()),
		class.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowAffected(result)
}

// GetClass retrieves a class by ID.
func (r *ClassRepository) GetClass(ctx context.Context, id string) (persistence.Class, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+classColumns+` FROM classes WHERE id = ?`, id)
	class, err := scanClass(row)
	if err != nil {
		return persistence.Class{}, r.mapper.MapError(err)
	}
	return class, nil
}

// ListClasses returns all classes ordered by name.
func (r *ClassRepository) ListClasses(ctx context.Context) ([]persistence.Class, error) {
	return r.listClasses(ctx, `SELECT `+classColumns+` FROM classes ORDER BY name, id`)
}

// ListClassesForTeacher returns the classes assigned to a teacher.
func (r *ClassRepository) ListClassesForTeacher(ctx context.Context, teacherID string) ([]persistence.Class, error) {
	return r.listClasses(ctx, `SELECT `+classColumns+` FROM classes WHERE teacher_id = ? ORDER BY name, id`, teacherID)
}

// DeleteClass removes a class row.
func (r *ClassRepository) DeleteClass(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM classes WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowAffected(result)
}

func (r *ClassRepository) listClasses(ctx context.Context, query string, args ...any) ([]persistence.Class, error) {
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var classes []persistence.Class
	for rows.Next() {
		class, err := scanClass(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		classes = append(classes, class)
	}
	return classes, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClass(row rowScanner) (persistence.Class, error) {
	var (
		class     persistence.Class
		teacherID sql.NullString
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&class.ID,
		&class.Name,
		&class.Subject,
		&teacherID,
		&class.StartDate,
		&class.EndDate,
		&class.DurationMinutes,
		&class.DaysOfWeek,
		&class.SalaryPerSession,
		&class.MonthlyFee,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Class{}, err
	}
	if teacherID.Valid {
		class.TeacherID = &teacherID.String
	}
	class.CreatedAt = parseTime(createdAt)
	class.UpdatedAt = parseTime(updatedAt)
	return class, nil
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func requireRowAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
