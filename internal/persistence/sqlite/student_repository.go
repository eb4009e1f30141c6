package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/persistence"
)

// StudentRepository implements persistence.StudentRepository on SQLite.
type StudentRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewStudentRepository creates a SQLite-backed student repository.
func NewStudentRepository(pool *ConnectionPool) *StudentRepository {
	return &StudentRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const studentColumns = `id, full_name, phone, parent_name, note, created_at, updated_at`

// CreateStudent inserts a new student row.
func (r *StudentRepository) CreateStudent(ctx context.Context, student persistence.Student) error {
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = student.CreatedAt

	_, err := r.helper.Exec(ctx, `
		INSERT INTO students (`+studentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		student.ID,
		student.FullName,
		student.Phone,
		student.ParentName,
		nullString(student.Note),
		formatTime(student.CreatedAt),
		formatTime(student.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateStudent updates an existing student row.
func (r *StudentRepository) UpdateStudent(ctx context.Context, student persistence.Student) error {
	result, err := r.helper.Exec(ctx, `
		UPDATE students
		SET full_name = ?, phone = ?, parent_name = ?, note = ?, updated_at = ?
		WHERE id = ?`,
		student.FullName,
		student.Phone,
		student.ParentName,
		nullString(student.Note),
		formatTime(time.Now().UTC()),
		student.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowAffected(result)
}

// GetStudent retrieves a student by ID.
func (r *StudentRepository) GetStudent(ctx context.Context, id string) (persistence.Student, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+studentColumns+` FROM students WHERE id = ?`, id)
	student, err := scanStudent(row)
	if err != nil {
		return persistence.Student{}, r.mapper.MapError(err)
	}
	return student, nil
}

// ListStudents returns all students ordered by name.
func (r *StudentRepository) ListStudents(ctx context.Context) ([]persistence.Student, error) {
	rows, err := r.helper.Query(ctx, `SELECT `+studentColumns+` FROM students ORDER BY full_name, id`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var students []persistence.Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		students = append(students, student)
	}
	return students, rows.Err()
}

// DeleteStudent removes a student row.
func (r *StudentRepository) DeleteStudent(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM students WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowAffected(result)
}

func scanStudent(row rowScanner) (persistence.Student, error) {
	var (
		student   persistence.Student
		note      sql.NullString
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&student.ID,
		&student.FullName,
		&student.Phone,
		&student.ParentName,
		&note,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Student{}, err
	}
	if note.Valid {
		student.Note = &note.String
	}
	student.CreatedAt = parseTime(createdAt)
	student.UpdatedAt = parseTime(updatedAt)
	return student, nil
}
