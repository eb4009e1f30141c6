package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/persistence"
)

// AttendanceRepository implements persistence.AttendanceRepository on SQLite.
type AttendanceRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewAttendanceRepository creates a SQLite-backed attendance repository.
func NewAttendanceRepository(pool *ConnectionPool) *AttendanceRepository {
	return &AttendanceRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const attendanceColumns = `id, class_id, attendance_date, session_time, subject_id, subject_kind, is_present, marked_by, created_at, updated_at`

// CreateRecord inserts a new attendance mark.
func (r *AttendanceRepository) CreateRecord(ctx context.Context, record persistence.AttendanceRecord) error {
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = record.CreatedAt

	_, err := r.helper.Exec(ctx, `
		INSERT INTO attendance_records (`+attendanceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.ClassID,
		record.Date,
		record.SessionTime,
		record.SubjectID,
		record.SubjectKind,
		boolToInt(record.Present),
		record.MarkedBy,
		formatTime(record.CreatedAt),
		formatTime(record.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateRecord overwrites an existing attendance mark. Last write wins.
func (r *AttendanceRepository) UpdateRecord(ctx context.Context, record persistence.AttendanceRecord) error {
	result, err := r.helper.Exec(ctx, `
		UPDATE attendance_records
		SET is_present = ?, marked_by = ?, updated_at = ?
		WHERE id = ?`,
		boolToInt(record.Present),
		record.MarkedBy,
		formatTime(time.Now().UTC()),
		record.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowAffected(result)
}

// FindRecord retrieves the mark matching the full composite identity, or
// persistence.ErrNotFound. When duplicates exist (a race the schema allows),
// the oldest row is returned so repeated marks keep updating the same row.
func (r *AttendanceRepository) FindRecord(ctx context.Context, classID, date, sessionTime, subjectID, subjectKind string) (persistence.AttendanceRecord, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance_records
		WHERE class_id = ? AND attendance_date = ? AND session_time = ? AND subject_id = ? AND subject_kind = ?
		ORDER BY created_at, id
		LIMIT 1`,
		classID, date, sessionTime, subjectID, subjectKind,
	)
	record, err := scanAttendance(row)
	if err != nil {
		return persistence.AttendanceRecord{}, r.mapper.MapError(err)
	}
	return record, nil
}

// ListRecords returns attendance marks matching the filter.
func (r *AttendanceRepository) ListRecords(ctx context.Context, filter persistence.AttendanceFilter) ([]persistence.AttendanceRecord, error) {
	conditions := make([]string, 0, 4)
	args := make([]any, 0, 4)

	if filter.ClassID != "" {
		conditions = append(conditions, "class_id = ?")
		args = append(args, filter.ClassID)
	}
	if filter.Date != "" {
		conditions = append(conditions, "attendance_date = ?")
		args = append(args, filter.Date)
	}
	if filter.DatePrefix != "" {
		conditions = append(conditions, "attendance_date LIKE ?")
		args = append(args, filter.DatePrefix+"%")
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, "subject_id = ?")
		args = append(args, filter.SubjectID)
	}
	if filter.SubjectKind != "" {
		conditions = append(conditions, "subject_kind = ?")
		args = append(args, filter.SubjectKind)
	}

	query := `SELECT ` + attendanceColumns + ` FROM attendance_records`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY attendance_date, session_time, created_at, id`

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var records []persistence.AttendanceRecord
	for rows.Next() {
		record, err := scanAttendance(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanAttendance(row rowScanner) (persistence.AttendanceRecord, error) {
	var (
		record    persistence.AttendanceRecord
		present   int
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&record.ID,
		&record.ClassID,
		&record.Date,
		&record.SessionTime,
		&record.SubjectID,
		&record.SubjectKind,
		&present,
		&record.MarkedBy,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.AttendanceRecord{}, err
	}
	record.Present = present != 0
	record.CreatedAt = parseTime(createdAt)
	record.UpdatedAt = parseTime(updatedAt)
	return record, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
