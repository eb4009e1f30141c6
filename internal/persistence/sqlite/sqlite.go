// Package sqlite implements the persistence repositories on SQLite via the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"embed"
	"time"

	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Store bundles the repositories sharing one connection pool.
type Store struct {
	pool *ConnectionPool

	Classes     *ClassRepository
	Teachers    *TeacherRepository
	Students    *StudentRepository
	Enrollments *EnrollmentRepository
	Attendance  *AttendanceRepository
	Accounts    *AccountRepository
	Sessions    *SessionRepository
}

// Open connects to the database and constructs all repositories.
func Open(config Config) (*Store, error) {
	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}
	return &Store{
		pool:        pool,
		Classes:     NewClassRepository(pool),
		Teachers:    NewTeacherRepository(pool),
		Students:    NewStudentRepository(pool),
		Enrollments: NewEnrollmentRepository(pool),
		Attendance:  NewAttendanceRepository(pool),
		Accounts:    NewAccountRepository(pool),
		Sessions:    NewSessionRepository(pool),
	}, nil
}

// Migrate applies the embedded schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	migrations, err := migration.LoadFromFS(migrationFiles, "migrations")
	if err != nil {
		return err
	}
	runner := migration.NewRunner(s.pool.DB(), time.Now)
	return runner.Run(ctx, migrations)
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

const timeLayout = time.RFC3339

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
