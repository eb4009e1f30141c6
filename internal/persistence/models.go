package persistence

import "time"

// Class represents one class offered by the center.
//
// DaysOfWeek holds the weekly schedule as stored: a JSON array of slot
// objects for rows written by this service, or whatever string the original
// spreadsheet import left behind. The application layer normalizes it
// through the schedule parser; persistence never interprets it.
type Class struct {
	ID               string
	Name             string
	Subject          string
	TeacherID        *string
	StartDate        string // "YYYY-MM-DD"
	EndDate          string // "YYYY-MM-DD"
	DurationMinutes  int
	DaysOfWeek       string
	SalaryPerSession int64
	MonthlyFee       int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Teacher represents a teaching staff member.
type Teacher struct {
	ID        string
	FullName  string
	Email     string
	Phone     string
	Specialty string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Student represents an enrolled learner.
type Student struct {
	ID         string
	FullName   string
	Phone      string
	ParentName string
	Note       *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Enrollment links a student to a class.
type Enrollment struct {
	ID        string
	ClassID   string
	StudentID string
	CreatedAt time.Time
}

// AttendanceRecord is one attendance mark for a subject in a session.
//
// The composite identity used for upserts is (class, date, session time,
// subject id, subject kind). There is deliberately no unique constraint on
// it: writes follow the original's check-then-write pattern and the last
// write wins.
type AttendanceRecord struct {
	ID          string
	ClassID     string
	Date        string // "YYYY-MM-DD"
	SessionTime string // "HH:MM" session start
	SubjectID   string
	SubjectKind string // "teacher" or "student"
	Present     bool
	MarkedBy    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StaffAccount represents a login account for center staff.
type StaffAccount struct {
	ID           string
	Email        string
	DisplayName  string
	IsAdmin      bool
	TeacherID    *string
	PasswordHash string
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session represents an authentication session persisted for an account.
type Session struct {
	ID        string
	AccountID string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
