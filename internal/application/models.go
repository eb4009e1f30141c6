package application

import (
	"time"

	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/schedule"
)

// Principal represents the authenticated staff member invoking a service method.
type Principal struct {
	AccountID string
	TeacherID string
	IsAdmin   bool
}

// ClassInput captures caller provided class fields.
//
// Slots carries whatever shape the caller supplied: a decoded JSON array for
// API writes or a raw string for rows migrated from spreadsheet exports. The
// service normalizes it through the schedule parser exactly once.
type ClassInput struct {
	Name             string
	Subject          string
	TeacherID        *string
	StartDate        string
	EndDate          string
	DurationMinutes  int
	Slots            any
	SalaryPerSession int64
	MonthlyFee       int64
}

// Class represents a class exposed by the application services.
type Class struct {
	ID               string
	Name             string
	Subject          string
	TeacherID        *string
	StartDate        string
	EndDate          string
	DurationMinutes  int
	Slots            []schedule.Slot
	SalaryPerSession int64
	MonthlyFee       int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ScheduleClass converts the class into the schedule engine's input shape.
func (c Class) ScheduleClass() schedule.Class {
	return schedule.Class{
		ID:              c.ID,
		StartDate:       c.StartDate,
		EndDate:         c.EndDate,
		DurationMinutes: c.DurationMinutes,
		Slots:           c.Slots,
	}
}

// CreateClassParams wraps the data required to create a class.
type CreateClassParams struct {
	Principal Principal
	Input     ClassInput
}

// UpdateClassParams wraps the data required to update an existing class.
type UpdateClassParams struct {
	Principal Principal
	ClassID   string
	Input     ClassInput
}

// TeacherInput captures caller provided teacher fields.
type TeacherInput struct {
	FullName  string
	Email     string
	Phone     string
	Specialty string
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

// CreateTeacherParams wraps the data required to create a teacher.
type CreateTeacherParams struct {
	Principal Principal
	Input     TeacherInput
}

// UpdateTeacherParams wraps the data required to update a teacher.
type UpdateTeacherParams struct {
	Principal Principal
	TeacherID string
	Input     TeacherInput
}

// StudentInput captures caller provided student fields.
type StudentInput struct {
	FullName   string
	Phone      string
	ParentName string
	Note       *string
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

// CreateStudentParams wraps the data required to create a student.
type CreateStudentParams struct {
	Principal Principal
	Input     StudentInput
}

// UpdateStudentParams wraps the data required to update a student.
type UpdateStudentParams struct {
	Principal Principal
	StudentID string
	Input     StudentInput
}

// Enrollment links a student to a class.
type Enrollment struct {
	ID        string
	ClassID   string
	StudentID string
	CreatedAt time.Time
}

// EnrollParams wraps the data required to enroll a student in a class.
type EnrollParams struct {
	Principal Principal
	ClassID   string
	StudentID string
}

// MarkAttendanceParams wraps one attendance mark request.
//
// SessionTime is the caller's "HH:MM" label; the service resolves it against
// the class schedule and stores the matched session's exact start time, not
// the label itself.
type MarkAttendanceParams struct {
	Principal   Principal
	ClassID     string
	Date        string
	SessionTime string
	SubjectID   string
	SubjectKind schedule.SubjectKind
	Present     bool
}

// DailySheetParams requests the attendance sheet of a class on a date.
type DailySheetParams struct {
	Principal Principal
	ClassID   string
	Date      string
}

// SessionSheet pairs one session's identity with its attendance summary.
type SessionSheet struct {
	Session   schedule.ResolvedSession
	Aggregate schedule.SessionAggregate
	Records   []schedule.AttendanceRecord
}

// DailySheet is the attendance sheet of one class on one date, ordered by
// session start time. Orphaned entries carry records whose session no longer
// exists in the schedule.
type DailySheet struct {
	ClassID  string
	Date     string
	Sessions []SessionSheet
}

// SalaryReportParams requests a teacher's salary report for one month.
type SalaryReportParams struct {
	Principal Principal
	TeacherID string
	Month     string // "YYYY-MM"
}

// SalaryLine is one class's contribution to a monthly salary report.
type SalaryLine struct {
	ClassID          string
	ClassName        string
	SessionsTaught   int
	SalaryPerSession int64
	Amount           int64
}

// SalaryReport summarizes the billable sessions a teacher delivered in a month.
type SalaryReport struct {
	TeacherID string
	Month     string
	Lines     []SalaryLine
	Total     int64
}

// Account represents a staff login account exposed by the services.
type Account struct {
	ID          string
	Email       string
	DisplayName string
	IsAdmin     bool
	TeacherID   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Session represents an authenticated session issued to an account.
type Session struct {
	ID        string
	AccountID string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// AuthenticateParams captures the data required to authenticate an account.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication.
type AuthenticateResult struct {
	Account Account
	Session Session
}
