package persistence

import (
	"context"
	"time"
)

// ClassRepository exposes CRUD operations for classes.
type ClassRepository interface {
	CreateClass(ctx context.Context, class Class) error
	UpdateClass(ctx context.Context, class Class) error
	GetClass(ctx context.Context, id string) (Class, error)
	ListClasses(ctx context.Context) ([]Class, error)
	ListClassesForTeacher(ctx context.Context, teacherID string) ([]Class, error)
	DeleteClass(ctx context.Context, id string) error
}

// TeacherRepository exposes CRUD operations for teachers.
type TeacherRepository interface {
	CreateTeacher(ctx context.Context, teacher Teacher) error
	UpdateTeacher(ctx context.Context, teacher Teacher) error
	GetTeacher(ctx context.Context, id string) (Teacher, error)
	ListTeachers(ctx context.Context) ([]Teacher, error)
	DeleteTeacher(ctx context.Context, id string) error
}

// StudentRepository exposes CRUD operations for students.
type StudentRepository interface {
	CreateStudent(ctx context.Context, student Student) error
	UpdateStudent(ctx context.Context, student Student) error
	GetStudent(ctx context.Context, id string) (Student, error)
	ListStudents(ctx context.Context) ([]Student, error)
	DeleteStudent(ctx context.Context, id string) error
}

// EnrollmentRepository links students to classes.
type EnrollmentRepository interface {
	CreateEnrollment(ctx context.Context, enrollment Enrollment) error
	DeleteEnrollment(ctx context.Context, classID, studentID string) error
	ListEnrollmentsForClass(ctx context.Context, classID string) ([]Enrollment, error)
	ListEnrollmentsForStudent(ctx context.Context, studentID string) ([]Enrollment, error)
}

// AttendanceFilter narrows attendance queries. Zero-valued fields do not
// constrain. DatePrefix matches "YYYY-MM" for monthly reports.
type AttendanceFilter struct {
	ClassID     string
	Date        string
	DatePrefix  string
	SubjectID   string
	SubjectKind string
}

// AttendanceRepository stores attendance marks.
//
// FindRecord retrieves the row matching the full composite identity so the
// marking service can decide between insert and update. That check-then-
// write sequence is not atomic; concurrent marks for the same subject race
// and the later write wins.
type AttendanceRepository interface {
	CreateRecord(ctx context.Context, record AttendanceRecord) error
	UpdateRecord(ctx context.Context, record AttendanceRecord) error
	FindRecord(ctx context.Context, classID, date, sessionTime, subjectID, subjectKind string) (AttendanceRecord, error)
	ListRecords(ctx context.Context, filter AttendanceFilter) ([]AttendanceRecord, error)
}

// AccountRepository stores staff login accounts.
type AccountRepository interface {
	CreateAccount(ctx context.Context, account StaffAccount) error
	UpdateAccount(ctx context.Context, account StaffAccount) error
	GetAccount(ctx context.Context, id string) (StaffAccount, error)
	GetAccountByEmail(ctx context.Context, email string) (StaffAccount, error)
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
