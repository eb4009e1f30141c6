// Package memory implements the persistence repositories on in-process maps.
// It mirrors the SQLite implementation's error and ordering semantics and
// exists for tests and fixtures that do not want a database file.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/persistence"
)

// Store bundles the map-backed repositories over one shared lock.
type Store struct {
	Classes     *ClassRepository
	Teachers    *TeacherRepository
	Students    *StudentRepository
	Enrollments *EnrollmentRepository
	Attendance  *AttendanceRepository
	Accounts    *AccountRepository
	Sessions    *SessionRepository
}

// state is shared by all repositories so referential checks can look across
// entities the way foreign keys do.
type state struct {
	mu sync.RWMutex

	classes     map[string]persistence.Class
	teachers    map[string]persistence.Teacher
	students    map[string]persistence.Student
	enrollments map[string]persistence.Enrollment
	attendance  map[string]persistence.AttendanceRecord
	accounts    map[string]persistence.StaffAccount
	sessions    map[string]persistence.Session // keyed by token
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	s := &state{
		classes:     make(map[string]persistence.Class),
		teachers:    make(map[string]persistence.Teacher),
		students:    make(map[string]persistence.Student),
		enrollments: make(map[string]persistence.Enrollment),
		attendance:  make(map[string]persistence.AttendanceRecord),
		accounts:    make(map[string]persistence.StaffAccount),
		sessions:    make(map[string]persistence.Session),
	}
	return &Store{
		Classes:     &ClassRepository{state: s},
		Teachers:    &TeacherRepository{state: s},
		Students:    &StudentRepository{state: s},
		Enrollments: &EnrollmentRepository{state: s},
		Attendance:  &AttendanceRepository{state: s},
		Accounts:    &AccountRepository{state: s},
		Sessions:    &SessionRepository{state: s},
	}
}

func stampNew(createdAt time.Time) time.Time {
	if createdAt.IsZero() {
		return time.Now().UTC()
	}
	return createdAt
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneTimePtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

// TeacherRepository implements persistence.TeacherRepository on maps.
type TeacherRepository struct {
	state *state
}

func (r *TeacherRepository) CreateTeacher(_ context.Context, teacher persistence.Teacher) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if _, exists := r.state.teachers[teacher.ID]; exists {
		return persistence.ErrDuplicate
	}
	for _, other := range r.state.teachers {
		if other.Email == teacher.Email {
			return persistence.ErrDuplicate
		}
	}
	teacher.CreatedAt = stampNew(teacher.CreatedAt)
	teacher.UpdatedAt = teacher.CreatedAt
	r.state.teachers[teacher.ID] = teacher
	return nil
}

func (r *TeacherRepository) UpdateTeacher(_ context.Context, teacher persistence.Teacher) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	existing, ok := r.state.teachers[teacher.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	for id, other := range r.state.teachers {
		if id != teacher.ID && other.Email == teacher.Email {
			return persistence.ErrDuplicate
		}
	}
	teacher.CreatedAt = existing.CreatedAt
	teacher.UpdatedAt = time.Now().UTC()
	r.state.teachers[teacher.ID] = teacher
	return nil
}

func (r *TeacherRepository) GetTeacher(_ context.Context, id string) (persistence.Teacher, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	teacher, ok := r.state.teachers[id]
	if !ok {
		return persistence.Teacher{}, persistence.ErrNotFound
	}
	return teacher, nil
}

func (r *TeacherRepository) ListTeachers(_ context.Context) ([]persistence.Teacher, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	teachers := make([]persistence.Teacher, 0, len(r.state.teachers))
	for _, teacher := range r.state.teachers {
		teachers = append(teachers, teacher)
	}
	sort.Slice(teachers, func(i, j int) bool {
		if teachers[i].FullName != teachers[j].FullName {
			return teachers[i].FullName < teachers[j].FullName
		}
		return teachers[i].ID < teachers[j].ID
	})
	return teachers, nil
}

func (r *TeacherRepository) DeleteTeacher(_ context.Context, id string) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if _, ok := r.state.teachers[id]; !ok {
		return persistence.ErrNotFound
	}
	for _, class := range r.state.classes {
		if class.TeacherID != nil && *class.TeacherID == id {
			return persistence.ErrForeignKeyViolation
		}
	}
	for _, account := range r.state.accounts {
		if account.TeacherID != nil && *account.TeacherID == id {
			return persistence.ErrForeignKeyViolation
		}
	}
	delete(r.state.teachers, id)
	return nil
}

// StudentRepository implements persistence.StudentRepository on maps.
type StudentRepository struct {
	state *state
}

func (r *StudentRepository) CreateStudent(_ context.Context, student persistence.Student) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if _, exists := r.state.students[student.ID]; exists {
		return persistence.ErrDuplicate
	}
	student.Note = cloneStringPtr(student.Note)
	student.CreatedAt = stampNew(student.CreatedAt)
	student.UpdatedAt = student.CreatedAt
	r.state.students[student.ID] = student
	return nil
}

func (r *StudentRepository) UpdateStudent(_ context.Context, student persistence.Student) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	existing, ok := r.state.students[student.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	student.Note = cloneStringPtr(student.Note)
	student.CreatedAt = existing.CreatedAt
	student.UpdatedAt = time.Now().UTC()
	r.state.students[student.ID] = student
	return nil
}

func (r *StudentRepository) GetStudent(_ context.Context, id string) (persistence.Student, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	student, ok := r.state.students[id]
	if !ok {
		return persistence.Student{}, persistence.ErrNotFound
	}
	student.Note = cloneStringPtr(student.Note)
	return student, nil
}

func (r *StudentRepository) ListStudents(_ context.Context) ([]persistence.Student, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	students := make([]persistence.Student, 0, len(r.state.students))
	for _, student := range r.state.students {
		student.Note = cloneStringPtr(student.Note)
		students = append(students, student)
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].FullName != students[j].FullName {
			return students[i].FullName < students[j].FullName
		}
		return students[i].ID < students[j].ID
	})
	return students, nil
}

func (r *StudentRepository) DeleteStudent(_ context.Context, id string) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if _, ok := r.state.students[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.state.students, id)
	for enrollmentID, enrollment := range r.state.enrollments {
		if enrollment.StudentID == id {
			delete(r.state.enrollments, enrollmentID)
		}
	}
	return nil
}

// ClassRepository implements persistence.ClassRepository on maps.
type ClassRepository struct {
	state *state
}

func (r *ClassRepository) checkClassLocked(class persistence.Class) error {
	if class.StartDate > class.EndDate {
		return persistence.ErrConstraintViolation
	}
	if class.TeacherID != nil {
		if _, ok := r.state.teachers[*class.TeacherID]; !ok {
			return persistence.ErrForeignKeyViolation
		}
	}
	return nil
}

func (r *ClassRepository) CreateClass(_ context.Context, class persistence.Class) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if _, exists := r.state.classes[class.ID]; exists {
		return persistence.ErrDuplicate
	}
	if err := r.checkClassLocked(class); err != nil {
		return err
	}
	class.TeacherID = cloneStringPtr(class.TeacherID)
	class.CreatedAt = stampNew(class.CreatedAt)
	class.UpdatedAt = class.CreatedAt
	r.state.classes[class.ID] = class
	return nil
}

func (r *ClassRepository) UpdateClass(_ context.Context, class persistence.Class) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	existing, ok := r.state.classes[class.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	if err := r.checkClassLocked(class); err != nil {
		return err
	}
	class.TeacherID = cloneStringPtr(class.TeacherID)
	class.CreatedAt = existing.CreatedAt
	class.UpdatedAt = time.Now().UTC()
	r.state.classes[class.ID] = class
	return nil
}

func (r *ClassRepository) GetClass(_ context.Context, id string) (persistence.Class, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	class, ok := r.state.classes[id]
	if !ok {
		return persistence.Class{}, persistence.ErrNotFound
	}
	class.TeacherID = cloneStringPtr(class.TeacherID)
	return class, nil
}

func (r *ClassRepository) ListClasses(ctx context.Context) ([]persistence.Class, error) {
	return r.list(ctx, func(persistence.Class) bool { return true })
}

func (r *ClassRepository) ListClassesForTeacher(ctx context.Context, teacherID string) ([]persistence.Class, error) {
	return r.list(ctx, func(class persistence.Class) bool {
		return class.TeacherID != nil && *class.TeacherID == teacherID
	})
}

func (r *ClassRepository) list(_ context.Context, keep func(persistence.Class) bool) ([]persistence.Class, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	var classes []persistence.Class
	for _, class := range r.state.classes {
		if !keep(class) {
			continue
		}
		class.TeacherID = cloneStringPtr(class.TeacherID)
		classes = append(classes, class)
	}
	sort.Slice(classes, func(i, j int) bool {
		if classes[i].Name != classes[j].Name {
			return classes[i].Name < classes[j].Name
		}
		return classes[i].ID < classes[j].ID
	})
	return classes, nil
}

func (r *ClassRepository) DeleteClass(_ context.Context, id string) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if _, ok := r.state.classes[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.state.classes, id)
	for enrollmentID, enrollment := range r.state.enrollments {
		if enrollment.ClassID == id {
			delete(r.state.enrollments, enrollmentID)
		}
	}
	for recordID, record := range r.state.attendance {
		if record.ClassID == id {
			delete(r.state.attendance, recordID)
		}
	}
	return nil
}

// EnrollmentRepository implements persistence.EnrollmentRepository on maps.
type EnrollmentRepository struct {
	state *state
}

func (r *EnrollmentRepository) CreateEnrollment(_ context.Context, enrollment persistence.Enrollment) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if _, exists := r.state.enrollments[enrollment.ID]; exists {
		return persistence.ErrDuplicate
	}
	if _, ok := r.state.classes[enrollment.ClassID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	if _, ok := r.state.students[enrollment.StudentID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	for _, other := range r.state.enrollments {
		if other.ClassID == enrollment.ClassID && other.StudentID == enrollment.StudentID {
			return persistence.ErrDuplicate
		}
	}
	enrollment.CreatedAt = stampNew(enrollment.CreatedAt)
	r.state.enrollments[enrollment.ID] = enrollment
	return nil
}

func (r *EnrollmentRepository) DeleteEnrollment(_ context.Context, classID, studentID string) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	for id, enrollment := range r.state.enrollments {
		if enrollment.ClassID == classID && enrollment.StudentID == studentID {
			delete(r.state.enrollments, id)
			return nil
		}
	}
	return persistence.ErrNotFound
}

func (r *EnrollmentRepository) ListEnrollmentsForClass(ctx context.Context, classID string) ([]persistence.Enrollment, error) {
	return r.list(ctx, func(enrollment persistence.Enrollment) bool {
		return enrollment.ClassID == classID
	})
}

func (r *EnrollmentRepository) ListEnrollmentsForStudent(ctx context.Context, studentID string) ([]persistence.Enrollment, error) {
	return r.list(ctx, func(enrollment persistence.Enrollment) bool {
		return enrollment.StudentID == studentID
	})
}

func (r *EnrollmentRepository) list(_ context.Context, keep func(persistence.Enrollment) bool) ([]persistence.Enrollment, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	var enrollments []persistence.Enrollment
	for _, enrollment := range r.state.enrollments {
		if keep(enrollment) {
			enrollments = append(enrollments, enrollment)
		}
	}
	sort.Slice(enrollments, func(i, j int) bool {
		if !enrollments[i].CreatedAt.Equal(enrollments[j].CreatedAt) {
			return enrollments[i].CreatedAt.Before(enrollments[j].CreatedAt)
		}
		return enrollments[i].ID < enrollments[j].ID
	})
	return enrollments, nil
}

// AttendanceRepository implements persistence.AttendanceRepository on maps.
type AttendanceRepository struct {
	state *state
}

func validSubjectKind(kind string) bool {
	return kind == "teacher" || kind == "student"
}

func (r *AttendanceRepository) CreateRecord(_ context.Context, record persistence.AttendanceRecord) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if _, exists := r.state.attendance[record.ID]; exists {
		return persistence.ErrDuplicate
	}
	if _, ok := r.state.classes[record.ClassID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	if !validSubjectKind(record.SubjectKind) {
		return persistence.ErrConstraintViolation
	}
	record.CreatedAt = stampNew(record.CreatedAt)
	record.UpdatedAt = record.CreatedAt
	r.state.attendance[record.ID] = record
	return nil
}

func (r *AttendanceRepository) UpdateRecord(_ context.Context, record persistence.AttendanceRecord) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	existing, ok := r.state.attendance[record.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	existing.Present = record.Present
	existing.MarkedBy = record.MarkedBy
	existing.UpdatedAt = time.Now().UTC()
	r.state.attendance[record.ID] = existing
	return nil
}

func (r *AttendanceRepository) FindRecord(_ context.Context, classID, date, sessionTime, subjectID, subjectKind string) (persistence.AttendanceRecord, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	var (
		found persistence.AttendanceRecord
		ok    bool
	)
	for _, record := range r.state.attendance {
		if record.ClassID != classID || record.Date != date || record.SessionTime != sessionTime ||
			record.SubjectID != subjectID || record.SubjectKind != subjectKind {
			continue
		}
		if !ok || record.CreatedAt.Before(found.CreatedAt) ||
			(record.CreatedAt.Equal(found.CreatedAt) && record.ID < found.ID) {
			found = record
			ok = true
		}
	}
	if !ok {
		return persistence.AttendanceRecord{}, persistence.ErrNotFound
	}
	return found, nil
}

func (r *AttendanceRepository) ListRecords(_ context.Context, filter persistence.AttendanceFilter) ([]persistence.AttendanceRecord, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	var records []persistence.AttendanceRecord
	for _, record := range r.state.attendance {
		if filter.ClassID != "" && record.ClassID != filter.ClassID {
			continue
		}
		if filter.Date != "" && record.Date != filter.Date {
			continue
		}
		if filter.DatePrefix != "" && !strings.HasPrefix(record.Date, filter.DatePrefix) {
			continue
		}
		if filter.SubjectID != "" && record.SubjectID != filter.SubjectID {
			continue
		}
		if filter.SubjectKind != "" && record.SubjectKind != filter.SubjectKind {
			continue
		}
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.SessionTime != b.SessionTime {
			return a.SessionTime < b.SessionTime
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return records, nil
}

// AccountRepository implements persistence.AccountRepository on maps.
type AccountRepository struct {
	state *state
}

func (r *AccountRepository) CreateAccount(_ context.Context, account persistence.StaffAccount) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	account.Email = strings.ToLower(account.Email)
	if _, exists := r.state.accounts[account.ID]; exists {
		return persistence.ErrDuplicate
	}
	for _, other := range r.state.accounts {
		if other.Email == account.Email {
			return persistence.ErrDuplicate
		}
	}
	if account.TeacherID != nil {
		if _, ok := r.state.teachers[*account.TeacherID]; !ok {
			return persistence.ErrForeignKeyViolation
		}
	}
	account.TeacherID = cloneStringPtr(account.TeacherID)
	account.CreatedAt = stampNew(account.CreatedAt)
	account.UpdatedAt = account.CreatedAt
	r.state.accounts[account.ID] = account
	return nil
}

func (r *AccountRepository) UpdateAccount(_ context.Context, account persistence.StaffAccount) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	existing, ok := r.state.accounts[account.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	account.Email = strings.ToLower(account.Email)
	for id, other := range r.state.accounts {
		if id != account.ID && other.Email == account.Email {
			return persistence.ErrDuplicate
		}
	}
	if account.TeacherID != nil {
		if _, teacherExists := r.state.teachers[*account.TeacherID]; !teacherExists {
			return persistence.ErrForeignKeyViolation
		}
	}
	account.TeacherID = cloneStringPtr(account.TeacherID)
	account.CreatedAt = existing.CreatedAt
	account.UpdatedAt = time.Now().UTC()
	r.state.accounts[account.ID] = account
	return nil
}

func (r *AccountRepository) GetAccount(_ context.Context, id string) (persistence.StaffAccount, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	account, ok := r.state.accounts[id]
	if !ok {
		return persistence.StaffAccount{}, persistence.ErrNotFound
	}
	account.TeacherID = cloneStringPtr(account.TeacherID)
	return account, nil
}

func (r *AccountRepository) GetAccountByEmail(_ context.Context, email string) (persistence.StaffAccount, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	email = strings.ToLower(email)
	for _, account := range r.state.accounts {
		if account.Email == email {
			account.TeacherID = cloneStringPtr(account.TeacherID)
			return account, nil
		}
	}
	return persistence.StaffAccount{}, persistence.ErrNotFound
}

// SessionRepository implements persistence.SessionRepository on maps.
type SessionRepository struct {
	state *state
}

func (r *SessionRepository) CreateSession(_ context.Context, session persistence.Session) (persistence.Session, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if _, exists := r.state.sessions[session.Token]; exists {
		return persistence.Session{}, persistence.ErrDuplicate
	}
	if _, ok := r.state.accounts[session.AccountID]; !ok {
		return persistence.Session{}, persistence.ErrForeignKeyViolation
	}
	session.CreatedAt = stampNew(session.CreatedAt)
	session.UpdatedAt = session.CreatedAt
	session.RevokedAt = cloneTimePtr(session.RevokedAt)
	r.state.sessions[session.Token] = session
	return session, nil
}

func (r *SessionRepository) GetSession(_ context.Context, token string) (persistence.Session, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	session, ok := r.state.sessions[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	session.RevokedAt = cloneTimePtr(session.RevokedAt)
	return session, nil
}

func (r *SessionRepository) RevokeSession(_ context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	session, ok := r.state.sessions[token]
	if !ok || session.RevokedAt != nil {
		return persistence.Session{}, persistence.ErrNotFound
	}
	session.RevokedAt = &revokedAt
	session.UpdatedAt = time.Now().UTC()
	r.state.sessions[token] = session
	session.RevokedAt = cloneTimePtr(session.RevokedAt)
	return session, nil
}

func (r *SessionRepository) DeleteExpiredSessions(_ context.Context, reference time.Time) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	for token, session := range r.state.sessions {
		if session.ExpiresAt.Before(reference) {
			delete(r.state.sessions, token)
		}
	}
	return nil
}
