package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/application"
	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/persistence"
	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/persistence/memory"
	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/schedule"
	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/testfixtures"
)

// repoSet is the slice of storage the services need, abstracted so the same
// lifecycle runs against both the SQLite and the in-memory backends.
type repoSet struct {
	classes     persistence.ClassRepository
	teachers    persistence.TeacherRepository
	students    persistence.StudentRepository
	enrollments persistence.EnrollmentRepository
	attendance  persistence.AttendanceRepository
}

type services struct {
	repos       repoSet
	teachers    *application.TeacherService
	students    *application.StudentService
	classes     *application.ClassService
	enrollments *application.EnrollmentService
	attendance  *application.AttendanceService
	salary      *application.SalaryService
}

type backend struct {
	name string
	open func(t *testing.T) repoSet
}

func backends() []backend {
	return []backend{
		{
			name: "sqlite",
			open: func(t *testing.T) repoSet {
				harness := testfixtures.NewSQLiteHarness(t)
				store := harness.Store
				return repoSet{
					classes:     store.Classes,
					teachers:    store.Teachers,
					students:    store.Students,
					enrollments: store.Enrollments,
					attendance:  store.Attendance,
				}
			},
		},
		{
			name: "memory",
			open: func(t *testing.T) repoSet {
				store := memory.NewStore()
				return repoSet{
					classes:     store.Classes,
					teachers:    store.Teachers,
					students:    store.Students,
					enrollments: store.Enrollments,
					attendance:  store.Attendance,
				}
			},
		},
	}
}

func newServices(t *testing.T, repos repoSet) services {
	t.Helper()

	clock := testfixtures.NewClock(time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC))
	ids := testfixtures.NewIDGenerator("it")

	teachers := application.NewTeacherService(repos.teachers, ids.NextFunc(), clock.NowFunc())
	return services{
		repos:       repos,
		teachers:    teachers,
		students:    application.NewStudentService(repos.students, ids.NextFunc(), clock.NowFunc()),
		classes:     application.NewClassService(repos.classes, teachers, ids.NextFunc(), clock.NowFunc()),
		enrollments: application.NewEnrollmentService(repos.enrollments, repos.students, ids.NextFunc(), clock.NowFunc()),
		attendance:  application.NewAttendanceService(repos.attendance, repos.classes, ids.NextFunc(), clock.NowFunc()),
		salary:      application.NewSalaryService(repos.classes, repos.attendance),
	}
}

// Drives the full lifecycle against each backend: register staff, set up a
// class, enroll students, mark a session and read the money back out.
func TestServicesEndToEnd(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			testServiceLifecycle(t, newServices(t, b.open(t)))
		})
	}
}

func testServiceLifecycle(t *testing.T, svc services) {
	ctx := context.Background()
	admin := application.Principal{AccountID: "acct-admin", IsAdmin: true}

	teacher, err := svc.teachers.CreateTeacher(ctx, application.CreateTeacherParams{
		Principal: admin,
		Input:     application.TeacherInput{FullName: "Mai Lan", Email: "mai.lan@example.com", Specialty: "Piano"},
	})
	if err != nil {
		t.Fatalf("CreateTeacher failed: %v", err)
	}

	// The schedule arrives as a raw JSON string, the shape legacy rows have.
	class, err := svc.classes.CreateClass(ctx, application.CreateClassParams{
		Principal: admin,
		Input: application.ClassInput{
			Name:             "Piano Beginners",
			Subject:          "Piano",
			TeacherID:        &teacher.ID,
			StartDate:        "2024-01-01",
			EndDate:          "2024-06-30",
			DurationMinutes:  90,
			Slots:            `[{"day":1,"start_time":"08:00"},{"day":4,"start_time":"14:00"}]`,
			SalaryPerSession: 200_000,
		},
	})
	if err != nil {
		t.Fatalf("CreateClass failed: %v", err)
	}
	if len(class.Slots) != 2 {
		t.Fatalf("expected 2 parsed slots, got %#v", class.Slots)
	}

	var studentIDs []string
	for _, name := range []string{"Bao Chau", "An Nhien"} {
		student, err := svc.students.CreateStudent(ctx, application.CreateStudentParams{
			Principal: admin,
			Input:     application.StudentInput{FullName: name},
		})
		if err != nil {
			t.Fatalf("CreateStudent failed: %v", err)
		}
		if _, err := svc.enrollments.Enroll(ctx, application.EnrollParams{
			Principal: admin,
			ClassID:   class.ID,
			StudentID: student.ID,
		}); err != nil {
			t.Fatalf("Enroll failed: %v", err)
		}
		studentIDs = append(studentIDs, student.ID)
	}

	roster, err := svc.enrollments.ClassRoster(ctx, admin, class.ID)
	if err != nil {
		t.Fatalf("ClassRoster failed: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("expected 2 students on the roster, got %#v", roster)
	}

	// 2024-03-07 is a Thursday; the 15:30 label falls inside the 14:00-15:30
	// session and must resolve to its start.
	teacherPrincipal := application.Principal{AccountID: "acct-teacher", TeacherID: teacher.ID}
	marks := []application.MarkAttendanceParams{
		{Principal: teacherPrincipal, ClassID: class.ID, Date: "2024-03-07", SessionTime: "15:30", SubjectID: teacher.ID, SubjectKind: schedule.SubjectTeacher, Present: true},
		{Principal: teacherPrincipal, ClassID: class.ID, Date: "2024-03-07", SessionTime: "14:00", SubjectID: studentIDs[0], SubjectKind: schedule.SubjectStudent, Present: true},
		{Principal: teacherPrincipal, ClassID: class.ID, Date: "2024-03-07", SessionTime: "14:45", SubjectID: studentIDs[1], SubjectKind: schedule.SubjectStudent, Present: false},
	}
	for _, params := range marks {
		record, err := svc.attendance.MarkAttendance(ctx, params)
		if err != nil {
			t.Fatalf("MarkAttendance failed for %s: %v", params.SubjectID, err)
		}
		if record.StartTime != "14:00" {
			t.Fatalf("expected mark to resolve to 14:00, got %q", record.StartTime)
		}
	}

	sheet, err := svc.attendance.DailySheet(ctx, application.DailySheetParams{
		Principal: teacherPrincipal,
		ClassID:   class.ID,
		Date:      "2024-03-07",
	})
	if err != nil {
		t.Fatalf("DailySheet failed: %v", err)
	}
	if len(sheet.Sessions) != 1 {
		t.Fatalf("expected one session on a Thursday, got %#v", sheet.Sessions)
	}
	entry := sheet.Sessions[0]
	if entry.Session.StartTime != "14:00" || entry.Session.EndTime != "15:30" {
		t.Fatalf("unexpected session bounds: %#v", entry.Session)
	}
	if entry.Aggregate.PresentTeachers != 1 || entry.Aggregate.TotalTeachers != 1 {
		t.Fatalf("unexpected teacher counts: %#v", entry.Aggregate)
	}
	if entry.Aggregate.PresentStudents != 1 || entry.Aggregate.TotalStudents != 2 {
		t.Fatalf("unexpected student counts: %#v", entry.Aggregate)
	}

	// Re-marking the same subject in the same session must not create a
	// second billable session.
	if _, err := svc.attendance.MarkAttendance(ctx, marks[0]); err != nil {
		t.Fatalf("repeated MarkAttendance failed: %v", err)
	}

	report, err := svc.salary.MonthlyReport(ctx, application.SalaryReportParams{
		Principal: teacherPrincipal,
		TeacherID: teacher.ID,
		Month:     "2024-03",
	})
	if err != nil {
		t.Fatalf("MonthlyReport failed: %v", err)
	}
	if len(report.Lines) != 1 || report.Lines[0].SessionsTaught != 1 {
		t.Fatalf("expected one billable session, got %#v", report.Lines)
	}
	if report.Total != 200_000 {
		t.Fatalf("expected total 200000, got %d", report.Total)
	}

	// Teachers with classes cannot be removed while assignments reference them.
	if err := svc.teachers.DeleteTeacher(ctx, admin, teacher.ID); !errors.Is(err, application.ErrInUse) {
		t.Fatalf("expected ErrInUse deleting assigned teacher, got %v", err)
	}
}

// Rows imported from the old spreadsheets can hold schedules this service
// would never write. Reads must degrade to an empty schedule, not fail.
func TestClassReadsDegradeOnLegacyRows(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			svc := newServices(t, b.open(t))
			admin := application.Principal{AccountID: "acct-admin", IsAdmin: true}

			legacy := testfixtures.ClassFixture(func(c *persistence.Class) {
				c.DaysOfWeek = "{not valid json"
			})
			if err := svc.repos.classes.CreateClass(ctx, legacy); err != nil {
				t.Fatalf("failed to seed legacy class: %v", err)
			}

			class, err := svc.classes.GetClass(ctx, admin, legacy.ID)
			if err != nil {
				t.Fatalf("GetClass failed: %v", err)
			}
			if len(class.Slots) != 0 {
				t.Fatalf("expected unparseable schedule to degrade to no slots, got %#v", class.Slots)
			}

			sessions, err := svc.classes.SessionsOn(ctx, admin, legacy.ID, "2024-03-07")
			if err != nil {
				t.Fatalf("SessionsOn failed: %v", err)
			}
			if len(sessions) != 0 {
				t.Fatalf("expected no sessions for a legacy schedule, got %#v", sessions)
			}
		})
	}
}
