package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/persistence"
)

var (
	teacherCounter uint64
	studentCounter uint64
	classCounter   uint64
	recordCounter  uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// TeacherFixture builds a deterministic teacher row. Overrides mutate the
// record before it is returned.
func TeacherFixture(overrides ...func(*persistence.Teacher)) persistence.Teacher {
	n := atomic.AddUint64(&teacherCounter, 1)
	teacher := persistence.Teacher{
		ID:        fmt.Sprintf("teacher-%d", n),
		FullName:  fmt.Sprintf("Teacher %d", n),
		Email:     fmt.Sprintf("teacher%d@example.com", n),
		Specialty: "piano",
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, override := range overrides {
		override(&teacher)
	}
	return teacher
}

// StudentFixture builds a deterministic student row.
func StudentFixture(overrides ...func(*persistence.Student)) persistence.Student {
	n := atomic.AddUint64(&studentCounter, 1)
	student := persistence.Student{
		ID:         fmt.Sprintf("student-%d", n),
		FullName:   fmt.Sprintf("Student %d", n),
		ParentName: fmt.Sprintf("Parent %d", n),
		CreatedAt:  referenceTime,
		UpdatedAt:  referenceTime,
	}
	for _, override := range overrides {
		override(&student)
	}
	return student
}

// ClassFixture builds a deterministic class row with a Monday morning and a
// Thursday afternoon slot over the first half of 2024.
func ClassFixture(overrides ...func(*persistence.Class)) persistence.Class {
	n := atomic.AddUint64(&classCounter, 1)
	class := persistence.Class{
		ID:               fmt.Sprintf("class-%d", n),
		Name:             fmt.Sprintf("Class %d", n),
		Subject:          "piano",
		StartDate:        "2024-01-01",
		EndDate:          "2024-06-30",
		DurationMinutes:  90,
		DaysOfWeek:       `[{"day":1,"start_time":"08:00"},{"day":4,"start_time":"14:00"}]`,
		SalaryPerSession: 200_000,
		MonthlyFee:       500_000,
		CreatedAt:        referenceTime,
		UpdatedAt:        referenceTime,
	}
	for _, override := range overrides {
		override(&class)
	}
	return class
}

// AttendanceRecordFixture builds a deterministic attendance row bound to the
// given class and subject.
func AttendanceRecordFixture(classID, subjectID, subjectKind string, overrides ...func(*persistence.AttendanceRecord)) persistence.AttendanceRecord {
	n := atomic.AddUint64(&recordCounter, 1)
	record := persistence.AttendanceRecord{
		ID:          fmt.Sprintf("record-%d", n),
		ClassID:     classID,
		Date:        "2024-03-04",
		SessionTime: "08:00",
		SubjectID:   subjectID,
		SubjectKind: subjectKind,
		Present:     true,
		MarkedBy:    "account-1",
		CreatedAt:   referenceTime,
		UpdatedAt:   referenceTime,
	}
	for _, override := range overrides {
		override(&record)
	}
	return record
}
