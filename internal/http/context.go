package http

import (
	"context"

	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/application"
)

type contextKey string

const (
	principalContextKey contextKey = "principal"
	classIDContextKey   contextKey = "class_id"
	teacherIDContextKey contextKey = "teacher_id"
	studentIDContextKey contextKey = "student_id"
)

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithClassID injects the class identifier resolved from the request path.
func ContextWithClassID(ctx context.Context, classID string) context.Context {
	return context.WithValue(ctx, classIDContextKey, classID)
}

// ClassIDFromContext extracts a class identifier previously associated with the context.
func ClassIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(classIDContextKey).(string)
	return id, ok
}

// ContextWithTeacherID injects the teacher identifier resolved from the request path.
func ContextWithTeacherID(ctx context.Context, teacherID string) context.Context {
	return context.WithValue(ctx, teacherIDContextKey, teacherID)
}

// TeacherIDFromContext extracts a teacher identifier previously associated with the context.
func TeacherIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(teacherIDContextKey).(string)
	return id, ok
}

// ContextWithStudentID injects the student identifier resolved from the request path.
func ContextWithStudentID(ctx context.Context, studentID string) context.Context {
	return context.WithValue(ctx, studentIDContextKey, studentID)
}

// StudentIDFromContext extracts a student identifier previously associated with the context.
func StudentIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(studentIDContextKey).(string)
	return id, ok
}
