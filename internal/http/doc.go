// Package http provides HTTP handlers and middleware for the art center API.
//
// The router exposes the following endpoints:
//   - POST /login: issues a session token. Body: {"email","password"}. The
//     token is returned in the body and surfaced via the `X-Session-Token`
//     header and a `session_token` cookie.
//   - POST /logout: revokes the current session token extracted from the
//     Authorization header or session cookie. Returns 204 No Content.
//   - GET /classes, POST /classes, GET /classes/{id}, PUT /classes/{id},
//     DELETE /classes/{id}: class management exchanging the `classDTO`
//     payload defined in class_handler.go. Listing is scoped to the caller's
//     own classes for teacher principals.
//   - GET /classes/{id}/sessions?date=YYYY-MM-DD: the sessions the class
//     holds on that date, resolved from its weekly schedule.
//   - GET /classes/{id}/students, POST /classes/{id}/students,
//     DELETE /classes/{id}/students/{studentID}: class roster management.
//   - GET /teachers, POST /teachers, GET /teachers/{id}, PUT /teachers/{id},
//     DELETE /teachers/{id}: teacher management, administrators only for
//     mutations.
//   - GET /students, POST /students, GET /students/{id}, PUT /students/{id},
//     DELETE /students/{id}: student management.
//   - POST /attendance: marks one subject present or absent in a session.
//     The submitted session time is matched against the class schedule.
//   - GET /attendance/sheet?class_id=&date=: the attendance sheet of a class
//     on one date, one entry per resolved session.
//   - GET /reports/salary?teacher_id=&month=YYYY-MM: a teacher's monthly
//     salary report derived from delivered sessions.
//
// Request/response DTOs live alongside their respective handlers so tests
// and documentation share the same ground truth.
package http
