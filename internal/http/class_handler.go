package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/application"
	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/schedule"
)

type classService interface {
	CreateClass(ctx context.Context, params application.CreateClassParams) (application.Class, error)
	UpdateClass(ctx context.Context, params application.UpdateClassParams) (application.Class, error)
	GetClass(ctx context.Context, principal application.Principal, classID string) (application.Class, error)
	ListClasses(ctx context.Context, principal application.Principal) ([]application.Class, error)
	DeleteClass(ctx context.Context, principal application.Principal, classID string) error
	SessionsOn(ctx context.Context, principal application.Principal, classID, dateISO string) ([]schedule.ResolvedSession, error)
}

type enrollmentService interface {
	Enroll(ctx context.Context, params application.EnrollParams) (application.Enrollment, error)
	Unenroll(ctx context.Context, params application.EnrollParams) error
	ClassRoster(ctx context.Context, principal application.Principal, classID string) ([]application.Student, error)
}

type ClassHandler struct {
	service     classService
	enrollments enrollmentService
	responder   responder
	logger      *slog.Logger
}

func NewClassHandler(service classService, enrollments enrollmentService, logger *slog.Logger) *ClassHandler {
	base := defaultLogger(logger)
	return &ClassHandler{service: service, enrollments: enrollments, responder: newResponder(base), logger: base}
}

func (h *ClassHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ClassHandler", operation, attrs...)
}

func (h *ClassHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req classRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.AccountID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode class request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.AccountID)

	class, err := h.service.CreateClass(r.Context(), application.CreateClassParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "class creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("class_id", class.ID).InfoContext(r.Context(), "class created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, classResponse{Class: toClassDTO(class)})
}

func (h *ClassHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	classID, ok := ClassIDFromContext(r.Context())
	if !ok || strings.TrimSpace(classID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing class id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidClassID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req classRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.AccountID, "class_id", classID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode class update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.AccountID, "class_id", classID)

	class, err := h.service.UpdateClass(r.Context(), application.UpdateClassParams{
		Principal: principal,
		ClassID:   classID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "class update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "class updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, classResponse{Class: toClassDTO(class)})
}

func (h *ClassHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	classID, ok := ClassIDFromContext(r.Context())
	if !ok || strings.TrimSpace(classID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidClassID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	class, err := h.service.GetClass(r.Context(), principal, classID)
	if err != nil {
		h.log(r.Context(), "Get", "class_id", classID).ErrorContext(r.Context(), "class lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, classResponse{Class: toClassDTO(class)})
}

func (h *ClassHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	classes, err := h.service.ListClasses(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "List", "principal_id", principal.AccountID).ErrorContext(r.Context(), "class listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]classDTO, 0, len(classes))
	for _, class := range classes {
		dtos = append(dtos, toClassDTO(class))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, classListResponse{Classes: dtos})
}

func (h *ClassHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	classID, ok := ClassIDFromContext(r.Context())
	if !ok || strings.TrimSpace(classID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidClassID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.AccountID, "class_id", classID)

	if err := h.service.DeleteClass(r.Context(), principal, classID); err != nil {
		logger.ErrorContext(r.Context(), "class deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "class deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ClassHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	classID, ok := ClassIDFromContext(r.Context())
	if !ok || strings.TrimSpace(classID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidClassID)
		return
	}

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if _, err := time.Parse("2006-01-02", date); err != nil {
		vErr := &application.ValidationError{FieldErrors: map[string]string{"date": "date must be YYYY-MM-DD"}}
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	sessions, err := h.service.SessionsOn(r.Context(), principal, classID, date)
	if err != nil {
		h.log(r.Context(), "Sessions", "class_id", classID, "date", date).ErrorContext(r.Context(), "session resolution failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]sessionDTO, 0, len(sessions))
	for _, session := range sessions {
		dtos = append(dtos, toSessionDTO(session))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionListResponse{Sessions: dtos})
}

func (h *ClassHandler) Roster(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.enrollments == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	classID, ok := ClassIDFromContext(r.Context())
	if !ok || strings.TrimSpace(classID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidClassID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	roster, err := h.enrollments.ClassRoster(r.Context(), principal, classID)
	if err != nil {
		h.log(r.Context(), "Roster", "class_id", classID).ErrorContext(r.Context(), "roster lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]studentDTO, 0, len(roster))
	for _, student := range roster {
		dtos = append(dtos, toStudentDTO(student))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, studentListResponse{Students: dtos})
}

func (h *ClassHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.enrollments == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	classID, ok := ClassIDFromContext(r.Context())
	if !ok || strings.TrimSpace(classID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidClassID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req enrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Enroll", "class_id", classID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode enrollment request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Enroll", "principal_id", principal.AccountID, "class_id", classID, "student_id", req.StudentID)

	enrollment, err := h.enrollments.Enroll(r.Context(), application.EnrollParams{
		Principal: principal,
		ClassID:   classID,
		StudentID: strings.TrimSpace(req.StudentID),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "enrollment failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "student enrolled")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, enrollResponse{
		EnrollmentID: enrollment.ID,
		ClassID:      enrollment.ClassID,
		StudentID:    enrollment.StudentID,
	})
}

func (h *ClassHandler) Unenroll(w http.ResponseWriter, r *http.Request, studentID string) {
	if h == nil || h.enrollments == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	classID, ok := ClassIDFromContext(r.Context())
	if !ok || strings.TrimSpace(classID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidClassID)
		return
	}
	if strings.TrimSpace(studentID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidStudentID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Unenroll", "class_id", classID, "student_id", studentID)

	if err := h.enrollments.Unenroll(r.Context(), application.EnrollParams{
		Principal: principal,
		ClassID:   classID,
		StudentID: studentID,
	}); err != nil {
		logger.ErrorContext(r.Context(), "unenrollment failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "student unenrolled")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// classRequest accepts the schedule either as a slot array or as a JSON
// string encoding one; both forms exist in exported data.
type classRequest struct {
	Name             string          `json:"name"`
	Subject          string          `json:"subject"`
	TeacherID        *string         `json:"teacher_id"`
	StartDate        string          `json:"start_date"`
	EndDate          string          `json:"end_date"`
	DurationMinutes  int             `json:"duration_minutes"`
	DaysOfWeek       json.RawMessage `json:"days_of_week"`
	SalaryPerSession int64           `json:"salary_per_session"`
	MonthlyFee       int64           `json:"monthly_fee"`
}

func (r classRequest) toInput() application.ClassInput {
	var slots any
	if len(r.DaysOfWeek) > 0 && string(r.DaysOfWeek) != "null" {
		slots = r.DaysOfWeek
	}
	return application.ClassInput{
		Name:             r.Name,
		Subject:          r.Subject,
		TeacherID:        r.TeacherID,
		StartDate:        strings.TrimSpace(r.StartDate),
		EndDate:          strings.TrimSpace(r.EndDate),
		DurationMinutes:  r.DurationMinutes,
		Slots:            slots,
		SalaryPerSession: r.SalaryPerSession,
		MonthlyFee:       r.MonthlyFee,
	}
}

type classDTO struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Subject          string          `json:"subject,omitempty"`
	TeacherID        *string         `json:"teacher_id,omitempty"`
	StartDate        string          `json:"start_date"`
	EndDate          string          `json:"end_date"`
	DurationMinutes  int             `json:"duration_minutes"`
	DaysOfWeek       []schedule.Slot `json:"days_of_week"`
	SalaryPerSession int64           `json:"salary_per_session"`
	MonthlyFee       int64           `json:"monthly_fee"`
	CreatedAt        string          `json:"created_at,omitempty"`
	UpdatedAt        string          `json:"updated_at,omitempty"`
}

func toClassDTO(class application.Class) classDTO {
	dto := classDTO{
		ID:               class.ID,
		Name:             class.Name,
		Subject:          class.Subject,
		TeacherID:        class.TeacherID,
		StartDate:        class.StartDate,
		EndDate:          class.EndDate,
		DurationMinutes:  class.DurationMinutes,
		DaysOfWeek:       class.Slots,
		SalaryPerSession: class.SalaryPerSession,
		MonthlyFee:       class.MonthlyFee,
	}
	if dto.DaysOfWeek == nil {
		dto.DaysOfWeek = []schedule.Slot{}
	}
	if !class.CreatedAt.IsZero() {
		dto.CreatedAt = class.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if !class.UpdatedAt.IsZero() {
		dto.UpdatedAt = class.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return dto
}

type classResponse struct {
	Class classDTO `json:"class"`
}

type classListResponse struct {
	Classes []classDTO `json:"classes"`
}

type sessionDTO struct {
	ClassID   string `json:"class_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func toSessionDTO(session schedule.ResolvedSession) sessionDTO {
	return sessionDTO(session)
}

type sessionListResponse struct {
	Sessions []sessionDTO `json:"sessions"`
}

type enrollRequest struct {
	StudentID string `json:"student_id"`
}

type enrollResponse struct {
	EnrollmentID string `json:"enrollment_id"`
	ClassID      string `json:"class_id"`
	StudentID    string `json:"student_id"`
}
