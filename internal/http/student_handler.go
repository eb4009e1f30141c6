package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/application"
)

type studentService interface {
	CreateStudent(ctx context.Context, params application.CreateStudentParams) (application.Student, error)
	UpdateStudent(ctx context.Context, params application.UpdateStudentParams) (application.Student, error)
	GetStudent(ctx context.Context, principal application.Principal, studentID string) (application.Student, error)
	ListStudents(ctx context.Context, principal application.Principal) ([]application.Student, error)
	DeleteStudent(ctx context.Context, principal application.Principal, studentID string) error
}

type StudentHandler struct {
	service   studentService
	responder responder
	logger    *slog.Logger
}

func NewStudentHandler(service studentService, logger *slog.Logger) *StudentHandler {
	base := defaultLogger(logger)
	return &StudentHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *StudentHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "StudentHandler", operation, attrs...)
}

func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req studentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.AccountID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode student request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.AccountID)

	student, err := h.service.CreateStudent(r.Context(), application.CreateStudentParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "student creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("student_id", student.ID).InfoContext(r.Context(), "student created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, studentResponse{Student: toStudentDTO(student)})
}

func (h *StudentHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	studentID, ok := StudentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(studentID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidStudentID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req studentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "student_id", studentID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode student update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.AccountID, "student_id", studentID)

	student, err := h.service.UpdateStudent(r.Context(), application.UpdateStudentParams{
		Principal: principal,
		StudentID: studentID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "student update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "student updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, studentResponse{Student: toStudentDTO(student)})
}

func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	studentID, ok := StudentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(studentID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidStudentID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	student, err := h.service.GetStudent(r.Context(), principal, studentID)
	if err != nil {
		h.log(r.Context(), "Get", "student_id", studentID).ErrorContext(r.Context(), "student lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, studentResponse{Student: toStudentDTO(student)})
}

func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	students, err := h.service.ListStudents(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "student listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]studentDTO, 0, len(students))
	for _, student := range students {
		dtos = append(dtos, toStudentDTO(student))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, studentListResponse{Students: dtos})
}

func (h *StudentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	studentID, ok := StudentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(studentID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidStudentID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.AccountID, "student_id", studentID)

	if err := h.service.DeleteStudent(r.Context(), principal, studentID); err != nil {
		logger.ErrorContext(r.Context(), "student deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "student deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type studentRequest struct {
	FullName   string  `json:"full_name"`
	Phone      string  `json:"phone"`
	ParentName string  `json:"parent_name"`
	Note       *string `json:"note"`
}

func (r studentRequest) toInput() application.StudentInput {
	return application.StudentInput{
		FullName:   r.FullName,
		Phone:      r.Phone,
		ParentName: r.ParentName,
		Note:       r.Note,
	}
}

type studentDTO struct {
	ID         string  `json:"id"`
	FullName   string  `json:"full_name"`
	Phone      string  `json:"phone,omitempty"`
	ParentName string  `json:"parent_name,omitempty"`
	Note       *string `json:"note,omitempty"`
	CreatedAt  string  `json:"created_at,omitempty"`
	UpdatedAt  string  `json:"updated_at,omitempty"`
}

func toStudentDTO(student application.Student) studentDTO {
	dto := studentDTO{
		ID:         student.ID,
		FullName:   student.FullName,
		Phone:      student.Phone,
		ParentName: student.ParentName,
		Note:       student.Note,
	}
	if !student.CreatedAt.IsZero() {
		dto.CreatedAt = student.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if !student.UpdatedAt.IsZero() {
		dto.UpdatedAt = student.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return dto
}

type studentResponse struct {
	Student studentDTO `json:"student"`
}

type studentListResponse struct {
	Students []studentDTO `json:"students"`
}
