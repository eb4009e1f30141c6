package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/application"
	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/schedule"
)

type attendanceService interface {
	MarkAttendance(ctx context.Context, params application.MarkAttendanceParams) (schedule.AttendanceRecord, error)
	DailySheet(ctx context.Context, params application.DailySheetParams) (application.DailySheet, error)
}

type AttendanceHandler struct {
	service   attendanceService
	responder responder
	logger    *slog.Logger
}

func NewAttendanceHandler(service attendanceService, logger *slog.Logger) *AttendanceHandler {
	base := defaultLogger(logger)
	return &AttendanceHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AttendanceHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AttendanceHandler", operation, attrs...)
}

func (h *AttendanceHandler) Mark(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req markRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Mark", "principal_id", principal.AccountID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode attendance request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Mark",
		"principal_id", principal.AccountID,
		"class_id", req.ClassID,
		"date", req.Date,
	)

	record, err := h.service.MarkAttendance(r.Context(), application.MarkAttendanceParams{
		Principal:   principal,
		ClassID:     strings.TrimSpace(req.ClassID),
		Date:        strings.TrimSpace(req.Date),
		SessionTime: strings.TrimSpace(req.SessionTime),
		SubjectID:   strings.TrimSpace(req.SubjectID),
		SubjectKind: schedule.SubjectKind(strings.TrimSpace(req.SubjectKind)),
		Present:     req.Present,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "attendance marking failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("session_time", record.StartTime).InfoContext(r.Context(), "attendance marked")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, markResponse{Record: toRecordDTO(record)})
}

func (h *AttendanceHandler) Sheet(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := r.URL.Query()
	classID := strings.TrimSpace(query.Get("class_id"))
	date := strings.TrimSpace(query.Get("date"))

	sheet, err := h.service.DailySheet(r.Context(), application.DailySheetParams{
		Principal: principal,
		ClassID:   classID,
		Date:      date,
	})
	if err != nil {
		h.log(r.Context(), "Sheet", "class_id", classID, "date", date).ErrorContext(r.Context(), "sheet assembly failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toSheetDTO(sheet))
}

type markRequest struct {
	ClassID     string `json:"class_id"`
	Date        string `json:"date"`
	SessionTime string `json:"session_time"`
	SubjectID   string `json:"subject_id"`
	SubjectKind string `json:"subject_kind"`
	Present     bool   `json:"present"`
}

type recordDTO struct {
	ClassID     string `json:"class_id"`
	Date        string `json:"date"`
	SessionTime string `json:"session_time"`
	SubjectID   string `json:"subject_id"`
	SubjectKind string `json:"subject_kind"`
	Present     bool   `json:"present"`
	MarkedBy    string `json:"marked_by,omitempty"`
}

func toRecordDTO(record schedule.AttendanceRecord) recordDTO {
	return recordDTO{
		ClassID:     record.ClassID,
		Date:        record.Date,
		SessionTime: record.StartTime,
		SubjectID:   record.SubjectID,
		SubjectKind: string(record.SubjectKind),
		Present:     record.Present,
		MarkedBy:    record.MarkedBy,
	}
}

type markResponse struct {
	Record recordDTO `json:"record"`
}

type aggregateDTO struct {
	PresentTeachers int  `json:"present_teachers"`
	TotalTeachers   int  `json:"total_teachers"`
	PresentStudents int  `json:"present_students"`
	TotalStudents   int  `json:"total_students"`
	Orphaned        bool `json:"orphaned,omitempty"`
}

type sessionSheetDTO struct {
	Session   sessionDTO   `json:"session"`
	Aggregate aggregateDTO `json:"aggregate"`
	Records   []recordDTO  `json:"records"`
}

type sheetDTO struct {
	ClassID  string            `json:"class_id"`
	Date     string            `json:"date"`
	Sessions []sessionSheetDTO `json:"sessions"`
}

func toSheetDTO(sheet application.DailySheet) sheetDTO {
	dto := sheetDTO{
		ClassID:  sheet.ClassID,
		Date:     sheet.Date,
		Sessions: make([]sessionSheetDTO, 0, len(sheet.Sessions)),
	}
	for _, session := range sheet.Sessions {
		entry := sessionSheetDTO{
			Session: toSessionDTO(session.Session),
			Aggregate: aggregateDTO{
				PresentTeachers: session.Aggregate.PresentTeachers,
				TotalTeachers:   session.Aggregate.TotalTeachers,
				PresentStudents: session.Aggregate.PresentStudents,
				TotalStudents:   session.Aggregate.TotalStudents,
				Orphaned:        session.Aggregate.Orphaned,
			},
			Records: make([]recordDTO, 0, len(session.Records)),
		}
		for _, record := range session.Records {
			entry.Records = append(entry.Records, toRecordDTO(record))
		}
		dto.Sessions = append(dto.Sessions, entry)
	}
	return dto
}
