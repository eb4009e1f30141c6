package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/application"
)

type salaryService interface {
	MonthlyReport(ctx context.Context, params application.SalaryReportParams) (application.SalaryReport, error)
}

type ReportHandler struct {
	service   salaryService
	responder responder
	logger    *slog.Logger
}

func NewReportHandler(service salaryService, logger *slog.Logger) *ReportHandler {
	base := defaultLogger(logger)
	return &ReportHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ReportHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ReportHandler", operation, attrs...)
}

func (h *ReportHandler) Salary(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := r.URL.Query()
	teacherID := strings.TrimSpace(query.Get("teacher_id"))
	if teacherID == "" {
		teacherID = principal.TeacherID
	}
	month := strings.TrimSpace(query.Get("month"))

	logger := h.log(r.Context(), "Salary", "teacher_id", teacherID, "month", month)

	report, err := h.service.MonthlyReport(r.Context(), application.SalaryReportParams{
		Principal: principal,
		TeacherID: teacherID,
		Month:     month,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "salary report failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "salary report produced")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toSalaryReportDTO(report))
}

type salaryLineDTO struct {
	ClassID          string `json:"class_id"`
	ClassName        string `json:"class_name"`
	SessionsTaught   int    `json:"sessions_taught"`
	SalaryPerSession int64  `json:"salary_per_session"`
	Amount           int64  `json:"amount"`
}

type salaryReportDTO struct {
	TeacherID string          `json:"teacher_id"`
	Month     string          `json:"month"`
	Lines     []salaryLineDTO `json:"lines"`
	Total     int64           `json:"total"`
}

func toSalaryReportDTO(report application.SalaryReport) salaryReportDTO {
	dto := salaryReportDTO{
		TeacherID: report.TeacherID,
		Month:     report.Month,
		Lines:     make([]salaryLineDTO, 0, len(report.Lines)),
		Total:     report.Total,
	}
	for _, line := range report.Lines {
		dto.Lines = append(dto.Lines, salaryLineDTO(line))
	}
	return dto
}
