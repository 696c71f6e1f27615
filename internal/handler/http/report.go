package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	Dashboard(w http.ResponseWriter, r *http.Request)
	TodayStatus(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// Dashboard implements ReportHandler.
func (h *reportHandlerImpl) Dashboard(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.Dashboard(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// TodayStatus implements ReportHandler.
func (h *reportHandlerImpl) TodayStatus(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.TodayStatus(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Export implements ReportHandler.
func (h *reportHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	req := report.ExportRequest{
		Department:   queryString(r, "department"),
		EmployeeCode: queryString(r, "employeeId"),
	}

	month, err := queryInt(r, "month")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if month != nil {
		req.Month = *month
	}

	year, err := queryInt(r, "year")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if year != nil {
		req.Year = *year
	}

	file, err := h.reportService.Export(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	slog.Info("Attendance exported", "filename", file.Filename, "bytes", len(file.Data))
	response.File(w, file.Filename, file.ContentType, file.Data)
}
