package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	Monthly(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	location          *time.Location
}

// NewAttendanceHandler builds the handler; loc picks the default month for
// /attendance/monthly.
func NewAttendanceHandler(attendanceService attendance.AttendanceService, loc *time.Location) AttendanceHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		location:          loc,
	}
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req attendance.CheckInRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		slog.Error("CheckIn decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.attendanceService.CheckIn(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Checked in successfully", result)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req attendance.CheckOutRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		slog.Error("CheckOut decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.attendanceService.CheckOut(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Checked out successfully", result)
}

// Today implements AttendanceHandler.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.GetToday(r.Context(), principal)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if result == nil {
		response.SuccessWithMessage(w, "No attendance record for today", nil)
		return
	}
	response.Success(w, result)
}

// Monthly implements AttendanceHandler. Year and month default to the current month.
func (h *attendanceHandlerImpl) Monthly(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	now := time.Now().In(h.location)
	filter := attendance.MonthlyFilter{Year: now.Year(), Month: int(now.Month())}

	year, err := queryInt(r, "year")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if year != nil {
		filter.Year = *year
	}

	month, err := queryInt(r, "month")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if month != nil {
		filter.Month = *month
	}

	result, err := h.attendanceService.GetMonthly(r.Context(), principal, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// History implements AttendanceHandler.
func (h *attendanceHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var filter attendance.HistoryFilter
	limit, err := queryInt(r, "limit")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if limit != nil {
		filter.Limit = *limit
	}

	result, err := h.attendanceService.GetHistory(r.Context(), principal, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements AttendanceHandler. Admin only.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := attendance.AttendanceFilter{
		Date:         queryString(r, "date"),
		Department:   queryString(r, "department"),
		Status:       queryString(r, "status"),
		EmployeeCode: queryString(r, "employeeId"),
	}

	var err error
	if filter.Month, err = queryInt(r, "month"); err != nil {
		response.HandleError(w, err)
		return
	}
	if filter.Year, err = queryInt(r, "year"); err != nil {
		response.HandleError(w, err)
		return
	}

	// Pagination
	page, err := queryInt(r, "page")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if page != nil {
		filter.Page = *page
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if limit != nil {
		filter.Limit = *limit
	}

	result, err := h.attendanceService.ListAttendance(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Records, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

// Update implements AttendanceHandler. Admin only.
func (h *attendanceHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, attendance.ErrAttendanceNotFound)
	if !ok {
		return
	}

	var req attendance.UpdateAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = id

	result, err := h.attendanceService.UpdateAttendance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance updated successfully", result)
}
