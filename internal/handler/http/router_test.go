package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/fixtures"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/memory"
	attendanceService "github.com/cmlabs-hris/attendance-backend-go/internal/service/attendance"
	authService "github.com/cmlabs-hris/attendance-backend-go/internal/service/auth"
	employeeService "github.com/cmlabs-hris/attendance-backend-go/internal/service/employee"
	reportService "github.com/cmlabs-hris/attendance-backend-go/internal/service/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

var handlerTestNow = time.Date(2024, 1, 15, 9, 15, 0, 0, time.UTC)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Meta *struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		TotalItems int64 `json:"total_items"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
}

type testServer struct {
	handler   http.Handler
	employees employee.EmployeeService
	now       time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := memory.NewStore()
	employeeRepo := memory.NewEmployeeRepository(store)
	attendanceRepo := memory.NewAttendanceRepository(store)
	reportRepo := memory.NewReportRepository(store)

	ts := &testServer{now: handlerTestNow}
	clock := func() time.Time { return ts.now }

	jwtSvc := jwt.NewJWTService(handlerTestSecret, "1h")
	employeeSvc := employeeService.NewEmployeeService(employeeRepo, fixtures.DefaultShiftTable())
	authSvc := authService.NewAuthService(employeeRepo, employeeSvc, jwtSvc)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, employeeRepo, time.UTC, attendanceService.WithClock(clock))
	reportSvc := reportService.NewReportService(reportRepo, employeeRepo, time.UTC, reportService.WithClock(clock))

	ts.employees = employeeSvc
	ts.handler = NewRouter(jwtSvc, RouterConfig{
		Logger:         slog.New(slog.NewJSONHandler(io.Discard, nil)),
		AllowedOrigins: []string{"http://localhost:3000"},
	}, Handlers{
		Auth:       NewAuthHandler(authSvc),
		Attendance: NewAttendanceHandler(attendanceSvc, time.UTC),
		Employee:   NewEmployeeHandler(employeeSvc),
		Report:     NewReportHandler(reportSvc),
	})

	ts.createEmployee(t, "ADM001", "Admin User", "admin@company.com", "admin")
	ts.createEmployee(t, "EMP001", "John Doe", "john@company.com", "employee")
	return ts
}

func (ts *testServer) createEmployee(t *testing.T, code, name, email, role string) employee.EmployeeResponse {
	t.Helper()
	resp, err := ts.employees.CreateEmployee(context.Background(), employee.CreateEmployeeRequest{
		Name:         name,
		Email:        email,
		Password:     "password123",
		EmployeeCode: code,
		Department:   "Engineering",
		Role:         role,
	})
	require.NoError(t, err)
	return resp
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func (ts *testServer) login(t *testing.T, email string) string {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Token string `json:"token"`
	}
	decodeData(t, w, &data)
	require.NotEmpty(t, data.Token)
	return data.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	env := decode(t, w)
	require.True(t, env.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func TestRouter_Health(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var data healthStatus
	decodeData(t, w, &data)
	assert.Equal(t, "ok", data.Status)
	_, err := time.Parse(time.RFC3339, data.Timestamp)
	assert.NoError(t, err)
}

func TestRouter_Login(t *testing.T) {
	ts := newTestServer(t)

	t.Run("wrong password", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email":    "john@company.com",
			"password": "nope-nope",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "UNAUTHORIZED", decode(t, w).Error.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		assert.Contains(t, env.Error.Details, "email")
		assert.Contains(t, env.Error.Details, "password")
	})

	t.Run("invalid json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte("invalid json")))
		w := httptest.NewRecorder()
		ts.handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("me", func(t *testing.T) {
		token := ts.login(t, "john@company.com")
		w := ts.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var me employee.EmployeeResponse
		decodeData(t, w, &me)
		assert.Equal(t, "EMP001", me.EmployeeCode)
		assert.Equal(t, "employee", me.Role)
	})
}

func TestRouter_RequiresToken(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/v1/attendance/today", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/attendance/today", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_AdminOnly(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "john@company.com")

	for _, path := range []string{
		"/api/v1/admin/dashboard",
		"/api/v1/admin/employees",
		"/api/v1/admin/attendance/today-status",
	} {
		w := ts.do(t, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}

	w := ts.do(t, http.MethodPost, "/api/v1/auth/register", token, map[string]string{})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_CheckInCheckOutFlow(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "john@company.com")

	w := ts.do(t, http.MethodGet, "/api/v1/attendance/today", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", string(decode(t, w).Data))

	// Empty body is accepted
	w = ts.do(t, http.MethodPost, "/api/v1/attendance/checkin", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var rec struct {
		Status      string `json:"status"`
		IsLate      bool   `json:"is_late"`
		LateMinutes int    `json:"late_minutes"`
	}
	decodeData(t, w, &rec)
	assert.Equal(t, "late", rec.Status)
	assert.Equal(t, 15, rec.LateMinutes)

	w = ts.do(t, http.MethodPost, "/api/v1/attendance/checkin", token, map[string]string{"location": "Office"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Equal(t, "ATTENDANCE_CONFLICT", env.Error.Code)
	assert.Equal(t, "already checked in at 09:15:00", env.Error.Message)

	ts.now = time.Date(2024, 1, 15, 18, 30, 0, 0, time.UTC)
	w = ts.do(t, http.MethodPost, "/api/v1/attendance/checkout", token, map[string]string{"remarks": "done"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out struct {
		WorkingMinutes  int    `json:"working_minutes"`
		WorkingHours    string `json:"working_hours"`
		OvertimeMinutes int    `json:"overtime_minutes"`
	}
	decodeData(t, w, &out)
	assert.Equal(t, 555, out.WorkingMinutes)
	assert.Equal(t, "9h 15m", out.WorkingHours)
	assert.Equal(t, 30, out.OvertimeMinutes)

	w = ts.do(t, http.MethodPost, "/api/v1/attendance/checkout", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "already checked out at 18:30:00", decode(t, w).Error.Message)

	w = ts.do(t, http.MethodGet, "/api/v1/attendance/monthly?year=2024&month=1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var monthly struct {
		Summary struct {
			Present int `json:"present"`
			Late    int `json:"late"`
		} `json:"summary"`
	}
	decodeData(t, w, &monthly)
	assert.Equal(t, 1, monthly.Summary.Present)
	assert.Equal(t, 1, monthly.Summary.Late)

	w = ts.do(t, http.MethodGet, "/api/v1/attendance/monthly?year=2024&month=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Error.Details, "month")

	w = ts.do(t, http.MethodGet, "/api/v1/attendance/history?limit=5", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []json.RawMessage
	decodeData(t, w, &history)
	assert.Len(t, history, 1)
}

func TestRouter_CheckOutWithoutCheckIn(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "john@company.com")

	w := ts.do(t, http.MethodPost, "/api/v1/attendance/checkout", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Equal(t, "ATTENDANCE_CONFLICT", env.Error.Code)
	assert.Equal(t, "please check in first before checking out", env.Error.Message)
}

func TestRouter_RegisterEmployee(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, "admin@company.com")

	body := map[string]interface{}{
		"name":        "Jane Smith",
		"email":       "Jane@Company.com",
		"password":    "password123",
		"employee_id": "emp002",
		"department":  "Sales",
		"shift":       map[string]string{"type": "night"},
	}
	w := ts.do(t, http.MethodPost, "/api/v1/auth/register", admin, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created employee.EmployeeResponse
	decodeData(t, w, &created)
	assert.Equal(t, "EMP002", created.EmployeeCode)
	assert.Equal(t, "jane@company.com", created.Email)
	assert.Equal(t, "22:00", created.Shift.StartTime)
	assert.Equal(t, "07:00", created.Shift.EndTime)

	w = ts.do(t, http.MethodPost, "/api/v1/auth/register", admin, body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", decode(t, w).Error.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/auth/register", admin, map[string]string{"name": "X"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "employee_id")
	assert.Contains(t, env.Error.Details, "department")
}

func TestRouter_AdminEmployees(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, "admin@company.com")
	john := ts.login(t, "john@company.com")

	w := ts.do(t, http.MethodGet, "/api/v1/admin/employees?search=john&limit=5", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(1), env.Meta.TotalItems)
	assert.Equal(t, 5, env.Meta.Limit)

	var list []employee.EmployeeResponse
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	johnID := list[0].ID

	w = ts.do(t, http.MethodGet, "/api/v1/admin/departments", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var departments []string
	decodeData(t, w, &departments)
	assert.Equal(t, []string{"Engineering"}, departments)

	w = ts.do(t, http.MethodGet, "/api/v1/admin/employees/does-not-exist", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodPut, "/api/v1/admin/employees/"+johnID, admin, map[string]interface{}{
		"designation": "Senior Engineer",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodDelete, "/api/v1/admin/employees/"+johnID, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Existing tokens stay valid; the account state is checked per action.
	w = ts.do(t, http.MethodPost, "/api/v1/attendance/checkin", john, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "john@company.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_AdminAttendance(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, "admin@company.com")
	john := ts.login(t, "john@company.com")

	w := ts.do(t, http.MethodPost, "/api/v1/attendance/checkin", john, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var rec struct {
		ID string `json:"id"`
	}
	decodeData(t, w, &rec)

	w = ts.do(t, http.MethodGet, "/api/v1/admin/attendance?date=2024-01-15&employeeId=emp001", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(1), env.Meta.TotalItems)

	w = ts.do(t, http.MethodGet, "/api/v1/admin/attendance?status=sleeping", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPut, "/api/v1/admin/attendance/"+rec.ID, admin, map[string]string{
		"check_in":  "2024-01-15T09:00:00Z",
		"check_out": "2024-01-15T17:00:00Z",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated struct {
		WorkingMinutes    int `json:"working_minutes"`
		EarlyLeaveMinutes int `json:"early_leave_minutes"`
	}
	decodeData(t, w, &updated)
	assert.Equal(t, 480, updated.WorkingMinutes)
	assert.Equal(t, 60, updated.EarlyLeaveMinutes)

	w = ts.do(t, http.MethodPut, "/api/v1/admin/attendance/missing", admin, map[string]string{"remarks": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/admin/attendance/today-status", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status struct {
		Summary struct {
			Total      int `json:"total"`
			CheckedOut int `json:"checked_out"`
		} `json:"summary"`
	}
	decodeData(t, w, &status)
	assert.Equal(t, 1, status.Summary.Total)
	assert.Equal(t, 1, status.Summary.CheckedOut)

	w = ts.do(t, http.MethodGet, "/api/v1/admin/dashboard", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dashboard struct {
		Overview struct {
			PresentToday int64 `json:"present_today"`
			AbsentToday  int64 `json:"absent_today"`
		} `json:"overview"`
	}
	decodeData(t, w, &dashboard)
	assert.Equal(t, int64(1), dashboard.Overview.PresentToday)
	assert.Equal(t, int64(0), dashboard.Overview.AbsentToday)
}

func TestRouter_Export(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, "admin@company.com")

	w := ts.do(t, http.MethodGet, "/api/v1/admin/export?month=1&year=2024", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=Attendance_January_2024.xlsx", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.NotZero(t, w.Body.Len())

	w = ts.do(t, http.MethodGet, "/api/v1/admin/export?month=13&year=2024", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Error.Details, "month")
}

func TestRouter_MalformedIDsAreNotFound(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, "admin@company.com")

	tests := []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodGet, "/api/v1/admin/employees/abc", nil},
		{http.MethodPut, "/api/v1/admin/employees/abc", map[string]string{"designation": "Lead"}},
		{http.MethodDelete, "/api/v1/admin/employees/abc", nil},
		{http.MethodPut, "/api/v1/admin/attendance/abc", map[string]string{"remarks": "x"}},
		{http.MethodGet, "/api/v1/admin/employees/0190f5e4-7b3a-7c1d-9e2f-3a4b5c6d7e8f", nil},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := ts.do(t, tt.method, tt.path, admin, tt.body)
			assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
			assert.Equal(t, "NOT_FOUND", decode(t, w).Error.Code)
		})
	}
}

func TestRouter_DeactivationKeepsHistory(t *testing.T) {
	ts := newTestServer(t)
	jane := ts.createEmployee(t, "EMP002", "Jane Smith", "jane@company.com", "employee")
	admin := ts.login(t, "admin@company.com")
	john := ts.login(t, "john@company.com")

	w := ts.do(t, http.MethodPost, "/api/v1/attendance/checkin", john, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	ts.now = handlerTestNow.Add(8*time.Hour + 45*time.Minute)
	w = ts.do(t, http.MethodPost, "/api/v1/attendance/checkout", john, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var before struct {
		ID             string `json:"id"`
		Status         string `json:"status"`
		WorkingMinutes int    `json:"working_minutes"`
	}
	decodeData(t, w, &before)

	w = ts.do(t, http.MethodGet, "/api/v1/admin/employees?search=EMP001", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []employee.EmployeeResponse
	decodeData(t, w, &list)
	require.Len(t, list, 1)

	w = ts.do(t, http.MethodDelete, "/api/v1/admin/employees/"+list[0].ID, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/admin/attendance/today-status", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status struct {
		Employees []struct {
			Employee employee.EmployeeResponse `json:"employee"`
			State    string                    `json:"state"`
		} `json:"employees"`
		Summary struct {
			Total      int `json:"total"`
			CheckedOut int `json:"checked_out"`
			Absent     int `json:"absent"`
		} `json:"summary"`
	}
	decodeData(t, w, &status)
	require.Len(t, status.Employees, 1)
	assert.Equal(t, jane.ID, status.Employees[0].Employee.ID)
	assert.Equal(t, 1, status.Summary.Total)
	assert.Equal(t, 0, status.Summary.CheckedOut)
	assert.Equal(t, 1, status.Summary.Absent)

	w = ts.do(t, http.MethodGet, "/api/v1/admin/attendance?date=2024-01-15&employeeId=EMP001", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var records []struct {
		ID             string `json:"id"`
		Status         string `json:"status"`
		WorkingMinutes int    `json:"working_minutes"`
	}
	decodeData(t, w, &records)
	require.Len(t, records, 1)
	assert.Equal(t, before.ID, records[0].ID)
	assert.Equal(t, before.Status, records[0].Status)
	assert.Equal(t, before.WorkingMinutes, records[0].WorkingMinutes)
	assert.Equal(t, 525, records[0].WorkingMinutes)
}

func TestRouter_ChangePassword(t *testing.T) {
	ts := newTestServer(t)
	john := ts.login(t, "john@company.com")

	w := ts.do(t, http.MethodPut, "/api/v1/auth/change-password", john, map[string]string{
		"current_password": "wrong-password",
		"new_password":     "newpassword123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Current password is incorrect", decode(t, w).Error.Message)

	w = ts.do(t, http.MethodPut, "/api/v1/auth/change-password", john, map[string]string{
		"current_password": "password123",
		"new_password":     "newpassword123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "john@company.com",
		"password": "newpassword123",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}
