package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	checkedInAt := time.Date(2024, 1, 15, 9, 15, 0, 0, time.UTC)

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:   "validation",
			err:    validator.ValidationErrors{{Field: "email", Message: "email is required"}},
			status: http.StatusBadRequest,
			code:   "VALIDATION_ERROR",
		},
		{
			name:    "check-in conflict carries the earlier time",
			err:     fmt.Errorf("check in: %w", attendance.NewConflictError(attendance.ErrAlreadyCheckedIn, checkedInAt)),
			status:  http.StatusBadRequest,
			code:    "ATTENDANCE_CONFLICT",
			message: "already checked in at 09:15:00",
		},
		{
			name:   "not checked in",
			err:    attendance.ErrNotCheckedIn,
			status: http.StatusBadRequest,
			code:   "ATTENDANCE_CONFLICT",
		},
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized, "UNAUTHORIZED", ""},
		{"wrong current password", auth.ErrIncorrectPassword, http.StatusUnauthorized, "UNAUTHORIZED", "Current password is incorrect"},
		{"deactivated", auth.ErrAccountDeactivated, http.StatusForbidden, "FORBIDDEN", ""},
		{"admin required", auth.ErrAdminPrivilegeRequired, http.StatusForbidden, "FORBIDDEN", ""},
		{"duplicate email", employee.ErrEmailExists, http.StatusConflict, "CONFLICT", ""},
		{"duplicate code", fmt.Errorf("create: %w", employee.ErrEmployeeCodeExists), http.StatusConflict, "CONFLICT", ""},
		{"lifecycle", employee.ErrEmployeeAlreadyInactive, http.StatusBadRequest, "BAD_REQUEST", ""},
		{"employee missing", employee.ErrEmployeeNotFound, http.StatusNotFound, "NOT_FOUND", ""},
		{"record missing", attendance.ErrAttendanceNotFound, http.StatusNotFound, "NOT_FOUND", ""},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleError(w, tt.err)

			assert.Equal(t, tt.status, w.Code)

			var resp Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, resp.Error.Message)
			}
		})
	}
}

func TestValidationError_Details(t *testing.T) {
	w := httptest.NewRecorder()
	HandleError(w, validator.ValidationErrors{
		{Field: "month", Message: "month must be between 1 and 12"},
		{Field: "year", Message: "year must be between 2000 and 2100"},
	})

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, map[string]string{
		"month": "month must be between 1 and 12",
		"year":  "year must be between 2000 and 2100",
	}, resp.Error.Details)
}

func TestFile(t *testing.T) {
	w := httptest.NewRecorder()
	File(w, "Attendance_January_2024.xlsx", "application/octet-stream", []byte("data"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=Attendance_January_2024.xlsx", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "4", w.Header().Get("Content-Length"))
	assert.Equal(t, "data", w.Body.String())
}
