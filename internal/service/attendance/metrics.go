package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/calendar"
)

// halfDayThresholdMinutes is the working time below which a closed day is a half day.
const halfDayThresholdMinutes = 240

// ComputeMetrics derives lateness, working time, overtime, early leave and
// status from the day's timestamps and the shift snapshot. Scheduled times are
// placed on checkIn's calendar day in checkIn's location; a shift whose end is
// not after its start ends on the following day, and an arrival before that
// end belongs to the shift that started the evening before. A missing or malformed
// scheduled time skips the branch that needs it. Without checkOut only the
// check-in branch runs and working time stays zero.
func ComputeMetrics(checkIn time.Time, checkOut *time.Time, shift attendance.ShiftSnapshot) attendance.Metrics {
	var m attendance.Metrics

	anchor := shiftAnchor(checkIn, shift)

	if start, ok := scheduledOn(anchor, shift.ScheduledStart); ok && checkIn.After(start) {
		m.IsLate = true
		m.LateMinutes = calendar.RoundMinutes(checkIn.Sub(start))
	}

	if checkOut == nil {
		m.Status = attendance.StatusPresent
		if m.IsLate {
			m.Status = attendance.StatusLate
		}
		return m
	}

	worked := checkOut.Sub(checkIn)
	if worked < 0 {
		worked = 0
	}
	m.WorkingMinutes = calendar.RoundMinutes(worked)

	if end, ok := scheduledOn(anchor, shift.ScheduledEnd); ok {
		if shift.IsOvernight() {
			end = end.AddDate(0, 0, 1)
		}
		switch {
		case checkOut.Before(end):
			m.EarlyLeave = true
			m.EarlyLeaveMinutes = calendar.RoundMinutes(end.Sub(*checkOut))
		case checkOut.After(end):
			m.OvertimeMinutes = calendar.RoundMinutes(checkOut.Sub(end))
		}
	}

	switch {
	case m.WorkingMinutes < halfDayThresholdMinutes:
		m.Status = attendance.StatusHalfDay
	case m.IsLate:
		m.Status = attendance.StatusLate
	default:
		m.Status = attendance.StatusPresent
	}

	return m
}

// shiftAnchor is the calendar day the shift started on.
func shiftAnchor(checkIn time.Time, shift attendance.ShiftSnapshot) time.Time {
	if !shift.IsOvernight() {
		return checkIn
	}
	if end, ok := scheduledOn(checkIn, shift.ScheduledEnd); ok && checkIn.Before(end) {
		return checkIn.AddDate(0, 0, -1)
	}
	return checkIn
}

func scheduledOn(day time.Time, clock string) (time.Time, bool) {
	if clock == "" {
		return time.Time{}, false
	}
	t, err := calendar.On(day, clock)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
