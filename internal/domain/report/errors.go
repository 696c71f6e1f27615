package report

import "errors"

var (
	ErrInvalidMonth           = errors.New("month must be between 1 and 12")
	ErrInvalidYear            = errors.New("year must be a valid year")
	ErrReportGenerationFailed = errors.New("failed to generate report")
)
