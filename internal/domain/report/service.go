package report

import "context"

// ReportService defines the admin reporting operations
type ReportService interface {
	// Dashboard returns today's and this month's aggregate figures
	Dashboard(ctx context.Context) (DashboardResponse, error)

	// TodayStatus classifies every active employee for today
	TodayStatus(ctx context.Context) (TodayStatusResponse, error)

	// Export renders a month of attendance as an xlsx workbook
	Export(ctx context.Context, req ExportRequest) (ExportFile, error)
}
