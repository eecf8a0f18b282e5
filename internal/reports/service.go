package reports

import (
	"context"

	"github.com/byoma-kusuma/sangha-management-backend/internal/auditlog"
)

type ReportService interface {
	GetAttendanceReport(eventID uint) (*AttendanceReport, error)
	ExportAttendanceReport(ctx context.Context, eventID uint, format string, userID *uint, ip string) ([]byte, string, string, error)
}

type reportService struct {
	repo     ReportRepository
	exporter ReportExporter
	auditSvc auditlog.Service
}

func NewReportService(repo ReportRepository, exporter ReportExporter, auditSvc auditlog.Service) ReportService {
	return &reportService{
		repo:     repo,
		exporter: exporter,
		auditSvc: auditSvc,
	}
}

func (s *reportService) GetAttendanceReport(eventID uint) (*AttendanceReport, error) {
	return s.repo.BuildAttendanceReport(eventID)
}

func (s *reportService) ExportAttendanceReport(ctx context.Context, eventID uint, format string, userID *uint, ip string) ([]byte, string, string, error) {
	report, err := s.repo.BuildAttendanceReport(eventID)
	if err != nil {
		return nil, "", "", err
	}

	content, filename, mime, err := s.exporter.Export(format, report)
	if err != nil {
		return nil, "", "", err
	}

	s.auditSvc.LogAction(ctx, userID, &eventID, "REPORT_EXPORTED",
		map[string]interface{}{"format": format, "filename": filename, "rows": len(report.Rows)},
		ip, "success")

	return content, filename, mime, nil
}
