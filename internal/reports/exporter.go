package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// ReportExporter renders an attendance report into a downloadable file.
// Returns content, filename and MIME type.
type ReportExporter interface {
	Export(format string, report *AttendanceReport) ([]byte, string, string, error)
}

type reportExporter struct{}

func NewReportExporter() ReportExporter {
	return &reportExporter{}
}

func (e *reportExporter) Export(format string, report *AttendanceReport) ([]byte, string, string, error) {
	switch format {
	case FormatCSV:
		return e.exportCSV(report)
	case FormatExcel:
		return e.exportExcel(report)
	case FormatPDF:
		return e.exportPDF(report)
	default:
		return nil, "", "", fmt.Errorf("unsupported report format: %s", format)
	}
}

func baseFilename(report *AttendanceReport) string {
	return fmt.Sprintf("attendance_event_%d_%s", report.EventID, report.GeneratedAt.Format("20060102_150405"))
}

func headerRow(report *AttendanceReport) []string {
	headers := []string{"attendee_id", "person_name", "refuge_name", "registration_mode"}
	for _, day := range report.Days {
		headers = append(headers, fmt.Sprintf("day_%d (%s)", day.DayNumber, day.EventDate.Format("2006-01-02")))
	}
	return append(headers, "days_attended", "attended_all_days", "credited")
}

func mark(b bool) string {
	if b {
		return "Y"
	}
	return ""
}

func (e *reportExporter) exportCSV(report *AttendanceReport) ([]byte, string, string, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	if err := w.Write(headerRow(report)); err != nil {
		return nil, "", "", err
	}

	for _, row := range report.Rows {
		record := []string{
			fmt.Sprint(row.AttendeeID),
			row.PersonName,
			row.RefugeName,
			row.RegistrationMode,
		}
		for _, p := range row.Present {
			record = append(record, mark(p))
		}
		record = append(record,
			fmt.Sprint(row.DaysAttended),
			mark(row.AttendedAllDays),
			mark(row.Credited),
		)
		if err := w.Write(record); err != nil {
			return nil, "", "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", "", err
	}

	return buf.Bytes(), baseFilename(report) + ".csv", "text/csv", nil
}

func (e *reportExporter) exportExcel(report *AttendanceReport) ([]byte, string, string, error) {
	f := excelize.NewFile()
	sheet := "Attendance"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", "", err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for i, h := range headerRow(report) {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, "", "", err
		}
		f.SetCellValue(sheet, cell, h)
	}

	for rIdx, row := range report.Rows {
		values := []interface{}{
			row.AttendeeID,
			row.PersonName,
			row.RefugeName,
			row.RegistrationMode,
		}
		for _, p := range row.Present {
			values = append(values, mark(p))
		}
		values = append(values, row.DaysAttended, mark(row.AttendedAllDays), mark(row.Credited))

		for cIdx, v := range values {
			cell, err := excelize.CoordinatesToCellName(cIdx+1, rIdx+2)
			if err != nil {
				return nil, "", "", err
			}
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", "", err
	}

	return buf.Bytes(), baseFilename(report) + ".xlsx",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
}

func (e *reportExporter) exportPDF(report *AttendanceReport) ([]byte, string, string, error) {
	pdf := gofpdf.New("L", "mm", "A4", "") // Landscape for the day columns
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(120, 10, fmt.Sprintf("Attendance Report: %s", report.EventName))
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(120, 6, fmt.Sprintf("%s to %s | %s | %s",
		report.StartDate.Format("2006-01-02"), report.EndDate.Format("2006-01-02"),
		report.CategoryCode, report.Status))
	pdf.Ln(10)

	nameWidth := 60.0
	modeWidth := 35.0
	dayWidth := 12.0
	tailWidth := 22.0

	pdf.SetFont("Arial", "B", 8)
	pdf.CellFormat(nameWidth, 7, "Name", "1", 0, "L", false, 0, "")
	pdf.CellFormat(modeWidth, 7, "Mode", "1", 0, "C", false, 0, "")
	for _, day := range report.Days {
		pdf.CellFormat(dayWidth, 7, fmt.Sprintf("D%d", day.DayNumber), "1", 0, "C", false, 0, "")
	}
	pdf.CellFormat(tailWidth, 7, "All Days", "1", 0, "C", false, 0, "")
	pdf.CellFormat(tailWidth, 7, "Credited", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range report.Rows {
		name := row.PersonName
		if row.RefugeName != "" {
			name = fmt.Sprintf("%s (%s)", row.PersonName, row.RefugeName)
		}
		pdf.CellFormat(nameWidth, 6, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(modeWidth, 6, row.RegistrationMode, "1", 0, "C", false, 0, "")
		for _, p := range row.Present {
			pdf.CellFormat(dayWidth, 6, mark(p), "1", 0, "C", false, 0, "")
		}
		pdf.CellFormat(tailWidth, 6, mark(row.AttendedAllDays), "1", 0, "C", false, 0, "")
		pdf.CellFormat(tailWidth, 6, mark(row.Credited), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", "", err
	}

	return buf.Bytes(), baseFilename(report) + ".pdf", "application/pdf", nil
}
