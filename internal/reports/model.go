package reports

import "time"

// Export formats.
const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatPDF   = "pdf"
)

// AttendanceReport is the full attendance matrix for one event:
// attendees down, event days across.
type AttendanceReport struct {
	EventID      uint                  `json:"event_id"`
	EventName    string                `json:"event_name"`
	CategoryCode string                `json:"category_code"`
	Status       string                `json:"status"`
	StartDate    time.Time             `json:"start_date"`
	EndDate      time.Time             `json:"end_date"`
	Days         []AttendanceReportDay `json:"days"`
	Rows         []AttendanceReportRow `json:"rows"`
	GeneratedAt  time.Time             `json:"generated_at"`
}

type AttendanceReportDay struct {
	DayNumber int       `json:"day_number"`
	EventDate time.Time `json:"event_date"`
}

type AttendanceReportRow struct {
	AttendeeID       uint   `json:"attendee_id"`
	PersonName       string `json:"person_name"`
	RefugeName       string `json:"refuge_name,omitempty"`
	RegistrationMode string `json:"registration_mode"`
	DaysAttended     int    `json:"days_attended"`
	AttendedAllDays  bool   `json:"attended_all_days"`
	Credited         bool   `json:"credited"`
	// Present[i] refers to Days[i] of the report.
	Present []bool `json:"present"`
}
