package reports

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/byoma-kusuma/sangha-management-backend/internal/event"
)

var ErrEventNotFound = errors.New("event not found")

type ReportRepository interface {
	BuildAttendanceReport(eventID uint) (*AttendanceReport, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// BuildAttendanceReport assembles the attendee/day matrix for one event.
// The matrix is read in three queries (event+days, attendees+persons,
// attendance rows) and joined in memory.
func (r *reportRepository) BuildAttendanceReport(eventID uint) (*AttendanceReport, error) {
	var e event.Event
	err := r.db.Preload("Category").Preload("Days", func(db *gorm.DB) *gorm.DB {
		return db.Order("day_number ASC")
	}).First(&e, eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}

	var attendees []event.EventAttendee
	err = r.db.Preload("Person").
		Where("event_id = ?", eventID).Order("id ASC").Find(&attendees).Error
	if err != nil {
		return nil, err
	}

	var rows []event.EventAttendance
	err = r.db.Where("event_attendee_id IN (?)",
		r.db.Model(&event.EventAttendee{}).Select("id").Where("event_id = ?", eventID),
	).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	present := make(map[uint]map[uint]bool, len(attendees))
	for _, row := range rows {
		if present[row.EventAttendeeID] == nil {
			present[row.EventAttendeeID] = make(map[uint]bool)
		}
		present[row.EventAttendeeID][row.EventDayID] = true
	}

	report := &AttendanceReport{
		EventID:      e.ID,
		EventName:    e.Name,
		CategoryCode: e.Category.Code,
		Status:       e.Status,
		StartDate:    e.StartDate,
		EndDate:      e.EndDate,
		GeneratedAt:  time.Now().UTC(),
	}
	for _, day := range e.Days {
		report.Days = append(report.Days, AttendanceReportDay{
			DayNumber: day.DayNumber,
			EventDate: day.EventDate,
		})
	}

	for _, a := range attendees {
		row := AttendanceReportRow{
			AttendeeID:       a.ID,
			PersonName:       a.Person.FirstName + " " + a.Person.LastName,
			RegistrationMode: a.RegistrationMode,
			Credited:         a.ReceivedEmpowerment,
			Present:          make([]bool, len(e.Days)),
		}
		if a.Person.RefugeName != nil {
			row.RefugeName = *a.Person.RefugeName
		}
		for i, day := range e.Days {
			if present[a.ID][day.ID] {
				row.Present[i] = true
				row.DaysAttended++
			}
		}
		row.AttendedAllDays = len(e.Days) > 0 && row.DaysAttended == len(e.Days)
		report.Rows = append(report.Rows, row)
	}

	return report, nil
}
