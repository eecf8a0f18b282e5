package event

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// ===========================
// Events
// ===========================

func (r *Repository) CreateEventTx(tx *gorm.DB, e *Event) error {
	return tx.Create(e).Error
}

func (r *Repository) GetEventByID(id uint) (*Event, error) {
	var e Event
	err := r.DB.Preload("Category").Preload("Days", func(db *gorm.DB) *gorm.DB {
		return db.Order("day_number ASC")
	}).First(&e, id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetEventForUpdateTx loads the event row under FOR UPDATE so that
// concurrent close attempts serialize on the database even when the
// redis advisory lock is unavailable. SQLite has no row locks; its
// single-writer model already serializes the transaction.
func (r *Repository) GetEventForUpdateTx(tx *gorm.DB, id uint) (*Event, error) {
	query := tx
	if tx.Dialector.Name() != "sqlite" {
		query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var e Event
	if err := query.First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Repository) ListEvents(status string, categoryID uint) ([]Event, error) {
	var events []Event
	query := r.DB.Preload("Category").Order("start_date DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if categoryID != 0 {
		query = query.Where("category_id = ?", categoryID)
	}
	err := query.Find(&events).Error
	return events, err
}

func (r *Repository) UpdateEventTx(tx *gorm.DB, e *Event) error {
	return tx.Omit(clause.Associations).Save(e).Error
}

func (r *Repository) DeleteEventTx(tx *gorm.DB, eventID uint) error {
	if err := tx.Where("event_attendee_id IN (?)",
		tx.Model(&EventAttendee{}).Select("id").Where("event_id = ?", eventID),
	).Delete(&EventAttendance{}).Error; err != nil {
		return err
	}
	if err := tx.Where("event_id = ?", eventID).Delete(&EventAttendee{}).Error; err != nil {
		return err
	}
	if err := tx.Where("event_id = ?", eventID).Delete(&EventDay{}).Error; err != nil {
		return err
	}
	return tx.Delete(&Event{}, eventID).Error
}

// ===========================
// Days
// ===========================

func (r *Repository) CreateDaysTx(tx *gorm.DB, days []EventDay) error {
	if len(days) == 0 {
		return nil
	}
	return tx.Create(&days).Error
}

func (r *Repository) GetDaysByEvent(eventID uint) ([]EventDay, error) {
	var days []EventDay
	err := r.DB.Where("event_id = ?", eventID).Order("day_number ASC").Find(&days).Error
	return days, err
}

func (r *Repository) GetDaysByEventTx(tx *gorm.DB, eventID uint) ([]EventDay, error) {
	var days []EventDay
	err := tx.Where("event_id = ?", eventID).Order("day_number ASC").Find(&days).Error
	return days, err
}

func (r *Repository) GetDay(eventID, dayID uint) (*EventDay, error) {
	var day EventDay
	err := r.DB.Where("id = ? AND event_id = ?", dayID, eventID).First(&day).Error
	if err != nil {
		return nil, err
	}
	return &day, nil
}

func (r *Repository) DeleteDaysTx(tx *gorm.DB, eventID uint) error {
	return tx.Where("event_id = ?", eventID).Delete(&EventDay{}).Error
}

// ===========================
// Attendees
// ===========================

func (r *Repository) CreateAttendeeTx(tx *gorm.DB, a *EventAttendee) error {
	return tx.Create(a).Error
}

func (r *Repository) GetAttendee(eventID, attendeeID uint) (*EventAttendee, error) {
	var a EventAttendee
	err := r.DB.Preload("Person").
		Where("id = ? AND event_id = ?", attendeeID, eventID).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) GetAttendeeTx(tx *gorm.DB, eventID, attendeeID uint) (*EventAttendee, error) {
	var a EventAttendee
	err := tx.Where("id = ? AND event_id = ?", attendeeID, eventID).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) GetAttendeesByEvent(eventID uint) ([]EventAttendee, error) {
	var attendees []EventAttendee
	err := r.DB.Preload("Person").
		Where("event_id = ?", eventID).Order("id ASC").Find(&attendees).Error
	return attendees, err
}

func (r *Repository) GetAttendeesByEventTx(tx *gorm.DB, eventID uint) ([]EventAttendee, error) {
	var attendees []EventAttendee
	err := tx.Where("event_id = ?", eventID).Order("id ASC").Find(&attendees).Error
	return attendees, err
}

func (r *Repository) AttendeeExists(eventID, personID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&EventAttendee{}).
		Where("event_id = ? AND person_id = ?", eventID, personID).Count(&count).Error
	return count > 0, err
}

func (r *Repository) UpdateAttendee(a *EventAttendee) error {
	return r.DB.Omit(clause.Associations).Save(a).Error
}

func (r *Repository) UpdateAttendeeTx(tx *gorm.DB, a *EventAttendee) error {
	return tx.Omit(clause.Associations).Save(a).Error
}

func (r *Repository) DeleteAttendeeTx(tx *gorm.DB, attendeeID uint) error {
	if err := tx.Where("event_attendee_id = ?", attendeeID).Delete(&EventAttendance{}).Error; err != nil {
		return err
	}
	return tx.Delete(&EventAttendee{}, attendeeID).Error
}

// BulkUpdateModeTx rewrites the registration mode of every attendee of
// an event. Used when the event-level mode changes.
func (r *Repository) BulkUpdateModeTx(tx *gorm.DB, eventID uint, mode string) error {
	return tx.Model(&EventAttendee{}).
		Where("event_id = ?", eventID).Update("registration_mode", mode).Error
}

// ===========================
// Attendance
// ===========================

// UpsertAttendanceTx records presence for an attendee/day pair. Re-checking
// an already-present pair refreshes the check-in stamp instead of failing.
func (r *Repository) UpsertAttendanceTx(tx *gorm.DB, row *EventAttendance) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_attendee_id"}, {Name: "event_day_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"checked_in_at", "checked_in_by"}),
	}).Create(row).Error
}

func (r *Repository) DeleteAttendanceTx(tx *gorm.DB, attendeeID, dayID uint) error {
	return tx.Where("event_attendee_id = ? AND event_day_id = ?", attendeeID, dayID).
		Delete(&EventAttendance{}).Error
}

func (r *Repository) GetAttendanceDayIDs(attendeeID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&EventAttendance{}).
		Where("event_attendee_id = ?", attendeeID).Pluck("event_day_id", &ids).Error
	return ids, err
}

func (r *Repository) CountAttendance(attendeeID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&EventAttendance{}).
		Where("event_attendee_id = ?", attendeeID).Count(&count).Error
	return count, err
}

func (r *Repository) CountAttendanceByEvent(eventID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&EventAttendance{}).
		Where("event_attendee_id IN (?)",
			r.DB.Model(&EventAttendee{}).Select("id").Where("event_id = ?", eventID)).
		Count(&count).Error
	return count, err
}

// AttendanceCountsTx returns a per-attendee presence count for the given
// attendees, read inside the caller's transaction.
func (r *Repository) AttendanceCountsTx(tx *gorm.DB, attendeeIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(attendeeIDs))
	if len(attendeeIDs) == 0 {
		return counts, nil
	}
	type row struct {
		EventAttendeeID uint
		Total           int64
	}
	var rows []row
	err := tx.Model(&EventAttendance{}).
		Select("event_attendee_id, COUNT(*) AS total").
		Where("event_attendee_id IN ?", attendeeIDs).
		Group("event_attendee_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[r.EventAttendeeID] = r.Total
	}
	return counts, nil
}

// ===========================
// Stats
// ===========================

func (r *Repository) Stats() (*EventStats, error) {
	var stats EventStats
	if err := r.DB.Model(&Event{}).Count(&stats.TotalEvents).Error; err != nil {
		return nil, err
	}
	if err := r.DB.Model(&Event{}).Where("status = ?", StatusActive).Count(&stats.ActiveEvents).Error; err != nil {
		return nil, err
	}
	if err := r.DB.Model(&Event{}).Where("status = ?", StatusClosed).Count(&stats.ClosedEvents).Error; err != nil {
		return nil, err
	}
	if err := r.DB.Model(&EventAttendee{}).Count(&stats.TotalAttendees).Error; err != nil {
		return nil, err
	}
	if err := r.DB.Model(&EventAttendance{}).Count(&stats.TotalCheckIns).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
