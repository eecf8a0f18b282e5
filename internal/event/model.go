package event

import (
	"time"

	"gorm.io/datatypes"

	"github.com/byoma-kusuma/sangha-management-backend/internal/category"
	"github.com/byoma-kusuma/sangha-management-backend/internal/person"
)

// Event lifecycle states. CLOSED is terminal.
const (
	StatusDraft  = "DRAFT"
	StatusActive = "ACTIVE"
	StatusClosed = "CLOSED"
)

// Registration modes. The event-level mode is the default copied onto
// each attendee at registration time.
const (
	ModePreRegistration = "PRE_REGISTRATION"
	ModeWalkIn          = "WALK_IN"
)

// Event is the aggregate root. Dates are stored normalized to UTC
// midnight; Days is always regenerated from the date range, never
// edited directly.
type Event struct {
	ID               uint                   `json:"id" gorm:"primaryKey"`
	Name             string                 `json:"name" gorm:"type:varchar(255);not null"`
	Description      string                 `json:"description" gorm:"type:text"`
	StartDate        time.Time              `json:"start_date" gorm:"not null;index"`
	EndDate          time.Time              `json:"end_date" gorm:"not null"`
	RegistrationMode string                 `json:"registration_mode" gorm:"type:varchar(30);not null;default:'PRE_REGISTRATION'"`
	Status           string                 `json:"status" gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	CategoryID       uint                   `json:"category_id" gorm:"not null;index"`
	Category         category.EventCategory `json:"category" gorm:"foreignKey:CategoryID"`
	EmpowermentID    *uint                  `json:"empowerment_id"`
	GuruID           *uint                  `json:"guru_id"`
	Metadata         datatypes.JSONMap      `json:"metadata" gorm:"type:jsonb"`
	ClosedAt         *time.Time             `json:"closed_at"`
	ClosedBy         *uint                  `json:"closed_by"`
	CreatedBy        uint                   `json:"created_by"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
	Days             []EventDay             `json:"days,omitempty" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
}

// EventDay is one calendar day of an event. DayNumber is 1-based and
// contiguous across the event's date range.
type EventDay struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	EventID   uint      `json:"event_id" gorm:"not null;uniqueIndex:idx_event_day_number"`
	DayNumber int       `json:"day_number" gorm:"not null;uniqueIndex:idx_event_day_number"`
	EventDate time.Time `json:"event_date" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// EventAttendee links a person to an event. ReceivedEmpowerment and
// EmpowermentRecordID are only ever set by the close flow.
type EventAttendee struct {
	ID                  uint              `json:"id" gorm:"primaryKey"`
	EventID             uint              `json:"event_id" gorm:"not null;uniqueIndex:idx_event_person"`
	PersonID            uint              `json:"person_id" gorm:"not null;uniqueIndex:idx_event_person"`
	Person              person.Person     `json:"person" gorm:"foreignKey:PersonID"`
	RegistrationMode    string            `json:"registration_mode" gorm:"type:varchar(30);not null"`
	RegistrationCode    string            `json:"registration_code" gorm:"type:varchar(64);uniqueIndex"`
	Notes               string            `json:"notes" gorm:"type:text"`
	IsCancelled         bool              `json:"is_cancelled" gorm:"default:false"`
	Metadata            datatypes.JSONMap `json:"metadata" gorm:"type:jsonb"`
	ReceivedEmpowerment bool              `json:"received_empowerment" gorm:"default:false"`
	EmpowermentRecordID *uint             `json:"empowerment_record_id"`
	RegisteredBy        uint              `json:"registered_by"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// EventAttendance is a presence row: it exists iff the attendee was
// checked in for the day. Absence is the absence of the row.
type EventAttendance struct {
	EventAttendeeID uint      `json:"event_attendee_id" gorm:"primaryKey;autoIncrement:false"`
	EventDayID      uint      `json:"event_day_id" gorm:"primaryKey;autoIncrement:false"`
	CheckedInAt     time.Time `json:"checked_in_at" gorm:"not null"`
	CheckedInBy     uint      `json:"checked_in_by"`
}

// ===========================
// Request / response payloads
// ===========================

type CreateEventRequest struct {
	Name             string                 `json:"name" binding:"required"`
	Description      string                 `json:"description"`
	StartDate        string                 `json:"start_date" binding:"required"`
	EndDate          string                 `json:"end_date" binding:"required"`
	RegistrationMode string                 `json:"registration_mode"`
	Status           string                 `json:"status"`
	CategoryID       uint                   `json:"category_id" binding:"required"`
	EmpowermentID    *uint                  `json:"empowerment_id"`
	GuruID           *uint                  `json:"guru_id"`
	Metadata         map[string]interface{} `json:"metadata"`
}

type UpdateEventRequest struct {
	Name             *string                `json:"name"`
	Description      *string                `json:"description"`
	StartDate        *string                `json:"start_date"`
	EndDate          *string                `json:"end_date"`
	RegistrationMode *string                `json:"registration_mode"`
	Status           *string                `json:"status"`
	CategoryID       *uint                  `json:"category_id"`
	EmpowermentID    *uint                  `json:"empowerment_id"`
	GuruID           *uint                  `json:"guru_id"`
	Metadata         map[string]interface{} `json:"metadata"`
}

type RegisterAttendeeRequest struct {
	PersonID uint                   `json:"person_id" binding:"required"`
	Notes    string                 `json:"notes"`
	Metadata map[string]interface{} `json:"metadata"`
}

type UpdateAttendeeRequest struct {
	Notes       *string                `json:"notes"`
	IsCancelled *bool                  `json:"is_cancelled"`
	Metadata    map[string]interface{} `json:"metadata"`
}

type CheckInRequest struct {
	CheckedIn bool `json:"checked_in"`
}

type CloseEventRequest struct {
	AttendeeIDs   []uint `json:"attendee_ids"`
	AdminOverride bool   `json:"admin_override"`
}

// DayCheckIn is one cell of an attendee's attendance row.
type DayCheckIn struct {
	DayID     uint      `json:"day_id"`
	DayNumber int       `json:"day_number"`
	EventDate time.Time `json:"event_date"`
	CheckedIn bool      `json:"checked_in"`
}

// AttendeeView is an attendee plus the per-day attendance derived from
// presence rows. AttendedAllDays is false for events with zero days.
type AttendeeView struct {
	EventAttendee
	Attendance      []DayCheckIn `json:"attendance"`
	AttendedAllDays bool         `json:"attended_all_days"`
}

// EventView is the detail shape: the event with its days and the
// attendee roster expanded into attendance views.
type EventView struct {
	Event
	Attendees []AttendeeView `json:"attendees"`
}

// CloseResult summarizes what a close run did.
type CloseResult struct {
	EventID      uint      `json:"event_id"`
	Status       string    `json:"status"`
	ClosedAt     time.Time `json:"closed_at"`
	ClosedBy     uint      `json:"closed_by"`
	CreditedIDs  []uint    `json:"credited_attendee_ids"`
	RevokedIDs   []uint    `json:"revoked_attendee_ids"`
	CategoryCode string    `json:"category_code"`
}

// EventStats is the aggregate block for dashboards.
type EventStats struct {
	TotalEvents    int64 `json:"total_events"`
	ActiveEvents   int64 `json:"active_events"`
	ClosedEvents   int64 `json:"closed_events"`
	TotalAttendees int64 `json:"total_attendees"`
	TotalCheckIns  int64 `json:"total_check_ins"`
}
