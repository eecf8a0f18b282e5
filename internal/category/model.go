package category

import (
	"time"
)

// Category codes with close-time behavior attached to them
const (
	CodeRefuge           = "REFUGE"
	CodeBodhipushpanjali = "BODHIPUSPANJALI"
	CodeEmpowerment      = "EMPOWERMENT"
	CodeOther            = "OTHER"
)

// ============================
// 🔷 GORM Event Category Model
//
// Immutable reference data. RequiresFullAttendance drives the close-event
// attendance rule; Code selects the credit side effect.
type EventCategory struct {
	ID                     uint      `gorm:"primaryKey" json:"id"`
	Code                   string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	Name                   string    `gorm:"type:varchar(255);not null" json:"name"`
	RequiresFullAttendance bool      `gorm:"not null;default:false" json:"requires_full_attendance"`
	CreatedAt              time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (EventCategory) TableName() string {
	return "event_categories"
}
