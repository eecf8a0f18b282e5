package empowerment

import (
	"time"
)

// ============================
// 🔷 GORM Empowerment Model
type Empowerment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Class       *string   `gorm:"type:varchar(100)" json:"class,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Empowerment) TableName() string {
	return "empowerments"
}

// ============================
// 🔷 GORM Guru Model
type Guru struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Tradition *string   `gorm:"type:varchar(100)" json:"tradition,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Guru) TableName() string {
	return "gurus"
}

// ============================
// 🔷 GORM Person Empowerment Model (the credit record)
//
// Outlives the event that created it. Creation dedupes by
// (person_id, empowerment_id, start_date); revocation hard-deletes.
type PersonEmpowerment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	PersonID      uint      `gorm:"not null;index:idx_person_empowerment_start,unique" json:"person_id"`
	EmpowermentID uint      `gorm:"not null;index:idx_person_empowerment_start,unique" json:"empowerment_id"`
	GuruID        uint      `gorm:"not null" json:"guru_id"`
	StartDate     time.Time `gorm:"not null;index:idx_person_empowerment_start,unique" json:"start_date"`
	EndDate       time.Time `gorm:"not null" json:"end_date"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PersonEmpowerment) TableName() string {
	return "person_empowerments"
}
