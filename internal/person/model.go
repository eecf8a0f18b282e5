package person

import (
	"time"
)

// Person types. SanghaMember is terminal: crediting a refuge ceremony
// promotes toward it and nothing demotes out of it.
const (
	TypeInterested   = "interested"
	TypeContact      = "contact"
	TypeSanghaMember = "sangha_member"
)

// ============================
// 🔷 GORM Person Model
type Person struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	FirstName      string     `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName       string     `gorm:"type:varchar(100);not null" json:"last_name"`
	Email          *string    `gorm:"type:varchar(255);index" json:"email,omitempty"`
	Phone          *string    `gorm:"type:varchar(30)" json:"phone,omitempty"`
	Type           string     `gorm:"type:varchar(30);not null;default:'interested';index" json:"type"`
	Center         *string    `gorm:"type:varchar(100)" json:"center,omitempty"`
	RefugeName     *string    `gorm:"type:varchar(255)" json:"refuge_name,omitempty"`
	ReferralSource *string    `gorm:"type:varchar(255)" json:"referral_source,omitempty"`
	Notes          *string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedBy      uint       `json:"created_by"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

func (Person) TableName() string {
	return "persons"
}

// ============================
// 🟡 Create Person Request
type CreatePersonRequest struct {
	FirstName      string  `json:"first_name" binding:"required"`
	LastName       string  `json:"last_name" binding:"required"`
	Email          *string `json:"email,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Type           string  `json:"type,omitempty"`
	Center         *string `json:"center,omitempty"`
	ReferralSource *string `json:"referral_source,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

// ============================
// 🟠 Update Person Request
type UpdatePersonRequest struct {
	FirstName      *string `json:"first_name,omitempty"`
	LastName       *string `json:"last_name,omitempty"`
	Email          *string `json:"email,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Type           *string `json:"type,omitempty"`
	Center         *string `json:"center,omitempty"`
	RefugeName     *string `json:"refuge_name,omitempty"`
	ReferralSource *string `json:"referral_source,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}
