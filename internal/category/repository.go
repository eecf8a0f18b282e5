package category

import (
	"gorm.io/gorm"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) GetByID(id uint) (*EventCategory, error) {
	var c EventCategory
	if err := r.DB.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) GetByCode(code string) (*EventCategory, error) {
	var c EventCategory
	if err := r.DB.Where("code = ?", code).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) List() ([]EventCategory, error) {
	var cats []EventCategory
	err := r.DB.Order("code ASC").Find(&cats).Error
	return cats, err
}

// ===========================
// 🌱 Seed reference categories
//
// Idempotent: existing codes are left untouched so deployments can rerun it.
func Seed(db *gorm.DB) error {
	seed := []EventCategory{
		{Code: CodeRefuge, Name: "Refuge Ceremony", RequiresFullAttendance: true},
		{Code: CodeBodhipushpanjali, Name: "Bodhipushpanjali", RequiresFullAttendance: false},
		{Code: CodeEmpowerment, Name: "Empowerment", RequiresFullAttendance: true},
		{Code: CodeOther, Name: "General Event", RequiresFullAttendance: false},
	}

	for _, c := range seed {
		var existing EventCategory
		err := db.Where("code = ?", c.Code).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			if err := db.Create(&c).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}
