package person

import (
	"gorm.io/gorm"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) Create(p *Person) error {
	return r.DB.Create(p).Error
}

func (r *Repository) GetByID(id uint) (*Person, error) {
	var p Person
	if err := r.DB.Where("deleted_at IS NULL").First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByIDTx reads a person inside the caller's transaction. Used by the
// close-event coordinator so side-effect writes see a consistent row.
func (r *Repository) GetByIDTx(tx *gorm.DB, id uint) (*Person, error) {
	var p Person
	if err := tx.Where("deleted_at IS NULL").First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) Update(p *Person) error {
	return r.DB.Save(p).Error
}

func (r *Repository) UpdateTx(tx *gorm.DB, p *Person) error {
	return tx.Save(p).Error
}

func (r *Repository) List(limit, offset int, search string) ([]Person, int64, error) {
	var persons []Person
	var total int64

	query := r.DB.Model(&Person{}).Where("deleted_at IS NULL")
	if search != "" {
		ilike := "%" + search + "%"
		query = query.Where("first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ?", ilike, ilike, ilike)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("last_name ASC, first_name ASC").
		Limit(limit).
		Offset(offset).
		Find(&persons).Error

	return persons, total, err
}

// SoftDelete marks the person removed without dropping attendance history
func (r *Repository) SoftDelete(id uint) error {
	return r.DB.Model(&Person{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}
