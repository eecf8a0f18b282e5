package empowerment

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) GetEmpowermentByID(id uint) (*Empowerment, error) {
	var e Empowerment
	if err := r.DB.First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Repository) GetGuruByID(id uint) (*Guru, error) {
	var g Guru
	if err := r.DB.First(&g, id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *Repository) EmpowermentExists(id uint) (bool, error) {
	var count int64
	err := r.DB.Model(&Empowerment{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *Repository) GuruExists(id uint) (bool, error) {
	var count int64
	err := r.DB.Model(&Guru{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *Repository) ListEmpowerments() ([]Empowerment, error) {
	var list []Empowerment
	err := r.DB.Order("name ASC").Find(&list).Error
	return list, err
}

func (r *Repository) ListGurus() ([]Guru, error) {
	var list []Guru
	err := r.DB.Order("name ASC").Find(&list).Error
	return list, err
}

// ===========================
// Credit record lifecycle. All operations run inside the close-event
// transaction handle passed by the coordinator.

func (r *Repository) CreateRecordTx(tx *gorm.DB, rec *PersonEmpowerment) error {
	return tx.Create(rec).Error
}

func (r *Repository) GetRecordByIDTx(tx *gorm.DB, id uint) (*PersonEmpowerment, error) {
	var rec PersonEmpowerment
	if err := tx.First(&rec, id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// FindRecordTx looks up an existing credit by its dedupe key. Returns
// (nil, nil) on no match.
func (r *Repository) FindRecordTx(tx *gorm.DB, personID, empowermentID uint, startDate time.Time) (*PersonEmpowerment, error) {
	var rec PersonEmpowerment
	err := tx.Where("person_id = ? AND empowerment_id = ? AND start_date = ?",
		personID, empowermentID, startDate).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) UpdateRecordTx(tx *gorm.DB, rec *PersonEmpowerment) error {
	return tx.Save(rec).Error
}

func (r *Repository) DeleteRecordTx(tx *gorm.DB, id uint) error {
	return tx.Delete(&PersonEmpowerment{}, id).Error
}

func (r *Repository) ListRecordsByPerson(personID uint) ([]PersonEmpowerment, error) {
	var recs []PersonEmpowerment
	err := r.DB.Where("person_id = ?", personID).Order("start_date DESC").Find(&recs).Error
	return recs, err
}
