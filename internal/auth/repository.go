package auth

import (
	"strings"

	"gorm.io/gorm"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) Create(user *User) error {
	return r.DB.Create(user).Error
}

func (r *Repository) FindByEmail(email string) (*User, error) {
	var user User
	err := r.DB.Preload("Role").
		Where("LOWER(email) = ?", strings.ToLower(email)).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) FindByID(id uint) (*User, error) {
	var user User
	if err := r.DB.Preload("Role").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) FindRoleByName(name string) (*UserRole, error) {
	var role UserRole
	err := r.DB.Where("role_name = ?", strings.ToLower(name)).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// FindUsersByRoles returns active users holding any of the given roles.
// Used for fan-out of in-app and push notifications.
func (r *Repository) FindUsersByRoles(roleNames []string) ([]User, error) {
	var users []User
	err := r.DB.Preload("Role").
		Joins("JOIN user_roles ON user_roles.id = users.role_id").
		Where("user_roles.role_name IN ?", roleNames).
		Where("users.status = ?", "active").
		Find(&users).Error
	return users, err
}
