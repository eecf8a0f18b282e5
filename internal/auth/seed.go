package auth

import (
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedUserRoles inserts the fixed role set. Idempotent.
func SeedUserRoles(db *gorm.DB) error {
	roles := []UserRole{
		{RoleName: "admin", Description: "Full access including close-event override", CanWrite: true},
		{RoleName: "staff", Description: "Manage events, attendees and check-ins", CanWrite: true},
		{RoleName: "viewer", Description: "Read-only access", CanWrite: false},
	}

	for _, role := range roles {
		var existing UserRole
		err := db.Where("role_name = ?", role.RoleName).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			if err := db.Create(&role).Error; err != nil {
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

// SeedAdminUser creates the bootstrap admin from env, once
func SeedAdminUser(db *gorm.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("ℹ️ ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var existing User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	var adminRole UserRole
	if err := db.Where("role_name = ?", "admin").First(&adminRole).Error; err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &User{
		FullName:     "Administrator",
		Email:        email,
		PasswordHash: string(hash),
		RoleID:       adminRole.ID,
		Status:       "active",
	}

	if err := db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Seeded admin user %s", email)
	return nil
}
