package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/byoma-kusuma/sangha-management-backend/config"
	"github.com/byoma-kusuma/sangha-management-backend/database"
	"github.com/byoma-kusuma/sangha-management-backend/internal/auditlog"
	"github.com/byoma-kusuma/sangha-management-backend/internal/auth"
	"github.com/byoma-kusuma/sangha-management-backend/internal/category"
	"github.com/byoma-kusuma/sangha-management-backend/internal/empowerment"
	"github.com/byoma-kusuma/sangha-management-backend/internal/event"
	"github.com/byoma-kusuma/sangha-management-backend/internal/notification"
	"github.com/byoma-kusuma/sangha-management-backend/internal/person"
	"github.com/byoma-kusuma/sangha-management-backend/routes"
	"github.com/byoma-kusuma/sangha-management-backend/utils"
)

// @title Sangha Management API
// @version 1.0
// @description Event lifecycle and attendance crediting backend for Byoma Kusuma centers.
// @BasePath /api/v1
func main() {
	cfg := config.Load()
	db := database.Connect(cfg)

	// Redis backs the category cache and the close-event advisory lock.
	// The engine degrades gracefully without it.
	if err := utils.InitRedis(cfg); err != nil {
		log.Printf("⚠️  Redis unavailable, continuing without cache/locks: %v", err)
	}

	utils.InitializeKafka(cfg)

	log.Println("🔄 Initializing Firebase...")
	if err := utils.InitFirebase(); err != nil {
		log.Printf("⚠️  Firebase initialization failed: %v", err)
		log.Println("ℹ️  Continuing without push notifications")
	} else if utils.IsFCMEnabled() {
		log.Println("✅ Firebase and FCM initialized successfully")
	}

	log.Println("🔄 Running database migrations...")
	if err := db.AutoMigrate(
		&auth.UserRole{},
		&auth.User{},
		&auditlog.AuditLog{},
		&category.EventCategory{},
		&person.Person{},
		&empowerment.Empowerment{},
		&empowerment.Guru{},
		&empowerment.PersonEmpowerment{},
		&event.Event{},
		&event.EventDay{},
		&event.EventAttendee{},
		&event.EventAttendance{},
		&notification.InAppNotification{},
		&notification.FCMDeviceToken{},
	); err != nil {
		panic(fmt.Sprintf("❌ DB AutoMigrate failed: %v", err))
	}
	log.Println("✅ Database migrations completed")

	if err := auth.SeedUserRoles(db); err != nil {
		panic(fmt.Sprintf("❌ Failed to seed roles: %v", err))
	}
	if err := auth.SeedAdminUser(db); err != nil {
		panic(fmt.Sprintf("❌ Failed to seed admin user: %v", err))
	}
	if err := category.Seed(db); err != nil {
		panic(fmt.Sprintf("❌ Failed to seed event categories: %v", err))
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:4173", "http://127.0.0.1:4173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Content-Length", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.Setup(router, cfg)

	defer utils.CloseKafka()

	addr := ":" + cfg.Port
	log.Println("🚀 Server listening on", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
