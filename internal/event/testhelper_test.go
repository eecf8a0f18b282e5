package event

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/byoma-kusuma/sangha-management-backend/internal/auditlog"
	"github.com/byoma-kusuma/sangha-management-backend/internal/category"
	"github.com/byoma-kusuma/sangha-management-backend/internal/empowerment"
	"github.com/byoma-kusuma/sangha-management-backend/internal/person"
	"github.com/byoma-kusuma/sangha-management-backend/middleware"
)

// newTestService wires the engine against an in-memory sqlite database
// with the reference categories seeded.
func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	// One named in-memory database per test; cache=shared keeps every
	// pooled connection on the same database.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&category.EventCategory{},
		&person.Person{},
		&empowerment.Empowerment{},
		&empowerment.Guru{},
		&empowerment.PersonEmpowerment{},
		&auditlog.AuditLog{},
		&Event{},
		&EventDay{},
		&EventAttendee{},
		&EventAttendance{},
	))
	require.NoError(t, category.Seed(db))

	auditSvc := auditlog.NewService(auditlog.NewRepository(db))
	personSvc := person.NewService(person.NewRepository(db), auditSvc)
	catSvc := category.NewService(category.NewRepository(db))
	empRepo := empowerment.NewRepository(db)

	svc := NewService(NewRepository(db), catSvc, personSvc, empRepo, auditSvc)

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return svc, db
}

func seedPerson(t *testing.T, db *gorm.DB, firstName string) *person.Person {
	t.Helper()
	p := &person.Person{FirstName: firstName, LastName: "Lama", Type: person.TypeInterested}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedCeremony(t *testing.T, db *gorm.DB) (*empowerment.Empowerment, *empowerment.Guru) {
	t.Helper()
	emp := &empowerment.Empowerment{Name: "Chenrezig"}
	require.NoError(t, db.Create(emp).Error)
	guru := &empowerment.Guru{Name: "Khenpo Rinpoche"}
	require.NoError(t, db.Create(guru).Error)
	return emp, guru
}

func categoryID(t *testing.T, svc *Service, code string) uint {
	t.Helper()
	cat, err := svc.Categories.GetByCode(code)
	require.NoError(t, err)
	return cat.ID
}

func adminActor() middleware.AccessContext {
	return middleware.AccessContext{UserID: 1, RoleName: middleware.RoleAdmin, PermissionType: "full"}
}

func staffActor() middleware.AccessContext {
	return middleware.AccessContext{UserID: 2, RoleName: middleware.RoleStaff, PermissionType: "full"}
}

// createTestEvent makes an ACTIVE event for the given category code and
// date range, returning it with days preloaded.
func createTestEvent(t *testing.T, svc *Service, db *gorm.DB, code, start, end string, mode string) *Event {
	t.Helper()

	req := &CreateEventRequest{
		Name:             "Test " + code,
		StartDate:        start,
		EndDate:          end,
		RegistrationMode: mode,
		CategoryID:       categoryID(t, svc, code),
	}

	cat, err := svc.Categories.GetByCode(code)
	require.NoError(t, err)
	if cat.RequiresFullAttendance {
		emp, guru := seedCeremony(t, db)
		req.EmpowermentID = &emp.ID
		req.GuruID = &guru.ID
	}

	e, err := svc.CreateEvent(req, 1, "127.0.0.1")
	require.NoError(t, err)
	return e
}

func checkInAllDays(t *testing.T, svc *Service, e *Event, attendeeID uint) {
	t.Helper()
	for _, day := range e.Days {
		_, err := svc.SetCheckIn(e.ID, attendeeID, day.ID, true, 1, "127.0.0.1")
		require.NoError(t, err)
	}
}
