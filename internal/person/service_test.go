package person

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/byoma-kusuma/sangha-management-backend/internal/auditlog"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Person{}, &auditlog.AuditLog{}))

	svc := NewService(NewRepository(db), auditlog.NewService(auditlog.NewRepository(db)))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return svc, db
}

func TestPersonCRUD(t *testing.T) {
	svc, _ := newTestService(t)

	p, err := svc.CreatePerson(&CreatePersonRequest{
		FirstName: "Pema",
		LastName:  "Sherpa",
	}, 1, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, TypeInterested, p.Type, "default type is interested")

	newType := TypeContact
	updated, err := svc.UpdatePerson(p.ID, &UpdatePersonRequest{Type: &newType}, 1, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, TypeContact, updated.Type)

	require.NoError(t, svc.DeletePerson(p.ID, 1, "127.0.0.1"))
	_, err = svc.GetPersonByID(p.ID)
	assert.ErrorIs(t, err, ErrPersonNotFound)
}

func TestPromoteToSanghaMemberIdempotent(t *testing.T) {
	svc, db := newTestService(t)
	p := &Person{FirstName: "Pema", LastName: "Sherpa", Type: TypeInterested}
	require.NoError(t, db.Create(p).Error)

	changed, err := svc.PromoteToSanghaMemberTx(db, p.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	// Second promotion is a no-op, not an error.
	changed, err = svc.PromoteToSanghaMemberTx(db, p.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	var reloaded Person
	require.NoError(t, db.First(&reloaded, p.ID).Error)
	assert.Equal(t, TypeSanghaMember, reloaded.Type)
}

func TestSetRefugeNameNeverOverwrites(t *testing.T) {
	svc, db := newTestService(t)
	p := &Person{FirstName: "Pema", LastName: "Sherpa", Type: TypeInterested}
	require.NoError(t, db.Create(p).Error)

	changed, err := svc.SetRefugeNameIfEmptyTx(db, p.ID, "Karma Dolma")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = svc.SetRefugeNameIfEmptyTx(db, p.ID, "Jigme Wangmo")
	require.NoError(t, err)
	assert.False(t, changed, "existing name wins")

	var reloaded Person
	require.NoError(t, db.First(&reloaded, p.ID).Error)
	require.NotNil(t, reloaded.RefugeName)
	assert.Equal(t, "Karma Dolma", *reloaded.RefugeName)

	// Empty input never writes.
	changed, err = svc.SetRefugeNameIfEmptyTx(db, p.ID, "")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestSetReferralSourceOverwritesDifferingValue(t *testing.T) {
	svc, db := newTestService(t)
	p := &Person{FirstName: "Pema", LastName: "Sherpa", Type: TypeInterested}
	require.NoError(t, db.Create(p).Error)

	changed, err := svc.SetReferralSourceTx(db, p.ID, "Facebook")
	require.NoError(t, err)
	assert.True(t, changed)

	// Same value is a no-op.
	changed, err = svc.SetReferralSourceTx(db, p.ID, "Facebook")
	require.NoError(t, err)
	assert.False(t, changed)

	// A differing value overwrites; the latest ceremony is authoritative.
	changed, err = svc.SetReferralSourceTx(db, p.ID, "Word of mouth")
	require.NoError(t, err)
	assert.True(t, changed)

	var reloaded Person
	require.NoError(t, db.First(&reloaded, p.ID).Error)
	require.NotNil(t, reloaded.ReferralSource)
	assert.Equal(t, "Word of mouth", *reloaded.ReferralSource)
}
