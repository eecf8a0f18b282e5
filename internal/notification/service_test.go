package notification

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/byoma-kusuma/sangha-management-backend/config"
	"github.com/byoma-kusuma/sangha-management-backend/internal/auth"
	"github.com/byoma-kusuma/sangha-management-backend/utils"
)

// recordingChannel captures what was handed to a delivery channel.
type recordingChannel struct {
	recipients []string
	subject    string
	body       string
	calls      int
}

func (r *recordingChannel) Send(recipients []string, subject, body string) error {
	r.recipients = recipients
	r.subject = subject
	r.body = body
	r.calls++
	return nil
}

func newTestService(t *testing.T) (*service, *gorm.DB, *recordingChannel) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&auth.UserRole{}, &auth.User{}, &InAppNotification{}, &FCMDeviceToken{}))
	require.NoError(t, auth.SeedUserRoles(db))

	email := &recordingChannel{}
	svc := &service{
		repo:     NewRepository(db),
		authRepo: auth.NewRepository(db),
		fcm:      &recordingChannel{},
		email:    email,
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return svc, db, email
}

func seedUser(t *testing.T, db *gorm.DB, name, email, roleName, status string) auth.User {
	t.Helper()
	var role auth.UserRole
	require.NoError(t, db.Where("role_name = ?", roleName).First(&role).Error)
	u := auth.User{
		FullName:     name,
		Email:        email,
		PasswordHash: "x",
		RoleID:       role.ID,
		Status:       status,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func TestHandleEventClosedFansOut(t *testing.T) {
	svc, db, email := newTestService(t)
	ctx := context.Background()

	admin := seedUser(t, db, "Admin", "admin@byomakusuma.org", "admin", "active")
	staff := seedUser(t, db, "Staff", "staff@byomakusuma.org", "staff", "active")
	seedUser(t, db, "Viewer", "viewer@byomakusuma.org", "viewer", "active")
	seedUser(t, db, "Gone", "gone@byomakusuma.org", "staff", "disabled")

	eventID := uint(42)
	err := svc.HandleEventClosed(ctx, utils.EventClosedMessage{
		EventID:      eventID,
		EventName:    "Refuge Ceremony",
		CategoryCode: "REFUGE",
		CreditedIDs:  []uint{1, 2},
	})
	require.NoError(t, err)

	// In-app rows for admin and staff only.
	var rows []InAppNotification
	require.NoError(t, db.Order("user_id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, admin.ID, rows[0].UserID)
	assert.Equal(t, staff.ID, rows[1].UserID)
	for _, row := range rows {
		assert.Equal(t, CategoryEvent, row.Category)
		require.NotNil(t, row.EventID)
		assert.Equal(t, eventID, *row.EventID)
		assert.Contains(t, row.Title, "Refuge Ceremony")
		assert.Contains(t, row.Message, "2 attendee(s) credited")
		assert.False(t, row.IsRead)
	}

	// Mail goes to the same audience; viewers and disabled accounts are skipped.
	assert.Equal(t, 1, email.calls)
	assert.ElementsMatch(t, []string{"admin@byomakusuma.org", "staff@byomakusuma.org"}, email.recipients)
	assert.Contains(t, email.subject, "Refuge Ceremony")
}

func TestEmailChannelNoOpWithoutSMTP(t *testing.T) {
	ch := NewEmailChannel(utils.NewMailer(&config.Config{}))
	assert.NoError(t, ch.Send([]string{"someone@byomakusuma.org"}, "s", "b"))
}
