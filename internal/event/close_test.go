package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/byoma-kusuma/sangha-management-backend/internal/category"
	"github.com/byoma-kusuma/sangha-management-backend/internal/empowerment"
	"github.com/byoma-kusuma/sangha-management-backend/internal/person"
)

func creditRecordCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&empowerment.PersonEmpowerment{}).Count(&count).Error)
	return count
}

func reloadAttendee(t *testing.T, svc *Service, eventID, attendeeID uint) *EventAttendee {
	t.Helper()
	a, err := svc.Repo.GetAttendee(eventID, attendeeID)
	require.NoError(t, err)
	return a
}

func reloadPerson(t *testing.T, db *gorm.DB, id uint) *person.Person {
	t.Helper()
	var p person.Person
	require.NoError(t, db.First(&p, id).Error)
	return &p
}

// Full happy path: three-day refuge event, one attendee, full
// attendance, close with selection. Credit, promotion and status flip
// all land.
func TestCloseRefugeEndToEnd(t *testing.T) {
	svc, db := newTestService(t)
	e := createTestEvent(t, svc, db, category.CodeRefuge, "2025-01-10", "2025-01-12", ModePreRegistration)
	p := seedPerson(t, db, "Pema")

	att, err := svc.RegisterAttendee(e.ID, &RegisterAttendeeRequest{
		PersonID: p.ID,
		Metadata: map[string]interface{}{"refuge_name": "Karma Dolma"},
	}, 1, "127.0.0.1")
	require.NoError(t, err)
	checkInAllDays(t, svc, e, att.ID)

	result, err := svc.CloseEvent(e.ID, &CloseEventRequest{AttendeeIDs: []uint{att.ID}}, staffActor(), "127.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, StatusClosed, result.Status)
	assert.Equal(t, []uint{att.ID}, result.CreditedIDs)
	assert.Empty(t, result.RevokedIDs)
	assert.Equal(t, category.CodeRefuge, result.CategoryCode)

	reloaded := reloadAttendee(t, svc, e.ID, att.ID)
	assert.True(t, reloaded.ReceivedEmpowerment)
	require.NotNil(t, reloaded.EmpowermentRecordID)

	var rec empowerment.PersonEmpowerment
	require.NoError(t, db.First(&rec, *reloaded.EmpowermentRecordID).Error)
	assert.Equal(t, p.ID, rec.PersonID)
	assert.Equal(t, date("2025-01-10"), rec.StartDate)
	assert.Equal(t, date("2025-01-12"), rec.EndDate)

	promoted := reloadPerson(t, db, p.ID)
	assert.Equal(t, person.TypeSanghaMember, promoted.Type)
	require.NotNil(t, promoted.RefugeName)
	assert.Equal(t, "Karma Dolma", *promoted.RefugeName)

	closed, err := svc.Repo.GetEventByID(e.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, closed.Status)
	assert.NotNil(t, closed.ClosedAt)
	require.NotNil(t, closed.ClosedBy)
	assert.Equal(t, staffActor().UserID, *closed.ClosedBy)
}

// Bodhipushpanjali closes capture the referral medium on the person but
// never mint credit records: the category has no ceremony link and no
// full-attendance requirement.
func TestCloseBodhipushpanjaliCapturesReferral(t *testing.T) {
	svc, db := newTestService(t)
	e := createTestEvent(t, svc, db, category.CodeBodhipushpanjali, "2025-03-01", "2025-03-01", ModeWalkIn)
	p := seedPerson(t, db, "Tashi")

	att, err := svc.RegisterAttendee(e.ID, &RegisterAttendeeRequest{
		PersonID: p.ID,
		Metadata: map[string]interface{}{"referral_medium": "facebook"},
	}, 1, "127.0.0.1")
	require.NoError(t, err)

	result, err := svc.CloseEvent(e.ID, &CloseEventRequest{AttendeeIDs: []uint{att.ID}}, staffActor(), "127.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, StatusClosed, result.Status)
	assert.Equal(t, []uint{att.ID}, result.CreditedIDs)
	assert.Equal(t, category.CodeBodhipushpanjali, result.CategoryCode)

	// Referral lands on the person; no empowerment record is created.
	reached := reloadPerson(t, db, p.ID)
	require.NotNil(t, reached.ReferralSource)
	assert.Equal(t, "facebook", *reached.ReferralSource)
	assert.Equal(t, person.TypeInterested, reached.Type)

	reloaded := reloadAttendee(t, svc, e.ID, att.ID)
	assert.False(t, reloaded.ReceivedEmpowerment)
	assert.Nil(t, reloaded.EmpowermentRecordID)
	assert.Equal(t, int64(0), creditRecordCount(t, db))
}

// All-or-nothing: one of two selected attendees missing a day fails the
// close and leaves zero credit records.
func TestCloseIncompleteAttendanceAllOrNothing(t *testing.T) {
	svc, db := newTestService(t)
	e := createTestEvent(t, svc, db, category.CodeRefuge, "2025-01-10", "2025-01-12", ModePreRegistration)

	complete := seedPerson(t, db, "Pema")
	partial := seedPerson(t, db, "Dawa")

	attA, err := svc.RegisterAttendee(e.ID, &RegisterAttendeeRequest{PersonID: complete.ID}, 1, "127.0.0.1")
	require.NoError(t, err)
	attB, err := svc.RegisterAttendee(e.ID, &RegisterAttendeeRequest{PersonID: partial.ID}, 1, "127.0.0.1")
	require.NoError(t, err)

	checkInAllDays(t, svc, e, attA.ID)
	for _, day := range e.Days[:2] { // misses day 3
		_, err := svc.SetCheckIn(e.ID, attB.ID, day.ID, true, 1, "127.0.0.1")
		require.NoError(t, err)
	}

	_, err = svc.CloseEvent(e.ID, &CloseEventRequest{
		AttendeeIDs: []uint{attA.ID, attB.ID},
	}, staffActor(), "127.0.0.1")
	assert.ErrorIs(t, err, ErrIncompleteAttendance)

	assert.Zero(t, creditRecordCount(t, db), "no partial crediting")
	assert.False(t, reloadAttendee(t, svc, e.ID, attA.ID).ReceivedEmpowerment)

	still, err := svc.Repo.GetEventByID(e.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, still.Status, "failed close must not flip status")
}

func TestCloseAdminOverrideBypassesAttendance(t *testing.T) {
	svc, db := newTestService(t)
	e := createTestEvent(t, svc, db, category.CodeRefuge, "2025-01-10", "2025-01-12", ModePreRegistration)
	p := seedPerson(t, db, "Dawa")
	att, err := svc.RegisterAttendee(e.ID, &RegisterAttendeeRequest{PersonID: p.ID}, 1, "127.0.0.1")
	require.NoError(t, err)
	// No check-ins at all.

	result, err := svc.CloseEvent(e.ID, &CloseEventRequest{
		AttendeeIDs:   []uint{att.ID},
		AdminOverride: true,
	}, adminActor(), "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, []uint{att.ID}, result.CreditedIDs)
	assert.True(t, reloadAttendee(t, svc, e.ID, att.ID).ReceivedEmpowerment)
}

// The override permission is enforced inside the engine, not trusted
// from the route layer.
func TestCloseAdminOverrideRequiresAdminRole(t *testing.T) {
	svc, db := newTestService(t)
	e := createTestEvent(t, svc, db, category.CodeRefuge, "2025-01-10", "2025-01-12", ModePreRegistration)
	p := seedPerson(t, db, "Dawa")
	att, err := svc.RegisterAttendee(e.ID, &RegisterAttendeeRequest{PersonID: p.ID}, 1, "127.0.0.1")
	require.NoError(t, err)

	_, err = svc.CloseEvent(e.ID, &CloseEventRequest{
		AttendeeIDs:   []uint{att.ID},
		AdminOverride: true,
	}, staffActor(), "127.0.0.1")
	assert.ErrorIs(t, err, ErrOverrideNotAllowed)
	assert.Zero(t, creditRecordCount(t, db))
}

func TestCloseIsTerminal(t *testing.T) {
	svc, db := newTestService(t)
	e := createTestEvent(t, svc, db, category.CodeOther, "2025-01-10", "2025-01-10", ModePreRegistration)

	_, err := svc.CloseEvent(e.ID, &CloseEventRequest{}, staffActor(), "127.0.0.1")
	require.NoError(t, err)

	_, err = svc.CloseEvent(e.ID, &CloseEventRequest{}, adminActor(), "127.0.0.1")
	assert.ErrorIs(t, err, ErrAlreadyClosed)
}

func TestCloseUnknownAttendeeSelection(t *testing.T) {
	svc, db := newTestService(t)
	e := createTestEvent(t, svc, db, category.CodeOther, "2025-01-10", "2025-01-10", ModePreRegistration)

	_, err := svc.CloseEvent(e.ID, &CloseEventRequest{AttendeeIDs: []uint{9999}}, staffActor(), "127.0.0.1")
	assert.ErrorIs(t, err, ErrAttendeeNotFound)
}

// Revocation: a previously credited attendee excluded from a later
// selection loses the credit record entirely.
func TestCloseRevokesDeselectedCredit(t *testing.T) {
	svc, db := newTestService(t)
	e := createTestEvent(t, svc, db, category.CodeEmpowerment, "2025-01-10", "2025-01-10", ModePreRegistration)

	p1 := seedPerson(t, db, "Pema")
	p2 := seedPerson(t, db, "Dawa")
	att1, err := svc.RegisterAttendee(e.ID, &RegisterAttendeeRequest{PersonID: p1.ID}, 1, "127.0.0.1")
	require.NoError(t, err)
	att2, err := svc.RegisterAttendee(e.ID, &RegisterAttendeeRequest{PersonID: p2.ID}, 1, "127.0.0.1")
	require.NoError(t, err)
	checkInAllDays(t, svc, e, att1.ID)
	checkInAllDays(t, svc, e, att2.ID)

	// Simulate an earlier credit on att2's person by granting manually,
	// then closing with only att1 selected.
	var recID uint
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		loaded, err := svc.Repo.GetAttendeeTx(tx, e.ID, att2.ID)
		if err != nil {
			return err
		}
		ev, err := svc.Repo.GetEventForUpdateTx(tx, e.ID)
		if err != nil {
			return err
		}
		if err := svc.grantCreditTx(tx, ev, loaded); err != nil {
			return err
		}
		recID = *loaded.EmpowermentRecordID
		return nil
	}))

	result, err := svc.CloseEvent(e.ID, &CloseEventRequest{AttendeeIDs: []uint{att1.ID}}, staffActor(), "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, []uint{att2.ID}, result.RevokedIDs)

	revoked := reloadAttendee(t, svc, e.ID, att2.ID)
	assert.False(t, revoked.ReceivedEmpowerment)
	assert.Nil(t, revoked.EmpowermentRecordID)

	err = db.First(&empowerment.PersonEmpowerment{}, recID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "revoked credit record is hard-deleted")

	credited := reloadAttendee(t, svc, e.ID, att1.ID)
	assert.True(t, credited.ReceivedEmpowerment)
}

// Two events granting the same empowerment on the same start date to the
// same person share one credit record.
func TestCloseCreditDedupe(t *testing.T) {
	svc, db := newTestService(t)
	emp, guru := seedCeremony(t, db)
	p := seedPerson(t, db, "Pema")

	makeEvent := func(name string) *Event {
		e, err := svc.CreateEvent(&CreateEventRequest{
			Name:          name,
			StartDate:     "2025-01-10",
			EndDate:       "2025-01-10",
			CategoryID:    categoryID(t, svc, category.CodeEmpowerment),
			EmpowermentID: &emp.ID,
			GuruID:        &guru.ID,
		}, 1, "127.0.0.1")
		require.NoError(t, err)
		return e
	}

	for _, name := range []string{"Morning session", "Evening session"} {
		e := makeEvent(name)
		att, err := svc.RegisterAttendee(e.ID, &RegisterAttendeeRequest{PersonID: p.ID}, 1, "127.0.0.1")
		require.NoError(t, err)
		checkInAllDays(t, svc, e, att.ID)
		_, err = svc.CloseEvent(e.ID, &CloseEventRequest{AttendeeIDs: []uint{att.ID}}, staffActor(), "127.0.0.1")
		require.NoError(t, err)
	}

	assert.Equal(t, int64(1), creditRecordCount(t, db), "dedupe by person+empowerment+start date")
}

func TestCloseZeroSelectionJustCloses(t *testing.T) {
	svc, db := newTestService(t)
	e := createTestEvent(t, svc, db, category.CodeRefuge, "2025-01-10", "2025-01-10", ModePreRegistration)
	p := seedPerson(t, db, "Pema")
	_, err := svc.RegisterAttendee(e.ID, &RegisterAttendeeRequest{PersonID: p.ID}, 1, "127.0.0.1")
	require.NoError(t, err)

	result, err := svc.CloseEvent(e.ID, &CloseEventRequest{}, staffActor(), "127.0.0.1")
	require.NoError(t, err)
	assert.Empty(t, result.CreditedIDs)
	assert.Zero(t, creditRecordCount(t, db))
	assert.Equal(t, StatusClosed, result.Status)

	unchanged := reloadPerson(t, db, p.ID)
	assert.Equal(t, person.TypeInterested, unchanged.Type, "no side effect without selection")
}

func TestRemoveAttendeeBlockedAfterCredit(t *testing.T) {
	svc, db := newTestService(t)
	e := createTestEvent(t, svc, db, category.CodeEmpowerment, "2025-01-10", "2025-01-10", ModePreRegistration)
	p := seedPerson(t, db, "Pema")
	att, err := svc.RegisterAttendee(e.ID, &RegisterAttendeeRequest{PersonID: p.ID}, 1, "127.0.0.1")
	require.NoError(t, err)
	checkInAllDays(t, svc, e, att.ID)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		loaded, err := svc.Repo.GetAttendeeTx(tx, e.ID, att.ID)
		if err != nil {
			return err
		}
		ev, err := svc.Repo.GetEventForUpdateTx(tx, e.ID)
		if err != nil {
			return err
		}
		return svc.grantCreditTx(tx, ev, loaded)
	}))

	err = svc.RemoveAttendee(e.ID, att.ID, 1, "127.0.0.1")
	assert.ErrorIs(t, err, ErrCreditAlreadyGranted)
}
