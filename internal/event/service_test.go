package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byoma-kusuma/sangha-management-backend/internal/category"
)

func TestCreateEventGeneratesDays(t *testing.T) {
	svc, db := newTestService(t)

	e := createTestEvent(t, svc, db, category.CodeOther, "2025-01-10", "2025-01-12", ModePreRegistration)

	require.Len(t, e.Days, 3)
	assert.Equal(t, 1, e.Days[0].DayNumber)
	assert.Equal(t, 3, e.Days[2].DayNumber)
	assert.Equal(t, StatusActive, e.Status)
	assert.Equal(t, date("2025-01-10"), e.StartDate)
}

func TestCreateEventInvalidRange(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateEvent(&CreateEventRequest{
		Name:       "Backwards",
		StartDate:  "2025-01-12",
		EndDate:    "2025-01-10",
		CategoryID: categoryID(t, svc, category.CodeOther),
	}, 1, "127.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestCreateEventRequiresCeremonyLinks(t *testing.T) {
	svc, db := newTestService(t)
	emp, guru := seedCeremony(t, db)

	req := &CreateEventRequest{
		Name:       "Refuge",
		StartDate:  "2025-01-10",
		EndDate:    "2025-01-10",
		CategoryID: categoryID(t, svc, category.CodeRefuge),
	}
	_, err := svc.CreateEvent(req, 1, "127.0.0.1")
	assert.ErrorIs(t, err, ErrMissingEmpowermentLink)

	req.EmpowermentID = &emp.ID
	_, err = svc.CreateEvent(req, 1, "127.0.0.1")
	assert.ErrorIs(t, err, ErrMissingGuruLink)

	req.GuruID = &guru.ID
	_, err = svc.CreateEvent(req, 1, "127.0.0.1")
	assert.NoError(t, err)
}

func TestUpdateEventRegeneratesDays(t *testing.T) {
	svc, db := newTestService(t)
	e := createTestEvent(t, svc, db, category.CodeOther, "2025-01-10", "2025-01-10", ModePreRegistration)

	newEnd := "2025-01-12"
	updated, err := svc.UpdateEvent(e.ID, &UpdateEventRequest{EndDate: &newEnd}, 1, "127.0.0.1")
	require.NoError(t, err)
	require.Len(t, updated.Days, 3)
	assert.Equal(t, 3, updated.Days[2].DayNumber)
}

func TestUpdateEventDateChangeBlockedByAttendance(t *testing.T) {
	svc, db := newTestService(t)
	e := createTestEvent(t, svc, db, category.CodeOther, "2025-01-10", "2025-01-11", ModePreRegistration)
	p := seedPerson(t, db, "Pema")

	att, err := svc.RegisterAttendee(e.ID, &RegisterAttendeeRequest{PersonID: p.ID}, 1, "127.0.0.1")
	require.NoError(t, err)
	_, err = svc.SetCheckIn(e.ID, att.ID, e.Days[0].ID, true, 1, "127.0.0.1")
	require.NoError(t, err)

	newEnd := "2025-01-13"
	_, err = svc.UpdateEvent(e.ID, &UpdateEventRequest{EndDate: &newEnd}, 1, "127.0.0.1")
	assert.ErrorIs(t, err, ErrDateChangeBlocked)

	// Non-date edits stay allowed.
	newName := "Renamed"
	updated, err := svc.UpdateEvent(e.ID, &UpdateEventRequest{Name: &newName}, 1, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
}

func TestUpdateEventModeCascadesToAttendees(t *testing.T) {
	svc, db := newTestService(t)
	e := createTestEvent(t, svc, db, category.CodeOther, "2025-01-10", "2025-01-11", ModePreRegistration)

	for _, name := range []string{"Pema", "Dawa"} {
		p := seedPerson(t, db, name)
		_, err := svc.RegisterAttendee(e.ID, &RegisterAttendeeRequest{PersonID: p.ID}, 1, "127.0.0.1")
		require.NoError(t, err)
	}

	mode := ModeWalkIn
	_, err := svc.UpdateEvent(e.ID, &UpdateEventRequest{RegistrationMode: &mode}, 1, "127.0.0.1")
	require.NoError(t, err)

	attendees, err := svc.Repo.GetAttendeesByEvent(e.ID)
	require.NoError(t, err)
	require.Len(t, attendees, 2)
	for _, a := range attendees {
		assert.Equal(t, ModeWalkIn, a.RegistrationMode)
	}
}

func TestRegisterAttendeeDuplicate(t *testing.T) {
	svc, db := newTestService(t)
	e := createTestEvent(t, svc, db, category.CodeOther, "2025-01-10", "2025-01-11", ModePreRegistration)
	p := seedPerson(t, db, "Pema")

	_, err := svc.RegisterAttendee(e.ID, &RegisterAttendeeRequest{PersonID: p.ID}, 1, "127.0.0.1")
	require.NoError(t, err)

	_, err = svc.RegisterAttendee(e.ID, &RegisterAttendeeRequest{PersonID: p.ID}, 1, "127.0.0.1")
	assert.ErrorIs(t, err, ErrDuplicateRegistration)
}

func TestRegisterWalkInSingleDayAutoChecksIn(t *testing.T) {
	svc, db := newTestService(t)
	e := createTestEvent(t, svc, db, category.CodeOther, "2025-01-10", "2025-01-10", ModeWalkIn)
	p := seedPerson(t, db, "Pema")

	view, err := svc.RegisterAttendee(e.ID, &RegisterAttendeeRequest{PersonID: p.ID}, 1, "127.0.0.1")
	require.NoError(t, err)

	require.Len(t, view.Attendance, 1)
	assert.True(t, view.Attendance[0].CheckedIn, "walk-in registration on a single-day event is arrival")
	assert.True(t, view.AttendedAllDays)
	assert.NotEmpty(t, view.RegistrationCode)
}

func TestRegisterWalkInMultiDayDoesNotAutoCheckIn(t *testing.T) {
	svc, db := newTestService(t)
	e := createTestEvent(t, svc, db, category.CodeOther, "2025-01-10", "2025-01-11", ModeWalkIn)
	p := seedPerson(t, db, "Pema")

	view, err := svc.RegisterAttendee(e.ID, &RegisterAttendeeRequest{PersonID: p.ID}, 1, "127.0.0.1")
	require.NoError(t, err)

	for _, day := range view.Attendance {
		assert.False(t, day.CheckedIn)
	}
	assert.False(t, view.AttendedAllDays)
}

func TestSetCheckInIdempotent(t *testing.T) {
	svc, db := newTestService(t)
	e := createTestEvent(t, svc, db, category.CodeOther, "2025-01-10", "2025-01-11", ModePreRegistration)
	p := seedPerson(t, db, "Pema")
	att, err := svc.RegisterAttendee(e.ID, &RegisterAttendeeRequest{PersonID: p.ID}, 1, "127.0.0.1")
	require.NoError(t, err)

	day := e.Days[0]

	res, err := svc.SetCheckIn(e.ID, att.ID, day.ID, true, 1, "127.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.CheckedIn)

	// Checking in twice is a refresh, not an error.
	res, err = svc.SetCheckIn(e.ID, att.ID, day.ID, true, 1, "127.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.CheckedIn)

	count, err := svc.Repo.CountAttendance(att.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Un-checking an absent pair is a no-op.
	res, err = svc.SetCheckIn(e.ID, att.ID, day.ID, false, 1, "127.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.CheckedIn)

	res, err = svc.SetCheckIn(e.ID, att.ID, day.ID, false, 1, "127.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.CheckedIn)
}

func TestSetCheckInWrongDayOrAttendee(t *testing.T) {
	svc, db := newTestService(t)
	e1 := createTestEvent(t, svc, db, category.CodeOther, "2025-01-10", "2025-01-10", ModePreRegistration)
	e2 := createTestEvent(t, svc, db, category.CodeOther, "2025-02-10", "2025-02-10", ModePreRegistration)
	p := seedPerson(t, db, "Pema")
	att, err := svc.RegisterAttendee(e1.ID, &RegisterAttendeeRequest{PersonID: p.ID}, 1, "127.0.0.1")
	require.NoError(t, err)

	// Day belongs to another event.
	_, err = svc.SetCheckIn(e1.ID, att.ID, e2.Days[0].ID, true, 1, "127.0.0.1")
	assert.ErrorIs(t, err, ErrDayNotFound)

	// Attendee belongs to another event.
	_, err = svc.SetCheckIn(e2.ID, att.ID, e2.Days[0].ID, true, 1, "127.0.0.1")
	assert.ErrorIs(t, err, ErrAttendeeNotFound)
}

func TestAttendedAllDaysDerived(t *testing.T) {
	svc, db := newTestService(t)
	e := createTestEvent(t, svc, db, category.CodeOther, "2025-01-10", "2025-01-12", ModePreRegistration)
	p := seedPerson(t, db, "Pema")
	att, err := svc.RegisterAttendee(e.ID, &RegisterAttendeeRequest{PersonID: p.ID}, 1, "127.0.0.1")
	require.NoError(t, err)

	res, err := svc.SetCheckIn(e.ID, att.ID, e.Days[0].ID, true, 1, "127.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.AttendedAllDays)

	_, err = svc.SetCheckIn(e.ID, att.ID, e.Days[1].ID, true, 1, "127.0.0.1")
	require.NoError(t, err)
	res, err = svc.SetCheckIn(e.ID, att.ID, e.Days[2].ID, true, 1, "127.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.AttendedAllDays)

	// Dropping one day flips it back.
	res, err = svc.SetCheckIn(e.ID, att.ID, e.Days[1].ID, false, 1, "127.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.AttendedAllDays)
}

func TestUpdateAttendeeMetadataMerge(t *testing.T) {
	svc, db := newTestService(t)
	e := createTestEvent(t, svc, db, category.CodeOther, "2025-01-10", "2025-01-10", ModePreRegistration)
	p := seedPerson(t, db, "Pema")
	att, err := svc.RegisterAttendee(e.ID, &RegisterAttendeeRequest{
		PersonID: p.ID,
		Metadata: map[string]interface{}{"refuge_name": "Karma Dolma", "completed": true},
	}, 1, "127.0.0.1")
	require.NoError(t, err)

	view, err := svc.UpdateAttendee(e.ID, att.ID, &UpdateAttendeeRequest{
		Metadata: map[string]interface{}{"completed": nil, "seat": "A4"},
	}, 1, "127.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, "Karma Dolma", view.Metadata["refuge_name"], "untouched keys survive the merge")
	assert.Equal(t, "A4", view.Metadata["seat"])
	assert.NotContains(t, view.Metadata, "completed", "explicit null removes the key")
}

func TestClosedEventRejectsMutation(t *testing.T) {
	svc, db := newTestService(t)
	e := createTestEvent(t, svc, db, category.CodeOther, "2025-01-10", "2025-01-10", ModePreRegistration)
	p := seedPerson(t, db, "Pema")
	att, err := svc.RegisterAttendee(e.ID, &RegisterAttendeeRequest{PersonID: p.ID}, 1, "127.0.0.1")
	require.NoError(t, err)

	_, err = svc.CloseEvent(e.ID, &CloseEventRequest{AttendeeIDs: []uint{att.ID}}, staffActor(), "127.0.0.1")
	require.NoError(t, err)

	newName := "Late rename"
	_, err = svc.UpdateEvent(e.ID, &UpdateEventRequest{Name: &newName}, 1, "127.0.0.1")
	assert.ErrorIs(t, err, ErrEventClosed)

	p2 := seedPerson(t, db, "Dawa")
	_, err = svc.RegisterAttendee(e.ID, &RegisterAttendeeRequest{PersonID: p2.ID}, 1, "127.0.0.1")
	assert.ErrorIs(t, err, ErrEventClosed)

	_, err = svc.SetCheckIn(e.ID, att.ID, e.Days[0].ID, true, 1, "127.0.0.1")
	assert.ErrorIs(t, err, ErrEventClosed)

	err = svc.RemoveAttendee(e.ID, att.ID, 1, "127.0.0.1")
	assert.ErrorIs(t, err, ErrEventClosed)

	err = svc.DeleteEvent(e.ID, 1, "127.0.0.1")
	assert.ErrorIs(t, err, ErrEventClosed)
}

func TestDeleteEventCascades(t *testing.T) {
	svc, db := newTestService(t)
	e := createTestEvent(t, svc, db, category.CodeOther, "2025-01-10", "2025-01-11", ModePreRegistration)
	p := seedPerson(t, db, "Pema")
	att, err := svc.RegisterAttendee(e.ID, &RegisterAttendeeRequest{PersonID: p.ID}, 1, "127.0.0.1")
	require.NoError(t, err)
	_, err = svc.SetCheckIn(e.ID, att.ID, e.Days[0].ID, true, 1, "127.0.0.1")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEvent(e.ID, 1, "127.0.0.1"))

	_, err = svc.GetEvent(e.ID)
	assert.ErrorIs(t, err, ErrEventNotFound)

	var dayCount, attCount, rowCount int64
	require.NoError(t, db.Model(&EventDay{}).Where("event_id = ?", e.ID).Count(&dayCount).Error)
	require.NoError(t, db.Model(&EventAttendee{}).Where("event_id = ?", e.ID).Count(&attCount).Error)
	require.NoError(t, db.Model(&EventAttendance{}).Count(&rowCount).Error)
	assert.Zero(t, dayCount)
	assert.Zero(t, attCount)
	assert.Zero(t, rowCount)
}

func TestEventStats(t *testing.T) {
	svc, db := newTestService(t)
	e1 := createTestEvent(t, svc, db, category.CodeOther, "2025-01-10", "2025-01-10", ModePreRegistration)
	createTestEvent(t, svc, db, category.CodeOther, "2025-02-10", "2025-02-11", ModePreRegistration)

	p := seedPerson(t, db, "Pema")
	att, err := svc.RegisterAttendee(e1.ID, &RegisterAttendeeRequest{PersonID: p.ID}, 1, "127.0.0.1")
	require.NoError(t, err)
	_, err = svc.CloseEvent(e1.ID, &CloseEventRequest{AttendeeIDs: []uint{att.ID}}, staffActor(), "127.0.0.1")
	require.NoError(t, err)

	stats, err := svc.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalEvents)
	assert.Equal(t, int64(1), stats.ActiveEvents)
	assert.Equal(t, int64(1), stats.ClosedEvents)
	assert.Equal(t, int64(1), stats.TotalAttendees)
}
