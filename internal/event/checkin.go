package event

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// CheckInResult is the response for a check-in toggle.
type CheckInResult struct {
	DayCheckIn
	AttendeeID      uint `json:"attendee_id"`
	AttendedAllDays bool `json:"attended_all_days"`
}

// ===========================
// ✅ Set Check-In
//
// Idempotent in both directions: checking in an already-present pair
// refreshes the stamp, checking out an absent pair is a no-op. Presence
// is the row's existence, so "false" deletes it.
func (s *Service) SetCheckIn(eventID, attendeeID, dayID uint, checkedIn bool, actorID uint, ip string) (*CheckInResult, error) {
	e, err := s.Repo.GetEventByID(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if e.Status == StatusClosed {
		return nil, ErrEventClosed
	}

	a, err := s.Repo.GetAttendee(eventID, attendeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendeeNotFound
		}
		return nil, err
	}

	day, err := s.Repo.GetDay(eventID, dayID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDayNotFound
		}
		return nil, err
	}

	err = s.Repo.DB.Transaction(func(tx *gorm.DB) error {
		if checkedIn {
			return s.Repo.UpsertAttendanceTx(tx, &EventAttendance{
				EventAttendeeID: a.ID,
				EventDayID:      day.ID,
				CheckedInAt:     time.Now().UTC(),
				CheckedInBy:     actorID,
			})
		}
		return s.Repo.DeleteAttendanceTx(tx, a.ID, day.ID)
	})
	if err != nil {
		return nil, err
	}

	count, err := s.Repo.CountAttendance(a.ID)
	if err != nil {
		return nil, err
	}
	attendedAll := len(e.Days) > 0 && count == int64(len(e.Days))

	action := "ATTENDEE_CHECKED_IN"
	if !checkedIn {
		action = "ATTENDEE_CHECKED_OUT"
	}
	s.AuditSvc.LogAction(context.Background(), &actorID, &eventID, action,
		map[string]interface{}{"attendee_id": a.ID, "day_number": day.DayNumber},
		ip, "success")

	return &CheckInResult{
		DayCheckIn: DayCheckIn{
			DayID:     day.ID,
			DayNumber: day.DayNumber,
			EventDate: day.EventDate,
			CheckedIn: checkedIn,
		},
		AttendeeID:      a.ID,
		AttendedAllDays: attendedAll,
	}, nil
}
