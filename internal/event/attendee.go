package event

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ===========================
// ➕ Register Attendee
//
// The attendee snapshots the event's registration mode at registration
// time. Walk-in registration for a single-day event counts as arrival,
// so the day-1 check-in is recorded in the same transaction.
func (s *Service) RegisterAttendee(eventID uint, req *RegisterAttendeeRequest, actorID uint, ip string) (*AttendeeView, error) {
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

	if _, err := s.Persons.GetPersonByID(req.PersonID); err != nil {
		return nil, ErrPersonNotFound
	}

	exists, err := s.Repo.AttendeeExists(eventID, req.PersonID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateRegistration
	}

	a := &EventAttendee{
		EventID:          eventID,
		PersonID:         req.PersonID,
		RegistrationMode: e.RegistrationMode,
		RegistrationCode: uuid.NewString(),
		Notes:            req.Notes,
		Metadata:         datatypes.JSONMap(req.Metadata),
		RegisteredBy:     actorID,
	}

	err = s.Repo.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.Repo.CreateAttendeeTx(tx, a); err != nil {
			return err
		}
		if e.RegistrationMode == ModeWalkIn && len(e.Days) == 1 {
			return s.Repo.UpsertAttendanceTx(tx, &EventAttendance{
				EventAttendeeID: a.ID,
				EventDayID:      e.Days[0].ID,
				CheckedInAt:     time.Now().UTC(),
				CheckedInBy:     actorID,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.AuditSvc.LogAction(context.Background(), &actorID, &eventID, "ATTENDEE_REGISTERED",
		map[string]interface{}{"attendee_id": a.ID, "person_id": a.PersonID, "mode": a.RegistrationMode},
		ip, "success")

	full, err := s.Repo.GetAttendee(eventID, a.ID)
	if err != nil {
		return nil, err
	}
	return s.buildAttendeeView(full, e.Days)
}

// ===========================
// ✏️ Update Attendee
//
// Notes replace; metadata merges shallowly, with explicit null deleting
// a key. Registration mode and credit fields are not editable here.
func (s *Service) UpdateAttendee(eventID, attendeeID uint, req *UpdateAttendeeRequest, actorID uint, ip string) (*AttendeeView, error) {
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

	if req.Notes != nil {
		a.Notes = *req.Notes
	}
	if req.IsCancelled != nil {
		a.IsCancelled = *req.IsCancelled
	}
	if req.Metadata != nil {
		a.Metadata = mergeMetadata(a.Metadata, req.Metadata)
	}

	if err := s.Repo.UpdateAttendee(a); err != nil {
		return nil, err
	}

	s.AuditSvc.LogAction(context.Background(), &actorID, &eventID, "ATTENDEE_UPDATED",
		map[string]interface{}{"attendee_id": a.ID}, ip, "success")

	return s.buildAttendeeView(a, e.Days)
}

// ===========================
// ➖ Remove Attendee
//
// An attendee holding an empowerment credit cannot be removed; the
// close flow's revoke path is the only way to take the credit back.
func (s *Service) RemoveAttendee(eventID, attendeeID uint, actorID uint, ip string) error {
	e, err := s.Repo.GetEventByID(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return err
	}
	if e.Status == StatusClosed {
		return ErrEventClosed
	}

	a, err := s.Repo.GetAttendee(eventID, attendeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAttendeeNotFound
		}
		return err
	}
	if a.ReceivedEmpowerment && a.EmpowermentRecordID != nil {
		return ErrCreditAlreadyGranted
	}

	err = s.Repo.DB.Transaction(func(tx *gorm.DB) error {
		return s.Repo.DeleteAttendeeTx(tx, attendeeID)
	})
	if err != nil {
		return err
	}

	s.AuditSvc.LogAction(context.Background(), &actorID, &eventID, "ATTENDEE_REMOVED",
		map[string]interface{}{"attendee_id": attendeeID, "person_id": a.PersonID},
		ip, "success")
	return nil
}

// ===========================
// 📄 List Attendees
func (s *Service) ListAttendees(eventID uint) ([]AttendeeView, error) {
	e, err := s.Repo.GetEventByID(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	attendees, err := s.Repo.GetAttendeesByEvent(eventID)
	if err != nil {
		return nil, err
	}

	views := make([]AttendeeView, 0, len(attendees))
	for i := range attendees {
		view, err := s.buildAttendeeView(&attendees[i], e.Days)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}
