package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/byoma-kusuma/sangha-management-backend/internal/empowerment"
	"github.com/byoma-kusuma/sangha-management-backend/middleware"
	"github.com/byoma-kusuma/sangha-management-backend/utils"
)

const closeLockTTL = 30 * time.Second

// ===========================
// 🔒 Close Event
//
// The whole close runs in one transaction: attendance check, credit
// grant/revoke, person side effects and the status flip commit together
// or not at all. Concurrent closes of the same event serialize on a
// redis advisory lock plus a FOR UPDATE read of the event row, so two
// racing requests resolve to one success and one AlreadyClosed.
func (s *Service) CloseEvent(eventID uint, req *CloseEventRequest, actor middleware.AccessContext, ip string) (*CloseResult, error) {
	if req.AdminOverride && !actor.IsAdmin() {
		return nil, ErrOverrideNotAllowed
	}

	ctx := context.Background()
	lockKey := fmt.Sprintf("lock:event:close:%d", eventID)
	acquired, err := utils.AcquireLock(ctx, lockKey, closeLockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrCloseInProgress
	}
	defer utils.ReleaseLock(ctx, lockKey)

	result := &CloseResult{EventID: eventID}
	var creditedPersonIDs []uint
	var eventName string

	err = s.Repo.DB.Transaction(func(tx *gorm.DB) error {
		e, err := s.Repo.GetEventForUpdateTx(tx, eventID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		if e.Status == StatusClosed {
			return ErrAlreadyClosed
		}
		eventName = e.Name

		cat, err := s.Categories.GetByID(e.CategoryID)
		if err != nil {
			return err
		}
		result.CategoryCode = cat.Code

		if cat.RequiresFullAttendance {
			if e.EmpowermentID == nil {
				return ErrMissingEmpowermentLink
			}
			if e.GuruID == nil {
				return ErrMissingGuruLink
			}
		}

		days, err := s.Repo.GetDaysByEventTx(tx, eventID)
		if err != nil {
			return err
		}
		attendees, err := s.Repo.GetAttendeesByEventTx(tx, eventID)
		if err != nil {
			return err
		}

		byID := make(map[uint]*EventAttendee, len(attendees))
		for i := range attendees {
			byID[attendees[i].ID] = &attendees[i]
		}

		selected := make(map[uint]bool, len(req.AttendeeIDs))
		toCredit := make([]*EventAttendee, 0, len(req.AttendeeIDs))
		for _, id := range req.AttendeeIDs {
			a, ok := byID[id]
			if !ok {
				return ErrAttendeeNotFound
			}
			if selected[id] {
				continue
			}
			selected[id] = true
			toCredit = append(toCredit, a)
		}

		// Completeness gate: all-or-nothing. One attendee short of a
		// day fails the entire close before any credit is written.
		if cat.RequiresFullAttendance && !req.AdminOverride && len(days) > 0 {
			counts, err := s.Repo.AttendanceCountsTx(tx, req.AttendeeIDs)
			if err != nil {
				return err
			}
			for _, a := range toCredit {
				if counts[a.ID] < int64(len(days)) {
					return fmt.Errorf("%w: attendee %d attended %d of %d days",
						ErrIncompleteAttendance, a.ID, counts[a.ID], len(days))
				}
			}
		}

		if cat.RequiresFullAttendance {
			for _, a := range toCredit {
				if err := s.grantCreditTx(tx, e, a); err != nil {
					return err
				}
				result.CreditedIDs = append(result.CreditedIDs, a.ID)
				creditedPersonIDs = append(creditedPersonIDs, a.PersonID)
			}
		} else {
			for _, a := range toCredit {
				result.CreditedIDs = append(result.CreditedIDs, a.ID)
				creditedPersonIDs = append(creditedPersonIDs, a.PersonID)
			}
		}

		for i := range attendees {
			a := &attendees[i]
			if selected[a.ID] {
				continue
			}
			if !a.ReceivedEmpowerment || a.EmpowermentRecordID == nil {
				continue
			}
			if err := s.revokeCreditTx(tx, a); err != nil {
				return err
			}
			result.RevokedIDs = append(result.RevokedIDs, a.ID)
		}

		if effect, ok := sideEffects[cat.Code]; ok {
			for _, a := range toCredit {
				if err := effect(tx, s.Persons, a); err != nil {
					return err
				}
			}
		}

		now := time.Now().UTC()
		e.Status = StatusClosed
		e.ClosedAt = &now
		e.ClosedBy = &actor.UserID
		if err := s.Repo.UpdateEventTx(tx, e); err != nil {
			return err
		}

		result.Status = e.Status
		result.ClosedAt = now
		result.ClosedBy = actor.UserID
		return nil
	})
	if err != nil {
		s.AuditSvc.LogAction(ctx, &actor.UserID, &eventID, "EVENT_CLOSED",
			map[string]interface{}{"error": err.Error(), "admin_override": req.AdminOverride},
			ip, "failure")
		return nil, err
	}

	s.AuditSvc.LogAction(ctx, &actor.UserID, &eventID, "EVENT_CLOSED",
		map[string]interface{}{
			"credited":       len(result.CreditedIDs),
			"revoked":        len(result.RevokedIDs),
			"admin_override": req.AdminOverride,
			"category":       result.CategoryCode,
		}, ip, "success")

	utils.PublishEventClosed(ctx, utils.EventClosedMessage{
		EventID:      eventID,
		EventName:    eventName,
		CategoryCode: result.CategoryCode,
		ClosedBy:     actor.UserID,
		ClosedAt:     result.ClosedAt,
		CreditedIDs:  creditedPersonIDs,
	})

	return result, nil
}

// grantCreditTx attaches an empowerment credit record to the attendee.
// Creation dedupes on (person, empowerment, start date): a re-close
// after a partial revoke, or a person credited through a second link to
// the same ceremony, reuses the existing record instead of duplicating.
func (s *Service) grantCreditTx(tx *gorm.DB, e *Event, a *EventAttendee) error {
	if a.ReceivedEmpowerment && a.EmpowermentRecordID != nil {
		rec, err := s.Empowerments.GetRecordByIDTx(tx, *a.EmpowermentRecordID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Dangling reference; recreate below.
				a.EmpowermentRecordID = nil
			} else {
				return err
			}
		} else {
			if !rec.EndDate.Equal(e.EndDate) {
				rec.EndDate = e.EndDate
				if err := s.Empowerments.UpdateRecordTx(tx, rec); err != nil {
					return err
				}
			}
			return nil
		}
	}

	rec, err := s.Empowerments.FindRecordTx(tx, a.PersonID, *e.EmpowermentID, e.StartDate)
	if err != nil {
		return err
	}
	if rec == nil {
		rec = &empowerment.PersonEmpowerment{
			PersonID:      a.PersonID,
			EmpowermentID: *e.EmpowermentID,
			GuruID:        *e.GuruID,
			StartDate:     e.StartDate,
			EndDate:       e.EndDate,
		}
		if err := s.Empowerments.CreateRecordTx(tx, rec); err != nil {
			return err
		}
	}

	a.ReceivedEmpowerment = true
	a.EmpowermentRecordID = &rec.ID
	return s.Repo.UpdateAttendeeTx(tx, a)
}

// revokeCreditTx hard-deletes the credit record and clears the
// attendee's flags. Records are not shared between attendees of the
// same event, so the delete cannot strand anyone else.
func (s *Service) revokeCreditTx(tx *gorm.DB, a *EventAttendee) error {
	if err := s.Empowerments.DeleteRecordTx(tx, *a.EmpowermentRecordID); err != nil {
		return err
	}
	a.ReceivedEmpowerment = false
	a.EmpowermentRecordID = nil
	return s.Repo.UpdateAttendeeTx(tx, a)
}
