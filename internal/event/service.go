package event

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/byoma-kusuma/sangha-management-backend/internal/auditlog"
	"github.com/byoma-kusuma/sangha-management-backend/internal/category"
	"github.com/byoma-kusuma/sangha-management-backend/internal/empowerment"
	"github.com/byoma-kusuma/sangha-management-backend/internal/person"
)

// Service owns the event lifecycle: schedule derivation, registration,
// check-ins and the close flow. Credit records and person side effects
// run through the empowerment and person packages inside the close
// transaction.
type Service struct {
	Repo         *Repository
	Categories   *category.Service
	Persons      *person.Service
	Empowerments *empowerment.Repository
	AuditSvc     auditlog.Service
}

func NewService(r *Repository, cats *category.Service, persons *person.Service,
	emps *empowerment.Repository, auditSvc auditlog.Service) *Service {
	return &Service{
		Repo:         r,
		Categories:   cats,
		Persons:      persons,
		Empowerments: emps,
		AuditSvc:     auditSvc,
	}
}

// ===========================
// 🎯 Create Event
func (s *Service) CreateEvent(req *CreateEventRequest, actorID uint, ip string) (*Event, error) {
	start, err := ParseDate(req.StartDate)
	if err != nil {
		return nil, errors.New("start_date must be YYYY-MM-DD")
	}
	end, err := ParseDate(req.EndDate)
	if err != nil {
		return nil, errors.New("end_date must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, ErrInvalidRange
	}

	cat, err := s.Categories.GetByID(req.CategoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	if err := s.validateCeremonyLinks(cat, req.EmpowermentID, req.GuruID); err != nil {
		return nil, err
	}

	mode := req.RegistrationMode
	if mode == "" {
		mode = ModePreRegistration
	}
	if mode != ModePreRegistration && mode != ModeWalkIn {
		return nil, errors.New("invalid registration mode")
	}

	status := req.Status
	if status == "" {
		status = StatusActive
	}
	if status != StatusDraft && status != StatusActive {
		return nil, errors.New("new events must be DRAFT or ACTIVE")
	}

	e := &Event{
		Name:             req.Name,
		Description:      req.Description,
		StartDate:        start,
		EndDate:          end,
		RegistrationMode: mode,
		Status:           status,
		CategoryID:       cat.ID,
		EmpowermentID:    req.EmpowermentID,
		GuruID:           req.GuruID,
		Metadata:         datatypes.JSONMap(req.Metadata),
		CreatedBy:        actorID,
	}

	err = s.Repo.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.Repo.CreateEventTx(tx, e); err != nil {
			return err
		}
		return s.Repo.CreateDaysTx(tx, DeriveDays(e.ID, start, end))
	})
	if err != nil {
		return nil, err
	}

	s.AuditSvc.LogAction(context.Background(), &actorID, &e.ID, "EVENT_CREATED",
		map[string]interface{}{"name": e.Name, "category": cat.Code, "days": dayCount(start, end)},
		ip, "success")

	return s.Repo.GetEventByID(e.ID)
}

// ===========================
// ✏️ Update Event
//
// Date edits regenerate the day set, which silently discards presence
// rows, so they are refused once any check-in exists. A registration
// mode change cascades to every attendee in the same transaction.
func (s *Service) UpdateEvent(id uint, req *UpdateEventRequest, actorID uint, ip string) (*Event, error) {
	e, err := s.Repo.GetEventByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if e.Status == StatusClosed {
		return nil, ErrEventClosed
	}

	start, end := e.StartDate, e.EndDate
	if req.StartDate != nil {
		if start, err = ParseDate(*req.StartDate); err != nil {
			return nil, errors.New("start_date must be YYYY-MM-DD")
		}
	}
	if req.EndDate != nil {
		if end, err = ParseDate(*req.EndDate); err != nil {
			return nil, errors.New("end_date must be YYYY-MM-DD")
		}
	}
	if end.Before(start) {
		return nil, ErrInvalidRange
	}
	datesChanged := !start.Equal(e.StartDate) || !end.Equal(e.EndDate)

	if datesChanged {
		checkIns, err := s.Repo.CountAttendanceByEvent(id)
		if err != nil {
			return nil, err
		}
		if checkIns > 0 {
			return nil, ErrDateChangeBlocked
		}
	}

	if req.CategoryID != nil && *req.CategoryID != e.CategoryID {
		if _, err := s.Categories.GetByID(*req.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
		e.CategoryID = *req.CategoryID
	}

	if req.Name != nil {
		e.Name = *req.Name
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.EmpowermentID != nil {
		e.EmpowermentID = req.EmpowermentID
	}
	if req.GuruID != nil {
		e.GuruID = req.GuruID
	}
	if req.Metadata != nil {
		e.Metadata = mergeMetadata(e.Metadata, req.Metadata)
	}

	modeChanged := false
	if req.RegistrationMode != nil && *req.RegistrationMode != e.RegistrationMode {
		if *req.RegistrationMode != ModePreRegistration && *req.RegistrationMode != ModeWalkIn {
			return nil, errors.New("invalid registration mode")
		}
		e.RegistrationMode = *req.RegistrationMode
		modeChanged = true
	}

	if req.Status != nil && *req.Status != e.Status {
		// CLOSED is only reachable through the close flow.
		if *req.Status != StatusDraft && *req.Status != StatusActive {
			return nil, errors.New("status can only be set to DRAFT or ACTIVE")
		}
		e.Status = *req.Status
	}

	e.StartDate, e.EndDate = start, end

	err = s.Repo.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.Repo.UpdateEventTx(tx, e); err != nil {
			return err
		}
		if datesChanged {
			if err := s.Repo.DeleteDaysTx(tx, e.ID); err != nil {
				return err
			}
			if err := s.Repo.CreateDaysTx(tx, DeriveDays(e.ID, start, end)); err != nil {
				return err
			}
		}
		if modeChanged {
			return s.Repo.BulkUpdateModeTx(tx, e.ID, e.RegistrationMode)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.AuditSvc.LogAction(context.Background(), &actorID, &e.ID, "EVENT_UPDATED",
		map[string]interface{}{"dates_changed": datesChanged, "mode_changed": modeChanged},
		ip, "success")

	return s.Repo.GetEventByID(e.ID)
}

// ===========================
// 🔍 Get Event (detail view)
func (s *Service) GetEvent(id uint) (*EventView, error) {
	e, err := s.Repo.GetEventByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	attendees, err := s.Repo.GetAttendeesByEvent(id)
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

	return &EventView{Event: *e, Attendees: views}, nil
}

// ===========================
// 📄 List Events
func (s *Service) ListEvents(status string, categoryID uint) ([]Event, error) {
	return s.Repo.ListEvents(status, categoryID)
}

// ===========================
// 📊 Event Stats
func (s *Service) GetStats() (*EventStats, error) {
	return s.Repo.Stats()
}

// ===========================
// 🗑️ Delete Event
//
// Closed events are immutable history and cannot be deleted.
func (s *Service) DeleteEvent(id uint, actorID uint, ip string) error {
	e, err := s.Repo.GetEventByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return err
	}
	if e.Status == StatusClosed {
		return ErrEventClosed
	}

	err = s.Repo.DB.Transaction(func(tx *gorm.DB) error {
		return s.Repo.DeleteEventTx(tx, id)
	})
	if err != nil {
		return err
	}

	s.AuditSvc.LogAction(context.Background(), &actorID, &id, "EVENT_DELETED",
		map[string]interface{}{"name": e.Name}, ip, "success")
	return nil
}

// validateCeremonyLinks enforces the empowerment/guru pairing for
// categories whose close flow writes credit records.
func (s *Service) validateCeremonyLinks(cat *category.EventCategory, empowermentID, guruID *uint) error {
	if !cat.RequiresFullAttendance {
		return nil
	}
	if empowermentID == nil {
		return ErrMissingEmpowermentLink
	}
	if guruID == nil {
		return ErrMissingGuruLink
	}

	exists, err := s.Empowerments.EmpowermentExists(*empowermentID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrMissingEmpowermentLink
	}
	exists, err = s.Empowerments.GuruExists(*guruID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrMissingGuruLink
	}
	return nil
}

// buildAttendeeView joins an attendee against the event's day set,
// deriving per-day presence and the attended-all-days flag. Zero days
// means the flag is false, never vacuously true.
func (s *Service) buildAttendeeView(a *EventAttendee, days []EventDay) (*AttendeeView, error) {
	dayIDs, err := s.Repo.GetAttendanceDayIDs(a.ID)
	if err != nil {
		return nil, err
	}
	present := make(map[uint]bool, len(dayIDs))
	for _, id := range dayIDs {
		present[id] = true
	}

	attendance := make([]DayCheckIn, 0, len(days))
	attendedAll := len(days) > 0
	for _, day := range days {
		checked := present[day.ID]
		if !checked {
			attendedAll = false
		}
		attendance = append(attendance, DayCheckIn{
			DayID:     day.ID,
			DayNumber: day.DayNumber,
			EventDate: day.EventDate,
			CheckedIn: checked,
		})
	}

	return &AttendeeView{
		EventAttendee:   *a,
		Attendance:      attendance,
		AttendedAllDays: attendedAll,
	}, nil
}

func dayCount(start, end time.Time) int {
	return int(NormalizeDate(end).Sub(NormalizeDate(start)).Hours()/24) + 1
}
