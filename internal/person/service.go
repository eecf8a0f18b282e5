package person

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/byoma-kusuma/sangha-management-backend/internal/auditlog"
)

var ErrPersonNotFound = errors.New("person not found")

// Service wraps person management plus the narrow mutation surface the
// event crediting engine is allowed to touch.
type Service struct {
	Repo     *Repository
	AuditSvc auditlog.Service
}

func NewService(r *Repository, auditSvc auditlog.Service) *Service {
	return &Service{Repo: r, AuditSvc: auditSvc}
}

// ===========================
// 🎯 Create Person
func (s *Service) CreatePerson(req *CreatePersonRequest, actorID uint, ip string) (*Person, error) {
	personType := req.Type
	if personType == "" {
		personType = TypeInterested
	}
	if personType != TypeInterested && personType != TypeContact && personType != TypeSanghaMember {
		return nil, errors.New("invalid person type")
	}

	p := &Person{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		Type:           personType,
		Center:         req.Center,
		ReferralSource: req.ReferralSource,
		Notes:          req.Notes,
		CreatedBy:      actorID,
	}

	if err := s.Repo.Create(p); err != nil {
		s.AuditSvc.LogAction(context.Background(), &actorID, nil, "PERSON_CREATED",
			map[string]interface{}{"name": req.FirstName + " " + req.LastName, "error": err.Error()},
			ip, "failure")
		return nil, err
	}

	s.AuditSvc.LogAction(context.Background(), &actorID, nil, "PERSON_CREATED",
		map[string]interface{}{"person_id": p.ID, "name": p.FirstName + " " + p.LastName, "type": p.Type},
		ip, "success")

	return p, nil
}

// ===========================
// 🔍 Get Person
func (s *Service) GetPersonByID(id uint) (*Person, error) {
	p, err := s.Repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, err
	}
	return p, nil
}

// ===========================
// 📄 List Persons
func (s *Service) ListPersons(limit, offset int, search string) ([]Person, int64, error) {
	return s.Repo.List(limit, offset, search)
}

// ===========================
// 🛠 Update Person
func (s *Service) UpdatePerson(id uint, req *UpdatePersonRequest, actorID uint, ip string) (*Person, error) {
	p, err := s.GetPersonByID(id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		p.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		p.LastName = *req.LastName
	}
	if req.Email != nil {
		p.Email = req.Email
	}
	if req.Phone != nil {
		p.Phone = req.Phone
	}
	if req.Type != nil {
		if *req.Type != TypeInterested && *req.Type != TypeContact && *req.Type != TypeSanghaMember {
			return nil, errors.New("invalid person type")
		}
		p.Type = *req.Type
	}
	if req.Center != nil {
		p.Center = req.Center
	}
	if req.RefugeName != nil {
		p.RefugeName = req.RefugeName
	}
	if req.ReferralSource != nil {
		p.ReferralSource = req.ReferralSource
	}
	if req.Notes != nil {
		p.Notes = req.Notes
	}

	if err := s.Repo.Update(p); err != nil {
		return nil, err
	}

	s.AuditSvc.LogAction(context.Background(), &actorID, nil, "PERSON_UPDATED",
		map[string]interface{}{"person_id": p.ID}, ip, "success")

	return p, nil
}

// ===========================
// ❌ Delete Person
func (s *Service) DeletePerson(id uint, actorID uint, ip string) error {
	if _, err := s.GetPersonByID(id); err != nil {
		return err
	}
	if err := s.Repo.SoftDelete(id); err != nil {
		return err
	}
	s.AuditSvc.LogAction(context.Background(), &actorID, nil, "PERSON_DELETED",
		map[string]interface{}{"person_id": id}, ip, "success")
	return nil
}

// ===========================
// Crediting side-effect mutators. All run inside the caller's close-event
// transaction and are skip-if-set so repeated closes across events stay
// idempotent.

// PromoteToSanghaMemberTx flips the person type to sangha_member unless
// they are already there. Returns true when a write happened.
func (s *Service) PromoteToSanghaMemberTx(tx *gorm.DB, personID uint) (bool, error) {
	p, err := s.Repo.GetByIDTx(tx, personID)
	if err != nil {
		return false, err
	}
	if p.Type == TypeSanghaMember {
		return false, nil
	}
	p.Type = TypeSanghaMember
	return true, s.Repo.UpdateTx(tx, p)
}

// SetRefugeNameIfEmptyTx records a ceremonial name only when none exists;
// a human-entered name is never overwritten.
func (s *Service) SetRefugeNameIfEmptyTx(tx *gorm.DB, personID uint, refugeName string) (bool, error) {
	if refugeName == "" {
		return false, nil
	}
	p, err := s.Repo.GetByIDTx(tx, personID)
	if err != nil {
		return false, err
	}
	if p.RefugeName != nil && *p.RefugeName != "" {
		return false, nil
	}
	p.RefugeName = &refugeName
	return true, s.Repo.UpdateTx(tx, p)
}

// SetReferralSourceTx overwrites the stored referral source when the new
// value is non-empty and different.
func (s *Service) SetReferralSourceTx(tx *gorm.DB, personID uint, source string) (bool, error) {
	if source == "" {
		return false, nil
	}
	p, err := s.Repo.GetByIDTx(tx, personID)
	if err != nil {
		return false, err
	}
	if p.ReferralSource != nil && *p.ReferralSource == source {
		return false, nil
	}
	p.ReferralSource = &source
	return true, s.Repo.UpdateTx(tx, p)
}
