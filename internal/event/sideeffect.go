package event

import (
	"gorm.io/gorm"

	"github.com/byoma-kusuma/sangha-management-backend/internal/category"
)

// personMutator is the narrow slice of the person service the close
// side effects are allowed to touch. person.Service satisfies it.
type personMutator interface {
	PromoteToSanghaMemberTx(tx *gorm.DB, personID uint) (bool, error)
	SetRefugeNameIfEmptyTx(tx *gorm.DB, personID uint, refugeName string) (bool, error)
	SetReferralSourceTx(tx *gorm.DB, personID uint, source string) (bool, error)
}

// creditSideEffect applies one category's person-level consequence of
// crediting an attendee. It runs inside the close transaction; any
// error rolls back the whole close.
type creditSideEffect func(tx *gorm.DB, persons personMutator, a *EventAttendee) error

// sideEffects maps category codes onto their crediting strategy.
// Categories without an entry (EMPOWERMENT, OTHER, anything custom)
// have no person-level side effect.
var sideEffects = map[string]creditSideEffect{
	category.CodeRefuge:           applyRefuge,
	category.CodeBodhipushpanjali: applyBodhipushpanjali,
}

// applyRefuge promotes the person to sangha member and records the
// ceremonial name from the attendee's metadata. Both writes are
// skip-if-set; crediting the same person across two refuge events is a
// no-op the second time.
func applyRefuge(tx *gorm.DB, persons personMutator, a *EventAttendee) error {
	if _, err := persons.PromoteToSanghaMemberTx(tx, a.PersonID); err != nil {
		return err
	}

	var meta RefugeMetadata
	if err := decodeMetadata(a.Metadata, &meta); err != nil {
		return err
	}
	_, err := persons.SetRefugeNameIfEmptyTx(tx, a.PersonID, meta.RefugeName)
	return err
}

// applyBodhipushpanjali copies the referral medium onto the person.
// Unlike the refuge name this overwrites a differing stored value; the
// most recent ceremony is authoritative for how the person was reached.
func applyBodhipushpanjali(tx *gorm.DB, persons personMutator, a *EventAttendee) error {
	var meta BodhipushpanjaliMetadata
	if err := decodeMetadata(a.Metadata, &meta); err != nil {
		return err
	}
	_, err := persons.SetReferralSourceTx(tx, a.PersonID, meta.ReferralMedium)
	return err
}
