package db

import (
	"errors"

	"github.com/farmstack/farm-backend/internal/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResolveUUID translates an external identifier into the internal storage key
// for the given model. This is the only place the translation happens:
// every inbound *_id parameter goes through here before any join.
//
// A malformed identifier is an InvalidArgument; a well-formed identifier with
// no matching row is a NotFound carrying the resource name.
func ResolveUUID(tx *gorm.DB, model interface{}, resource, externalID string) (uint, error) {
	if _, err := uuid.Parse(externalID); err != nil {
		return 0, apperror.Invalid(resource+"_id", "malformed "+resource+" identifier")
	}

	var row struct{ ID uint }
	err := tx.Model(model).Select("id").Where("uuid = ?", externalID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperror.NotFound(resource)
	}
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return row.ID, nil
}

// ResolveOwnedUUID is ResolveUUID restricted to rows whose owner column
// matches the acting principal's internal key. A row owned by someone else
// resolves exactly like a missing row.
func ResolveOwnedUUID(tx *gorm.DB, model interface{}, resource, externalID string, ownerColumn string, ownerKey uint) (uint, error) {
	if _, err := uuid.Parse(externalID); err != nil {
		return 0, apperror.Invalid(resource+"_id", "malformed "+resource+" identifier")
	}

	var row struct{ ID uint }
	err := tx.Model(model).Select("id").
		Where("uuid = ? AND "+ownerColumn+" = ?", externalID, ownerKey).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperror.NotFound(resource)
	}
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return row.ID, nil
}
