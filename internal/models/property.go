package models

import (
	"strings"

	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Property represents one building or estate a landlord manages.
//
// Properties and units are maintained by the CRUD layer. The ledger only
// reads them, but the rows have to exist so that units and tenancies can
// reference them.
type Property struct {
	DefaultModel
	LandlordID uuid.UUID `json:"landlordId" gorm:"index"`
	Name       string    `json:"name"`
}

// Unit represents a rentable unit in a property. Its code is what tenants
// put in the account reference of a mobile money payment, so it has to be
// unique for the landlord.
type Unit struct {
	DefaultModel
	LandlordID uuid.UUID `json:"landlordId" gorm:"uniqueIndex:unit_landlord_id_unit_code"`
	PropertyID uuid.UUID `json:"propertyId"`
	Property   Property  `json:"-"`
	UnitCode   string    `json:"unitCode" gorm:"uniqueIndex:unit_landlord_id_unit_code"`
}

var ErrUnitCodeNotUnique = errors.New("the unit code must be unique for the landlord")

// BeforeSave trims whitespace from the unit code.
func (u *Unit) BeforeSave(_ *gorm.DB) error {
	u.UnitCode = strings.TrimSpace(u.UnitCode)
	return nil
}
