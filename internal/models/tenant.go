package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PhoneNumber is one contact number of a tenant, stored the way the
// tenant entered it, usually in the local "07…" format.
type PhoneNumber struct {
	Label  string `json:"label"`
	Number string `json:"number"`
}

// Tenant represents a person renting one or more units. The ledger reads
// tenants only to match inbound payments by phone number.
type Tenant struct {
	DefaultModel
	LandlordID   uuid.UUID     `json:"landlordId" gorm:"index"`
	FullName     string        `json:"fullName"`
	PhoneNumbers []PhoneNumber `json:"phoneNumbers" gorm:"serializer:json"`
}

// BeforeSave trims whitespace from the name and all phone numbers.
func (t *Tenant) BeforeSave(_ *gorm.DB) error {
	t.FullName = strings.TrimSpace(t.FullName)

	for i := range t.PhoneNumbers {
		t.PhoneNumbers[i].Number = strings.TrimSpace(t.PhoneNumbers[i].Number)
	}

	return nil
}

// HasPhoneNumber reports whether one of the tenant's contact numbers
// matches the given number.
func (t Tenant) HasPhoneNumber(number string) bool {
	for _, p := range t.PhoneNumbers {
		if p.Number == number {
			return true
		}
	}

	return false
}
