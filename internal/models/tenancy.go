package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TenancyStatus is the lifecycle state of a tenancy.
type TenancyStatus string

const (
	TenancyStatusActive TenancyStatus = "ACTIVE"
	TenancyStatusNotice TenancyStatus = "NOTICE"
	TenancyStatusEnded  TenancyStatus = "ENDED"
)

// Tenancy represents the agreement binding one tenant to one unit for a
// date range, carrying the agreed monthly rent. Tenancies are maintained
// by the CRUD layer; the ledger reads them to generate charges and to
// match payments.
type Tenancy struct {
	DefaultModel
	LandlordID        uuid.UUID     `json:"landlordId" gorm:"index"`
	UnitID            uuid.UUID     `json:"unitId" gorm:"index"`
	Unit              Unit          `json:"-"`
	TenantID          uuid.UUID     `json:"tenantId" gorm:"index"`
	Tenant            Tenant        `json:"-"`
	MonthlyRentAmount int64         `json:"monthlyRentAmount"` // Agreed rent in whole KES
	RentDueDay        int           `json:"rentDueDay"`        // Day of the month rent falls due, defaults to 1
	StartDate         time.Time     `json:"startDate"`
	EndDate           *time.Time    `json:"endDate"`
	Status            TenancyStatus `json:"status"`
}

var ErrTenancyRentNotPositive = errors.New("the monthly rent amount must be larger than zero")

// BeforeSave sets defaults and verifies the tenancy.
func (t *Tenancy) BeforeSave(_ *gorm.DB) error {
	if t.MonthlyRentAmount <= 0 {
		return ErrTenancyRentNotPositive
	}

	if t.RentDueDay < 1 {
		t.RentDueDay = 1
	}

	if t.Status == "" {
		t.Status = TenancyStatusActive
	}

	return nil
}

// Collecting reports whether rent is still being collected for the
// tenancy. Tenancies under notice keep their charges until they end.
func (t Tenancy) Collecting() bool {
	return t.Status == TenancyStatusActive || t.Status == TenancyStatusNotice
}
