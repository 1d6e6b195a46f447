package models

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Allocation records how much of a payment was applied to which rent
// charge. Allocations are created by the allocation engine and deleted
// and recreated wholesale when a manual payment is edited.
type Allocation struct {
	DefaultModel
	LandlordID      uuid.UUID  `json:"landlordId" gorm:"index"`
	PaymentID       uuid.UUID  `json:"paymentId" gorm:"index"`
	Payment         Payment    `json:"-"`
	RentChargeID    uuid.UUID  `json:"rentChargeId" gorm:"index"`
	RentCharge      RentCharge `json:"-"`
	AllocatedAmount int64      `json:"allocatedAmount"` // Applied amount in whole KES
}

var ErrAllocationAmountNotPositive = errors.New("the allocated amount must be larger than zero")

// BeforeSave verifies the allocation.
func (a *Allocation) BeforeSave(_ *gorm.DB) error {
	if a.AllocatedAmount <= 0 {
		return ErrAllocationAmountNotPositive
	}

	return nil
}

// AllocationsForPayment returns all allocations of a payment.
func AllocationsForPayment(db *gorm.DB, landlordID, paymentID uuid.UUID) ([]Allocation, error) {
	var allocations []Allocation
	err := db.
		Where("landlord_id = ? AND payment_id = ?", landlordID, paymentID).
		Find(&allocations).Error

	return allocations, err
}
