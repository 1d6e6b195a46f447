package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nyumbapay/backend/internal/types"
	"gorm.io/gorm"
)

// ChargeStatus is the payment state of a rent charge. It is a pure
// function of balance and amount and is persisted in the same statement
// as every balance mutation.
type ChargeStatus string

const (
	ChargeStatusUnpaid  ChargeStatus = "UNPAID"
	ChargeStatusPartial ChargeStatus = "PARTIAL"
	ChargeStatusPaid    ChargeStatus = "PAID"
)

// RentCharge is one month's rent obligation for one tenancy. Charges are
// created by the charge generator, mutated only through ApplyAllocation
// and ReverseAllocation, and never deleted.
type RentCharge struct {
	DefaultModel
	LandlordID uuid.UUID    `json:"landlordId" gorm:"index"`
	TenancyID  uuid.UUID    `json:"tenancyId" gorm:"uniqueIndex:rent_charge_tenancy_id_period"`
	Tenancy    Tenancy      `json:"-"`
	Period     types.Period `json:"period" gorm:"uniqueIndex:rent_charge_tenancy_id_period"`
	DueDate    time.Time    `json:"dueDate"`
	Amount     int64        `json:"amount"`  // The original charge in whole KES
	Balance    int64        `json:"balance"` // The amount still owed
	Status     ChargeStatus `json:"status"`
}

var (
	ErrInvalidAllocation         = errors.New("the allocation exceeds the available balance")
	ErrChargeAmountNotPositive   = errors.New("the charge amount must be larger than zero")
	ErrRentChargePeriodNotUnique = errors.New("a rent charge already exists for this tenancy and period")
)

// StatusForBalance returns the charge status implied by a balance.
func StatusForBalance(balance, amount int64) ChargeStatus {
	switch {
	case balance <= 0:
		return ChargeStatusPaid
	case balance >= amount:
		return ChargeStatusUnpaid
	default:
		return ChargeStatusPartial
	}
}

// BeforeCreate verifies the charge and initializes balance and status
// for a freshly generated charge.
func (r *RentCharge) BeforeCreate(tx *gorm.DB) error {
	_ = r.DefaultModel.BeforeCreate(tx)

	if r.Amount <= 0 {
		return ErrChargeAmountNotPositive
	}

	if r.Balance == 0 && r.Status == "" {
		r.Balance = r.Amount
	}
	r.Status = StatusForBalance(r.Balance, r.Amount)

	return nil
}

// UnpaidChargesForTenancy returns the tenancy's charges that still carry
// a balance, oldest period first. This is the order the allocation
// engine walks.
func UnpaidChargesForTenancy(db *gorm.DB, landlordID, tenancyID uuid.UUID) ([]RentCharge, error) {
	var charges []RentCharge
	err := db.
		Where("landlord_id = ? AND tenancy_id = ? AND balance > 0", landlordID, tenancyID).
		Order("period ASC").
		Find(&charges).Error

	return charges, err
}

// ApplyAllocation decrements the charge's balance by amount and
// recomputes the status, both in a single conditional UPDATE so that
// concurrent allocations against the same charge serialize in the
// database and can never drive the balance negative.
func ApplyAllocation(db *gorm.DB, id uuid.UUID, amount int64) (RentCharge, error) {
	if amount <= 0 {
		return RentCharge{}, ErrInvalidAllocation
	}

	res := db.Model(&RentCharge{}).
		Where("id = ? AND balance >= ?", id, amount).
		Updates(map[string]interface{}{
			"balance": gorm.Expr("balance - ?", amount),
			"status": gorm.Expr(
				"CASE WHEN balance - ? <= 0 THEN ? WHEN balance - ? >= amount THEN ? ELSE ? END",
				amount, ChargeStatusPaid, amount, ChargeStatusUnpaid, ChargeStatusPartial,
			),
		})
	if res.Error != nil {
		return RentCharge{}, res.Error
	}

	return chargeAfterConditionalUpdate(db, id, res.RowsAffected)
}

// ReverseAllocation increments the charge's balance by amount and
// recomputes the status. It is the exact inverse of ApplyAllocation and
// always works relative to the charge's current stored balance, so
// reversal stays correct when other payments touched the charge in
// between. The balance is capped at the original amount.
func ReverseAllocation(db *gorm.DB, id uuid.UUID, amount int64) (RentCharge, error) {
	if amount <= 0 {
		return RentCharge{}, ErrInvalidAllocation
	}

	res := db.Model(&RentCharge{}).
		Where("id = ? AND balance + ? <= amount", id, amount).
		Updates(map[string]interface{}{
			"balance": gorm.Expr("balance + ?", amount),
			"status": gorm.Expr(
				"CASE WHEN balance + ? <= 0 THEN ? WHEN balance + ? >= amount THEN ? ELSE ? END",
				amount, ChargeStatusPaid, amount, ChargeStatusUnpaid, ChargeStatusPartial,
			),
		})
	if res.Error != nil {
		return RentCharge{}, res.Error
	}

	return chargeAfterConditionalUpdate(db, id, res.RowsAffected)
}

// chargeAfterConditionalUpdate loads the charge after a conditional
// update. Zero affected rows for a charge that exists means the
// condition failed, which is an invalid allocation.
func chargeAfterConditionalUpdate(db *gorm.DB, id uuid.UUID, rowsAffected int64) (RentCharge, error) {
	var charge RentCharge
	err := db.First(&charge, "id = ?", id).Error
	if err != nil {
		return RentCharge{}, err
	}

	if rowsAffected == 0 {
		return charge, ErrInvalidAllocation
	}

	return charge, nil
}
