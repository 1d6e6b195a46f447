// Package ledger implements the allocation engine: the distribution of
// inbound payment amounts across a tenancy's outstanding rent charges.
package ledger

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nyumbapay/backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrPaymentNotLinked      = errors.New("the payment is not linked to a tenancy")
	ErrChargeTenancyMismatch = errors.New("the rent charge does not belong to the selected tenancy")
)

// Allocate distributes the payment's unallocated remainder across the
// outstanding charges of its tenancy, oldest period first, filling each
// charge exactly before moving to the next. It reports whether the
// payment is fully allocated afterwards.
//
// Allocation is best-effort sequential: a failing step leaves the
// allocations applied before it in place. A remainder that outlasts all
// charges stays unallocated on the payment; it is never applied as a
// credit to charges that do not exist yet.
func Allocate(db *gorm.DB, landlordID, paymentID uuid.UUID) (bool, error) {
	var payment models.Payment
	err := db.First(&payment, "id = ? AND landlord_id = ?", paymentID, landlordID).Error
	if err != nil {
		return false, err
	}

	if payment.TenancyID == nil {
		return false, ErrPaymentNotLinked
	}

	remaining, err := payment.RemainingAmount(db)
	if err != nil {
		return false, err
	}

	if remaining > 0 {
		charges, err := models.UnpaidChargesForTenancy(db, landlordID, *payment.TenancyID)
		if err != nil {
			return false, err
		}

		for _, charge := range charges {
			if remaining == 0 {
				break
			}

			take := min(remaining, charge.Balance)

			_, err := models.ApplyAllocation(db, charge.ID, take)
			if errors.Is(err, models.ErrInvalidAllocation) {
				// The charge shrank since we read it, another payment
				// got there first. Take what is still available.
				current, fetchErr := currentBalance(db, charge.ID)
				if fetchErr != nil {
					return false, fetchErr
				}

				take = min(remaining, current)
				if take <= 0 {
					continue
				}

				_, err = models.ApplyAllocation(db, charge.ID, take)
				if errors.Is(err, models.ErrInvalidAllocation) {
					continue
				}
			}
			if err != nil {
				return false, err
			}

			allocation := models.Allocation{
				LandlordID:      landlordID,
				PaymentID:       payment.ID,
				RentChargeID:    charge.ID,
				AllocatedAmount: take,
			}
			err = db.Create(&allocation).Error
			if err != nil {
				return false, err
			}

			remaining -= take
		}
	}

	fullyAllocated := remaining == 0
	err = db.Model(&payment).Update("is_fully_allocated", fullyAllocated).Error
	if err != nil {
		return false, err
	}

	return fullyAllocated, nil
}

// AllocateManual applies a single operator-chosen amount of a payment to
// a single rent charge. An unlinked payment is linked to the chosen
// tenancy in the same step, resolving it from the unmatched workbench.
func AllocateManual(db *gorm.DB, landlordID, paymentID, tenancyID, chargeID uuid.UUID, amount int64) (models.Allocation, error) {
	if amount <= 0 {
		return models.Allocation{}, models.ErrAllocationAmountNotPositive
	}

	var allocation models.Allocation
	err := db.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		err := tx.First(&payment, "id = ? AND landlord_id = ?", paymentID, landlordID).Error
		if err != nil {
			return err
		}

		remaining, err := payment.RemainingAmount(tx)
		if err != nil {
			return err
		}

		if amount > remaining {
			return fmt.Errorf("%w: the amount exceeds the payment's remaining balance", models.ErrInvalidAllocation)
		}

		var charge models.RentCharge
		err = tx.First(&charge, "id = ? AND landlord_id = ?", chargeID, landlordID).Error
		if err != nil {
			return err
		}

		if charge.TenancyID != tenancyID {
			return ErrChargeTenancyMismatch
		}

		_, err = models.ApplyAllocation(tx, charge.ID, amount)
		if err != nil {
			return err
		}

		allocation = models.Allocation{
			LandlordID:      landlordID,
			PaymentID:       payment.ID,
			RentChargeID:    charge.ID,
			AllocatedAmount: amount,
		}
		err = tx.Create(&allocation).Error
		if err != nil {
			return err
		}

		if payment.TenancyID == nil {
			payment.TenancyID = &tenancyID
		}
		payment.IsFullyAllocated = amount == remaining

		return tx.Save(&payment).Error
	})

	return allocation, err
}

// Reallocate applies an edit to a manual payment's amount and tenancy
// link. All existing allocations are reversed and deleted, restoring
// each affected charge relative to its current balance, the payment is
// updated, and auto-allocation runs again against the new tenancy. The
// whole edit is one database transaction: it either commits completely
// or leaves the ledger untouched.
//
// Automatic payments are immutable and are rejected.
func Reallocate(db *gorm.DB, landlordID, paymentID uuid.UUID, amount int64, tenancyID *uuid.UUID) (models.Payment, error) {
	var payment models.Payment

	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.First(&payment, "id = ? AND landlord_id = ?", paymentID, landlordID).Error
		if err != nil {
			return err
		}

		if payment.Source != models.PaymentSourceManual {
			return models.ErrPaymentImmutable
		}

		allocations, err := models.AllocationsForPayment(tx, landlordID, payment.ID)
		if err != nil {
			return err
		}

		for _, allocation := range allocations {
			_, err = models.ReverseAllocation(tx, allocation.RentChargeID, allocation.AllocatedAmount)
			if err != nil {
				return err
			}

			err = tx.Delete(&models.Allocation{}, "id = ?", allocation.ID).Error
			if err != nil {
				return err
			}
		}

		payment.Amount = amount
		payment.TenancyID = tenancyID
		payment.IsFullyAllocated = false
		err = tx.Save(&payment).Error
		if err != nil {
			return err
		}

		if tenancyID != nil {
			_, err = Allocate(tx, landlordID, payment.ID)
			if err != nil {
				return err
			}
		}

		return tx.First(&payment, "id = ?", payment.ID).Error
	})

	return payment, err
}

func currentBalance(db *gorm.DB, chargeID uuid.UUID) (int64, error) {
	var charge models.RentCharge
	err := db.First(&charge, "id = ?", chargeID).Error
	if err != nil {
		return 0, err
	}

	return charge.Balance, nil
}
