package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentSource describes how a payment entered the system.
type PaymentSource string

const (
	// PaymentSourceAutomatic marks payments delivered by the mobile
	// money gateway. They are immutable once recorded to protect
	// provenance.
	PaymentSourceAutomatic PaymentSource = "AUTOMATIC"

	// PaymentSourceManual marks payments the landlord entered directly.
	PaymentSourceManual PaymentSource = "MANUAL"
)

// PaymentMethod is the payment instrument used.
type PaymentMethod string

const (
	PaymentMethodCash        PaymentMethod = "CASH"
	PaymentMethodBank        PaymentMethod = "BANK"
	PaymentMethodCheque      PaymentMethod = "CHEQUE"
	PaymentMethodMobileMoney PaymentMethod = "MOBILE_MONEY"
	PaymentMethodOther       PaymentMethod = "OTHER"
)

// Payment is one inbound payment event. Payments are never deleted; the
// allocation engine links them to rent charges through Allocation rows.
type Payment struct {
	DefaultModel
	LandlordID        uuid.UUID     `json:"landlordId" gorm:"index"`
	TenancyID         *uuid.UUID    `json:"tenancyId"` // The tenancy the payment is currently associated with, if resolved
	Tenancy           *Tenancy      `json:"-"`
	Amount            int64         `json:"amount"` // Paid amount in whole KES
	PaidAt            time.Time     `json:"paidAt"`
	Source            PaymentSource `json:"source"`
	Method            PaymentMethod `json:"method"`
	ExternalReference *string       `json:"externalReference" gorm:"uniqueIndex"` // Gateway transaction id, used for de-duplication
	RawReference      string        `json:"rawReference"`                         // Free-text account or reference string supplied by the payer
	PhoneNumber       string        `json:"phoneNumber"`                          // Originating phone number, if any
	Note              string        `json:"note"`

	// IsFullyAllocated caches whether the sum of the payment's
	// allocations equals its amount. The allocation engine recomputes it
	// after every change; it exists for fast filtering of payments that
	// need attention.
	IsFullyAllocated bool `json:"isFullyAllocated" gorm:"index"`
}

var (
	ErrPaymentAmountNotPositive   = errors.New("the payment amount must be larger than zero")
	ErrPaymentImmutable           = errors.New("automatic payments cannot be edited")
	ErrExternalReferenceNotUnique = errors.New("a payment with this transaction reference already exists")
)

// BeforeSave verifies the payment, trims all strings and defaults the
// payment date to now.
func (p *Payment) BeforeSave(_ *gorm.DB) error {
	if p.Amount <= 0 {
		return ErrPaymentAmountNotPositive
	}

	p.RawReference = strings.TrimSpace(p.RawReference)
	p.PhoneNumber = strings.TrimSpace(p.PhoneNumber)
	p.Note = strings.TrimSpace(p.Note)

	if p.ExternalReference != nil {
		trimmed := strings.TrimSpace(*p.ExternalReference)
		if trimmed == "" {
			p.ExternalReference = nil
		} else {
			p.ExternalReference = &trimmed
		}
	}

	if p.PaidAt.IsZero() {
		p.PaidAt = time.Now().In(time.UTC)
	} else {
		p.PaidAt = p.PaidAt.In(time.UTC)
	}

	return nil
}

// AfterFind updates the payment date to use UTC as timezone, not +0000.
func (p *Payment) AfterFind(tx *gorm.DB) error {
	_ = p.DefaultModel.AfterFind(tx)

	p.PaidAt = p.PaidAt.In(time.UTC)
	return nil
}

// AllocatedAmount returns the sum the payment has already been allocated
// to rent charges.
func (p Payment) AllocatedAmount(db *gorm.DB) (int64, error) {
	var sum int64
	err := db.Model(&Allocation{}).
		Where("payment_id = ?", p.ID).
		Select("COALESCE(SUM(allocated_amount), 0)").
		Row().Scan(&sum)

	return sum, err
}

// RemainingAmount returns the part of the payment that has not been
// allocated to any rent charge yet.
func (p Payment) RemainingAmount(db *gorm.DB) (int64, error) {
	allocated, err := p.AllocatedAmount(db)
	if err != nil {
		return 0, err
	}

	return p.Amount - allocated, nil
}

// PaymentsNeedingAttention returns the landlord's payments that are not
// linked to a tenancy or not fully allocated yet. This is the unmatched
// payments workbench; it is a filter over the payment store, not a
// separate queue.
func PaymentsNeedingAttention(db *gorm.DB, landlordID uuid.UUID) ([]Payment, error) {
	var payments []Payment
	err := db.
		Where("landlord_id = ? AND (is_fully_allocated = ? OR tenancy_id IS NULL)", landlordID, false).
		Order("datetime(paid_at) DESC").
		Find(&payments).Error

	return payments, err
}
