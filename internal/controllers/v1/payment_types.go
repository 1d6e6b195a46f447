package v1

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nyumbapay/backend/internal/httputil"
	"github.com/nyumbapay/backend/internal/models"
	ez_uuid "github.com/nyumbapay/backend/internal/uuid"
	"gorm.io/gorm"
)

// PaymentEditable represents all user configurable parameters of a
// manual payment.
type PaymentEditable struct {
	TenancyID *uuid.UUID           `json:"tenancyId"`                                    // The tenancy the payment is for, if known
	Amount    int64                `json:"amount" example:"15000"`                       // Paid amount in whole KES
	PaidAt    time.Time            `json:"paidAt" example:"2025-03-04T10:11:12Z"`        // When the payment was received
	Method    models.PaymentMethod `json:"method" example:"CASH" default:"OTHER"`        // The payment instrument
	Reference string               `json:"reference" example:"deposit slip 1017"`        // Free-text reference
	Note      string               `json:"note" example:"two months paid in one amount"` // Notes about the payment
}

func (editable PaymentEditable) model(landlordID uuid.UUID) models.Payment {
	method := editable.Method
	if method == "" {
		method = models.PaymentMethodOther
	}

	return models.Payment{
		LandlordID:   landlordID,
		TenancyID:    editable.TenancyID,
		Amount:       editable.Amount,
		PaidAt:       editable.PaidAt,
		Source:       models.PaymentSourceManual,
		Method:       method,
		RawReference: editable.Reference,
		Note:         editable.Note,
	}
}

type PaymentLinks struct {
	Self        string `json:"self" example:"https://example.com/api/v1/payments/d1e4a98a-6a6d-4cb4-82f4-203da0b7e19b"`               // The payment itself
	Allocations string `json:"allocations" example:"https://example.com/api/v1/allocations?payment=d1e4a98a-6a6d-4cb4-82f4-203da0b7e19b"` // The payment's allocations
}

// Payment is the API v1 representation of a payment.
type Payment struct {
	models.Payment
	Links PaymentLinks `json:"links"`

	// These fields are computed
	AllocatedAmount int64 `json:"allocatedAmount"` // Sum already applied to rent charges
	RemainingAmount int64 `json:"remainingAmount"` // Part of the amount not applied to any charge yet
}

func newPayment(c *gin.Context, db *gorm.DB, model models.Payment) (Payment, error) {
	url := httputil.RequestPathV1(c)

	allocated, err := model.AllocatedAmount(db)
	if err != nil {
		return Payment{}, err
	}

	return Payment{
		Payment: model,
		Links: PaymentLinks{
			Self:        fmt.Sprintf("%s/payments/%s", url, model.ID),
			Allocations: fmt.Sprintf("%s/allocations?payment=%s", url, model.ID),
		},
		AllocatedAmount: allocated,
		RemainingAmount: model.Amount - allocated,
	}, nil
}

type PaymentResponse struct {
	Data  *Payment `json:"data"`                                                          // Data for the payment
	Error *string  `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type PaymentListResponse struct {
	Data  []Payment `json:"data"`                                                          // List of payments
	Error *string   `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type PaymentQueryFilter struct {
	Attention bool         `form:"attention"` // Only payments needing attention
	TenancyID ez_uuid.UUID `form:"tenancy"`   // By ID of the tenancy
	Source    string       `form:"source"`    // By source, AUTOMATIC or MANUAL
}
