package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nyumbapay/backend/internal/httputil"
	"github.com/nyumbapay/backend/internal/ledger"
	"github.com/nyumbapay/backend/internal/models"
	ez_uuid "github.com/nyumbapay/backend/internal/uuid"
)

// AllocationEditable represents the parameters of a manual allocation
// command.
type AllocationEditable struct {
	PaymentID    uuid.UUID `json:"paymentId" example:"d1e4a98a-6a6d-4cb4-82f4-203da0b7e19b"`    // The payment to take the amount from
	TenancyID    uuid.UUID `json:"tenancyId" example:"7e07fe6b-6857-45ac-a449-18a97d63be36"`    // The tenancy the charge belongs to
	RentChargeID uuid.UUID `json:"rentChargeId" example:"8e99a861-53fe-4e06-a2ee-ee27b7b2c965"` // The rent charge to apply the amount to
	Amount       int64     `json:"amount" example:"5000"`                                       // Amount to apply in whole KES
}

type AllocationLinks struct {
	Self    string `json:"self" example:"https://example.com/api/v1/allocations?payment=d1e4a98a-6a6d-4cb4-82f4-203da0b7e19b"` // The payment's allocations
	Payment string `json:"payment" example:"https://example.com/api/v1/payments/d1e4a98a-6a6d-4cb4-82f4-203da0b7e19b"`         // The payment the allocation belongs to
}

// Allocation is the API v1 representation of an allocation.
type Allocation struct {
	models.Allocation
	Links AllocationLinks `json:"links"`
}

func newAllocation(c *gin.Context, model models.Allocation) Allocation {
	url := httputil.RequestPathV1(c)

	return Allocation{
		Allocation: model,
		Links: AllocationLinks{
			Self:    fmt.Sprintf("%s/allocations?payment=%s", url, model.PaymentID),
			Payment: fmt.Sprintf("%s/payments/%s", url, model.PaymentID),
		},
	}
}

type AllocationResponse struct {
	Data  *Allocation `json:"data"`                                                          // Data for the allocation
	Error *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type AllocationListResponse struct {
	Data  []Allocation `json:"data"`                                                          // List of allocations
	Error *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type AllocationQueryFilter struct {
	PaymentID ez_uuid.UUID `form:"payment"` // By ID of the payment
}

// RegisterAllocationRoutes registers the routes for allocations with
// the RouterGroup that is passed.
func RegisterAllocationRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsAllocationList)
	r.GET("", GetAllocations)
	r.POST("", CreateAllocation)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Allocations
// @Success		204
// @Router			/v1/allocations [options]
func OptionsAllocationList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Create allocation
// @Description	Manually applies part of a payment to a rent charge. An unlinked payment is linked to the tenancy in the same step.
// @Tags			Allocations
// @Accept			json
// @Produce		json
// @Success		201			{object}	AllocationResponse
// @Failure		400			{object}	AllocationResponse
// @Failure		404			{object}	AllocationResponse
// @Failure		500			{object}	AllocationResponse
// @Param			allocation	body		AllocationEditable	true	"Allocation"
// @Router			/v1/allocations [post]
func CreateAllocation(c *gin.Context) {
	var editable AllocationEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationResponse{
			Error: &s,
		})
		return
	}

	allocation, err := ledger.AllocateManual(
		models.DB, landlordID(c),
		editable.PaymentID, editable.TenancyID, editable.RentChargeID,
		editable.Amount,
	)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationResponse{
			Error: &s,
		})
		return
	}

	data := newAllocation(c, allocation)
	c.JSON(http.StatusCreated, AllocationResponse{Data: &data})
}

// @Summary		Get allocations
// @Description	Returns a list of allocations
// @Tags			Allocations
// @Produce		json
// @Success		200	{object}	AllocationListResponse
// @Failure		400	{object}	AllocationListResponse
// @Failure		500	{object}	AllocationListResponse
// @Router			/v1/allocations [get]
// @Param			payment	query	string	false	"Filter by payment ID"
func GetAllocations(c *gin.Context) {
	var filter AllocationQueryFilter
	if err := c.Bind(&filter); err != nil {
		s := errPaymentIDParameter.Error()
		c.JSON(http.StatusBadRequest, AllocationListResponse{
			Error: &s,
		})
		return
	}

	q := models.DB.Where("landlord_id = ?", landlordID(c))
	if filter.PaymentID != ez_uuid.Nil {
		q = q.Where("payment_id = ?", filter.PaymentID.UUID)
	}

	var allocations []models.Allocation
	err := q.Find(&allocations).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationListResponse{
			Error: &s,
		})
		return
	}

	data := make([]Allocation, 0)
	for _, allocation := range allocations {
		data = append(data, newAllocation(c, allocation))
	}

	c.JSON(http.StatusOK, AllocationListResponse{Data: data})
}
