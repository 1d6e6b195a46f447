package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nyumbapay/backend/internal/httputil"
	"github.com/nyumbapay/backend/internal/ledger"
	"github.com/nyumbapay/backend/internal/models"
	"github.com/nyumbapay/backend/internal/types"
	ez_uuid "github.com/nyumbapay/backend/internal/uuid"
)

type RentChargeLinks struct {
	Self string `json:"self" example:"https://example.com/api/v1/rent-charges/8e99a861-53fe-4e06-a2ee-ee27b7b2c965"` // The rent charge itself
}

// RentCharge is the API v1 representation of a rent charge.
type RentCharge struct {
	models.RentCharge
	Links RentChargeLinks `json:"links"`
}

func newRentCharge(c *gin.Context, model models.RentCharge) RentCharge {
	return RentCharge{
		RentCharge: model,
		Links: RentChargeLinks{
			Self: fmt.Sprintf("%s/rent-charges/%s", httputil.RequestPathV1(c), model.ID),
		},
	}
}

type RentChargeResponse struct {
	Data  *RentCharge `json:"data"`                                                          // Data for the rent charge
	Error *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type RentChargeListResponse struct {
	Data  []RentCharge `json:"data"`                                                          // List of rent charges
	Error *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type RentChargeQueryFilter struct {
	TenancyID ez_uuid.UUID `form:"tenancy"` // By ID of the tenancy
	Status    string       `form:"status"`  // By status, UNPAID, PARTIAL or PAID
	Period    string       `form:"period"`  // By period in YYYY-MM format
}

// GenerateEditable represents the parameters of a charge generation run.
type GenerateEditable struct {
	Period types.Period `json:"period" example:"2025-03"` // The billing period, defaults to the current month
}

// RegisterRentChargeRoutes registers the routes for rent charges with
// the RouterGroup that is passed.
func RegisterRentChargeRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsRentChargeList)
		r.GET("", GetRentCharges)
	}

	// Generation of a billing period
	{
		r.OPTIONS("/generate", OptionsRentChargeGenerate)
		r.POST("/generate", GenerateRentCharges)
	}

	// Rent charge with ID
	{
		r.OPTIONS("/:id", OptionsRentChargeDetail)
		r.GET("/:id", GetRentCharge)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			RentCharges
// @Success		204
// @Router			/v1/rent-charges [options]
func OptionsRentChargeList(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			RentCharges
// @Success		204
// @Router			/v1/rent-charges/generate [options]
func OptionsRentChargeGenerate(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			RentCharges
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path	string	true	"ID formatted as string"
// @Router			/v1/rent-charges/{id} [options]
func OptionsRentChargeDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.RentCharge{}, "id = ? AND landlord_id = ?", uri.ID.UUID, landlordID(c)).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGet(c)
}

// @Summary		Get rent charges
// @Description	Returns a list of rent charges
// @Tags			RentCharges
// @Produce		json
// @Success		200	{object}	RentChargeListResponse
// @Failure		400	{object}	RentChargeListResponse
// @Failure		500	{object}	RentChargeListResponse
// @Router			/v1/rent-charges [get]
// @Param			tenancy	query	string	false	"Filter by tenancy ID"
// @Param			status	query	string	false	"Filter by status"
// @Param			period	query	string	false	"Filter by period in YYYY-MM format"
func GetRentCharges(c *gin.Context) {
	var filter RentChargeQueryFilter
	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, RentChargeListResponse{
			Error: &s,
		})
		return
	}

	q := models.DB.
		Where("landlord_id = ?", landlordID(c)).
		Order("period ASC")

	if filter.TenancyID != ez_uuid.Nil {
		q = q.Where("tenancy_id = ?", filter.TenancyID.UUID)
	}

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	if filter.Period != "" {
		period, err := types.ParsePeriod(filter.Period)
		if err != nil {
			s := err.Error()
			c.JSON(http.StatusBadRequest, RentChargeListResponse{
				Error: &s,
			})
			return
		}
		q = q.Where("period = ?", period)
	}

	var charges []models.RentCharge
	err := q.Find(&charges).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RentChargeListResponse{
			Error: &s,
		})
		return
	}

	data := make([]RentCharge, 0)
	for _, charge := range charges {
		data = append(data, newRentCharge(c, charge))
	}

	c.JSON(http.StatusOK, RentChargeListResponse{Data: data})
}

// @Summary		Get rent charge
// @Description	Returns a specific rent charge
// @Tags			RentCharges
// @Produce		json
// @Success		200	{object}	RentChargeResponse
// @Failure		400	{object}	RentChargeResponse
// @Failure		404	{object}	RentChargeResponse
// @Failure		500	{object}	RentChargeResponse
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/rent-charges/{id} [get]
func GetRentCharge(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RentChargeResponse{
			Error: &s,
		})
		return
	}

	var charge models.RentCharge
	err = models.DB.First(&charge, "id = ? AND landlord_id = ?", uri.ID.UUID, landlordID(c)).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RentChargeResponse{
			Error: &s,
		})
		return
	}

	data := newRentCharge(c, charge)
	c.JSON(http.StatusOK, RentChargeResponse{Data: &data})
}

// @Summary		Generate rent charges
// @Description	Creates the rent charges of a billing period for all active tenancies. Re-running for the same period only creates what is still missing.
// @Tags			RentCharges
// @Accept			json
// @Produce		json
// @Success		201		{object}	RentChargeListResponse
// @Failure		400		{object}	RentChargeListResponse
// @Failure		500		{object}	RentChargeListResponse
// @Param			period	body		GenerateEditable	false	"Billing period"
// @Router			/v1/rent-charges/generate [post]
func GenerateRentCharges(c *gin.Context) {
	editable := GenerateEditable{
		Period: types.PeriodOf(time.Now().In(time.UTC)),
	}

	if c.Request.ContentLength != 0 {
		err := httputil.BindData(c, &editable)
		if err != nil {
			s := err.Error()
			c.JSON(status(err), RentChargeListResponse{
				Error: &s,
			})
			return
		}
	}

	if editable.Period.IsZero() {
		editable.Period = types.PeriodOf(time.Now().In(time.UTC))
	}

	charges, err := ledger.GenerateCharges(models.DB, landlordID(c), editable.Period)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RentChargeListResponse{
			Error: &s,
		})
		return
	}

	data := make([]RentCharge, 0)
	for _, charge := range charges {
		data = append(data, newRentCharge(c, charge))
	}

	c.JSON(http.StatusCreated, RentChargeListResponse{Data: data})
}
