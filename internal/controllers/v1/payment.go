package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nyumbapay/backend/internal/httputil"
	"github.com/nyumbapay/backend/internal/ledger"
	"github.com/nyumbapay/backend/internal/models"
	ez_uuid "github.com/nyumbapay/backend/internal/uuid"
	"gorm.io/gorm"
)

// RegisterPaymentRoutes registers the routes for payments with
// the RouterGroup that is passed.
func RegisterPaymentRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsPaymentList)
		r.GET("", GetPayments)
		r.POST("", CreatePayment)
	}

	// Payment with ID
	{
		r.OPTIONS("/:id", OptionsPaymentDetail)
		r.GET("/:id", GetPayment)
		r.PATCH("/:id", UpdatePayment)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Payments
// @Success		204
// @Router			/v1/payments [options]
func OptionsPaymentList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Payments
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path	string	true	"ID formatted as string"
// @Router			/v1/payments/{id} [options]
func OptionsPaymentDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.Payment{}, "id = ? AND landlord_id = ?", uri.ID.UUID, landlordID(c)).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatch(c)
}

// @Summary		Record payment
// @Description	Records a manually entered payment and auto-allocates it when a tenancy is set
// @Tags			Payments
// @Accept			json
// @Produce		json
// @Success		201		{object}	PaymentResponse
// @Failure		400		{object}	PaymentResponse
// @Failure		500		{object}	PaymentResponse
// @Param			payment	body		PaymentEditable	true	"Payment"
// @Router			/v1/payments [post]
func CreatePayment(c *gin.Context) {
	var editable PaymentEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentResponse{
			Error: &s,
		})
		return
	}

	payment := editable.model(landlordID(c))

	err = models.DB.Create(&payment).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentResponse{
			Error: &s,
		})
		return
	}

	if payment.TenancyID != nil {
		_, err = ledger.Allocate(models.DB, payment.LandlordID, payment.ID)
		if err == nil {
			err = models.DB.First(&payment, "id = ?", payment.ID).Error
		}
		if err != nil {
			s := err.Error()
			c.JSON(status(err), PaymentResponse{
				Error: &s,
			})
			return
		}
	}

	data, err := newPayment(c, models.DB, payment)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentResponse{
			Error: &s,
		})
		return
	}

	c.JSON(http.StatusCreated, PaymentResponse{Data: &data})
}

// @Summary		Get payments
// @Description	Returns a list of payments
// @Tags			Payments
// @Produce		json
// @Success		200	{object}	PaymentListResponse
// @Failure		400	{object}	PaymentListResponse
// @Failure		500	{object}	PaymentListResponse
// @Router			/v1/payments [get]
// @Param			attention	query	bool	false	"Only payments that are unlinked or not fully allocated"
// @Param			tenancy		query	string	false	"Filter by tenancy ID"
// @Param			source		query	string	false	"Filter by source"
func GetPayments(c *gin.Context) {
	var filter PaymentQueryFilter
	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, PaymentListResponse{
			Error: &s,
		})
		return
	}

	var payments []models.Payment
	var err error

	if filter.Attention {
		payments, err = models.PaymentsNeedingAttention(models.DB, landlordID(c))
	} else {
		q := models.DB.
			Where("landlord_id = ?", landlordID(c)).
			Order("datetime(paid_at) DESC")

		if filter.TenancyID != ez_uuid.Nil {
			q = q.Where("tenancy_id = ?", filter.TenancyID.UUID)
		}

		if filter.Source != "" {
			q = q.Where("source = ?", filter.Source)
		}

		err = q.Find(&payments).Error
	}

	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentListResponse{
			Error: &s,
		})
		return
	}

	data := make([]Payment, 0)
	for _, payment := range payments {
		apiResource, err := newPayment(c, models.DB, payment)
		if err != nil {
			s := err.Error()
			c.JSON(status(err), PaymentListResponse{
				Error: &s,
			})
			return
		}
		data = append(data, apiResource)
	}

	c.JSON(http.StatusOK, PaymentListResponse{Data: data})
}

// @Summary		Get payment
// @Description	Returns a specific payment
// @Tags			Payments
// @Produce		json
// @Success		200	{object}	PaymentResponse
// @Failure		400	{object}	PaymentResponse
// @Failure		404	{object}	PaymentResponse
// @Failure		500	{object}	PaymentResponse
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/payments/{id} [get]
func GetPayment(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentResponse{
			Error: &s,
		})
		return
	}

	var payment models.Payment
	err = models.DB.First(&payment, "id = ? AND landlord_id = ?", uri.ID.UUID, landlordID(c)).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentResponse{
			Error: &s,
		})
		return
	}

	data, err := newPayment(c, models.DB, payment)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentResponse{
			Error: &s,
		})
		return
	}

	c.JSON(http.StatusOK, PaymentResponse{Data: &data})
}

// @Summary		Update payment
// @Description	Updates a manual payment. All existing allocations are reversed and the payment is allocated again against the new tenancy and amount. Automatic payments cannot be edited.
// @Tags			Payments
// @Accept			json
// @Produce		json
// @Success		200		{object}	PaymentResponse
// @Failure		400		{object}	PaymentResponse
// @Failure		404		{object}	PaymentResponse
// @Failure		500		{object}	PaymentResponse
// @Param			id		path		string			true	"ID formatted as string"
// @Param			payment	body		PaymentEditable	true	"Payment"
// @Router			/v1/payments/{id} [patch]
func UpdatePayment(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentResponse{
			Error: &s,
		})
		return
	}

	var payment models.Payment
	err = models.DB.First(&payment, "id = ? AND landlord_id = ?", uri.ID.UUID, landlordID(c)).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentResponse{
			Error: &s,
		})
		return
	}

	if payment.Source != models.PaymentSourceManual {
		s := models.ErrPaymentImmutable.Error()
		c.JSON(http.StatusBadRequest, PaymentResponse{
			Error: &s,
		})
		return
	}

	// Unset fields of the request keep their current values
	editable := PaymentEditable{
		TenancyID: payment.TenancyID,
		Amount:    payment.Amount,
		PaidAt:    payment.PaidAt,
		Method:    payment.Method,
		Reference: payment.RawReference,
		Note:      payment.Note,
	}

	err = httputil.BindData(c, &editable)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentResponse{
			Error: &s,
		})
		return
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&payment).Updates(map[string]interface{}{
			"paid_at":       editable.PaidAt,
			"method":        editable.Method,
			"raw_reference": editable.Reference,
			"note":          editable.Note,
		}).Error
		if err != nil {
			return err
		}

		payment, err = ledger.Reallocate(tx, payment.LandlordID, payment.ID, editable.Amount, editable.TenancyID)
		return err
	})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentResponse{
			Error: &s,
		})
		return
	}

	data, err := newPayment(c, models.DB, payment)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentResponse{
			Error: &s,
		})
		return
	}

	c.JSON(http.StatusOK, PaymentResponse{Data: &data})
}
