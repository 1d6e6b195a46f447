package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nyumbapay/backend/internal/httputil"
	"github.com/nyumbapay/backend/internal/models"
	"github.com/nyumbapay/backend/internal/mpesa"
	"github.com/rs/zerolog/log"
)

// WebhookResponse is the acknowledgement format the M-Pesa gateway
// expects. A non-zero ResultCode makes the gateway retry, so processing
// problems on our side are acknowledged anyway and resolved from the
// unmatched payments workbench.
type WebhookResponse struct {
	ResultCode int    `json:"ResultCode" example:"0"`
	ResultDesc string `json:"ResultDesc" example:"Accepted"`
}

// RegisterWebhookRoutes registers the payment gateway webhook routes
// with the RouterGroup that is passed. These routes sit outside the
// authenticated API; the landlord is identified by the landlord_id query
// parameter registered with the gateway.
func RegisterWebhookRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/mpesa", OptionsMpesaWebhook)
	r.POST("/mpesa", PostMpesaWebhook)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Webhooks
// @Success		204
// @Router			/webhooks/mpesa [options]
func OptionsMpesaWebhook(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		M-Pesa confirmation
// @Description	Receives a C2B payment confirmation, records it and matches it to a tenancy. Always acknowledges with ResultCode 0; only a missing landlord_id or an unreadable body is a client error.
// @Tags			Webhooks
// @Accept			json
// @Produce		json
// @Success		200			{object}	WebhookResponse
// @Failure		400			{object}	httpError
// @Param			landlord_id	query		string				true	"The landlord the paybill account belongs to"
// @Param			notification	body		mpesa.Notification	true	"C2B confirmation payload"
// @Router			/webhooks/mpesa [post]
func PostMpesaWebhook(c *gin.Context) {
	landlord, err := uuid.Parse(c.Query("landlord_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{
			Error: errLandlordIDNotSet.Error(),
		})
		return
	}

	var notification mpesa.Notification
	err = httputil.BindData(c, &notification)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{
			Error: err.Error(),
		})
		return
	}

	_, err = mpesa.Process(models.DB, landlord, notification)
	if err != nil {
		log.Error().Err(err).
			Str("transaction", notification.TransID).
			Msg("mpesa notification not processed")
	}

	c.JSON(http.StatusOK, WebhookResponse{
		ResultCode: 0,
		ResultDesc: "Accepted",
	})
}
