package v1

import (
	"errors"
	"net/http"

	"github.com/nyumbapay/backend/internal/models"
)

type httpError struct {
	Error string `json:"error" example:"the specified resource ID is not a valid UUID"`
}

// status returns the appropriate status for a database error
func status(err error) int {
	if errors.Is(err, models.ErrGeneral) {
		return http.StatusInternalServerError
	}

	if errors.Is(err, models.ErrResourceNotFound) {
		return http.StatusNotFound
	}

	return http.StatusBadRequest
}

var (
	errLandlordHeader     = errors.New("the X-Landlord-ID header must be set to a valid UUID")
	errLandlordIDNotSet   = errors.New("the landlord_id query parameter must be set to a valid UUID")
	errPaymentIDParameter = errors.New("the payment query parameter must be set to a valid UUID")
)
