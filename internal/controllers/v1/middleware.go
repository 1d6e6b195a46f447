package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const contextLandlordID = "landlordID"

// LandlordMiddleware reads the landlord the external auth layer resolved
// for the request from the X-Landlord-ID header. All ledger routes are
// scoped to exactly one landlord; requests without the header are
// rejected.
func LandlordMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.GetHeader("X-Landlord-ID"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, httpError{
				Error: errLandlordHeader.Error(),
			})
			return
		}

		c.Set(contextLandlordID, id)
		c.Next()
	}
}

// landlordID returns the landlord the request is scoped to. It must only
// be called on routes behind LandlordMiddleware.
func landlordID(c *gin.Context) uuid.UUID {
	return c.MustGet(contextLandlordID).(uuid.UUID)
}
