package ledger

import (
	"github.com/google/uuid"
	"github.com/nyumbapay/backend/internal/models"
	"github.com/nyumbapay/backend/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GenerateCharges creates the rent charges of a billing period for every
// tenancy of the landlord that is still collecting rent. Generation is
// idempotent: a tenancy that already has a charge for the period is left
// untouched, so the operation can be retried and re-run safely. Only the
// charges actually created in this run are returned.
func GenerateCharges(db *gorm.DB, landlordID uuid.UUID, period types.Period) ([]models.RentCharge, error) {
	var tenancies []models.Tenancy
	err := db.
		Where("landlord_id = ? AND status IN ?", landlordID,
			[]models.TenancyStatus{models.TenancyStatusActive, models.TenancyStatusNotice}).
		Find(&tenancies).Error
	if err != nil {
		return nil, err
	}

	created := make([]models.RentCharge, 0)
	for _, tenancy := range tenancies {
		if !tenancyBillable(tenancy, period) {
			continue
		}

		charge := models.RentCharge{
			LandlordID: landlordID,
			TenancyID:  tenancy.ID,
			Period:     period,
			DueDate:    period.Day(tenancy.RentDueDay),
			Amount:     tenancy.MonthlyRentAmount,
		}

		res := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenancy_id"}, {Name: "period"}},
			DoNothing: true,
		}).Create(&charge)
		if res.Error != nil {
			return created, res.Error
		}

		if res.RowsAffected > 0 {
			created = append(created, charge)
		}
	}

	return created, nil
}

// tenancyBillable reports whether the tenancy owes rent for the period.
// Months before the tenancy started or after its recorded end date are
// not billed.
func tenancyBillable(tenancy models.Tenancy, period types.Period) bool {
	if !tenancy.StartDate.IsZero() && period.Before(types.PeriodOf(tenancy.StartDate)) {
		return false
	}

	if tenancy.EndDate != nil && types.PeriodOf(*tenancy.EndDate).Before(period) {
		return false
	}

	return true
}
