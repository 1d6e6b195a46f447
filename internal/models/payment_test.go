package models_test

import (
	"time"

	"github.com/google/uuid"
	"github.com/nyumbapay/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestPaymentCreateDefaults() {
	payment := models.Payment{
		LandlordID: uuid.New(),
		Amount:     10000,
		Source:     models.PaymentSourceManual,
		Method:     models.PaymentMethodCash,
		Note:       "  first month  ",
	}
	suite.Require().Nil(models.DB.Create(&payment).Error)

	assert.False(suite.T(), payment.PaidAt.IsZero(), "paidAt must default to the creation time")
	assert.Equal(suite.T(), "first month", payment.Note)
	assert.Nil(suite.T(), payment.ExternalReference)
	assert.False(suite.T(), payment.IsFullyAllocated)
}

func (suite *TestSuiteStandard) TestPaymentAmountNotPositive() {
	payment := models.Payment{
		LandlordID: uuid.New(),
		Source:     models.PaymentSourceManual,
	}
	err := models.DB.Create(&payment).Error
	assert.ErrorIs(suite.T(), err, models.ErrPaymentAmountNotPositive)
}

func (suite *TestSuiteStandard) TestPaymentExternalReferenceUnique() {
	reference := "SBC1234XYZ"

	payment := models.Payment{
		LandlordID:        uuid.New(),
		Amount:            10000,
		Source:            models.PaymentSourceAutomatic,
		Method:            models.PaymentMethodMobileMoney,
		ExternalReference: &reference,
	}
	suite.Require().Nil(models.DB.Create(&payment).Error)

	duplicate := models.Payment{
		LandlordID:        payment.LandlordID,
		Amount:            10000,
		Source:            models.PaymentSourceAutomatic,
		Method:            models.PaymentMethodMobileMoney,
		ExternalReference: &reference,
	}
	err := models.DB.Create(&duplicate).Error
	assert.ErrorIs(suite.T(), err, models.ErrExternalReferenceNotUnique)
}

func (suite *TestSuiteStandard) TestPaymentEmptyReferenceNotUnique() {
	// Manual payments have no gateway reference; multiple of them must
	// not trip the unique index
	for range 2 {
		empty := ""
		payment := models.Payment{
			LandlordID:        uuid.New(),
			Amount:            10000,
			Source:            models.PaymentSourceManual,
			ExternalReference: &empty,
		}
		suite.Require().Nil(models.DB.Create(&payment).Error)
		assert.Nil(suite.T(), payment.ExternalReference)
	}
}

func (suite *TestSuiteStandard) TestPaymentsNeedingAttention() {
	landlord := uuid.New()
	tenancy := suite.createTestTenancy(landlord, 15000)

	unlinked := models.Payment{
		LandlordID: landlord,
		Amount:     7000,
		PaidAt:     time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC),
		Source:     models.PaymentSourceAutomatic,
		Method:     models.PaymentMethodMobileMoney,
	}
	suite.Require().Nil(models.DB.Create(&unlinked).Error)

	linkedOpen := models.Payment{
		LandlordID: landlord,
		TenancyID:  &tenancy.ID,
		Amount:     5000,
		PaidAt:     time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC),
		Source:     models.PaymentSourceManual,
		Method:     models.PaymentMethodCash,
	}
	suite.Require().Nil(models.DB.Create(&linkedOpen).Error)

	settled := models.Payment{
		LandlordID:       landlord,
		TenancyID:        &tenancy.ID,
		Amount:           15000,
		PaidAt:           time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		Source:           models.PaymentSourceManual,
		Method:           models.PaymentMethodBank,
		IsFullyAllocated: true,
	}
	suite.Require().Nil(models.DB.Create(&settled).Error)

	other := models.Payment{
		LandlordID: uuid.New(),
		Amount:     4000,
		Source:     models.PaymentSourceManual,
	}
	suite.Require().Nil(models.DB.Create(&other).Error)

	payments, err := models.PaymentsNeedingAttention(models.DB, landlord)
	assert.Nil(suite.T(), err)
	suite.Require().Len(payments, 2)

	// Newest first
	assert.Equal(suite.T(), linkedOpen.ID, payments[0].ID)
	assert.Equal(suite.T(), unlinked.ID, payments[1].ID)
}

func (suite *TestSuiteStandard) TestPaymentRemainingAmount() {
	landlord := uuid.New()
	tenancy := suite.createTestTenancy(landlord, 15000)

	payment := models.Payment{
		LandlordID: landlord,
		TenancyID:  &tenancy.ID,
		Amount:     10000,
		Source:     models.PaymentSourceManual,
		Method:     models.PaymentMethodCash,
	}
	suite.Require().Nil(models.DB.Create(&payment).Error)

	remaining, err := payment.RemainingAmount(models.DB)
	assert.Nil(suite.T(), err)
	assert.Equal(suite.T(), int64(10000), remaining)
}
