package models_test

import (
	"github.com/google/uuid"
	"github.com/nyumbapay/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestTenancyDefaults() {
	tenancy := suite.createTestTenancy(uuid.New(), 15000)

	assert.Equal(suite.T(), 1, tenancy.RentDueDay)
	assert.Equal(suite.T(), models.TenancyStatusActive, tenancy.Status)
	assert.True(suite.T(), tenancy.Collecting())
}

func (suite *TestSuiteStandard) TestTenancyRentNotPositive() {
	tenancy := models.Tenancy{
		LandlordID: uuid.New(),
	}
	err := models.DB.Create(&tenancy).Error
	assert.ErrorIs(suite.T(), err, models.ErrTenancyRentNotPositive)
}

func (suite *TestSuiteStandard) TestTenancyCollecting() {
	assert.True(suite.T(), models.Tenancy{Status: models.TenancyStatusActive}.Collecting())
	assert.True(suite.T(), models.Tenancy{Status: models.TenancyStatusNotice}.Collecting())
	assert.False(suite.T(), models.Tenancy{Status: models.TenancyStatusEnded}.Collecting())
}

func (suite *TestSuiteStandard) TestUnitCodeUnique() {
	landlord := uuid.New()

	property := models.Property{LandlordID: landlord, Name: "Greenview Court"}
	suite.Require().Nil(models.DB.Create(&property).Error)

	unit := models.Unit{LandlordID: landlord, PropertyID: property.ID, UnitCode: "A1"}
	suite.Require().Nil(models.DB.Create(&unit).Error)

	duplicate := models.Unit{LandlordID: landlord, PropertyID: property.ID, UnitCode: "A1"}
	err := models.DB.Create(&duplicate).Error
	assert.ErrorIs(suite.T(), err, models.ErrUnitCodeNotUnique)

	// The same code is fine for another landlord
	otherProperty := models.Property{LandlordID: uuid.New(), Name: "Sunrise Villas"}
	suite.Require().Nil(models.DB.Create(&otherProperty).Error)

	otherUnit := models.Unit{LandlordID: otherProperty.LandlordID, PropertyID: otherProperty.ID, UnitCode: "A1"}
	assert.Nil(suite.T(), models.DB.Create(&otherUnit).Error)
}
