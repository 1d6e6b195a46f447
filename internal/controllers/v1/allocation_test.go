package v1_test

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	v1 "github.com/nyumbapay/backend/internal/controllers/v1"
	"github.com/nyumbapay/backend/internal/models"
	"github.com/nyumbapay/backend/internal/types"
	"github.com/nyumbapay/backend/test"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestCreateAllocation() {
	landlord := uuid.New()
	tenancy := suite.createTestTenancy(landlord, 15000)
	january := suite.createTestRentCharge(tenancy, types.NewPeriod(2025, 1), 15000)
	february := suite.createTestRentCharge(tenancy, types.NewPeriod(2025, 2), 15000)

	payment := models.Payment{
		LandlordID: landlord,
		Amount:     15000,
		Source:     models.PaymentSourceManual,
		Method:     models.PaymentMethodCash,
	}
	suite.Require().Nil(models.DB.Create(&payment).Error)

	recorder := test.Request(suite.T(), http.MethodPost, "/v1/allocations",
		v1.AllocationEditable{
			PaymentID:    payment.ID,
			TenancyID:    tenancy.ID,
			RentChargeID: february.ID,
			Amount:       15000,
		}, landlordHeader(landlord))
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	var response v1.AllocationResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Require().NotNil(response.Data)
	assert.Equal(suite.T(), int64(15000), response.Data.AllocatedAmount)

	var reloaded models.RentCharge
	suite.Require().Nil(models.DB.First(&reloaded, "id = ?", february.ID).Error)
	assert.Equal(suite.T(), models.ChargeStatusPaid, reloaded.Status)

	reloaded = models.RentCharge{}
	suite.Require().Nil(models.DB.First(&reloaded, "id = ?", january.ID).Error)
	assert.Equal(suite.T(), models.ChargeStatusUnpaid, reloaded.Status)
}

func (suite *TestSuiteStandard) TestCreateAllocationExceedsBalance() {
	landlord := uuid.New()
	tenancy := suite.createTestTenancy(landlord, 15000)
	charge := suite.createTestRentCharge(tenancy, types.NewPeriod(2025, 3), 15000)

	payment := models.Payment{
		LandlordID: landlord,
		Amount:     5000,
		Source:     models.PaymentSourceManual,
		Method:     models.PaymentMethodCash,
	}
	suite.Require().Nil(models.DB.Create(&payment).Error)

	recorder := test.Request(suite.T(), http.MethodPost, "/v1/allocations",
		v1.AllocationEditable{
			PaymentID:    payment.ID,
			TenancyID:    tenancy.ID,
			RentChargeID: charge.ID,
			Amount:       6000,
		}, landlordHeader(landlord))
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestCreateAllocationUnknownPayment() {
	landlord := uuid.New()
	tenancy := suite.createTestTenancy(landlord, 15000)
	charge := suite.createTestRentCharge(tenancy, types.NewPeriod(2025, 3), 15000)

	recorder := test.Request(suite.T(), http.MethodPost, "/v1/allocations",
		v1.AllocationEditable{
			PaymentID:    uuid.New(),
			TenancyID:    tenancy.ID,
			RentChargeID: charge.ID,
			Amount:       5000,
		}, landlordHeader(landlord))
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestGetAllocationsByPayment() {
	landlord := uuid.New()
	tenancy := suite.createTestTenancy(landlord, 15000)
	_ = suite.createTestRentCharge(tenancy, types.NewPeriod(2025, 1), 15000)
	_ = suite.createTestRentCharge(tenancy, types.NewPeriod(2025, 2), 15000)

	created := test.Request(suite.T(), http.MethodPost, "/v1/payments",
		v1.PaymentEditable{Amount: 30000, TenancyID: &tenancy.ID}, landlordHeader(landlord))
	test.AssertHTTPStatus(suite.T(), &created, http.StatusCreated)

	var payment v1.PaymentResponse
	test.DecodeResponse(suite.T(), &created, &payment)

	recorder := test.Request(suite.T(), http.MethodGet,
		fmt.Sprintf("/v1/allocations?payment=%s", payment.Data.ID), "", landlordHeader(landlord))
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.AllocationListResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	assert.Len(suite.T(), response.Data, 2)
}

func (suite *TestSuiteStandard) TestOptionsAllocations() {
	recorder := test.Request(suite.T(), http.MethodOptions, "/v1/allocations", "", landlordHeader(uuid.New()))
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNoContent)
	assert.Equal(suite.T(), "OPTIONS, GET, POST", recorder.Header().Get("allow"))
}
