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

func (suite *TestSuiteStandard) TestPaymentsRequireLandlordHeader() {
	recorder := test.Request(suite.T(), http.MethodGet, "/v1/payments", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestCreatePaymentUnlinked() {
	landlord := uuid.New()

	recorder := test.Request(suite.T(), http.MethodPost, "/v1/payments",
		v1.PaymentEditable{Amount: 5000, Method: models.PaymentMethodCash},
		landlordHeader(landlord))
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	var response v1.PaymentResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	suite.Require().NotNil(response.Data)
	assert.Equal(suite.T(), int64(5000), response.Data.Amount)
	assert.Equal(suite.T(), models.PaymentSourceManual, response.Data.Source)
	assert.Nil(suite.T(), response.Data.TenancyID)
	assert.Equal(suite.T(), int64(5000), response.Data.RemainingAmount)
}

func (suite *TestSuiteStandard) TestCreatePaymentAutoAllocates() {
	landlord := uuid.New()
	tenancy := suite.createTestTenancy(landlord, 15000)
	charge := suite.createTestRentCharge(tenancy, types.NewPeriod(2025, 3), 15000)

	recorder := test.Request(suite.T(), http.MethodPost, "/v1/payments",
		v1.PaymentEditable{Amount: 15000, Method: models.PaymentMethodBank, TenancyID: &tenancy.ID},
		landlordHeader(landlord))
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	var response v1.PaymentResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	suite.Require().NotNil(response.Data)
	assert.True(suite.T(), response.Data.IsFullyAllocated)
	assert.Equal(suite.T(), int64(15000), response.Data.AllocatedAmount)
	assert.Equal(suite.T(), int64(0), response.Data.RemainingAmount)

	var reloaded models.RentCharge
	suite.Require().Nil(models.DB.First(&reloaded, "id = ?", charge.ID).Error)
	assert.Equal(suite.T(), models.ChargeStatusPaid, reloaded.Status)
}

func (suite *TestSuiteStandard) TestCreatePaymentInvalidAmount() {
	recorder := test.Request(suite.T(), http.MethodPost, "/v1/payments",
		v1.PaymentEditable{Amount: 0}, landlordHeader(uuid.New()))
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestCreatePaymentEmptyBody() {
	recorder := test.Request(suite.T(), http.MethodPost, "/v1/payments", "", landlordHeader(uuid.New()))
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestGetPaymentsAttentionFilter() {
	landlord := uuid.New()
	tenancy := suite.createTestTenancy(landlord, 15000)
	_ = suite.createTestRentCharge(tenancy, types.NewPeriod(2025, 3), 15000)

	// Fully allocated and linked: not in the workbench
	settled := test.Request(suite.T(), http.MethodPost, "/v1/payments",
		v1.PaymentEditable{Amount: 15000, TenancyID: &tenancy.ID}, landlordHeader(landlord))
	test.AssertHTTPStatus(suite.T(), &settled, http.StatusCreated)

	// Unlinked: needs attention
	open := test.Request(suite.T(), http.MethodPost, "/v1/payments",
		v1.PaymentEditable{Amount: 4000}, landlordHeader(landlord))
	test.AssertHTTPStatus(suite.T(), &open, http.StatusCreated)

	recorder := test.Request(suite.T(), http.MethodGet, "/v1/payments?attention=true", "", landlordHeader(landlord))
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.PaymentListResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Require().Len(response.Data, 1)
	assert.Equal(suite.T(), int64(4000), response.Data[0].Amount)

	all := test.Request(suite.T(), http.MethodGet, "/v1/payments", "", landlordHeader(landlord))
	test.AssertHTTPStatus(suite.T(), &all, http.StatusOK)

	var allResponse v1.PaymentListResponse
	test.DecodeResponse(suite.T(), &all, &allResponse)
	assert.Len(suite.T(), allResponse.Data, 2)
}

func (suite *TestSuiteStandard) TestGetPaymentsLandlordScoped() {
	landlord := uuid.New()

	created := test.Request(suite.T(), http.MethodPost, "/v1/payments",
		v1.PaymentEditable{Amount: 5000}, landlordHeader(landlord))
	test.AssertHTTPStatus(suite.T(), &created, http.StatusCreated)

	recorder := test.Request(suite.T(), http.MethodGet, "/v1/payments", "", landlordHeader(uuid.New()))
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.PaymentListResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	assert.Len(suite.T(), response.Data, 0)
}

func (suite *TestSuiteStandard) TestGetPaymentNotFound() {
	recorder := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("/v1/payments/%s", uuid.New()), "", landlordHeader(uuid.New()))
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestGetPaymentInvalidUUID() {
	recorder := test.Request(suite.T(), http.MethodGet, "/v1/payments/not-a-uuid", "", landlordHeader(uuid.New()))
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestUpdatePaymentReallocates() {
	landlord := uuid.New()
	tenancy := suite.createTestTenancy(landlord, 15000)
	other := suite.createTestTenancy(landlord, 12000)
	wrongCharge := suite.createTestRentCharge(tenancy, types.NewPeriod(2025, 3), 15000)
	rightCharge := suite.createTestRentCharge(other, types.NewPeriod(2025, 3), 12000)

	created := test.Request(suite.T(), http.MethodPost, "/v1/payments",
		v1.PaymentEditable{Amount: 12000, TenancyID: &tenancy.ID}, landlordHeader(landlord))
	test.AssertHTTPStatus(suite.T(), &created, http.StatusCreated)

	var createdResponse v1.PaymentResponse
	test.DecodeResponse(suite.T(), &created, &createdResponse)

	// Move the payment to the tenancy it was meant for
	recorder := test.Request(suite.T(), http.MethodPatch,
		fmt.Sprintf("/v1/payments/%s", createdResponse.Data.ID),
		map[string]any{"tenancyId": other.ID}, landlordHeader(landlord))
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.PaymentResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Require().NotNil(response.Data)
	assert.True(suite.T(), response.Data.IsFullyAllocated)

	var reloaded models.RentCharge
	suite.Require().Nil(models.DB.First(&reloaded, "id = ?", wrongCharge.ID).Error)
	assert.Equal(suite.T(), models.ChargeStatusUnpaid, reloaded.Status)

	reloaded = models.RentCharge{}
	suite.Require().Nil(models.DB.First(&reloaded, "id = ?", rightCharge.ID).Error)
	assert.Equal(suite.T(), models.ChargeStatusPaid, reloaded.Status)
}

func (suite *TestSuiteStandard) TestUpdatePaymentAutomaticRejected() {
	landlord := uuid.New()

	reference := "SBC1234XYZ"
	payment := models.Payment{
		LandlordID:        landlord,
		Amount:            5000,
		Source:            models.PaymentSourceAutomatic,
		Method:            models.PaymentMethodMobileMoney,
		ExternalReference: &reference,
	}
	suite.Require().Nil(models.DB.Create(&payment).Error)

	recorder := test.Request(suite.T(), http.MethodPatch,
		fmt.Sprintf("/v1/payments/%s", payment.ID),
		map[string]any{"amount": 4000}, landlordHeader(landlord))
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestOptionsPayments() {
	recorder := test.Request(suite.T(), http.MethodOptions, "/v1/payments", "", landlordHeader(uuid.New()))
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNoContent)
	assert.Equal(suite.T(), "OPTIONS, GET, POST", recorder.Header().Get("allow"))
}
