// Package mpesa ingests M-Pesa C2B confirmation notifications and
// matches them to tenancies.
package mpesa

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nyumbapay/backend/internal/ledger"
	"github.com/nyumbapay/backend/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// transTimeLayout is the timestamp format the gateway uses, local
// Nairobi time without a zone designator.
const transTimeLayout = "20060102150405"

var nairobi = time.FixedZone("EAT", 3*60*60)

var (
	ErrMissingReference = errors.New("the notification carries no transaction id")
	ErrInvalidAmount    = errors.New("the notification amount is not a positive number")
)

// Notification is the confirmation payload the M-Pesa gateway posts for
// an inbound customer payment. All fields arrive as strings.
type Notification struct {
	TransactionType   string `json:"TransactionType"`
	TransID           string `json:"TransID"`
	TransTime         string `json:"TransTime"`
	TransAmount       string `json:"TransAmount"`
	BusinessShortCode string `json:"BusinessShortCode"`
	BillRefNumber     string `json:"BillRefNumber"`
	InvoiceNumber     string `json:"InvoiceNumber"`
	OrgAccountBalance string `json:"OrgAccountBalance"`
	ThirdPartyTransID string `json:"ThirdPartyTransID"`
	MSISDN            string `json:"MSISDN"`
	FirstName         string `json:"FirstName"`
	MiddleName        string `json:"MiddleName"`
	LastName          string `json:"LastName"`
}

// Amount parses the transaction amount into whole KES. The gateway
// formats amounts as decimal strings, fractional cents are rounded to
// the nearest shilling.
func (n Notification) Amount() (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(n.TransAmount))
	if err != nil {
		return 0, ErrInvalidAmount
	}

	amount := d.Round(0).IntPart()
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	return amount, nil
}

// PaidAt parses the transaction timestamp. A missing or malformed
// timestamp falls back to the time of processing.
func (n Notification) PaidAt() time.Time {
	t, err := time.ParseInLocation(transTimeLayout, strings.TrimSpace(n.TransTime), nairobi)
	if err != nil {
		return time.Now().In(time.UTC)
	}

	return t.In(time.UTC)
}

// Process records the notification as a payment for the landlord,
// attempts to match it to a tenancy and, on a match, auto-allocates it.
//
// Processing is idempotent on the gateway transaction id: a notification
// that was already recorded returns the stored payment unchanged. A
// notification that cannot be matched unambiguously is stored unlinked
// so the landlord can resolve it manually; matching never guesses.
func Process(db *gorm.DB, landlordID uuid.UUID, n Notification) (models.Payment, error) {
	reference := strings.TrimSpace(n.TransID)
	if reference == "" {
		return models.Payment{}, ErrMissingReference
	}

	amount, err := n.Amount()
	if err != nil {
		return models.Payment{}, err
	}

	var existing models.Payment
	err = db.First(&existing, "external_reference = ?", reference).Error
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, models.ErrResourceNotFound) {
		return models.Payment{}, err
	}

	tenancyID, err := Match(db, landlordID, n)
	if err != nil {
		return models.Payment{}, err
	}

	payment := models.Payment{
		LandlordID:        landlordID,
		TenancyID:         tenancyID,
		Amount:            amount,
		PaidAt:            n.PaidAt(),
		Source:            models.PaymentSourceAutomatic,
		Method:            models.PaymentMethodMobileMoney,
		ExternalReference: &reference,
		RawReference:      strings.TrimSpace(n.BillRefNumber),
		PhoneNumber:       strings.TrimSpace(n.MSISDN),
	}

	err = db.Create(&payment).Error
	if errors.Is(err, models.ErrExternalReferenceNotUnique) {
		// A concurrent delivery of the same notification won the race.
		err = db.First(&existing, "external_reference = ?", reference).Error
		return existing, err
	}
	if err != nil {
		return models.Payment{}, err
	}

	if payment.TenancyID != nil {
		_, err = ledger.Allocate(db, landlordID, payment.ID)
		if err != nil {
			// The payment is recorded; allocation can be redone manually.
			log.Error().Err(err).Str("payment", payment.ID.String()).Msg("auto-allocation failed")
		}
	}

	err = db.First(&payment, "id = ?", payment.ID).Error
	return payment, err
}

// Match resolves the notification to a tenancy of the landlord. The
// account reference is tried first as a unit code, then the paying phone
// number is tried against the tenants on file. Both lookups demand
// exactly one collecting tenancy; anything ambiguous returns no match.
func Match(db *gorm.DB, landlordID uuid.UUID, n Notification) (*uuid.UUID, error) {
	collecting := []models.TenancyStatus{models.TenancyStatusActive, models.TenancyStatusNotice}

	reference := strings.TrimSpace(n.BillRefNumber)
	if reference != "" {
		var units []models.Unit
		err := db.
			Where("landlord_id = ? AND LOWER(unit_code) = LOWER(?)", landlordID, reference).
			Find(&units).Error
		if err != nil {
			return nil, err
		}

		if len(units) == 1 {
			var tenancies []models.Tenancy
			err = db.
				Where("landlord_id = ? AND unit_id = ? AND status IN ?", landlordID, units[0].ID, collecting).
				Find(&tenancies).Error
			if err != nil {
				return nil, err
			}

			if len(tenancies) == 1 {
				return &tenancies[0].ID, nil
			}
		}
	}

	phone := NormalizePhone(n.MSISDN)
	if phone == "" {
		return nil, nil
	}

	var tenants []models.Tenant
	err := db.Where("landlord_id = ?", landlordID).Find(&tenants).Error
	if err != nil {
		return nil, err
	}

	var match *uuid.UUID
	for _, tenant := range tenants {
		if !tenantHasPhone(tenant, phone) {
			continue
		}

		var tenancies []models.Tenancy
		err = db.
			Where("landlord_id = ? AND tenant_id = ? AND status IN ?", landlordID, tenant.ID, collecting).
			Find(&tenancies).Error
		if err != nil {
			return nil, err
		}

		for i := range tenancies {
			if match != nil {
				// More than one candidate, the landlord has to decide.
				return nil, nil
			}
			match = &tenancies[i].ID
		}
	}

	return match, nil
}

// tenantHasPhone compares the tenant's contact numbers to an already
// normalized number, normalizing the stored side on the fly since
// tenants enter numbers in whatever format they like.
func tenantHasPhone(t models.Tenant, normalized string) bool {
	for _, p := range t.PhoneNumbers {
		if NormalizePhone(p.Number) == normalized {
			return true
		}
	}

	return false
}

// NormalizePhone reduces a phone number to the local Kenyan form used
// for comparison: digits only, with the 254 country prefix rewritten to
// a leading zero.
func NormalizePhone(number string) string {
	var digits strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	s := digits.String()
	if strings.HasPrefix(s, "254") && len(s) > 3 {
		s = "0" + s[3:]
	}

	return s
}
