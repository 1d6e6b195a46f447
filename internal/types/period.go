// Package types implements special types for the NyumbaPay backend.
package types

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Period is a calendar month in a specific year. It identifies one
// billing period of a tenancy.
type Period time.Time

// NewPeriod returns the Period for the given year and month.
func NewPeriod(year int, month time.Month) Period {
	return Period(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
}

// PeriodOf returns the Period in which a time instant occurs.
func PeriodOf(t time.Time) Period {
	year, month, _ := t.Date()
	return Period(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
}

// ParsePeriod parses a "YYYY-MM" string and returns the Period it represents.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, err
	}

	return PeriodOf(t), nil
}

// String returns the period formatted as YYYY-MM.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", time.Time(p).Year(), time.Time(p).Month())
}

// MarshalJSON implements the json.Marshaler interface.
func (p Period) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", p.String())), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
// It accepts "YYYY-MM" as well as RFC3339 full-date strings, from which
// everything except year and month is ignored.
func (p *Period) UnmarshalJSON(data []byte) error {
	value := strings.Trim(string(data), `"`)
	if value == "" || value == "null" {
		return nil
	}

	parsed, err := ParsePeriod(value)
	if err == nil {
		*p = parsed
		return nil
	}

	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return err
	}

	*p = PeriodOf(t)
	return nil
}

// Scan reads the value from the database.
func (p *Period) Scan(value interface{}) (err error) {
	nullTime := &sql.NullTime{}
	err = nullTime.Scan(value)
	*p = PeriodOf(nullTime.Time)
	return err
}

// Value returns the value for the SQL driver to write to the database.
func (p Period) Value() (driver.Value, error) {
	year, month, _ := time.Time(p).Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), nil
}

// GormDataType defines the data type gorm uses for the type.
func (Period) GormDataType() string {
	return "date"
}

// IsZero reports whether the period is the zero value.
func (p Period) IsZero() bool {
	return time.Time(p).IsZero()
}

// AddMonths returns the period a given number of months later.
func (p Period) AddMonths(months int) Period {
	return Period(time.Time(p).AddDate(0, months, 0))
}

// Before reports whether the period p is before q.
func (p Period) Before(q Period) bool {
	return time.Time(p).Before(time.Time(q))
}

// Equal reports whether p and q represent the same period.
func (p Period) Equal(q Period) bool {
	return time.Time(p).Equal(time.Time(q))
}

// Contains reports whether the time instant falls in the period.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == time.Time(p).Year() && t.Month() == time.Time(p).Month()
}

// Day returns the given day of the period as a date. Days beyond the end
// of the month are clamped to its last day, so a rent due day of 31
// resolves to the 28th or 29th in February.
func (p Period) Day(day int) time.Time {
	if day < 1 {
		day = 1
	}

	year, month, _ := time.Time(p).Date()
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		day = last
	}

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
