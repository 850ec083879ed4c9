package values

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a monetary amount with minor-unit precision. Bid amounts and
// winning amounts are always Money, never raw floats.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// Supported currency codes (ISO 4217)
const (
	USD = "USD"
	EUR = "EUR"
	INR = "INR"
)

var validCurrencies = map[string]bool{
	USD: true, EUR: true, INR: true,
}

// NewMoney creates a Money value object.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	currency = strings.ToUpper(currency)
	if !validCurrencies[currency] {
		return Money{}, fmt.Errorf("unsupported currency: %q", currency)
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewMoneyFromString parses a decimal string amount.
func NewMoneyFromString(amount, currency string) (Money, error) {
	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount: %w", err)
	}
	return NewMoney(dec, currency)
}

// NewMoneyFromCents creates Money from integer minor units.
func NewMoneyFromCents(cents int64, currency string) (Money, error) {
	return NewMoney(decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)), currency)
}

// MustNewMoneyFromFloat creates Money from a float and panics on error.
// For tests and constants only.
func MustNewMoneyFromFloat(amount float64, currency string) Money {
	m, err := NewMoney(decimal.NewFromFloat(amount), currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns a zero Money value in the given currency.
func Zero(currency string) Money {
	m, err := NewMoney(decimal.Zero, currency)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() string        { return m.currency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }
func (m Money) IsPositive() bool        { return m.amount.IsPositive() }

// ToCents converts to integer minor units.
func (m Money) ToCents() int64 {
	return m.amount.Mul(decimal.NewFromInt(100)).IntPart()
}

// ToFloat64 converts to float64 (display only).
func (m Money) ToFloat64() float64 {
	f, _ := m.amount.Float64()
	return f
}

// String renders with the currency code, e.g. "95.00 USD".
func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + m.currency
}

// Equal checks amount and currency equality.
func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount) && m.currency == other.currency
}

// Compare returns -1, 0, or 1. Panics on currency mismatch: comparing
// bids across currencies is a programming error, not a data condition.
func (m Money) Compare(other Money) int {
	if m.currency != other.currency {
		panic(fmt.Sprintf("cannot compare %s with %s", m.currency, other.currency))
	}
	return m.amount.Cmp(other.amount)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	}{m.amount.String(), m.currency})
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var raw struct {
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	money, err := NewMoneyFromString(raw.Amount, raw.Currency)
	if err != nil {
		return err
	}
	*m = money
	return nil
}

// Scan implements sql.Scanner for NUMERIC columns (currency is carried
// separately in its own column).
func (m *Money) Scan(value interface{}) error {
	if value == nil {
		*m = Money{}
		return nil
	}
	switch v := value.(type) {
	case string:
		return m.scanDecimal(v)
	case []byte:
		return m.scanDecimal(string(v))
	case float64:
		m.amount = decimal.NewFromFloat(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}
}

// Value implements driver.Valuer.
func (m Money) Value() (driver.Value, error) {
	return m.amount.String(), nil
}

// WithCurrency returns the same amount tagged with a currency, for use
// after scanning the bare NUMERIC column.
func (m Money) WithCurrency(currency string) Money {
	m.currency = strings.ToUpper(currency)
	return m
}

func (m *Money) scanDecimal(s string) error {
	dec, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid money format: %w", err)
	}
	m.amount = dec
	return nil
}
