package values

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	m, err := NewMoneyFromString("95.00", "USD")
	require.NoError(t, err)
	assert.Equal(t, "USD", m.Currency())
	assert.True(t, m.IsPositive())
	assert.Equal(t, "95.00 USD", m.String())

	m, err = NewMoneyFromString("95.00", "usd")
	require.NoError(t, err)
	assert.Equal(t, "USD", m.Currency(), "currency codes normalize to upper case")

	_, err = NewMoneyFromString("95.00", "GBP")
	assert.Error(t, err)

	_, err = NewMoneyFromString("ninety-five", "USD")
	assert.Error(t, err)
}

func TestMoney_Cents(t *testing.T) {
	m, err := NewMoneyFromCents(9550, USD)
	require.NoError(t, err)
	assert.Equal(t, int64(9550), m.ToCents())
	assert.Equal(t, "95.50 USD", m.String())

	zero := Zero(USD)
	assert.True(t, zero.IsZero())
	assert.False(t, zero.IsPositive())
	assert.Equal(t, int64(0), zero.ToCents())
}

func TestMoney_Compare(t *testing.T) {
	a := MustNewMoneyFromFloat(95.00, USD)
	b := MustNewMoneyFromFloat(90.00, USD)

	assert.Equal(t, 1, a.Compare(b))
	assert.Equal(t, -1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(MustNewMoneyFromFloat(95.00, USD)))

	assert.True(t, a.Equal(MustNewMoneyFromFloat(95.00, USD)))
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(MustNewMoneyFromFloat(95.00, EUR)))

	assert.Panics(t, func() {
		a.Compare(MustNewMoneyFromFloat(95.00, EUR))
	})
}

func TestMoney_JSON(t *testing.T) {
	m := MustNewMoneyFromFloat(95.5, USD)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"95.5","currency":"USD"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equal(decoded))

	assert.Error(t, json.Unmarshal([]byte(`{"amount":"95.5","currency":"GBP"}`), &decoded))
}

func TestMoney_Scan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("95.50"))
	m = m.WithCurrency("usd")
	assert.Equal(t, int64(9550), m.ToCents())
	assert.Equal(t, "USD", m.Currency())

	require.NoError(t, m.Scan([]byte("12.25")))
	assert.Error(t, m.Scan(true))
}
