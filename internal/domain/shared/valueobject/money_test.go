package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoneyKES(t *testing.T) {
	m := NewMoneyKESFromFloat(1500.50)
	assert.Equal(t, KES, m.Currency())
	assert.True(t, m.Amount().Equal(decimal.NewFromFloat(1500.50)))
}

func TestNewMoneyKESFromString(t *testing.T) {
	t.Run("valid amount", func(t *testing.T) {
		m, err := NewMoneyKESFromString("1000.00")
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(1000)))
	})

	t.Run("invalid amount", func(t *testing.T) {
		_, err := NewMoneyKESFromString("not-a-number")
		assert.Error(t, err)
	})
}

func TestMoney_Add(t *testing.T) {
	a := NewMoneyKESFromFloat(1000)
	b := NewMoneyKESFromFloat(250.75)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Amount().Equal(decimal.NewFromFloat(1250.75)))

	t.Run("currency mismatch", func(t *testing.T) {
		usd := Money{amount: decimal.NewFromInt(10), currency: USD}
		_, err := a.Add(usd)
		assert.Error(t, err)
	})
}

func TestMoney_Subtract(t *testing.T) {
	a := NewMoneyKESFromFloat(1000)
	b := NewMoneyKESFromFloat(1200)

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, diff.IsNegative())
	assert.True(t, diff.Amount().Equal(decimal.NewFromInt(-200)))
}

func TestMoney_Percentage(t *testing.T) {
	// 10% late fee on a 1000.00 balance
	balance := NewMoneyKESFromFloat(1000)
	fee := balance.Percentage(decimal.NewFromInt(10))
	assert.True(t, fee.Amount().Equal(decimal.NewFromInt(100)))

	t.Run("rounds to 2 places", func(t *testing.T) {
		fee := NewMoneyKESFromFloat(333.33).Percentage(decimal.NewFromInt(10))
		assert.Equal(t, "33.33", fee.Amount().StringFixed(2))
	})
}

func TestMoney_Comparisons(t *testing.T) {
	a := NewMoneyKESFromFloat(100)
	b := NewMoneyKESFromFloat(200)

	lt, err := a.LessThan(b)
	require.NoError(t, err)
	assert.True(t, lt)

	gt, err := b.GreaterThan(a)
	require.NoError(t, err)
	assert.True(t, gt)

	assert.True(t, a.Equals(NewMoneyKESFromFloat(100)))
	assert.False(t, a.Equals(b))
}

func TestMoney_ZeroAndSigns(t *testing.T) {
	zero := ZeroKES()
	assert.True(t, zero.IsZero())
	assert.False(t, zero.IsPositive())
	assert.False(t, zero.IsNegative())

	neg := NewMoneyKESFromFloat(50).Negate()
	assert.True(t, neg.IsNegative())
}

func TestMoney_String(t *testing.T) {
	m := NewMoneyKESFromFloat(1500)
	assert.Equal(t, "KES 1500.00", m.String())
}
