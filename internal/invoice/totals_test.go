package invoice_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/facturador/internal/invoice"
	"github.com/MrJamesThe3rd/facturador/internal/validation"
)

func item(qty, unitPrice int64, rate decimal.Decimal) invoice.LineItem {
	return invoice.LineItem{ProductID: uuid.New(), Qty: qty, UnitPrice: unitPrice, TaxRate: rate}
}

func TestComputeTotals(t *testing.T) {
	type testCase struct {
		name  string
		items []invoice.LineItem
		want  invoice.Totals
	}

	tests := []testCase{
		{
			name: "Empty",
			want: invoice.Totals{},
		},
		{
			name:  "SingleGeneralRate",
			items: []invoice.LineItem{item(2, 10000, invoice.TaxRateGeneral)},
			want:  invoice.Totals{Net: 20000, Tax: 4200, Total: 24200},
		},
		{
			name:  "ReducedRateRoundsHalfUp",
			items: []invoice.LineItem{item(1, 100, invoice.TaxRateReduced)},
			want:  invoice.Totals{Net: 100, Tax: 11, Total: 111},
		},
		{
			name:  "RoundsDown",
			items: []invoice.LineItem{item(1, 10, invoice.TaxRateGeneral)},
			want:  invoice.Totals{Net: 10, Tax: 2, Total: 12},
		},
		{
			name: "RoundsOnceOverAllItems",
			items: []invoice.LineItem{
				item(1, 100, invoice.TaxRateReduced),
				item(1, 100, invoice.TaxRateReduced),
			},
			want: invoice.Totals{Net: 200, Tax: 21, Total: 221},
		},
		{
			name: "MixedRates",
			items: []invoice.LineItem{
				item(3, 1999, invoice.TaxRateGeneral),
				item(1, 5000, invoice.TaxRateExempt),
				item(4, 250, invoice.TaxRateReduced),
			},
			// tax = 5997*0.21 + 0 + 1000*0.105 = 1259.37 + 105 = 1364.37
			want: invoice.Totals{Net: 11997, Tax: 1364, Total: 13361},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := invoice.ComputeTotals(tt.items)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeTotals_OrderInvariant(t *testing.T) {
	rates := []decimal.Decimal{invoice.TaxRateExempt, invoice.TaxRateReduced, invoice.TaxRateGeneral}
	rng := rand.New(rand.NewPCG(1, 2))

	for range 200 {
		items := make([]invoice.LineItem, 1+rng.IntN(8))
		for i := range items {
			items[i] = item(1+rng.Int64N(20), rng.Int64N(100000), rates[rng.IntN(len(rates))])
		}

		want, err := invoice.ComputeTotals(items)
		require.NoError(t, err)
		assert.Equal(t, want.Net+want.Tax, want.Total)

		shuffled := append([]invoice.LineItem(nil), items...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got, err := invoice.ComputeTotals(shuffled)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestComputeTotals_Overflow(t *testing.T) {
	type testCase struct {
		name  string
		items []invoice.LineItem
	}

	tests := []testCase{
		{
			name:  "LineSubtotal",
			items: []invoice.LineItem{item(100000, 100_000_000_000_000, invoice.TaxRateGeneral)},
		},
		{
			name: "NetSum",
			items: []invoice.LineItem{
				item(1, math.MaxInt64, invoice.TaxRateExempt),
				item(1, 1, invoice.TaxRateExempt),
			},
		},
		{
			name:  "TaxOnTopOfNet",
			items: []invoice.LineItem{item(1, math.MaxInt64-10, invoice.TaxRateGeneral)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := invoice.ComputeTotals(tt.items)
			require.ErrorIs(t, err, invoice.ErrAmountOverflow)
			assert.ErrorIs(t, err, validation.ErrInvalid)
		})
	}
}

func TestComputeTotals_LargestExact(t *testing.T) {
	got, err := invoice.ComputeTotals([]invoice.LineItem{item(1, math.MaxInt64, invoice.TaxRateExempt)})
	require.NoError(t, err)
	assert.Equal(t, invoice.Totals{Net: math.MaxInt64, Total: math.MaxInt64}, got)
}

func TestValidTaxRate(t *testing.T) {
	assert.True(t, invoice.ValidTaxRate(decimal.Zero))
	assert.True(t, invoice.ValidTaxRate(decimal.RequireFromString("10.50")))
	assert.True(t, invoice.ValidTaxRate(decimal.NewFromInt(21)))
	assert.False(t, invoice.ValidTaxRate(decimal.NewFromInt(27)))
}

func TestStatus_CanTransition(t *testing.T) {
	all := []invoice.Status{invoice.StatusDraft, invoice.StatusIssued, invoice.StatusCancelled}

	allowed := map[[2]invoice.Status]bool{
		{invoice.StatusDraft, invoice.StatusIssued}:     true,
		{invoice.StatusIssued, invoice.StatusCancelled}: true,
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]invoice.Status{from, to}], from.CanTransition(to), "%s -> %s", from, to)
		}
	}
}
