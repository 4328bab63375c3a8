package invoice

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/facturador/internal/validation"
)

var (
	TaxRateExempt  = decimal.Zero
	TaxRateReduced = decimal.RequireFromString("10.5")
	TaxRateGeneral = decimal.NewFromInt(21)

	hundred = decimal.NewFromInt(100)

	// ErrAmountOverflow is returned when an amount does not fit in int64 cents.
	ErrAmountOverflow = validation.New("items", "amount exceeds the supported range")
)

// ValidTaxRate reports whether r is one of the supported VAT rates.
func ValidTaxRate(r decimal.Decimal) bool {
	return r.Equal(TaxRateExempt) || r.Equal(TaxRateReduced) || r.Equal(TaxRateGeneral)
}

func LineSubtotal(qty, unitPrice int64) (int64, error) {
	if qty < 0 || unitPrice < 0 {
		return 0, validation.New("items", "quantity and unit price must not be negative")
	}

	if unitPrice != 0 && qty > math.MaxInt64/unitPrice {
		return 0, ErrAmountOverflow
	}

	return qty * unitPrice, nil
}

// ComputeTotals derives the invoice totals from its items.
//
// Net is exact. Tax is accumulated exactly across all items and rounded once,
// half up, to whole cents, so the result does not depend on item order.
func ComputeTotals(items []LineItem) (Totals, error) {
	var (
		net int64
		tax = decimal.Zero
	)

	for _, it := range items {
		sub, err := LineSubtotal(it.Qty, it.UnitPrice)
		if err != nil {
			return Totals{}, err
		}

		if net > math.MaxInt64-sub {
			return Totals{}, ErrAmountOverflow
		}

		net += sub
		tax = tax.Add(decimal.NewFromInt(sub).Mul(it.TaxRate).Div(hundred))
	}

	rounded := tax.Round(0)
	if rounded.GreaterThan(decimal.NewFromInt(math.MaxInt64 - net)) {
		return Totals{}, ErrAmountOverflow
	}

	taxCents := rounded.IntPart()

	return Totals{
		Net:   net,
		Tax:   taxCents,
		Total: net + taxCents,
	}, nil
}

// priceItems stamps each item with its subtotal and returns the invoice totals.
func priceItems(items []LineItem) ([]LineItem, Totals, error) {
	out := make([]LineItem, len(items))
	for i, it := range items {
		sub, err := LineSubtotal(it.Qty, it.UnitPrice)
		if err != nil {
			return nil, Totals{}, err
		}

		it.Subtotal = sub
		out[i] = it
	}

	totals, err := ComputeTotals(out)
	if err != nil {
		return nil, Totals{}, err
	}

	return out, totals, nil
}
