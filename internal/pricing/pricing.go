// Package pricing owns the money math for carts and orders. All
// arithmetic happens on decimals at full precision; rounding to two
// places is applied only when a value is about to be persisted.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/knowledgeledger/lms-backend/pkg/db/models"
)

var oneHundred = decimal.NewFromInt(100)

// Quote computes the tax fee and gross total for a price at an integer
// percentage tax rate.
type Quote struct {
	Price  decimal.Decimal
	TaxFee decimal.Decimal
	Total  decimal.Decimal
}

// QuoteFor derives tax and total from a price and a percentage rate.
func QuoteFor(price decimal.Decimal, ratePercent int) Quote {
	rate := decimal.NewFromInt(int64(ratePercent)).Div(oneHundred)
	tax := price.Mul(rate)
	return Quote{
		Price:  price,
		TaxFee: tax,
		Total:  price.Add(tax),
	}
}

// Round2 rounds a monetary value to two places for persistence.
func Round2(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}

// DiscountAmount computes the amount removed from a line total by an
// integer percentage coupon.
func DiscountAmount(lineTotal decimal.Decimal, discountPercent int) decimal.Decimal {
	return lineTotal.Mul(decimal.NewFromInt(int64(discountPercent))).Div(oneHundred)
}

// OrderTotals carries the aggregates recomputed from order items.
type OrderTotals struct {
	SubTotal     decimal.Decimal
	TaxFee       decimal.Decimal
	InitialTotal decimal.Decimal
	Saved        decimal.Decimal
	Total        decimal.Decimal
}

// RecomputeOrderTotals derives order aggregates from its items. The
// result satisfies Total = SubTotal + TaxFee - Saved by construction.
func RecomputeOrderTotals(items []models.OrderItem) OrderTotals {
	totals := OrderTotals{
		SubTotal:     decimal.Zero,
		TaxFee:       decimal.Zero,
		InitialTotal: decimal.Zero,
		Saved:        decimal.Zero,
	}
	for _, item := range items {
		totals.SubTotal = totals.SubTotal.Add(item.Price)
		totals.TaxFee = totals.TaxFee.Add(item.TaxFee)
		totals.InitialTotal = totals.InitialTotal.Add(item.InitialTotal)
		totals.Saved = totals.Saved.Add(item.Saved)
	}
	totals.Total = totals.SubTotal.Add(totals.TaxFee).Sub(totals.Saved)
	return totals
}
