// Package bidding holds the pure money rules of the quote ledger.
package bidding

import (
	"errors"
	"fmt"

	"facility_workorders/internal/domain/entities"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmounts = errors.New("invalid quote amounts")

var hundred = decimal.NewFromInt(100)

// AmountInput is what a subcontractor submits. Pointers mark optional values.
type AmountInput struct {
	LaborCost        decimal.Decimal
	MaterialCost     decimal.Decimal
	AdditionalCosts  decimal.Decimal
	DiscountAmount   decimal.Decimal
	TotalAmount      *decimal.Decimal
	MarkupPercentage decimal.Decimal
	ClientAmount     *decimal.Decimal
	LineItems        []entities.LineItem
}

// Amounts is the normalized economic view of a quote.
type Amounts struct {
	LaborCost        decimal.Decimal
	MaterialCost     decimal.Decimal
	AdditionalCosts  decimal.Decimal
	DiscountAmount   decimal.Decimal
	LineItems        []entities.LineItem
	Subtotal         decimal.Decimal
	TotalAmount      decimal.Decimal
	MarkupPercentage decimal.Decimal
	ClientAmount     decimal.Decimal
}

// ComputeAmounts derives totals to 2 dp.
//
// subtotal = sum(lineItems.amount) when line items exist, else labor + material.
// total    = subtotal + additional - discount.
// client   = explicit clientAmount when supplied, else total * (1 + markup/100).
func ComputeAmounts(in AmountInput) (Amounts, error) {
	for _, f := range []struct {
		name string
		v    decimal.Decimal
	}{
		{"labor cost", in.LaborCost},
		{"material cost", in.MaterialCost},
		{"additional costs", in.AdditionalCosts},
		{"discount amount", in.DiscountAmount},
		{"markup percentage", in.MarkupPercentage},
	} {
		if f.v.IsNegative() {
			return Amounts{}, fmt.Errorf("%w: %s must not be negative", ErrInvalidAmounts, f.name)
		}
	}

	out := Amounts{
		LaborCost:        in.LaborCost.Round(2),
		MaterialCost:     in.MaterialCost.Round(2),
		AdditionalCosts:  in.AdditionalCosts.Round(2),
		DiscountAmount:   in.DiscountAmount.Round(2),
		MarkupPercentage: in.MarkupPercentage,
	}

	if len(in.LineItems) > 0 {
		items := make([]entities.LineItem, len(in.LineItems))
		sum := decimal.Zero
		for i, li := range in.LineItems {
			if li.Quantity.IsNegative() || li.UnitPrice.IsNegative() {
				return Amounts{}, fmt.Errorf("%w: line item %d has negative values", ErrInvalidAmounts, i+1)
			}
			amount := li.Quantity.Mul(li.UnitPrice).Round(2)
			if !li.Amount.IsZero() && !li.Amount.Round(2).Equal(amount) {
				return Amounts{}, fmt.Errorf("%w: line item %d amount %s != %s x %s", ErrInvalidAmounts, i+1, li.Amount, li.Quantity, li.UnitPrice)
			}
			li.Amount = amount
			items[i] = li
			sum = sum.Add(amount)
		}
		out.LineItems = items
		out.Subtotal = sum
	} else {
		out.Subtotal = out.LaborCost.Add(out.MaterialCost)
	}

	out.TotalAmount = out.Subtotal.Add(out.AdditionalCosts).Sub(out.DiscountAmount).Round(2)
	if out.TotalAmount.IsNegative() {
		return Amounts{}, fmt.Errorf("%w: discount exceeds subtotal", ErrInvalidAmounts)
	}
	if in.TotalAmount != nil && !in.TotalAmount.Round(2).Equal(out.TotalAmount) {
		return Amounts{}, fmt.Errorf("%w: total %s does not match computed %s", ErrInvalidAmounts, in.TotalAmount, out.TotalAmount)
	}

	if in.ClientAmount != nil {
		if in.ClientAmount.IsNegative() {
			return Amounts{}, fmt.Errorf("%w: client amount must not be negative", ErrInvalidAmounts)
		}
		out.ClientAmount = in.ClientAmount.Round(2)
	} else {
		out.ClientAmount = ClientAmount(out.TotalAmount, out.MarkupPercentage)
	}
	return out, nil
}

// ClientAmount applies a percentage markup and rounds to 2 dp.
func ClientAmount(total, markupPercentage decimal.Decimal) decimal.Decimal {
	return total.Mul(decimal.NewFromInt(1).Add(markupPercentage.Div(hundred))).Round(2)
}

// Apply copies computed amounts onto a quote.
func (a Amounts) Apply(q *entities.Quote) {
	q.LaborCost = a.LaborCost
	q.MaterialCost = a.MaterialCost
	q.AdditionalCosts = a.AdditionalCosts
	q.DiscountAmount = a.DiscountAmount
	q.LineItems = a.LineItems
	q.TotalAmount = a.TotalAmount
	q.MarkupPercentage = a.MarkupPercentage
	q.ClientAmount = a.ClientAmount
}
