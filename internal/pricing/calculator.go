// Package pricing computes line item and document totals. All arithmetic is
// carried at full decimal precision; each per-line value is rounded to two
// places before the aggregates are summed, so the displayed line totals always
// reconcile with the displayed document total.
package pricing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	apperrors "github.com/tradeforge/tradedocs-backend/pkg/errors"
	"github.com/tradeforge/tradedocs-backend/pkg/money"
)

// LineInput is one line item as submitted by the caller.
type LineInput struct {
	ProductID       uuid.UUID
	Quantity        int
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	TaxRate         decimal.Decimal
}

// LineResult carries the rounded per-line amounts.
type LineResult struct {
	ProductID       uuid.UUID
	Quantity        int
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	TaxRate         decimal.Decimal

	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	AfterDiscount decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
}

// Summary aggregates the rounded line amounts for a whole document.
type Summary struct {
	Lines          []LineResult
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
}

// ValidateLine rejects inputs the calculator must never compute on.
func ValidateLine(index int, in LineInput) error {
	if in.ProductID == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, fmt.Sprintf("line %d: product id is required", index))
	}
	if in.Quantity <= 0 {
		return apperrors.New(apperrors.CodeValidation, fmt.Sprintf("line %d: quantity must be positive", index))
	}
	if in.UnitPrice.IsNegative() {
		return apperrors.New(apperrors.CodeValidation, fmt.Sprintf("line %d: unit price must not be negative", index))
	}
	if !money.IsPercentage(in.DiscountPercent) {
		return apperrors.New(apperrors.CodeValidation, fmt.Sprintf("line %d: discount percent must be within [0,100]", index))
	}
	if !money.IsPercentage(in.TaxRate) {
		return apperrors.New(apperrors.CodeValidation, fmt.Sprintf("line %d: tax rate must be within [0,100]", index))
	}
	return nil
}

// ComputeLine computes one line at full precision and rounds the results.
// The rounded total is reassembled from the rounded components so that
// Total == Subtotal - Discount + Tax holds exactly.
func ComputeLine(in LineInput) LineResult {
	qty := decimal.NewFromInt(int64(in.Quantity))
	rawSubtotal := in.UnitPrice.Mul(qty)
	rawDiscount := money.Percent(rawSubtotal, in.DiscountPercent)
	rawAfter := rawSubtotal.Sub(rawDiscount)
	rawTax := money.Percent(rawAfter, in.TaxRate)

	subtotal := money.Round(rawSubtotal)
	discount := money.Round(rawDiscount)
	after := subtotal.Sub(discount)
	tax := money.Round(rawTax)

	return LineResult{
		ProductID:       in.ProductID,
		Quantity:        in.Quantity,
		UnitPrice:       in.UnitPrice,
		DiscountPercent: in.DiscountPercent,
		TaxRate:         in.TaxRate,
		Subtotal:        subtotal,
		Discount:        discount,
		AfterDiscount:   after,
		Tax:             tax,
		Total:           after.Add(tax),
	}
}

// ComputeSummary validates every line, computes each one, and sums the
// rounded per-line values into the document aggregates.
func ComputeSummary(items []LineInput) (*Summary, error) {
	if len(items) == 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "at least one line item is required")
	}

	summary := &Summary{
		Lines:          make([]LineResult, 0, len(items)),
		Subtotal:       money.Zero(),
		DiscountAmount: money.Zero(),
		TaxAmount:      money.Zero(),
	}
	for i, item := range items {
		if err := ValidateLine(i, item); err != nil {
			return nil, err
		}
		line := ComputeLine(item)
		summary.Lines = append(summary.Lines, line)
		summary.Subtotal = summary.Subtotal.Add(line.Subtotal)
		summary.DiscountAmount = summary.DiscountAmount.Add(line.Discount)
		summary.TaxAmount = summary.TaxAmount.Add(line.Tax)
	}
	summary.TotalAmount = summary.Subtotal.Sub(summary.DiscountAmount).Add(summary.TaxAmount)
	return summary, nil
}
