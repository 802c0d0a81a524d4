package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	apperrors "github.com/tradeforge/tradedocs-backend/pkg/errors"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeLineWorkedExample(t *testing.T) {
	line := ComputeLine(LineInput{
		ProductID:       uuid.New(),
		Quantity:        3,
		UnitPrice:       dec("25.99"),
		DiscountPercent: dec("10"),
		TaxRate:         dec("8"),
	})

	if !line.Subtotal.Equal(dec("77.97")) {
		t.Fatalf("subtotal: expected 77.97, got %s", line.Subtotal)
	}
	if !line.Discount.Equal(dec("7.80")) {
		t.Fatalf("discount: expected 7.80, got %s", line.Discount)
	}
	if !line.AfterDiscount.Equal(dec("70.17")) {
		t.Fatalf("after discount: expected 70.17, got %s", line.AfterDiscount)
	}
	if !line.Tax.Equal(dec("5.61")) {
		t.Fatalf("tax: expected 5.61, got %s", line.Tax)
	}
	if !line.Total.Equal(dec("75.78")) {
		t.Fatalf("total: expected 75.78, got %s", line.Total)
	}
}

func TestComputeSummaryAggregatesRoundedLines(t *testing.T) {
	items := []LineInput{
		{ProductID: uuid.New(), Quantity: 3, UnitPrice: dec("25.99"), DiscountPercent: dec("10"), TaxRate: dec("8")},
		{ProductID: uuid.New(), Quantity: 1, UnitPrice: dec("0.99"), DiscountPercent: dec("0"), TaxRate: dec("18")},
		{ProductID: uuid.New(), Quantity: 7, UnitPrice: dec("14.333"), DiscountPercent: dec("2.5"), TaxRate: dec("0")},
	}

	summary, err := ComputeSummary(items)
	if err != nil {
		t.Fatalf("compute summary: %v", err)
	}

	expected := summary.Subtotal.Sub(summary.DiscountAmount).Add(summary.TaxAmount)
	if !summary.TotalAmount.Equal(expected) {
		t.Fatalf("total identity broken: total=%s subtotal=%s discount=%s tax=%s",
			summary.TotalAmount, summary.Subtotal, summary.DiscountAmount, summary.TaxAmount)
	}

	lineSum := decimal.Zero
	for _, line := range summary.Lines {
		lineSum = lineSum.Add(line.Total)
	}
	if !lineSum.Equal(summary.TotalAmount) {
		t.Fatalf("line totals %s do not reconcile with document total %s", lineSum, summary.TotalAmount)
	}
}

func TestComputeSummaryIsDeterministic(t *testing.T) {
	items := []LineInput{
		{ProductID: uuid.New(), Quantity: 5, UnitPrice: dec("3.337"), DiscountPercent: dec("12.5"), TaxRate: dec("7.25")},
		{ProductID: uuid.New(), Quantity: 2, UnitPrice: dec("199.995"), DiscountPercent: dec("0"), TaxRate: dec("8")},
	}

	first, err := ComputeSummary(items)
	if err != nil {
		t.Fatalf("first compute: %v", err)
	}
	second, err := ComputeSummary(items)
	if err != nil {
		t.Fatalf("second compute: %v", err)
	}

	if !first.TotalAmount.Equal(second.TotalAmount) {
		t.Fatalf("recomputation drifted: %s vs %s", first.TotalAmount, second.TotalAmount)
	}
	for i := range first.Lines {
		if !first.Lines[i].Total.Equal(second.Lines[i].Total) {
			t.Fatalf("line %d drifted: %s vs %s", i, first.Lines[i].Total, second.Lines[i].Total)
		}
	}
}

func TestValidateLineRejections(t *testing.T) {
	productID := uuid.New()
	cases := []struct {
		name string
		in   LineInput
	}{
		{"missing product", LineInput{Quantity: 1, UnitPrice: dec("1")}},
		{"zero quantity", LineInput{ProductID: productID, Quantity: 0, UnitPrice: dec("1")}},
		{"negative quantity", LineInput{ProductID: productID, Quantity: -3, UnitPrice: dec("1")}},
		{"negative price", LineInput{ProductID: productID, Quantity: 1, UnitPrice: dec("-0.01")}},
		{"discount above 100", LineInput{ProductID: productID, Quantity: 1, UnitPrice: dec("1"), DiscountPercent: dec("100.01")}},
		{"negative discount", LineInput{ProductID: productID, Quantity: 1, UnitPrice: dec("1"), DiscountPercent: dec("-1")}},
		{"tax above 100", LineInput{ProductID: productID, Quantity: 1, UnitPrice: dec("1"), TaxRate: dec("101")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateLine(0, tc.in)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !apperrors.IsCode(err, apperrors.CodeValidation) {
				t.Fatalf("expected validation code, got %v", err)
			}
		})
	}
}

func TestComputeSummaryRejectsEmptyItemSet(t *testing.T) {
	if _, err := ComputeSummary(nil); err == nil {
		t.Fatal("expected validation error for empty item set")
	}
}

func TestComputeSummaryStopsAtFirstInvalidLine(t *testing.T) {
	items := []LineInput{
		{ProductID: uuid.New(), Quantity: 1, UnitPrice: dec("10")},
		{ProductID: uuid.New(), Quantity: -1, UnitPrice: dec("10")},
	}
	if _, err := ComputeSummary(items); !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestComputeLineHundredPercentDiscount(t *testing.T) {
	line := ComputeLine(LineInput{
		ProductID:       uuid.New(),
		Quantity:        4,
		UnitPrice:       dec("9.99"),
		DiscountPercent: dec("100"),
		TaxRate:         dec("18"),
	})
	if !line.AfterDiscount.IsZero() {
		t.Fatalf("expected fully discounted line, got %s", line.AfterDiscount)
	}
	if !line.Total.IsZero() {
		t.Fatalf("expected zero total, got %s", line.Total)
	}
}
