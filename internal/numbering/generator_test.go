package numbering

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/tradeforge/tradedocs-backend/pkg/clock"
	"github.com/tradeforge/tradedocs-backend/pkg/enums"
	apperrors "github.com/tradeforge/tradedocs-backend/pkg/errors"
)

var numberPattern = regexp.MustCompile(`^(QUO|ORD|PO|DC|SHP)-\d{8}-[A-Z0-9]{8}$`)

func fixedClock(t *testing.T) clock.Clock {
	t.Helper()
	return clock.NewFixed(time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC))
}

func TestNextFormat(t *testing.T) {
	gen, err := NewGenerator(fixedClock(t))
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	for _, docType := range []enums.DocumentType{
		enums.DocumentTypeQuotation,
		enums.DocumentTypeOrder,
		enums.DocumentTypePurchaseOrder,
		enums.DocumentTypeDeliveryChallan,
		enums.DocumentTypeShipment,
	} {
		number, err := gen.Next(docType)
		if err != nil {
			t.Fatalf("next %s: %v", docType, err)
		}
		if !numberPattern.MatchString(number) {
			t.Fatalf("number %q does not match expected format", number)
		}
	}

	number, err := gen.Next(enums.DocumentTypeQuotation)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if got := number[:12]; got != "QUO-20260815" {
		t.Fatalf("expected clock-derived date prefix QUO-20260815, got %s", got)
	}
}

func TestNextRejectsInvalidType(t *testing.T) {
	gen, err := NewGenerator(fixedClock(t))
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	if _, err := gen.Next(enums.DocumentType("invoice")); !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGenerationsWithinSameSecondAreDistinct(t *testing.T) {
	gen, err := NewGenerator(fixedClock(t))
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	seen := make(map[string]struct{}, 10000)
	exists := func(ctx context.Context, number string) (bool, error) {
		_, taken := seen[number]
		return taken, nil
	}
	alloc, err := NewAllocator(gen, exists, 5)
	if err != nil {
		t.Fatalf("new allocator: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 10000; i++ {
		number, _, err := alloc.Allocate(ctx, enums.DocumentTypeOrder)
		if err != nil {
			t.Fatalf("allocate %d: %v", i, err)
		}
		if _, dup := seen[number]; dup {
			t.Fatalf("duplicate number issued: %s", number)
		}
		seen[number] = struct{}{}
	}
}

func TestAllocateRetriesOnCollision(t *testing.T) {
	gen, err := NewGenerator(fixedClock(t))
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	calls := 0
	exists := func(ctx context.Context, number string) (bool, error) {
		calls++
		// first two candidates collide
		return calls <= 2, nil
	}
	alloc, err := NewAllocator(gen, exists, 5)
	if err != nil {
		t.Fatalf("new allocator: %v", err)
	}

	number, retries, err := alloc.Allocate(context.Background(), enums.DocumentTypeQuotation)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if number == "" {
		t.Fatal("expected a number")
	}
	if retries != 2 {
		t.Fatalf("expected 2 retries, got %d", retries)
	}
}

func TestAllocateExhaustsRetryBudget(t *testing.T) {
	gen, err := NewGenerator(fixedClock(t))
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	exists := func(ctx context.Context, number string) (bool, error) {
		return true, nil
	}
	alloc, err := NewAllocator(gen, exists, 3)
	if err != nil {
		t.Fatalf("new allocator: %v", err)
	}

	_, _, err = alloc.Allocate(context.Background(), enums.DocumentTypeQuotation)
	if !apperrors.IsCode(err, apperrors.CodeNumberingCollision) {
		t.Fatalf("expected numbering collision error, got %v", err)
	}
}

func TestSuffixCharactersAreUniform(t *testing.T) {
	const samples = 20000
	counts := make(map[byte]int, len(suffixCharset))
	for i := 0; i < samples; i++ {
		suffix, err := randomSuffix()
		if err != nil {
			t.Fatalf("random suffix: %v", err)
		}
		for j := 0; j < len(suffix); j++ {
			counts[suffix[j]]++
		}
	}

	// Plain byte-mod mapping overweights the first 256%36 characters by
	// about 12.5%, well outside this band; an unbiased draw sits inside it
	// with overwhelming probability at this sample size.
	expected := float64(samples*suffixLength) / float64(len(suffixCharset))
	for i := 0; i < len(suffixCharset); i++ {
		got := float64(counts[suffixCharset[i]])
		if got < expected*0.92 || got > expected*1.08 {
			t.Fatalf("character %q drawn %.0f times, expected about %.0f", string(suffixCharset[i]), got, expected)
		}
	}
}
