package lifecycle

import (
	"testing"
	"time"

	"github.com/tradeforge/tradedocs-backend/pkg/enums"
	apperrors "github.com/tradeforge/tradedocs-backend/pkg/errors"
)

func TestQuotationHappyPath(t *testing.T) {
	steps := []struct {
		from, to enums.DocumentStatus
	}{
		{enums.DocumentStatusDraft, enums.DocumentStatusSent},
		{enums.DocumentStatusSent, enums.DocumentStatusAccepted},
	}
	for _, step := range steps {
		effect, err := Validate(enums.DocumentTypeQuotation, step.from, step.to)
		if err != nil {
			t.Fatalf("%s -> %s: %v", step.from, step.to, err)
		}
		if effect != EffectNone {
			t.Fatalf("%s -> %s: unexpected effect %s", step.from, step.to, effect)
		}
	}
}

func TestQuotationSentBackToDraftIsRejected(t *testing.T) {
	_, err := Validate(enums.DocumentTypeQuotation, enums.DocumentStatusSent, enums.DocumentStatusDraft)
	if !apperrors.IsCode(err, apperrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestOrderConfirmationPostsSale(t *testing.T) {
	effect, err := Validate(enums.DocumentTypeOrder, enums.DocumentStatusDraft, enums.DocumentStatusConfirmed)
	if err != nil {
		t.Fatalf("confirm order: %v", err)
	}
	if effect != EffectPostSale {
		t.Fatalf("expected post_sale effect, got %s", effect)
	}
}

func TestOrderCancellationCompensatesAfterConfirm(t *testing.T) {
	effect, err := Validate(enums.DocumentTypeOrder, enums.DocumentStatusConfirmed, enums.DocumentStatusCancelled)
	if err != nil {
		t.Fatalf("cancel confirmed order: %v", err)
	}
	if effect != EffectReverseSale {
		t.Fatalf("expected reverse_sale effect, got %s", effect)
	}

	effect, err = Validate(enums.DocumentTypeOrder, enums.DocumentStatusDraft, enums.DocumentStatusCancelled)
	if err != nil {
		t.Fatalf("cancel draft order: %v", err)
	}
	if effect != EffectNone {
		t.Fatalf("draft cancellation has nothing to compensate, got %s", effect)
	}
}

func TestOrderCancelFromCompletedIsRejected(t *testing.T) {
	_, err := Validate(enums.DocumentTypeOrder, enums.DocumentStatusCompleted, enums.DocumentStatusCancelled)
	if !apperrors.IsCode(err, apperrors.CodeStateConflict) {
		t.Fatalf("expected state conflict for terminal state, got %v", err)
	}
}

func TestPurchaseOrderReceiptPostsPurchase(t *testing.T) {
	effect, err := Validate(enums.DocumentTypePurchaseOrder, enums.DocumentStatusConfirmed, enums.DocumentStatusReceived)
	if err != nil {
		t.Fatalf("receive purchase order: %v", err)
	}
	if effect != EffectPostPurchase {
		t.Fatalf("expected post_purchase effect, got %s", effect)
	}
}

func TestShipmentCustomsClearancePath(t *testing.T) {
	steps := []struct {
		from, to enums.DocumentStatus
	}{
		{enums.DocumentStatusPending, enums.DocumentStatusInTransit},
		{enums.DocumentStatusInTransit, enums.DocumentStatusCustomsClearance},
		{enums.DocumentStatusCustomsClearance, enums.DocumentStatusDelivered},
	}
	for _, step := range steps {
		if _, err := Validate(enums.DocumentTypeShipment, step.from, step.to); err != nil {
			t.Fatalf("%s -> %s: %v", step.from, step.to, err)
		}
	}
}

func TestDeliveryChallanHasNoCustomsClearance(t *testing.T) {
	_, err := Validate(enums.DocumentTypeDeliveryChallan, enums.DocumentStatusInTransit, enums.DocumentStatusCustomsClearance)
	if !apperrors.IsCode(err, apperrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestEditableStates(t *testing.T) {
	cases := []struct {
		docType  enums.DocumentType
		status   enums.DocumentStatus
		editable bool
	}{
		{enums.DocumentTypeQuotation, enums.DocumentStatusDraft, true},
		{enums.DocumentTypeQuotation, enums.DocumentStatusSent, false},
		{enums.DocumentTypeOrder, enums.DocumentStatusDraft, true},
		{enums.DocumentTypeOrder, enums.DocumentStatusConfirmed, false},
		{enums.DocumentTypePurchaseOrder, enums.DocumentStatusDraft, true},
		{enums.DocumentTypeDeliveryChallan, enums.DocumentStatusPending, true},
		{enums.DocumentTypeShipment, enums.DocumentStatusInTransit, false},
	}
	for _, tc := range cases {
		if got := IsEditable(tc.docType, tc.status); got != tc.editable {
			t.Fatalf("%s/%s: expected editable=%v, got %v", tc.docType, tc.status, tc.editable, got)
		}
	}
}

func TestInitialStatuses(t *testing.T) {
	cases := []struct {
		docType enums.DocumentType
		initial enums.DocumentStatus
	}{
		{enums.DocumentTypeQuotation, enums.DocumentStatusDraft},
		{enums.DocumentTypeOrder, enums.DocumentStatusDraft},
		{enums.DocumentTypePurchaseOrder, enums.DocumentStatusDraft},
		{enums.DocumentTypeDeliveryChallan, enums.DocumentStatusPending},
		{enums.DocumentTypeShipment, enums.DocumentStatusPending},
	}
	for _, tc := range cases {
		got, err := InitialStatus(tc.docType)
		if err != nil {
			t.Fatalf("%s: %v", tc.docType, err)
		}
		if got != tc.initial {
			t.Fatalf("%s: expected %s, got %s", tc.docType, tc.initial, got)
		}
	}

	if _, err := InitialStatus(enums.DocumentType("invoice")); !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected validation error for unknown type, got %v", err)
	}
}

func TestTerminalStates(t *testing.T) {
	if !IsTerminal(enums.DocumentTypeOrder, enums.DocumentStatusCompleted) {
		t.Fatal("completed order should be terminal")
	}
	if IsTerminal(enums.DocumentTypeOrder, enums.DocumentStatusInProgress) {
		t.Fatal("in_progress order should not be terminal")
	}
	if !IsTerminal(enums.DocumentTypeQuotation, enums.DocumentStatusExpired) {
		t.Fatal("expired quotation should be terminal")
	}
}

func TestEffectiveQuotationStatus(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	past := now.Add(-time.Hour)
	if got := EffectiveQuotationStatus(enums.DocumentStatusSent, &past, now); got != enums.DocumentStatusExpired {
		t.Fatalf("expected expired projection, got %s", got)
	}

	future := now.Add(time.Hour)
	if got := EffectiveQuotationStatus(enums.DocumentStatusSent, &future, now); got != enums.DocumentStatusSent {
		t.Fatalf("expected sent to survive, got %s", got)
	}

	if got := EffectiveQuotationStatus(enums.DocumentStatusDraft, &past, now); got != enums.DocumentStatusDraft {
		t.Fatalf("draft never expires at read time, got %s", got)
	}

	if got := EffectiveQuotationStatus(enums.DocumentStatusSent, nil, now); got != enums.DocumentStatusSent {
		t.Fatalf("nil valid_until never expires, got %s", got)
	}
}

func TestValidStatusesCoverVariants(t *testing.T) {
	statuses := ValidStatuses(enums.DocumentTypeShipment)
	want := map[enums.DocumentStatus]bool{
		enums.DocumentStatusPending:          true,
		enums.DocumentStatusInTransit:        true,
		enums.DocumentStatusCustomsClearance: true,
		enums.DocumentStatusDelivered:        true,
		enums.DocumentStatusCancelled:        true,
	}
	if len(statuses) != len(want) {
		t.Fatalf("expected %d shipment statuses, got %d (%v)", len(want), len(statuses), statuses)
	}
	for _, s := range statuses {
		if !want[s] {
			t.Fatalf("unexpected shipment status %s", s)
		}
	}
}
