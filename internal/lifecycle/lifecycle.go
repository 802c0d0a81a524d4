// Package lifecycle owns the per-variant document state machines. Transitions
// are explicit table lookups; anything not in the table is rejected as a state
// conflict rather than silently applied.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/tradeforge/tradedocs-backend/pkg/enums"
	apperrors "github.com/tradeforge/tradedocs-backend/pkg/errors"
)

// Effect names the inventory side effect a transition must perform in the
// same unit of work as the status change.
type Effect string

const (
	// EffectNone means the transition touches no inventory.
	EffectNone Effect = "none"
	// EffectPostSale posts outbound sale movements for every line item.
	EffectPostSale Effect = "post_sale"
	// EffectPostPurchase posts inbound purchase movements for every line item.
	EffectPostPurchase Effect = "post_purchase"
	// EffectReverseSale posts inbound return movements compensating a prior
	// sale posting, so cancelling a confirmed order restores stock.
	EffectReverseSale Effect = "reverse_sale"
)

type transitionKey struct {
	from enums.DocumentStatus
	to   enums.DocumentStatus
}

type machine struct {
	initial     enums.DocumentStatus
	transitions map[transitionKey]Effect
	editable    map[enums.DocumentStatus]bool
	terminal    map[enums.DocumentStatus]bool
}

var machines = map[enums.DocumentType]machine{
	enums.DocumentTypeQuotation: {
		initial: enums.DocumentStatusDraft,
		transitions: map[transitionKey]Effect{
			{enums.DocumentStatusDraft, enums.DocumentStatusSent}:    EffectNone,
			{enums.DocumentStatusSent, enums.DocumentStatusAccepted}: EffectNone,
			{enums.DocumentStatusSent, enums.DocumentStatusRejected}: EffectNone,
			{enums.DocumentStatusSent, enums.DocumentStatusExpired}:  EffectNone,
		},
		editable: map[enums.DocumentStatus]bool{
			enums.DocumentStatusDraft: true,
		},
		terminal: map[enums.DocumentStatus]bool{
			enums.DocumentStatusAccepted: true,
			enums.DocumentStatusRejected: true,
			enums.DocumentStatusExpired:  true,
		},
	},
	enums.DocumentTypeOrder: {
		initial: enums.DocumentStatusDraft,
		transitions: map[transitionKey]Effect{
			{enums.DocumentStatusDraft, enums.DocumentStatusConfirmed}:       EffectPostSale,
			{enums.DocumentStatusConfirmed, enums.DocumentStatusInProgress}:  EffectNone,
			{enums.DocumentStatusInProgress, enums.DocumentStatusCompleted}:  EffectNone,
			{enums.DocumentStatusDraft, enums.DocumentStatusCancelled}:       EffectNone,
			{enums.DocumentStatusConfirmed, enums.DocumentStatusCancelled}:   EffectReverseSale,
			{enums.DocumentStatusInProgress, enums.DocumentStatusCancelled}:  EffectReverseSale,
		},
		editable: map[enums.DocumentStatus]bool{
			enums.DocumentStatusDraft: true,
		},
		terminal: map[enums.DocumentStatus]bool{
			enums.DocumentStatusCompleted: true,
			enums.DocumentStatusCancelled: true,
		},
	},
	enums.DocumentTypePurchaseOrder: {
		initial: enums.DocumentStatusDraft,
		transitions: map[transitionKey]Effect{
			{enums.DocumentStatusDraft, enums.DocumentStatusSent}:          EffectNone,
			{enums.DocumentStatusSent, enums.DocumentStatusConfirmed}:      EffectNone,
			{enums.DocumentStatusConfirmed, enums.DocumentStatusReceived}:  EffectPostPurchase,
			{enums.DocumentStatusDraft, enums.DocumentStatusCancelled}:     EffectNone,
			{enums.DocumentStatusSent, enums.DocumentStatusCancelled}:      EffectNone,
			{enums.DocumentStatusConfirmed, enums.DocumentStatusCancelled}: EffectNone,
		},
		editable: map[enums.DocumentStatus]bool{
			enums.DocumentStatusDraft: true,
		},
		terminal: map[enums.DocumentStatus]bool{
			enums.DocumentStatusReceived:  true,
			enums.DocumentStatusCancelled: true,
		},
	},
	enums.DocumentTypeDeliveryChallan: {
		initial: enums.DocumentStatusPending,
		transitions: map[transitionKey]Effect{
			{enums.DocumentStatusPending, enums.DocumentStatusInTransit}:   EffectNone,
			{enums.DocumentStatusPending, enums.DocumentStatusCancelled}:   EffectNone,
			{enums.DocumentStatusInTransit, enums.DocumentStatusDelivered}: EffectNone,
			{enums.DocumentStatusInTransit, enums.DocumentStatusCancelled}: EffectNone,
		},
		editable: map[enums.DocumentStatus]bool{
			enums.DocumentStatusPending: true,
		},
		terminal: map[enums.DocumentStatus]bool{
			enums.DocumentStatusDelivered: true,
			enums.DocumentStatusCancelled: true,
		},
	},
	enums.DocumentTypeShipment: {
		initial: enums.DocumentStatusPending,
		transitions: map[transitionKey]Effect{
			{enums.DocumentStatusPending, enums.DocumentStatusInTransit}:          EffectNone,
			{enums.DocumentStatusPending, enums.DocumentStatusCancelled}:          EffectNone,
			{enums.DocumentStatusInTransit, enums.DocumentStatusCustomsClearance}: EffectNone,
			{enums.DocumentStatusInTransit, enums.DocumentStatusDelivered}:        EffectNone,
			{enums.DocumentStatusInTransit, enums.DocumentStatusCancelled}:        EffectNone,
			{enums.DocumentStatusCustomsClearance, enums.DocumentStatusDelivered}: EffectNone,
			{enums.DocumentStatusCustomsClearance, enums.DocumentStatusCancelled}: EffectNone,
		},
		editable: map[enums.DocumentStatus]bool{
			enums.DocumentStatusPending: true,
		},
		terminal: map[enums.DocumentStatus]bool{
			enums.DocumentStatusDelivered: true,
			enums.DocumentStatusCancelled: true,
		},
	},
}

// InitialStatus returns the status a freshly created document starts in.
func InitialStatus(docType enums.DocumentType) (enums.DocumentStatus, error) {
	m, ok := machines[docType]
	if !ok {
		return "", apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid document type %q", docType))
	}
	return m.initial, nil
}

// Validate checks that from → to is an allowed transition and returns the
// inventory effect it carries.
func Validate(docType enums.DocumentType, from, to enums.DocumentStatus) (Effect, error) {
	m, ok := machines[docType]
	if !ok {
		return EffectNone, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid document type %q", docType))
	}
	effect, ok := m.transitions[transitionKey{from: from, to: to}]
	if !ok {
		return EffectNone, apperrors.New(
			apperrors.CodeStateConflict,
			fmt.Sprintf("%s cannot transition from %s to %s", docType, from, to),
		)
	}
	return effect, nil
}

// IsEditable reports whether item edits are allowed in the given status.
func IsEditable(docType enums.DocumentType, status enums.DocumentStatus) bool {
	m, ok := machines[docType]
	if !ok {
		return false
	}
	return m.editable[status]
}

// IsTerminal reports whether the status admits no further transitions.
func IsTerminal(docType enums.DocumentType, status enums.DocumentStatus) bool {
	m, ok := machines[docType]
	if !ok {
		return false
	}
	return m.terminal[status]
}

// ValidStatuses lists every status reachable for the document type,
// including the initial one.
func ValidStatuses(docType enums.DocumentType) []enums.DocumentStatus {
	m, ok := machines[docType]
	if !ok {
		return nil
	}
	seen := map[enums.DocumentStatus]bool{m.initial: true}
	out := []enums.DocumentStatus{m.initial}
	for key := range m.transitions {
		for _, s := range []enums.DocumentStatus{key.from, key.to} {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

// EffectiveQuotationStatus projects expiry at read time: a sent quotation
// whose valid_until has passed reads as expired without a stored transition.
func EffectiveQuotationStatus(status enums.DocumentStatus, validUntil *time.Time, now time.Time) enums.DocumentStatus {
	if status == enums.DocumentStatusSent && validUntil != nil && now.After(*validUntil) {
		return enums.DocumentStatusExpired
	}
	return status
}
