package enums

import "fmt"

// DocumentStatus is the union of lifecycle states across all document
// variants. Which statuses are legal for a given variant, and which
// transitions between them are allowed, is owned by the lifecycle tables.
type DocumentStatus string

const (
	DocumentStatusDraft            DocumentStatus = "draft"
	DocumentStatusSent             DocumentStatus = "sent"
	DocumentStatusAccepted         DocumentStatus = "accepted"
	DocumentStatusRejected         DocumentStatus = "rejected"
	DocumentStatusExpired          DocumentStatus = "expired"
	DocumentStatusConfirmed        DocumentStatus = "confirmed"
	DocumentStatusInProgress       DocumentStatus = "in_progress"
	DocumentStatusCompleted        DocumentStatus = "completed"
	DocumentStatusCancelled        DocumentStatus = "cancelled"
	DocumentStatusReceived         DocumentStatus = "received"
	DocumentStatusPending          DocumentStatus = "pending"
	DocumentStatusInTransit        DocumentStatus = "in_transit"
	DocumentStatusCustomsClearance DocumentStatus = "customs_clearance"
	DocumentStatusDelivered        DocumentStatus = "delivered"
)

var validDocumentStatuses = []DocumentStatus{
	DocumentStatusDraft,
	DocumentStatusSent,
	DocumentStatusAccepted,
	DocumentStatusRejected,
	DocumentStatusExpired,
	DocumentStatusConfirmed,
	DocumentStatusInProgress,
	DocumentStatusCompleted,
	DocumentStatusCancelled,
	DocumentStatusReceived,
	DocumentStatusPending,
	DocumentStatusInTransit,
	DocumentStatusCustomsClearance,
	DocumentStatusDelivered,
}

// String implements fmt.Stringer.
func (s DocumentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DocumentStatus.
func (s DocumentStatus) IsValid() bool {
	for _, candidate := range validDocumentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDocumentStatus converts the raw string to DocumentStatus.
func ParseDocumentStatus(value string) (DocumentStatus, error) {
	for _, candidate := range validDocumentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid document status %q", value)
}
