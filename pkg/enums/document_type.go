package enums

import "fmt"

// DocumentType tags the business document variant stored in the documents table.
type DocumentType string

const (
	DocumentTypeQuotation       DocumentType = "quotation"
	DocumentTypeOrder           DocumentType = "order"
	DocumentTypePurchaseOrder   DocumentType = "purchase_order"
	DocumentTypeDeliveryChallan DocumentType = "delivery_challan"
	DocumentTypeShipment        DocumentType = "shipment"
)

var validDocumentTypes = []DocumentType{
	DocumentTypeQuotation,
	DocumentTypeOrder,
	DocumentTypePurchaseOrder,
	DocumentTypeDeliveryChallan,
	DocumentTypeShipment,
}

var documentNumberPrefixes = map[DocumentType]string{
	DocumentTypeQuotation:       "QUO",
	DocumentTypeOrder:           "ORD",
	DocumentTypePurchaseOrder:   "PO",
	DocumentTypeDeliveryChallan: "DC",
	DocumentTypeShipment:        "SHP",
}

// String implements fmt.Stringer.
func (d DocumentType) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DocumentType.
func (d DocumentType) IsValid() bool {
	for _, candidate := range validDocumentTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// NumberPrefix returns the human number prefix for the document variant.
func (d DocumentType) NumberPrefix() string {
	if prefix, ok := documentNumberPrefixes[d]; ok {
		return prefix
	}
	return "DOC"
}

// ParseDocumentType converts the raw string to DocumentType.
func ParseDocumentType(value string) (DocumentType, error) {
	for _, candidate := range validDocumentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid document type %q", value)
}
