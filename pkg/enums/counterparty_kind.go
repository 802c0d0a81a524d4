package enums

import "fmt"

// CounterpartyKind separates customers (sales documents) from vendors
// (purchase documents).
type CounterpartyKind string

const (
	CounterpartyKindCustomer CounterpartyKind = "customer"
	CounterpartyKindVendor   CounterpartyKind = "vendor"
)

var validCounterpartyKinds = []CounterpartyKind{
	CounterpartyKindCustomer,
	CounterpartyKindVendor,
}

// String implements fmt.Stringer.
func (k CounterpartyKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known CounterpartyKind.
func (k CounterpartyKind) IsValid() bool {
	for _, candidate := range validCounterpartyKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseCounterpartyKind converts the raw string to CounterpartyKind.
func ParseCounterpartyKind(value string) (CounterpartyKind, error) {
	for _, candidate := range validCounterpartyKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid counterparty kind %q", value)
}
