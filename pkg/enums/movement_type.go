package enums

import "fmt"

// MovementType classifies an inventory ledger entry.
type MovementType string

const (
	MovementTypePurchase   MovementType = "purchase"
	MovementTypeSale       MovementType = "sale"
	MovementTypeAdjustment MovementType = "adjustment"
	MovementTypeReturn     MovementType = "return"
	MovementTypeTransfer   MovementType = "transfer"
)

var validMovementTypes = []MovementType{
	MovementTypePurchase,
	MovementTypeSale,
	MovementTypeAdjustment,
	MovementTypeReturn,
	MovementTypeTransfer,
}

// String implements fmt.Stringer.
func (m MovementType) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MovementType.
func (m MovementType) IsValid() bool {
	for _, candidate := range validMovementTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// Inbound reports whether the movement adds stock. Purchase and return
// movements increase the balance; sale, adjustment and transfer decrease it.
func (m MovementType) Inbound() bool {
	return m == MovementTypePurchase || m == MovementTypeReturn
}

// ParseMovementType converts the raw string to MovementType.
func ParseMovementType(value string) (MovementType, error) {
	for _, candidate := range validMovementTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement type %q", value)
}
