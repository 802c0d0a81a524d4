package enums

// StockStatus is the derived availability bucket for a product balance.
// It is computed on reads and never stored.
type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

// String implements fmt.Stringer.
func (s StockStatus) String() string {
	return string(s)
}

// DeriveStockStatus buckets a balance by current stock against its minimum.
func DeriveStockStatus(currentStock, minimumStock int) StockStatus {
	switch {
	case currentStock <= 0:
		return StockStatusOutOfStock
	case currentStock <= minimumStock:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}
