package enums

import "fmt"

// SaleEventType labels rows in the sale_events journal.
type SaleEventType string

const (
	SaleEventCreated SaleEventType = "sale_created"
	SaleEventUpdated SaleEventType = "sale_updated"
	SaleEventDeleted SaleEventType = "sale_deleted"
)

var validSaleEventTypes = []SaleEventType{
	SaleEventCreated,
	SaleEventUpdated,
	SaleEventDeleted,
}

func (e SaleEventType) IsValid() bool {
	for _, candidate := range validSaleEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

func ParseSaleEventType(value string) (SaleEventType, error) {
	for _, candidate := range validSaleEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sale event type %q", value)
}
