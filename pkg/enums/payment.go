package enums

import "fmt"

// ServiceType identifies what a payment settles.
type ServiceType string

const (
	ServiceTypePlantation     ServiceType = "plantation"
	ServiceTypeAnimalDelivery ServiceType = "animal-delivery"
	ServiceTypeCombined       ServiceType = "combined"
)

var validServiceTypes = []ServiceType{
	ServiceTypePlantation,
	ServiceTypeAnimalDelivery,
	ServiceTypeCombined,
}

// IsValid reports whether the value is a known ServiceType.
func (s ServiceType) IsValid() bool {
	for _, candidate := range validServiceTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseServiceType converts raw input into ServiceType.
func ParseServiceType(value string) (ServiceType, error) {
	for _, candidate := range validServiceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid service type %q", value)
}

// DeliveryStatus summarizes one animal delivery.
type DeliveryStatus string

const (
	DeliveryStatusComplete   DeliveryStatus = "complete"
	DeliveryStatusIncomplete DeliveryStatus = "incomplete"
	DeliveryStatusSuspicious DeliveryStatus = "suspicious"
)
