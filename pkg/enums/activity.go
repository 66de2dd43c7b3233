package enums

import "fmt"

// ActivityKind is the action a log record describes.
type ActivityKind string

const (
	ActivityKindItemAdd    ActivityKind = "item_add"
	ActivityKindItemRemove ActivityKind = "item_remove"
	ActivityKindDeposit    ActivityKind = "deposit"
	ActivityKindWithdrawal ActivityKind = "withdrawal"
)

var validActivityKinds = []ActivityKind{
	ActivityKindItemAdd,
	ActivityKindItemRemove,
	ActivityKindDeposit,
	ActivityKindWithdrawal,
}

// IsValid reports whether the value matches a known activity kind.
func (k ActivityKind) IsValid() bool {
	for _, candidate := range validActivityKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// Category maps the kind onto inventory or financial.
func (k ActivityKind) Category() ActivityCategory {
	switch k {
	case ActivityKindDeposit, ActivityKindWithdrawal:
		return ActivityCategoryFinancial
	case ActivityKindItemAdd, ActivityKindItemRemove:
		return ActivityCategoryInventory
	}
	return ""
}

// ParseActivityKind converts raw input into ActivityKind.
func ParseActivityKind(value string) (ActivityKind, error) {
	for _, candidate := range validActivityKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid activity kind %q", value)
}

// ActivityCategory groups kinds into inventory and financial movements.
type ActivityCategory string

const (
	ActivityCategoryInventory ActivityCategory = "inventory"
	ActivityCategoryFinancial ActivityCategory = "financial"
)

// IsValid reports whether the value matches a known category.
func (c ActivityCategory) IsValid() bool {
	return c == ActivityCategoryInventory || c == ActivityCategoryFinancial
}
