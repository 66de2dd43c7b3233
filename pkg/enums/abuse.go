package enums

import "fmt"

// AbuseCategory classifies a finding raised against a worker.
type AbuseCategory string

const (
	AbuseCategorySuspiciousItem    AbuseCategory = "suspicious-item"
	AbuseCategoryUnreturnedTool    AbuseCategory = "unreturned-tool"
	AbuseCategoryExcessConsumption AbuseCategory = "excess-consumption"
	AbuseCategoryUndeliveredAnimal AbuseCategory = "undelivered-animal"
)

var validAbuseCategories = []AbuseCategory{
	AbuseCategorySuspiciousItem,
	AbuseCategoryUnreturnedTool,
	AbuseCategoryExcessConsumption,
	AbuseCategoryUndeliveredAnimal,
}

// IsValid reports whether the value is a known AbuseCategory.
func (c AbuseCategory) IsValid() bool {
	for _, candidate := range validAbuseCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseAbuseCategory converts raw input into AbuseCategory.
func ParseAbuseCategory(value string) (AbuseCategory, error) {
	for _, candidate := range validAbuseCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid abuse category %q", value)
}

// AbuseDecision records what an administrator did with a finding.
type AbuseDecision string

const (
	AbuseDecisionAccept AbuseDecision = "accept"
	AbuseDecisionIgnore AbuseDecision = "ignore"
)

// IsValid reports whether the value is a known AbuseDecision.
func (d AbuseDecision) IsValid() bool {
	return d == AbuseDecisionAccept || d == AbuseDecisionIgnore
}
