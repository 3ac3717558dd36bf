package enums

import "fmt"

// SplitMethod selects how line items are assigned to vendors during a split.
type SplitMethod string

const (
	SplitMethodByProduct  SplitMethod = "by_product"
	SplitMethodByCategory SplitMethod = "by_category"
	SplitMethodByQuantity SplitMethod = "by_quantity"
	SplitMethodManual     SplitMethod = "manual"
)

var validSplitMethods = []SplitMethod{
	SplitMethodByProduct,
	SplitMethodByCategory,
	SplitMethodByQuantity,
	SplitMethodManual,
}

// String implements fmt.Stringer.
func (s SplitMethod) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SplitMethod.
func (s SplitMethod) IsValid() bool {
	for _, candidate := range validSplitMethods {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSplitMethod converts raw input into a SplitMethod.
func ParseSplitMethod(value string) (SplitMethod, error) {
	for _, candidate := range validSplitMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid split method %q", value)
}
