// utils/validation.go
package utils

import (
	"regexp"
	"strings"
)

var mobilePattern = regexp.MustCompile(`^\d{10}$`)

// ValidateMobile checks for a bare 10-digit mobile number.
func ValidateMobile(mobile string) bool {
	return mobilePattern.MatchString(mobile)
}

// NormalizeCarNumber trims and upper-cases a registration number. Inner spaces are kept.
func NormalizeCarNumber(carNumber string) string {
	return strings.ToUpper(strings.TrimSpace(carNumber))
}
