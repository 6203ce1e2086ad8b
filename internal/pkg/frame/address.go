package frame

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidAddress accepts exactly "0x" followed by 40 hex digits. Checksum
// casing is not verified.
func ValidAddress(address string) bool {
	return validate.Var(address, "required,eth_addr") == nil
}

// NormalizeAddress trims whitespace users tend to paste along.
func NormalizeAddress(input string) string {
	return strings.TrimSpace(input)
}
