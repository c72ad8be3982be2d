package filter

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// ParseHexBytes parses a hexadecimal byte string such as 0xDEAD, DEADh, or
// DEAD into its bytes, high-order bytes first. The digit count must be even.
func ParseHexBytes(s string) ([]byte, error) {
	digits := s
	switch {
	case strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X"):
		digits = digits[2:]
	case strings.HasSuffix(digits, "h") || strings.HasSuffix(digits, "H"):
		digits = digits[:len(digits)-1]
	}

	if digits == "" || len(digits)%2 != 0 {
		return nil, fmt.Errorf("hex string must have an even number of digits: %q", s)
	}
	b, err := hex.DecodeString(digits)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string %q: %w", s, err)
	}
	return b, nil
}
