package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSize parses a human-readable size string into bytes. Supported
// forms: plain decimal (4096), binary suffixes K/M/G/T (case-insensitive,
// powers of 1024), and hexadecimal via an 0x prefix or a trailing h
// (0x1000, 1000h).
func ParseSize(s string) (int64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("empty size string")
	}

	multiplier := int64(1)
	isHex := false
	numStr := trimmed

	switch strings.ToUpper(trimmed[len(trimmed)-1:]) {
	case "B":
		// In a 0x-prefixed value a trailing B is a hex digit.
		if !strings.HasPrefix(trimmed, "0x") && !strings.HasPrefix(trimmed, "0X") {
			numStr = trimmed[:len(trimmed)-1]
		}
	case "K":
		multiplier = 1024
		numStr = trimmed[:len(trimmed)-1]
	case "M":
		multiplier = 1024 * 1024
		numStr = trimmed[:len(trimmed)-1]
	case "G":
		multiplier = 1024 * 1024 * 1024
		numStr = trimmed[:len(trimmed)-1]
	case "T":
		multiplier = 1024 * 1024 * 1024 * 1024
		numStr = trimmed[:len(trimmed)-1]
	case "H":
		isHex = true
		numStr = trimmed[:len(trimmed)-1]
	}

	if strings.HasPrefix(numStr, "0x") || strings.HasPrefix(numStr, "0X") {
		isHex = true
		numStr = numStr[2:]
	}
	if numStr == "" {
		return 0, fmt.Errorf("invalid size: %q", s)
	}

	base := 10
	if isHex {
		base = 16
	}
	n, err := strconv.ParseInt(numStr, base, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid size: %q", s)
	}
	return n * multiplier, nil
}
