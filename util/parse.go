package util

import (
	"fmt"
	"strings"
)

const (
	kilobyte int64 = 1024
	megabyte       = 1024 * kilobyte
	gigabyte       = 1024 * megabyte
)

// ParseSize parses a human-readable size string ("25MB", "512KB", "2GB")
// into bytes. Bare numbers are taken as bytes. Returns defaultBytes when
// the string cannot be parsed.
func ParseSize(s string, defaultBytes int64) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return defaultBytes
	}

	unit := int64(1)
	switch {
	case strings.HasSuffix(s, "GB"):
		unit = gigabyte
		s = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		unit = megabyte
		s = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		unit = kilobyte
		s = strings.TrimSuffix(s, "KB")
	}

	var n int64
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return defaultBytes
	}
	return n * unit
}

// MaskSecret hides sensitive parts of a string for safe display in logs.
// Strings no longer than visiblePrefix are fully masked.
func MaskSecret(s string, visiblePrefix int) string {
	if len(s) <= visiblePrefix {
		return "***"
	}
	return s[:visiblePrefix] + "***"
}
