// Package validation turns raw request fields into typed, bounded values
// before they reach the persistence layer.
package validation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusActive    = "active"
	StatusAbandoned = "abandoned"
	StatusLocked    = "locked"
	StatusExpired   = "expired"
)

const (
	MinQuantity = 1
	MaxQuantity = 99
)

// StatusMap maps lower-cased inbound status values to canonical ones.
type StatusMap map[string]string

var canonical = map[string]bool{
	StatusActive:    true,
	StatusAbandoned: true,
	StatusLocked:    true,
	StatusExpired:   true,
}

// DefaultAliases returns the friendly alias mapping carried over from older
// console iterations. The canonical four states always map to themselves.
func DefaultAliases() StatusMap {
	return StatusMap{
		"open":      StatusActive,
		"closed":    StatusAbandoned,
		"purchased": StatusLocked,
		"merged":    StatusExpired,
	}
}

// NormalizeStatus resolves a raw status value case-insensitively against the
// canonical set and the alias map. Unknown values are rejected.
func NormalizeStatus(raw string, aliases StatusMap) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", fmt.Errorf("status must be a non-empty value when provided")
	}
	if canonical[s] {
		return s, nil
	}
	if mapped, ok := aliases[s]; ok && canonical[mapped] {
		return mapped, nil
	}
	return "", fmt.Errorf("Invalid status '%s'", raw)
}

// StatusLabel is the display-cased form used by response views.
func StatusLabel(status string) string {
	if status == "" {
		return ""
	}
	return strings.ToUpper(status[:1]) + status[1:]
}

// Price coerces a decimal price to two fractional digits. Negative prices
// are rejected.
func Price(raw decimal.Decimal) (decimal.Decimal, error) {
	if raw.IsNegative() {
		return decimal.Zero, fmt.Errorf("price must not be negative")
	}
	return raw.Round(2), nil
}

// QuantityOnCreate validates a quantity for a new item or an increment.
func QuantityOnCreate(q int) error {
	if q <= 0 {
		return fmt.Errorf("quantity must be a positive integer")
	}
	if q > MaxQuantity {
		return fmt.Errorf("invalid quantity")
	}
	return nil
}

// QuantityOnUpdate validates a quantity for an item update, where zero
// signals deletion.
func QuantityOnUpdate(q int) error {
	if q < 0 || q > MaxQuantity {
		return fmt.Errorf("invalid quantity")
	}
	return nil
}

// PositiveInt parses an id-like field that must be a positive integer.
func PositiveInt(raw string, field string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", field)
	}
	return v, nil
}

// DecimalParam parses a decimal query parameter.
func DecimalParam(raw string, field string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("%s must be a non-empty decimal value when provided", field)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a valid decimal number: %s", field, raw)
	}
	return d, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Timestamp parses an ISO-8601 value. A timestamp without an explicit
// offset is assumed UTC. The result is always in UTC.
func Timestamp(raw string, field string) (time.Time, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return time.Time{}, fmt.Errorf("%s must be a non-empty ISO8601 timestamp when provided", field)
	}
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, cleaned)
		if err != nil {
			continue
		}
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%s must be a valid ISO8601 timestamp: %s", field, raw)
}
