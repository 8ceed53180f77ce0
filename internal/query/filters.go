// Package query parses the list-endpoint query parameters into typed filter
// sets. All supplied filters are ANDed; an omitted filter imposes no
// constraint.
package query

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/shopcarts/internal/validation"
)

// CartFilters constrains the cart collection. MinTotal/MaxTotal compare
// against the computed cart total, inclusively.
type CartFilters struct {
	Status        *string
	CustomerID    *int64
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	MinTotal      *decimal.Decimal
	MaxTotal      *decimal.Decimal
}

var cartFilterKeys = map[string]bool{
	"status":         true,
	"customer_id":    true,
	"created_after":  true,
	"created_before": true,
	"min_total":      true,
	"max_total":      true,
	// legacy spellings from earlier console iterations
	"total_price_gt": true,
	"total_price_lt": true,
}

func rejectUnknownKeys(args url.Values, allowed map[string]bool) error {
	var unsupported []string
	for key := range args {
		if !allowed[key] {
			unsupported = append(unsupported, key)
		}
	}
	if len(unsupported) == 0 {
		return nil
	}
	if len(unsupported) == 1 {
		return fmt.Errorf("Invalid filter: %s is not a supported filter parameter", unsupported[0])
	}
	return fmt.Errorf("Invalid filter: %s are not supported filter parameters", strings.Join(unsupported, ", "))
}

// ParseCartFilters validates the /shopcarts query string.
func ParseCartFilters(args url.Values, aliases validation.StatusMap) (CartFilters, error) {
	var f CartFilters

	if err := rejectUnknownKeys(args, cartFilterKeys); err != nil {
		return f, err
	}

	if raw := args.Get("status"); args.Has("status") {
		status, err := validation.NormalizeStatus(raw, aliases)
		if err != nil {
			return f, err
		}
		f.Status = &status
	}
	if raw := args.Get("customer_id"); args.Has("customer_id") {
		id, err := validation.PositiveInt(raw, "customer_id")
		if err != nil {
			return f, err
		}
		f.CustomerID = &id
	}
	if raw := args.Get("created_after"); args.Has("created_after") {
		t, err := validation.Timestamp(raw, "created_after")
		if err != nil {
			return f, err
		}
		f.CreatedAfter = &t
	}
	if raw := args.Get("created_before"); args.Has("created_before") {
		t, err := validation.Timestamp(raw, "created_before")
		if err != nil {
			return f, err
		}
		f.CreatedBefore = &t
	}

	minRaw, minField := pickAlias(args, "min_total", "total_price_gt")
	if minField != "" {
		d, err := validation.DecimalParam(minRaw, minField)
		if err != nil {
			return f, err
		}
		f.MinTotal = &d
	}
	maxRaw, maxField := pickAlias(args, "max_total", "total_price_lt")
	if maxField != "" {
		d, err := validation.DecimalParam(maxRaw, maxField)
		if err != nil {
			return f, err
		}
		f.MaxTotal = &d
	}

	if f.MinTotal != nil && f.MaxTotal != nil && f.MinTotal.GreaterThan(*f.MaxTotal) {
		return f, fmt.Errorf("max_total must be greater than or equal to min_total")
	}
	return f, nil
}

func pickAlias(args url.Values, primary, legacy string) (string, string) {
	if args.Has(primary) {
		return args.Get(primary), primary
	}
	if args.Has(legacy) {
		return args.Get(legacy), legacy
	}
	return "", ""
}

// TotalInRange reports whether a computed cart total satisfies the
// min/max bounds. Bounds are inclusive.
func (f CartFilters) TotalInRange(total decimal.Decimal) bool {
	if f.MinTotal != nil && total.LessThan(*f.MinTotal) {
		return false
	}
	if f.MaxTotal != nil && total.GreaterThan(*f.MaxTotal) {
		return false
	}
	return true
}

// HasTotalBounds reports whether in-memory total filtering is needed.
func (f CartFilters) HasTotalBounds() bool {
	return f.MinTotal != nil || f.MaxTotal != nil
}

// ItemFilters constrains the item collection of a single cart.
type ItemFilters struct {
	Description *string
	ProductID   *int64
	Quantity    *int
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
}

var itemFilterKeys = map[string]bool{
	"description": true,
	"product_id":  true,
	"sku":         true, // alias for product_id
	"quantity":    true,
	"min_price":   true,
	"max_price":   true,
}

// ParseItemFilters validates the /shopcarts/{id}/items query string.
func ParseItemFilters(args url.Values) (ItemFilters, error) {
	var f ItemFilters

	if err := rejectUnknownKeys(args, itemFilterKeys); err != nil {
		return f, err
	}

	if raw := args.Get("description"); args.Has("description") {
		desc := strings.TrimSpace(raw)
		if desc == "" {
			return f, fmt.Errorf("description must be a non-empty string when provided")
		}
		f.Description = &desc
	}

	pidRaw, pidField := pickAlias(args, "product_id", "sku")
	if pidField != "" {
		id, err := validation.PositiveInt(pidRaw, pidField)
		if err != nil {
			return f, err
		}
		f.ProductID = &id
	}
	if raw := args.Get("quantity"); args.Has("quantity") {
		q, err := validation.PositiveInt(raw, "quantity")
		if err != nil {
			return f, err
		}
		qty := int(q)
		f.Quantity = &qty
	}
	if raw := args.Get("min_price"); args.Has("min_price") {
		d, err := validation.DecimalParam(raw, "min_price")
		if err != nil {
			return f, err
		}
		f.MinPrice = &d
	}
	if raw := args.Get("max_price"); args.Has("max_price") {
		d, err := validation.DecimalParam(raw, "max_price")
		if err != nil {
			return f, err
		}
		f.MaxPrice = &d
	}

	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return f, fmt.Errorf("min_price must be less than or equal to max_price")
	}
	return f, nil
}
