// Package transport defines the wire shapes: snake_case request bodies and
// camelCase response views.
package transport

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/shopcarts/internal/models"
	"github.com/Skotchmaster/shopcarts/internal/validation"
)

type ItemPayload struct {
	ProductID   *int64           `json:"product_id"`
	Quantity    *int             `json:"quantity"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description"`
}

type CreateShopcartRequest struct {
	CustomerID *int64        `json:"customer_id"`
	Status     *string       `json:"status"`
	Name       *string       `json:"name"`
	Items      []ItemPayload `json:"items"`
}

type UpdateShopcartRequest struct {
	Status *string       `json:"status"`
	Name   *string       `json:"name"`
	Items  []ItemPayload `json:"items"`
}

// ItemView is the canonical item wire shape.
type ItemView struct {
	ItemID      uint    `json:"itemId"`
	ProductID   int64   `json:"productId"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// ShopcartView is the canonical cart wire shape. Totals are recomputed from
// the current items on every render.
type ShopcartView struct {
	CustomerID   int64      `json:"customerId"`
	Name         string     `json:"name"`
	Status       string     `json:"status"`
	StatusLabel  string     `json:"statusLabel"`
	TotalItems   int        `json:"totalItems"`
	TotalPrice   float64    `json:"totalPrice"`
	CreatedDate  string     `json:"createdDate"`
	LastModified string     `json:"lastModified"`
	Items        []ItemView `json:"items"`
}

// TotalsView keeps the field spellings of the totals endpoint contract.
type TotalsView struct {
	CustomerID    int64   `json:"customer_id"`
	ItemCount     int     `json:"item_count"`
	TotalQuantity int     `json:"total_quantity"`
	Subtotal      float64 `json:"subtotal"`
	Discount      float64 `json:"discount"`
	Total         float64 `json:"total"`
}

func NewItemView(item *models.ShopcartItem) ItemView {
	return ItemView{
		ItemID:      item.ID,
		ProductID:   item.ProductID,
		Description: item.Description,
		Quantity:    item.Quantity,
		Price:       item.Price.InexactFloat64(),
	}
}

func NewItemViews(items []models.ShopcartItem) []ItemView {
	views := make([]ItemView, 0, len(items))
	for i := range items {
		views = append(views, NewItemView(&items[i]))
	}
	return views
}

func NewShopcartView(cart *models.Shopcart) ShopcartView {
	return ShopcartView{
		CustomerID:   cart.CustomerID,
		Name:         cart.Name,
		Status:       cart.Status,
		StatusLabel:  validation.StatusLabel(cart.Status),
		TotalItems:   cart.TotalQuantity(),
		TotalPrice:   cart.TotalPrice().InexactFloat64(),
		CreatedDate:  cart.CreatedDate.UTC().Format(time.RFC3339),
		LastModified: cart.LastModified.UTC().Format(time.RFC3339),
		Items:        NewItemViews(cart.Items),
	}
}

func NewShopcartViews(carts []models.Shopcart) []ShopcartView {
	views := make([]ShopcartView, 0, len(carts))
	for i := range carts {
		views = append(views, NewShopcartView(&carts[i]))
	}
	return views
}

// NewTotalsView aggregates the always-recomputed totals. Discount is a
// reserved field and stays zero until a discount policy exists.
func NewTotalsView(cart *models.Shopcart) TotalsView {
	subtotal := cart.TotalPrice()
	discount := decimal.Zero
	return TotalsView{
		CustomerID:    cart.CustomerID,
		ItemCount:     len(cart.Items),
		TotalQuantity: cart.TotalQuantity(),
		Subtotal:      subtotal.InexactFloat64(),
		Discount:      discount.InexactFloat64(),
		Total:         subtotal.Sub(discount).InexactFloat64(),
	}
}
