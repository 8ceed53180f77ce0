package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shopcart is a per-customer cart with a lifecycle status. CustomerID is the
// external key: every API route addresses carts by it, never by row id.
type Shopcart struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CustomerID   int64          `gorm:"uniqueIndex;not null" json:"customer_id"`
	Name         string         `gorm:"size:128" json:"name"`
	Status       string         `gorm:"size:20;not null;default:active" json:"status"`
	CreatedDate  time.Time      `gorm:"autoCreateTime" json:"created_date"`
	LastModified time.Time      `gorm:"autoUpdateTime" json:"last_modified"`
	Items        []ShopcartItem `gorm:"foreignKey:ShopcartID;constraint:OnDelete:CASCADE" json:"items"`
}

func (Shopcart) TableName() string { return "shopcarts" }

// ShopcartItem is a product line inside a cart. ProductID is unique within
// the owning cart; adds against an existing product increment quantity.
type ShopcartItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ShopcartID  uint            `gorm:"uniqueIndex:idx_cart_product;not null" json:"shopcart_id"`
	ProductID   int64           `gorm:"uniqueIndex:idx_cart_product;not null" json:"product_id"`
	Description string          `gorm:"size:256" json:"description"`
	Quantity    int             `gorm:"not null;default:1" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
}

func (ShopcartItem) TableName() string { return "shopcart_items" }

// TotalPrice is Σ(quantity × price) over current items, computed at read
// time and never stored.
func (s *Shopcart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// TotalQuantity is the number of units across all lines.
func (s *Shopcart) TotalQuantity() int {
	total := 0
	for _, item := range s.Items {
		total += item.Quantity
	}
	return total
}

// FindItem returns the line for productID, or nil.
func (s *Shopcart) FindItem(productID int64) *ShopcartItem {
	for i := range s.Items {
		if s.Items[i].ProductID == productID {
			return &s.Items[i]
		}
	}
	return nil
}
