package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/shopcarts/internal/models"
	"github.com/Skotchmaster/shopcarts/internal/query"
	"github.com/Skotchmaster/shopcarts/internal/validation"
)

// ErrQuantityRange is returned when a stored quantity would leave the 1..99
// range. It is raised inside the transaction so the whole mutation rolls back.
var ErrQuantityRange = errors.New("invalid quantity")

type GormRepo struct {
	DB *gorm.DB
}

func itemOrder(db *gorm.DB) *gorm.DB {
	return db.Order("shopcart_items.id")
}

// lockForUpdate takes a row lock on postgres; sqlite serializes writers on
// its own and rejects the FOR UPDATE syntax.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// CreateCart persists a cart and its initial items in one transaction.
// A duplicate customer_id surfaces as gorm.ErrDuplicatedKey.
func (r *GormRepo) CreateCart(ctx context.Context, cart *models.Shopcart) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(cart).Error
	})
}

// GetCart fetches a cart by customer id with its items in insertion order.
func (r *GormRepo) GetCart(ctx context.Context, customerID int64) (*models.Shopcart, error) {
	var cart models.Shopcart
	err := r.DB.WithContext(ctx).
		Preload("Items", itemOrder).
		Where("customer_id = ?", customerID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// ListCarts applies the storable filter fields in SQL; total-price bounds
// are computed over the loaded items by the caller.
func (r *GormRepo) ListCarts(ctx context.Context, f query.CartFilters) ([]models.Shopcart, error) {
	q := r.DB.WithContext(ctx).Model(&models.Shopcart{}).Preload("Items", itemOrder)

	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.CreatedAfter != nil {
		q = q.Where("created_date >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		q = q.Where("created_date <= ?", *f.CreatedBefore)
	}

	var carts []models.Shopcart
	if err := q.Order("shopcarts.id").Find(&carts).Error; err != nil {
		return nil, err
	}
	return carts, nil
}

// SaveCart persists changed cart fields; last_modified refreshes via the
// model's autoUpdateTime.
func (r *GormRepo) SaveCart(ctx context.Context, cart *models.Shopcart) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Items").Save(cart).Error
	})
}

// DeleteCart removes the cart and its items atomically.
func (r *GormRepo) DeleteCart(ctx context.Context, cart *models.Shopcart) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shopcart_id = ?", cart.ID).Delete(&models.ShopcartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(cart).Error
	})
}

// ListItems returns one cart's items with the filters applied in SQL,
// ordered by insertion.
func (r *GormRepo) ListItems(ctx context.Context, cartID uint, f query.ItemFilters) ([]models.ShopcartItem, error) {
	q := r.DB.WithContext(ctx).Model(&models.ShopcartItem{}).Where("shopcart_id = ?", cartID)

	if f.Description != nil {
		q = q.Where("LOWER(description) LIKE ?", "%"+strings.ToLower(*f.Description)+"%")
	}
	if f.ProductID != nil {
		q = q.Where("product_id = ?", *f.ProductID)
	}
	if f.Quantity != nil {
		q = q.Where("quantity = ?", *f.Quantity)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}

	var items []models.ShopcartItem
	if err := q.Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AddItem increments an existing line for the product or creates a new one,
// touching the cart's last_modified in the same transaction. Price and
// description override the stored values only when supplied.
func (r *GormRepo) AddItem(ctx context.Context, cartID uint, productID int64, increment int, price *decimal.Decimal, description *string) (*models.ShopcartItem, error) {
	var item models.ShopcartItem

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).
			Where("shopcart_id = ? AND product_id = ?", cartID, productID).
			First(&item).Error

		switch {
		case err == nil:
			item.Quantity += increment
			if item.Quantity > validation.MaxQuantity {
				return ErrQuantityRange
			}
			if price != nil {
				item.Price = *price
			}
			if description != nil && *description != "" {
				item.Description = *description
			}
			if err := tx.Save(&item).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.ShopcartItem{
				ShopcartID: cartID,
				ProductID:  productID,
				Quantity:   increment,
			}
			if price != nil {
				item.Price = *price
			}
			if description != nil {
				item.Description = *description
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		default:
			return err
		}

		return touchCart(tx, cartID)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetItem fetches a single line by (cart, product).
func (r *GormRepo) GetItem(ctx context.Context, cartID uint, productID int64) (*models.ShopcartItem, error) {
	var item models.ShopcartItem
	err := r.DB.WithContext(ctx).
		Where("shopcart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem sets absolute values on an existing line; quantity zero deletes
// it. Returns the line (nil when deleted) and whether deletion happened.
func (r *GormRepo) UpdateItem(ctx context.Context, cartID uint, productID int64, quantity int, price decimal.Decimal, description string) (*models.ShopcartItem, bool, error) {
	var item models.ShopcartItem
	deleted := false

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).
			Where("shopcart_id = ? AND product_id = ?", cartID, productID).
			First(&item).Error; err != nil {
			return err
		}

		if quantity == 0 {
			if err := tx.Delete(&item).Error; err != nil {
				return err
			}
			deleted = true
		} else {
			item.Quantity = quantity
			item.Price = price
			item.Description = description
			if err := tx.Save(&item).Error; err != nil {
				return err
			}
		}

		return touchCart(tx, cartID)
	})
	if err != nil {
		return nil, false, err
	}
	if deleted {
		return nil, true, nil
	}
	return &item, false, nil
}

// DeleteItem removes one line; missing lines surface as ErrRecordNotFound.
func (r *GormRepo) DeleteItem(ctx context.Context, cartID uint, productID int64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("shopcart_id = ? AND product_id = ?", cartID, productID).
			Delete(&models.ShopcartItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return touchCart(tx, cartID)
	})
}

// ReplaceItems swaps the whole item collection and saves changed cart
// fields, all-or-nothing.
func (r *GormRepo) ReplaceItems(ctx context.Context, cart *models.Shopcart, items []models.ShopcartItem) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shopcart_id = ?", cart.ID).Delete(&models.ShopcartItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = 0
			items[i].ShopcartID = cart.ID
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}
		cart.Items = items
		return tx.Omit("Items").Save(cart).Error
	})
}

func touchCart(tx *gorm.DB, cartID uint) error {
	return tx.Model(&models.Shopcart{}).
		Where("id = ?", cartID).
		Update("last_modified", time.Now().UTC()).Error
}
