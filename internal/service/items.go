package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shopcarts/internal/events"
	"github.com/Skotchmaster/shopcarts/internal/models"
	"github.com/Skotchmaster/shopcarts/internal/query"
	"github.com/Skotchmaster/shopcarts/internal/repo"
	"github.com/Skotchmaster/shopcarts/internal/transport"
	"github.com/Skotchmaster/shopcarts/internal/validation"
)

// guardItemMutation rejects item changes once a cart has been finalized for
// checkout.
func guardItemMutation(cart *models.Shopcart) error {
	if cart.Status == validation.StatusAbandoned {
		return conflict("Cannot update items on an abandoned shopcart")
	}
	return nil
}

// AddItem adds a product line or increments the existing one for the same
// product. Price is required only for a brand-new line; omitted price and
// description keep the stored values.
func (s *ShopcartService) AddItem(ctx context.Context, customerID int64, req transport.ItemPayload) (*models.ShopcartItem, error) {
	cart, err := s.GetCart(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := guardItemMutation(cart); err != nil {
		return nil, err
	}

	if req.ProductID == nil || *req.ProductID <= 0 {
		return nil, invalid("product_id is required and must be an integer")
	}
	productID := *req.ProductID

	if req.Quantity == nil {
		return nil, invalid("quantity must be a positive integer")
	}
	if err := validation.QuantityOnCreate(*req.Quantity); err != nil {
		return nil, invalid(err.Error())
	}
	increment := *req.Quantity

	existing := cart.FindItem(productID)
	if existing == nil && req.Price == nil {
		return nil, invalid("price is required")
	}

	priceArg := req.Price
	if req.Price != nil {
		p, err := validation.Price(*req.Price)
		if err != nil {
			return nil, invalid(err.Error())
		}
		priceArg = &p
	}

	item, err := s.Repo.AddItem(ctx, cart.ID, productID, increment, priceArg, req.Description)
	if err != nil {
		if errors.Is(err, repo.ErrQuantityRange) {
			return nil, invalid("invalid quantity")
		}
		return nil, err
	}

	s.Events.Publish(ctx, events.TypeItemAdded, customerID, map[string]any{
		"product_id": productID,
		"quantity":   item.Quantity,
	})
	return item, nil
}

func (s *ShopcartService) ListItems(ctx context.Context, customerID int64, f query.ItemFilters) ([]models.ShopcartItem, error) {
	cart, err := s.GetCart(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return s.Repo.ListItems(ctx, cart.ID, f)
}

func (s *ShopcartService) GetItem(ctx context.Context, customerID int64, productID int64) (*models.ShopcartItem, error) {
	cart, err := s.GetCart(ctx, customerID)
	if err != nil {
		return nil, err
	}

	item, err := s.Repo.GetItem(ctx, cart.ID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, itemNotFound(fmt.Sprintf("Item with product_id '%d' not found in this shopcart", productID))
		}
		return nil, err
	}
	return item, nil
}

// UpdateItem sets absolute values on one line; omitted fields keep their
// current values and quantity zero deletes the line. The bool result
// reports deletion.
func (s *ShopcartService) UpdateItem(ctx context.Context, customerID int64, productID int64, req transport.ItemPayload) (*models.ShopcartItem, bool, error) {
	cart, err := s.GetCart(ctx, customerID)
	if err != nil {
		return nil, false, err
	}
	if err := guardItemMutation(cart); err != nil {
		return nil, false, err
	}

	current, err := s.Repo.GetItem(ctx, cart.ID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, itemNotFound(fmt.Sprintf("Item with product_id '%d' not found in this shopcart", productID))
		}
		return nil, false, err
	}

	quantity := current.Quantity
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if err := validation.QuantityOnUpdate(quantity); err != nil {
		return nil, false, invalid(err.Error())
	}

	price := current.Price
	if req.Price != nil {
		p, err := validation.Price(*req.Price)
		if err != nil {
			return nil, false, invalid(err.Error())
		}
		price = p
	}

	description := current.Description
	if req.Description != nil {
		description = *req.Description
	}

	item, deleted, err := s.Repo.UpdateItem(ctx, cart.ID, productID, quantity, price, description)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, itemNotFound(fmt.Sprintf("Item with product_id '%d' not found in this shopcart", productID))
		}
		return nil, false, err
	}

	if deleted {
		s.Events.Publish(ctx, events.TypeItemRemoved, customerID, map[string]any{"product_id": productID})
		return nil, true, nil
	}
	s.Events.Publish(ctx, events.TypeItemUpdated, customerID, map[string]any{
		"product_id": productID,
		"quantity":   item.Quantity,
	})
	return item, false, nil
}

func (s *ShopcartService) DeleteItem(ctx context.Context, customerID int64, productID int64) error {
	cart, err := s.GetCart(ctx, customerID)
	if err != nil {
		return err
	}
	if err := guardItemMutation(cart); err != nil {
		return err
	}

	if err := s.Repo.DeleteItem(ctx, cart.ID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return itemNotFound(fmt.Sprintf("Item with product_id '%d' not found in this shopcart", productID))
		}
		return err
	}

	s.Events.Publish(ctx, events.TypeItemRemoved, customerID, map[string]any{"product_id": productID})
	return nil
}
