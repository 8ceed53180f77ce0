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

// ShopcartService owns the cart domain rules: validation of inbound fields,
// the status state machine, and the item-mutation guard. Persistence goes
// through Repo, lifecycle events through Events.
type ShopcartService struct {
	Repo    *repo.GormRepo
	Events  *events.Producer
	Aliases validation.StatusMap
}

func (s *ShopcartService) CreateCart(ctx context.Context, req transport.CreateShopcartRequest) (*models.Shopcart, error) {
	if req.CustomerID == nil || *req.CustomerID <= 0 {
		return nil, invalid("customer_id is required and must be a positive integer")
	}
	customerID := *req.CustomerID

	status := validation.StatusActive
	if req.Status != nil {
		normalized, err := validation.NormalizeStatus(*req.Status, s.Aliases)
		if err != nil {
			return nil, invalid(err.Error())
		}
		status = normalized
	}

	items, err := buildItems(req.Items)
	if err != nil {
		return nil, err
	}

	if _, err := s.Repo.GetCart(ctx, customerID); err == nil {
		return nil, conflict(fmt.Sprintf("Shopcart for customer '%d' already exists", customerID))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart := &models.Shopcart{
		CustomerID: customerID,
		Status:     status,
		Items:      items,
	}
	if req.Name != nil {
		cart.Name = *req.Name
	}

	if err := s.Repo.CreateCart(ctx, cart); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict(fmt.Sprintf("Shopcart for customer '%d' already exists", customerID))
		}
		return nil, err
	}

	s.Events.Publish(ctx, events.TypeCartCreated, customerID, map[string]any{"status": cart.Status})
	return cart, nil
}

func (s *ShopcartService) GetCart(ctx context.Context, customerID int64) (*models.Shopcart, error) {
	cart, err := s.Repo.GetCart(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(fmt.Sprintf("Shopcart for customer '%d' was not found", customerID))
		}
		return nil, err
	}
	return cart, nil
}

// ListCarts applies the storable filters in SQL and the computed-total
// bounds in memory over the loaded items.
func (s *ShopcartService) ListCarts(ctx context.Context, f query.CartFilters) ([]models.Shopcart, error) {
	carts, err := s.Repo.ListCarts(ctx, f)
	if err != nil {
		return nil, err
	}
	if !f.HasTotalBounds() {
		return carts, nil
	}

	filtered := make([]models.Shopcart, 0, len(carts))
	for i := range carts {
		if f.TotalInRange(carts[i].TotalPrice()) {
			filtered = append(filtered, carts[i])
		}
	}
	return filtered, nil
}

// UpdateCart applies a generic PUT/PATCH: status and/or name changes, and a
// full replacement of the item collection when items is supplied.
func (s *ShopcartService) UpdateCart(ctx context.Context, customerID int64, req transport.UpdateShopcartRequest) (*models.Shopcart, error) {
	cart, err := s.GetCart(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		normalized, err := validation.NormalizeStatus(*req.Status, s.Aliases)
		if err != nil {
			return nil, invalid(err.Error())
		}
		cart.Status = normalized
	}
	if req.Name != nil {
		cart.Name = *req.Name
	}

	if req.Items != nil {
		items, err := buildItems(req.Items)
		if err != nil {
			return nil, err
		}
		if err := s.Repo.ReplaceItems(ctx, cart, items); err != nil {
			return nil, err
		}
	} else {
		if err := s.Repo.SaveCart(ctx, cart); err != nil {
			return nil, err
		}
	}

	s.Events.Publish(ctx, events.TypeCartUpdated, customerID, nil)
	return s.GetCart(ctx, customerID)
}

func (s *ShopcartService) DeleteCart(ctx context.Context, customerID int64) error {
	cart, err := s.GetCart(ctx, customerID)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteCart(ctx, cart); err != nil {
		return err
	}
	s.Events.Publish(ctx, events.TypeCartDeleted, customerID, nil)
	return nil
}

// buildItems validates a cart-level items payload into model rows. Entries
// with quantity zero are dropped, duplicates of the same product coalesce by
// summing quantities with the last price and description winning.
func buildItems(payloads []transport.ItemPayload) ([]models.ShopcartItem, error) {
	var items []models.ShopcartItem
	index := map[int64]int{}

	for _, p := range payloads {
		if p.ProductID == nil || *p.ProductID <= 0 {
			return nil, invalid("product_id is required and must be a positive integer")
		}
		if p.Quantity == nil {
			return nil, invalid("quantity must be an integer")
		}
		if err := validation.QuantityOnUpdate(*p.Quantity); err != nil {
			return nil, invalid(err.Error())
		}
		if *p.Quantity == 0 {
			continue
		}
		if p.Price == nil {
			return nil, invalid("price is required")
		}
		price, err := validation.Price(*p.Price)
		if err != nil {
			return nil, invalid(err.Error())
		}

		description := ""
		if p.Description != nil {
			description = *p.Description
		}

		if at, ok := index[*p.ProductID]; ok {
			items[at].Quantity += *p.Quantity
			if items[at].Quantity > validation.MaxQuantity {
				return nil, invalid("invalid quantity")
			}
			items[at].Price = price
			if description != "" {
				items[at].Description = description
			}
			continue
		}

		items = append(items, models.ShopcartItem{
			ProductID:   *p.ProductID,
			Quantity:    *p.Quantity,
			Price:       price,
			Description: description,
		})
		index[*p.ProductID] = len(items) - 1
	}
	return items, nil
}
