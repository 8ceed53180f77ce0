package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Skotchmaster/shopcarts/internal/events"
	"github.com/Skotchmaster/shopcarts/internal/models"
	"github.com/Skotchmaster/shopcarts/internal/validation"
)

// Action is a named status transition. Every action is a total function:
// applying it to a cart already in the target state succeeds and still
// refreshes last_modified, except cancel which is a no-op on an already
// abandoned cart.
type Action string

const (
	ActionCheckout   Action = "checkout"
	ActionCancel     Action = "cancel"
	ActionLock       Action = "lock"
	ActionExpire     Action = "expire"
	ActionReactivate Action = "reactivate"
)

var actionTargets = map[Action]string{
	ActionCheckout:   validation.StatusAbandoned,
	ActionCancel:     validation.StatusAbandoned,
	ActionLock:       validation.StatusLocked,
	ActionExpire:     validation.StatusExpired,
	ActionReactivate: validation.StatusActive,
}

func (s *ShopcartService) Transition(ctx context.Context, customerID int64, action Action) (*models.Shopcart, error) {
	target, ok := actionTargets[action]
	if !ok {
		return nil, invalid(fmt.Sprintf("unknown action '%s'", action))
	}

	cart, err := s.GetCart(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if action == ActionCancel && cart.Status == validation.StatusAbandoned {
		return cart, nil
	}

	from := cart.Status
	cart.Status = target
	cart.LastModified = time.Now().UTC()
	if err := s.Repo.SaveCart(ctx, cart); err != nil {
		return nil, err
	}

	s.Events.Publish(ctx, events.TypeStatusChanged, customerID, map[string]any{
		"action": string(action),
		"from":   from,
		"to":     target,
	})
	return cart, nil
}
