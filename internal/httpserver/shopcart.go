package httpserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopcarts/internal/query"
	"github.com/Skotchmaster/shopcarts/internal/service"
	"github.com/Skotchmaster/shopcarts/internal/transport"
	"github.com/Skotchmaster/shopcarts/internal/validation"
	"github.com/Skotchmaster/shopcarts/pkg/logging"
)

type ShopcartHTTP struct {
	Svc      *service.ShopcartService
	Aliases  validation.StatusMap
	BasePath string
}

func customerIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("customer_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "customer_id must be a positive integer")
	}
	return id, nil
}

func (h *ShopcartHTTP) CreateCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shopcart.create")

	var req transport.CreateShopcartRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_cart_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	cart, err := h.Svc.CreateCart(ctx, req)
	if err != nil {
		he := serviceError(err)
		l.Warn("create_cart_error", "status", he.Code, "error", err)
		return he
	}

	l.Info("cart_created", "customer_id", cart.CustomerID)
	c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("%s/%d", h.BasePath, cart.CustomerID))
	return c.JSON(http.StatusCreated, transport.NewShopcartView(cart))
}

func (h *ShopcartHTTP) ListCarts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shopcart.list")

	filters, err := query.ParseCartFilters(c.QueryParams(), h.Aliases)
	if err != nil {
		l.Warn("list_carts_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	carts, err := h.Svc.ListCarts(ctx, filters)
	if err != nil {
		he := serviceError(err)
		l.Error("list_carts_error", "status", he.Code, "error", err)
		return he
	}

	return c.JSON(http.StatusOK, transport.NewShopcartViews(carts))
}

func (h *ShopcartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shopcart.get")

	customerID, err := customerIDParam(c)
	if err != nil {
		return err
	}

	cart, err := h.Svc.GetCart(ctx, customerID)
	if err != nil {
		he := serviceError(err)
		l.Warn("get_cart_error", "status", he.Code, "error", err)
		return he
	}

	return c.JSON(http.StatusOK, transport.NewShopcartView(cart))
}

func (h *ShopcartHTTP) UpdateCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shopcart.update")

	customerID, err := customerIDParam(c)
	if err != nil {
		return err
	}

	var req transport.UpdateShopcartRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_cart_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	cart, err := h.Svc.UpdateCart(ctx, customerID, req)
	if err != nil {
		he := serviceError(err)
		l.Warn("update_cart_error", "status", he.Code, "error", err)
		return he
	}

	l.Info("cart_updated", "customer_id", customerID)
	return c.JSON(http.StatusOK, transport.NewShopcartView(cart))
}

func (h *ShopcartHTTP) DeleteCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shopcart.delete")

	customerID, err := customerIDParam(c)
	if err != nil {
		return err
	}

	if err := h.Svc.DeleteCart(ctx, customerID); err != nil {
		he := serviceError(err)
		l.Warn("delete_cart_error", "status", he.Code, "error", err)
		return he
	}

	l.Info("cart_deleted", "customer_id", customerID)
	return c.NoContent(http.StatusNoContent)
}

func (h *ShopcartHTTP) transition(c echo.Context, action service.Action) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shopcart."+string(action))

	customerID, err := customerIDParam(c)
	if err != nil {
		return err
	}

	cart, err := h.Svc.Transition(ctx, customerID, action)
	if err != nil {
		he := serviceError(err)
		l.Warn("transition_error", "status", he.Code, "action", string(action), "error", err)
		return he
	}

	l.Info("cart_transitioned", "customer_id", customerID, "action", string(action), "status", cart.Status)
	return c.JSON(http.StatusOK, transport.NewShopcartView(cart))
}

func (h *ShopcartHTTP) Checkout(c echo.Context) error   { return h.transition(c, service.ActionCheckout) }
func (h *ShopcartHTTP) Cancel(c echo.Context) error     { return h.transition(c, service.ActionCancel) }
func (h *ShopcartHTTP) Lock(c echo.Context) error       { return h.transition(c, service.ActionLock) }
func (h *ShopcartHTTP) Expire(c echo.Context) error     { return h.transition(c, service.ActionExpire) }
func (h *ShopcartHTTP) Reactivate(c echo.Context) error { return h.transition(c, service.ActionReactivate) }

func (h *ShopcartHTTP) Totals(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shopcart.totals")

	customerID, err := customerIDParam(c)
	if err != nil {
		return err
	}

	cart, err := h.Svc.GetCart(ctx, customerID)
	if err != nil {
		he := serviceError(err)
		l.Warn("totals_error", "status", he.Code, "error", err)
		return he
	}

	return c.JSON(http.StatusOK, transport.NewTotalsView(cart))
}
