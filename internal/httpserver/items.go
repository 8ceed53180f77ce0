package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopcarts/internal/query"
	"github.com/Skotchmaster/shopcarts/internal/transport"
	"github.com/Skotchmaster/shopcarts/pkg/logging"
)

func productIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "product_id must be a positive integer")
	}
	return id, nil
}

func (h *ShopcartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item.add")

	customerID, err := customerIDParam(c)
	if err != nil {
		return err
	}

	var req transport.ItemPayload
	if err := c.Bind(&req); err != nil {
		l.Warn("add_item_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.AddItem(ctx, customerID, req)
	if err != nil {
		he := serviceError(err)
		l.Warn("add_item_error", "status", he.Code, "error", err)
		return he
	}

	l.Info("item_added", "customer_id", customerID, "product_id", item.ProductID, "quantity", item.Quantity)
	return c.JSON(http.StatusCreated, transport.NewItemView(item))
}

func (h *ShopcartHTTP) ListItems(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item.list")

	customerID, err := customerIDParam(c)
	if err != nil {
		return err
	}

	filters, err := query.ParseItemFilters(c.QueryParams())
	if err != nil {
		l.Warn("list_items_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	items, err := h.Svc.ListItems(ctx, customerID, filters)
	if err != nil {
		he := serviceError(err)
		l.Warn("list_items_error", "status", he.Code, "error", err)
		return he
	}

	return c.JSON(http.StatusOK, transport.NewItemViews(items))
}

func (h *ShopcartHTTP) GetItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item.get")

	customerID, err := customerIDParam(c)
	if err != nil {
		return err
	}
	productID, err := productIDParam(c)
	if err != nil {
		return err
	}

	item, err := h.Svc.GetItem(ctx, customerID, productID)
	if err != nil {
		he := serviceError(err)
		l.Warn("get_item_error", "status", he.Code, "error", err)
		return he
	}

	return c.JSON(http.StatusOK, transport.NewItemView(item))
}

func (h *ShopcartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item.update")

	customerID, err := customerIDParam(c)
	if err != nil {
		return err
	}
	productID, err := productIDParam(c)
	if err != nil {
		return err
	}

	var req transport.ItemPayload
	if err := c.Bind(&req); err != nil {
		l.Warn("update_item_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, deleted, err := h.Svc.UpdateItem(ctx, customerID, productID, req)
	if err != nil {
		he := serviceError(err)
		l.Warn("update_item_error", "status", he.Code, "error", err)
		return he
	}

	if deleted {
		l.Info("item_removed", "customer_id", customerID, "product_id", productID)
		return c.NoContent(http.StatusNoContent)
	}

	l.Info("item_updated", "customer_id", customerID, "product_id", productID, "quantity", item.Quantity)
	return c.JSON(http.StatusOK, transport.NewItemView(item))
}

func (h *ShopcartHTTP) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item.delete")

	customerID, err := customerIDParam(c)
	if err != nil {
		return err
	}
	productID, err := productIDParam(c)
	if err != nil {
		return err
	}

	if err := h.Svc.DeleteItem(ctx, customerID, productID); err != nil {
		he := serviceError(err)
		l.Warn("delete_item_error", "status", he.Code, "error", err)
		return he
	}

	l.Info("item_removed", "customer_id", customerID, "product_id", productID)
	return c.NoContent(http.StatusNoContent)
}
