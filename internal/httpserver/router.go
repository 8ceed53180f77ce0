package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Deps struct {
	Handler *ShopcartHTTP
	// BasePath is the mount point of the API, "/shopcarts" by default.
	// One deployment mounts the same routes under "/api/shopcarts".
	BasePath string
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	base := d.BasePath
	if base == "" {
		base = "/shopcarts"
	}
	g := e.Group(base)

	g.POST("", d.Handler.CreateCart)
	g.GET("", d.Handler.ListCarts)

	g.GET("/:customer_id", d.Handler.GetCart)
	g.PUT("/:customer_id", d.Handler.UpdateCart)
	g.PATCH("/:customer_id", d.Handler.UpdateCart)
	g.DELETE("/:customer_id", d.Handler.DeleteCart)

	g.PATCH("/:customer_id/checkout", d.Handler.Checkout)
	g.PUT("/:customer_id/checkout", d.Handler.Checkout)
	g.PATCH("/:customer_id/cancel", d.Handler.Cancel)
	g.PATCH("/:customer_id/lock", d.Handler.Lock)
	g.PATCH("/:customer_id/expire", d.Handler.Expire)
	g.PATCH("/:customer_id/reactivate", d.Handler.Reactivate)

	g.GET("/:customer_id/totals", d.Handler.Totals)

	g.POST("/:customer_id/items", d.Handler.AddItem)
	g.GET("/:customer_id/items", d.Handler.ListItems)
	g.GET("/:customer_id/items/:product_id", d.Handler.GetItem)
	g.PUT("/:customer_id/items/:product_id", d.Handler.UpdateItem)
	g.PATCH("/:customer_id/items/:product_id", d.Handler.UpdateItem)
	g.DELETE("/:customer_id/items/:product_id", d.Handler.DeleteItem)
}
