package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shopcarts/internal/events"
	"github.com/Skotchmaster/shopcarts/internal/models"
	"github.com/Skotchmaster/shopcarts/internal/repo"
	"github.com/Skotchmaster/shopcarts/internal/service"
	"github.com/Skotchmaster/shopcarts/internal/validation"
)

type testEnv struct {
	t *testing.T
	e *echo.Echo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Shopcart{}, &models.ShopcartItem{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	svc := &service.ShopcartService{
		Repo:    &repo.GormRepo{DB: db},
		Events:  events.NewProducer(nil),
		Aliases: validation.DefaultAliases(),
	}

	e := echo.New()
	Register(e, &Deps{
		Handler:  &ShopcartHTTP{Svc: svc, Aliases: svc.Aliases, BasePath: "/shopcarts"},
		BasePath: "/shopcarts",
	})

	return &testEnv{t: t, e: e}
}

// do runs one request through the full router, error handler included.
func (env *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	env.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(env.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) decode(rec *httptest.ResponseRecorder, out any) {
	env.t.Helper()
	require.NoError(env.t, json.Unmarshal(rec.Body.Bytes(), out))
}

type cartBody struct {
	CustomerID   int64      `json:"customerId"`
	Name         string     `json:"name"`
	Status       string     `json:"status"`
	StatusLabel  string     `json:"statusLabel"`
	TotalItems   int        `json:"totalItems"`
	TotalPrice   float64    `json:"totalPrice"`
	CreatedDate  string     `json:"createdDate"`
	LastModified string     `json:"lastModified"`
	Items        []itemBody `json:"items"`
}

type itemBody struct {
	ItemID      uint    `json:"itemId"`
	ProductID   int64   `json:"productId"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

type errBody struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (env *testEnv) createCart(customerID int64) cartBody {
	env.t.Helper()
	rec := env.do(http.MethodPost, "/shopcarts", map[string]any{"customer_id": customerID})
	require.Equal(env.t, http.StatusCreated, rec.Code, rec.Body.String())

	var cart cartBody
	env.decode(rec, &cart)
	return cart
}

func (env *testEnv) addItem(customerID, productID int64, quantity int, price string) itemBody {
	env.t.Helper()
	rec := env.do(http.MethodPost, fmt.Sprintf("/shopcarts/%d/items", customerID), map[string]any{
		"product_id": productID,
		"quantity":   quantity,
		"price":      json.Number(price),
	})
	require.Equal(env.t, http.StatusCreated, rec.Code, rec.Body.String())

	var item itemBody
	env.decode(rec, &item)
	return item
}
