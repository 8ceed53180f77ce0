package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shopcarts/internal/events"
	"github.com/Skotchmaster/shopcarts/internal/models"
	"github.com/Skotchmaster/shopcarts/internal/repo"
	"github.com/Skotchmaster/shopcarts/internal/transport"
	"github.com/Skotchmaster/shopcarts/internal/validation"
)

func newTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func newTestService(t *testing.T) *ShopcartService {
	t.Helper()
	return &ShopcartService{
		Repo:    &repo.GormRepo{DB: newTestDB(t)},
		Events:  events.NewProducer(nil),
		Aliases: validation.DefaultAliases(),
	}
}

func ptr[T any](v T) *T { return &v }

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func mustCreateCart(t *testing.T, svc *ShopcartService, customerID int64) *models.Shopcart {
	t.Helper()
	cart, err := svc.CreateCart(context.Background(), transport.CreateShopcartRequest{
		CustomerID: ptr(customerID),
	})
	require.NoError(t, err)
	return cart
}

func mustAddItem(t *testing.T, svc *ShopcartService, customerID, productID int64, quantity int, price string) *models.ShopcartItem {
	t.Helper()
	item, err := svc.AddItem(context.Background(), customerID, transport.ItemPayload{
		ProductID: ptr(productID),
		Quantity:  ptr(quantity),
		Price:     dec(price),
	})
	require.NoError(t, err)
	return item
}

func TestCreateCartDefaults(t *testing.T) {
	svc := newTestService(t)

	cart := mustCreateCart(t, svc, 1)
	require.Equal(t, int64(1), cart.CustomerID)
	require.Equal(t, validation.StatusActive, cart.Status)
	require.Empty(t, cart.Items)
	require.False(t, cart.CreatedDate.IsZero())
	require.False(t, cart.LastModified.IsZero())
}

func TestCreateCartWithAliasStatus(t *testing.T) {
	svc := newTestService(t)

	cart, err := svc.CreateCart(context.Background(), transport.CreateShopcartRequest{
		CustomerID: ptr(int64(2)),
		Status:     ptr("PURCHASED"),
		Name:       ptr("holiday cart"),
	})
	require.NoError(t, err)
	require.Equal(t, validation.StatusLocked, cart.Status)
	require.Equal(t, "holiday cart", cart.Name)
}

func TestCreateCartRejectsMissingCustomerID(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateCart(context.Background(), transport.CreateShopcartRequest{})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateCartRejectsInvalidStatus(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateCart(context.Background(), transport.CreateShopcartRequest{
		CustomerID: ptr(int64(3)),
		Status:     ptr("pending"),
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateCartDuplicateCustomerConflicts(t *testing.T) {
	svc := newTestService(t)

	mustCreateCart(t, svc, 4)
	_, err := svc.CreateCart(context.Background(), transport.CreateShopcartRequest{
		CustomerID: ptr(int64(4)),
	})
	require.ErrorIs(t, err, ErrConflict)
}

func TestCreateCartWithItemsCoalescesDuplicates(t *testing.T) {
	svc := newTestService(t)

	cart, err := svc.CreateCart(context.Background(), transport.CreateShopcartRequest{
		CustomerID: ptr(int64(5)),
		Items: []transport.ItemPayload{
			{ProductID: ptr(int64(10)), Quantity: ptr(2), Price: dec("1.00")},
			{ProductID: ptr(int64(11)), Quantity: ptr(0), Price: dec("9.99")},
			{ProductID: ptr(int64(10)), Quantity: ptr(3), Price: dec("1.50")},
		},
	})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	require.Equal(t, int64(10), cart.Items[0].ProductID)
	require.Equal(t, 5, cart.Items[0].Quantity)
	require.True(t, cart.Items[0].Price.Equal(decimal.RequireFromString("1.50")))
}

func TestCreateCartRejectsBadItemPayloads(t *testing.T) {
	svc := newTestService(t)

	cases := []transport.ItemPayload{
		{Quantity: ptr(1), Price: dec("1.00")},                            // missing product_id
		{ProductID: ptr(int64(1)), Price: dec("1.00")},                    // missing quantity
		{ProductID: ptr(int64(1)), Quantity: ptr(100), Price: dec("1")},   // quantity over bound
		{ProductID: ptr(int64(1)), Quantity: ptr(-2), Price: dec("1")},    // negative quantity
		{ProductID: ptr(int64(1)), Quantity: ptr(1)},                      // missing price
		{ProductID: ptr(int64(1)), Quantity: ptr(1), Price: dec("-0.50")}, // negative price
	}
	for i, payload := range cases {
		_, err := svc.CreateCart(context.Background(), transport.CreateShopcartRequest{
			CustomerID: ptr(int64(100 + i)),
			Items:      []transport.ItemPayload{payload},
		})
		require.ErrorIs(t, err, ErrValidation, "case %d", i)
	}
}

func TestGetCartNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetCart(context.Background(), 404)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTotalPriceComputedFromItems(t *testing.T) {
	svc := newTestService(t)

	mustCreateCart(t, svc, 6)
	mustAddItem(t, svc, 6, 1001, 2, "19.99")
	mustAddItem(t, svc, 6, 1002, 1, "5.00")

	cart, err := svc.GetCart(context.Background(), 6)
	require.NoError(t, err)
	require.True(t, cart.TotalPrice().Equal(decimal.RequireFromString("44.98")), cart.TotalPrice().String())
	require.Equal(t, 3, cart.TotalQuantity())
}

func TestUpdateCartStatus(t *testing.T) {
	svc := newTestService(t)

	mustCreateCart(t, svc, 7)
	cart, err := svc.UpdateCart(context.Background(), 7, transport.UpdateShopcartRequest{
		Status: ptr("locked"),
	})
	require.NoError(t, err)
	require.Equal(t, validation.StatusLocked, cart.Status)
}

func TestUpdateCartReplacesItems(t *testing.T) {
	svc := newTestService(t)

	mustCreateCart(t, svc, 8)
	mustAddItem(t, svc, 8, 1, 1, "1.00")
	mustAddItem(t, svc, 8, 2, 2, "2.00")

	cart, err := svc.UpdateCart(context.Background(), 8, transport.UpdateShopcartRequest{
		Items: []transport.ItemPayload{
			{ProductID: ptr(int64(3)), Quantity: ptr(4), Price: dec("3.00")},
		},
	})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	require.Equal(t, int64(3), cart.Items[0].ProductID)
	require.Equal(t, 4, cart.Items[0].Quantity)
}

func TestUpdateCartEmptyItemsClearsCart(t *testing.T) {
	svc := newTestService(t)

	mustCreateCart(t, svc, 9)
	mustAddItem(t, svc, 9, 1, 1, "1.00")

	cart, err := svc.UpdateCart(context.Background(), 9, transport.UpdateShopcartRequest{
		Items: []transport.ItemPayload{},
	})
	require.NoError(t, err)
	require.Empty(t, cart.Items)
}

func TestUpdateCartNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.UpdateCart(context.Background(), 404, transport.UpdateShopcartRequest{
		Status: ptr("active"),
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCartCascadesItems(t *testing.T) {
	svc := newTestService(t)

	mustCreateCart(t, svc, 10)
	mustAddItem(t, svc, 10, 1, 1, "1.00")

	require.NoError(t, svc.DeleteCart(context.Background(), 10))

	_, err := svc.GetCart(context.Background(), 10)
	require.ErrorIs(t, err, ErrNotFound)

	var count int64
	require.NoError(t, svc.Repo.DB.Model(&models.ShopcartItem{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestDeleteCartAbsentIsNotFound(t *testing.T) {
	svc := newTestService(t)
	require.ErrorIs(t, svc.DeleteCart(context.Background(), 404), ErrNotFound)
}
