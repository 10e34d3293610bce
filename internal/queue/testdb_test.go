package queue

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/foodexpress/foodexpress-backend/pkg/db/models"
	"github.com/foodexpress/foodexpress-backend/pkg/enums"
	"github.com/foodexpress/foodexpress-backend/pkg/money"
)

var testDBSeq atomic.Int64

func setupQueueTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:queue_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	restaurants := `
CREATE TABLE IF NOT EXISTS restaurants (
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL,
  name TEXT NOT NULL,
  address TEXT NOT NULL,
  latitude REAL NOT NULL,
  longitude REAL NOT NULL,
  capacity TEXT NOT NULL DEFAULT 'normal',
  created_at DATETIME,
  updated_at DATETIME
);`
	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  restaurant_id TEXT NOT NULL,
  customer_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_method TEXT NOT NULL DEFAULT 'cash',
  total_cents INTEGER NOT NULL,
  tender TEXT,
  delivery_address TEXT NOT NULL,
  delivery_latitude REAL NOT NULL,
  delivery_longitude REAL NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  item_id TEXT NOT NULL,
  name TEXT NOT NULL,
  category TEXT NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  weight_grams INTEGER NOT NULL,
  prep_time_minutes INTEGER NOT NULL
);`
	queueEntries := `
CREATE TABLE IF NOT EXISTS order_queue_entries (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  weight_grams INTEGER NOT NULL,
  estimated_ready_at DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	queueUnique := `
CREATE UNIQUE INDEX IF NOT EXISTS ux_order_queue_entries_order_id ON order_queue_entries (order_id);`

	require.NoError(t, db.Exec(restaurants).Error)
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	require.NoError(t, db.Exec(queueEntries).Error)
	require.NoError(t, db.Exec(queueUnique).Error)
	return db
}

func newRestaurant(t *testing.T, db *gorm.DB, capacity enums.KitchenCapacity) *models.Restaurant {
	t.Helper()

	restaurant := &models.Restaurant{
		ID:        uuid.New(),
		OwnerID:   uuid.New(),
		Name:      "Test Kitchen",
		Address:   "1 Kitchen Way",
		Latitude:  43.8563,
		Longitude: 18.4131,
		Capacity:  capacity,
	}
	require.NoError(t, db.Create(restaurant).Error)
	return restaurant
}

func newOrder(t *testing.T, db *gorm.DB, restaurant *models.Restaurant, items []models.OrderItem) *models.Order {
	t.Helper()

	var total money.Cents
	order := &models.Order{
		ID:                uuid.New(),
		RestaurantID:      restaurant.ID,
		CustomerID:        uuid.New(),
		Status:            enums.OrderStatusPending,
		PaymentMethod:     enums.PaymentMethodCard,
		DeliveryAddress:   "2 Delivery St",
		DeliveryLatitude:  43.8612,
		DeliveryLongitude: 18.4204,
	}
	require.NoError(t, db.Create(order).Error)
	for i := range items {
		items[i].ID = uuid.New()
		items[i].OrderID = order.ID
		if items[i].ItemID == uuid.Nil {
			items[i].ItemID = uuid.New()
		}
		total += items[i].SubtotalCents()
		require.NoError(t, db.Create(&items[i]).Error)
	}
	order.TotalCents = total
	require.NoError(t, db.Model(order).UpdateColumn("total_cents", total).Error)
	order.Items = items
	return order
}
