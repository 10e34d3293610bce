package delivery

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/foodexpress/foodexpress-backend/pkg/db/models"
	"github.com/foodexpress/foodexpress-backend/pkg/enums"
	pkgerrors "github.com/foodexpress/foodexpress-backend/pkg/errors"
	"github.com/foodexpress/foodexpress-backend/pkg/logger"
	"github.com/foodexpress/foodexpress-backend/pkg/money"
	"github.com/foodexpress/foodexpress-backend/pkg/types"
)

var testDBSeq atomic.Int64

func setupDeliveryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:delivery_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS couriers (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  restaurant_id TEXT NOT NULL,
  vehicle_type TEXT NOT NULL,
  halal_mode INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'offline',
  wallet TEXT,
  wallet_amount_cents INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS orders (
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
);`,
		`CREATE TABLE IF NOT EXISTS order_assignments (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  courier_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'in_delivery',
  assigned_at DATETIME,
  estimated_delivery_at DATETIME NOT NULL,
  optimal_change TEXT,
  courier_finish INTEGER NOT NULL DEFAULT 0,
  customer_finish INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type deliveryFixture struct {
	t   *testing.T
	db  *gorm.DB
	svc Service
	now time.Time
}

func newDeliveryFixture(t *testing.T) *deliveryFixture {
	t.Helper()
	db := setupDeliveryTestDB(t)
	now := time.Date(2026, 2, 1, 19, 0, 0, 0, time.UTC)
	svc, err := NewService(ServiceParams{
		Tx:     gormTxRunner{db: db},
		Repo:   NewRepository(db),
		Logger: logger.New(logger.Options{ServiceName: "test"}),
		Now:    func() time.Time { return now },
	})
	require.NoError(t, err)
	return &deliveryFixture{t: t, db: db, svc: svc, now: now}
}

type completionOpts struct {
	paymentMethod  enums.PaymentMethod
	totalCents     int64
	tender         types.Wallet
	courierWallet  types.Wallet
	optimalChange  types.ChangeBreakdown
	customerFinish bool
	courierStatus  enums.CourierStatus
}

func (f *deliveryFixture) seedCompletion(opts completionOpts) *models.OrderAssignment {
	f.t.Helper()

	if opts.paymentMethod == "" {
		opts.paymentMethod = enums.PaymentMethodCash
	}
	if opts.courierStatus == "" {
		opts.courierStatus = enums.CourierStatusBusy
	}

	courier := models.Courier{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		RestaurantID: uuid.New(),
		VehicleType:  enums.VehicleTypeBike,
		Status:       opts.courierStatus,
		Wallet:       opts.courierWallet,
	}
	if total, err := opts.courierWallet.TotalCents(); err == nil {
		courier.WalletAmountCents = total
	}
	require.NoError(f.t, f.db.Create(&courier).Error)

	order := models.Order{
		ID:               uuid.New(),
		RestaurantID:     courier.RestaurantID,
		CustomerID:       uuid.New(),
		Status:           enums.OrderStatusPreparing,
		PaymentMethod:    opts.paymentMethod,
		TotalCents:       money.Cents(opts.totalCents),
		Tender:           opts.tender,
		DeliveryAddress:  "Ferhadija 12",
		DeliveryLatitude: 43.85, DeliveryLongitude: 18.41,
	}
	require.NoError(f.t, f.db.Create(&order).Error)

	assignment := models.OrderAssignment{
		ID:                  uuid.New(),
		OrderID:             order.ID,
		CourierID:           courier.ID,
		Status:              enums.AssignmentStatusInDelivery,
		EstimatedDeliveryAt: f.now.Add(25 * time.Minute),
		OptimalChange:       opts.optimalChange,
		CustomerFinish:      opts.customerFinish,
	}
	require.NoError(f.t, f.db.Create(&assignment).Error)
	return &assignment
}

func TestCustomerFinishMarksConfirmation(t *testing.T) {
	f := newDeliveryFixture(t)
	assignment := f.seedCompletion(completionOpts{totalCents: 2000})

	require.NoError(t, f.svc.CustomerFinish(context.Background(), assignment.ID))

	var stored models.OrderAssignment
	require.NoError(t, f.db.First(&stored, "id = ?", assignment.ID).Error)
	assert.True(t, stored.CustomerFinish)
	assert.Equal(t, enums.AssignmentStatusInDelivery, stored.Status)

	// Confirming twice is fine.
	require.NoError(t, f.svc.CustomerFinish(context.Background(), assignment.ID))
}

func TestCustomerFinishUnknownAssignment(t *testing.T) {
	f := newDeliveryFixture(t)

	err := f.svc.CustomerFinish(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestCourierFinishRequiresCustomerConfirmation(t *testing.T) {
	f := newDeliveryFixture(t)
	assignment := f.seedCompletion(completionOpts{totalCents: 2000})

	err := f.svc.CourierFinish(context.Background(), assignment.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))

	var stored models.OrderAssignment
	require.NoError(t, f.db.First(&stored, "id = ?", assignment.ID).Error)
	assert.Equal(t, enums.AssignmentStatusInDelivery, stored.Status)
}

func TestCourierFinishCashSettlesWallet(t *testing.T) {
	f := newDeliveryFixture(t)
	assignment := f.seedCompletion(completionOpts{
		totalCents:     4350,
		tender:         types.Wallet{"50": 1},
		courierWallet:  types.Wallet{"5": 1, "1": 1, "0.50": 1},
		customerFinish: true,
		optimalChange: types.ChangeBreakdown{
			{Denomination: "5", Value: 500, Count: 1},
			{Denomination: "1", Value: 100, Count: 1},
			{Denomination: "0.50", Value: 50, Count: 1},
		},
	})

	require.NoError(t, f.svc.CourierFinish(context.Background(), assignment.ID))

	var stored models.OrderAssignment
	require.NoError(t, f.db.First(&stored, "id = ?", assignment.ID).Error)
	assert.Equal(t, enums.AssignmentStatusDelivered, stored.Status)
	assert.True(t, stored.CourierFinish)

	var order models.Order
	require.NoError(t, f.db.First(&order, "id = ?", stored.OrderID).Error)
	assert.Equal(t, enums.OrderStatusDelivered, order.Status)

	var courier models.Courier
	require.NoError(t, f.db.First(&courier, "id = ?", stored.CourierID).Error)
	assert.Equal(t, enums.CourierStatusOnline, courier.Status)
	// Tender in, exact change out: only the 50 note remains.
	assert.Equal(t, types.Wallet{"50": 1}, courier.Wallet)
	assert.Equal(t, money.Cents(5000), courier.WalletAmountCents)
}

func TestCourierFinishCardLeavesWalletAlone(t *testing.T) {
	f := newDeliveryFixture(t)
	assignment := f.seedCompletion(completionOpts{
		paymentMethod:  enums.PaymentMethodCard,
		totalCents:     2000,
		courierWallet:  types.Wallet{"10": 2},
		customerFinish: true,
	})

	require.NoError(t, f.svc.CourierFinish(context.Background(), assignment.ID))

	var courier models.Courier
	require.NoError(t, f.db.First(&courier, "id = ?", assignment.CourierID).Error)
	assert.Equal(t, enums.CourierStatusOnline, courier.Status)
	assert.Equal(t, types.Wallet{"10": 2}, courier.Wallet)
	assert.Equal(t, money.Cents(2000), courier.WalletAmountCents)
}

func TestCourierFinishSkipsUnavailableChange(t *testing.T) {
	f := newDeliveryFixture(t)
	// The wallet drifted since assignment: the stored change is no longer
	// fully coverable. The rest of the completion still goes through.
	assignment := f.seedCompletion(completionOpts{
		totalCents:     1800,
		tender:         types.Wallet{"20": 1},
		courierWallet:  types.Wallet{"1": 1},
		customerFinish: true,
		optimalChange: types.ChangeBreakdown{
			{Denomination: "1", Value: 100, Count: 1},
			{Denomination: "0.50", Value: 50, Count: 2},
		},
	})

	require.NoError(t, f.svc.CourierFinish(context.Background(), assignment.ID))

	var courier models.Courier
	require.NoError(t, f.db.First(&courier, "id = ?", assignment.CourierID).Error)
	assert.Equal(t, types.Wallet{"20": 1}, courier.Wallet)
	assert.Equal(t, money.Cents(2000), courier.WalletAmountCents)
}

func TestCourierFinishTwiceConflicts(t *testing.T) {
	f := newDeliveryFixture(t)
	assignment := f.seedCompletion(completionOpts{
		paymentMethod:  enums.PaymentMethodCard,
		totalCents:     2000,
		customerFinish: true,
	})

	require.NoError(t, f.svc.CourierFinish(context.Background(), assignment.ID))

	err := f.svc.CourierFinish(context.Background(), assignment.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
}
