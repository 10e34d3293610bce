package delivery

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodexpress/foodexpress-backend/pkg/db/models"
	"github.com/foodexpress/foodexpress-backend/pkg/enums"
	"github.com/foodexpress/foodexpress-backend/pkg/money"
	"github.com/foodexpress/foodexpress-backend/pkg/types"
)

// Repository exposes persistence helpers for the delivery completion flow.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindAssignment(ctx context.Context, assignmentID uuid.UUID) (*models.OrderAssignment, error)
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindCourier(ctx context.Context, courierID uuid.UUID) (*models.Courier, error)
	SetCustomerFinish(ctx context.Context, assignmentID uuid.UUID, now time.Time) (bool, error)
	MarkAssignmentDelivered(ctx context.Context, assignmentID uuid.UUID, now time.Time) (bool, error)
	MarkOrderDelivered(ctx context.Context, orderID uuid.UUID, now time.Time) (bool, error)
	ReleaseCourier(ctx context.Context, courierID uuid.UUID, wallet types.Wallet, walletTotal money.Cents, now time.Time) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a delivery repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindAssignment(ctx context.Context, assignmentID uuid.UUID) (*models.OrderAssignment, error) {
	var assignment models.OrderAssignment
	err := r.db.WithContext(ctx).First(&assignment, "id = ?", assignmentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *repositoryImpl) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) FindCourier(ctx context.Context, courierID uuid.UUID) (*models.Courier, error) {
	var courier models.Courier
	err := r.db.WithContext(ctx).First(&courier, "id = ?", courierID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &courier, nil
}

// SetCustomerFinish records the customer's confirmation on an in-flight
// assignment. Re-confirming is a no-op.
func (r *repositoryImpl) SetCustomerFinish(ctx context.Context, assignmentID uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.OrderAssignment{}).
		Where("id = ? AND status = ?", assignmentID, enums.AssignmentStatusInDelivery).
		UpdateColumns(map[string]any{
			"customer_finish": true,
			"updated_at":      now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkAssignmentDelivered closes an in-flight assignment exactly once.
func (r *repositoryImpl) MarkAssignmentDelivered(ctx context.Context, assignmentID uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.OrderAssignment{}).
		Where("id = ? AND status = ?", assignmentID, enums.AssignmentStatusInDelivery).
		UpdateColumns(map[string]any{
			"status":         enums.AssignmentStatusDelivered,
			"courier_finish": true,
			"updated_at":     now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) MarkOrderDelivered(ctx context.Context, orderID uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, enums.OrderStatusPreparing).
		UpdateColumns(map[string]any{
			"status":     enums.OrderStatusDelivered,
			"updated_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReleaseCourier puts a busy courier back online and persists the wallet
// state settled during completion.
func (r *repositoryImpl) ReleaseCourier(ctx context.Context, courierID uuid.UUID, wallet types.Wallet, walletTotal money.Cents, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Courier{}).
		Where("id = ? AND status = ?", courierID, enums.CourierStatusBusy).
		UpdateColumns(map[string]any{
			"status":              enums.CourierStatusOnline,
			"wallet":              wallet,
			"wallet_amount_cents": walletTotal,
			"updated_at":          now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
