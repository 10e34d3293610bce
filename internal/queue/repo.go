package queue

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodexpress/foodexpress-backend/pkg/db/models"
	"github.com/foodexpress/foodexpress-backend/pkg/enums"
)

// Repository exposes persistence helpers for the order queue.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindRestaurant(ctx context.Context, restaurantID uuid.UUID) (*models.Restaurant, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) (bool, error)
	CreateEntry(ctx context.Context, entry *models.OrderQueueEntry) error
	PendingEntries(ctx context.Context) ([]models.OrderQueueEntry, error)
	MarkEntryAssigned(ctx context.Context, entryID uuid.UUID, now time.Time) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a queue repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) FindRestaurant(ctx context.Context, restaurantID uuid.UUID) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	err := r.db.WithContext(ctx).First(&restaurant, "id = ?", restaurantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &restaurant, nil
}

func (r *repositoryImpl) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		UpdateColumn("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) CreateEntry(ctx context.Context, entry *models.OrderQueueEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repositoryImpl) PendingEntries(ctx context.Context) ([]models.OrderQueueEntry, error) {
	var entries []models.OrderQueueEntry
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.QueueEntryStatusPending).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repositoryImpl) MarkEntryAssigned(ctx context.Context, entryID uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.OrderQueueEntry{}).
		Where("id = ? AND status = ?", entryID, enums.QueueEntryStatusPending).
		UpdateColumns(map[string]any{
			"status":     enums.QueueEntryStatusAssigned,
			"updated_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
