package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodexpress/foodexpress-backend/pkg/db/models"
	"github.com/foodexpress/foodexpress-backend/pkg/enums"
)

// Repository exposes persistence helpers for the assignment pass.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindRestaurant(ctx context.Context, restaurantID uuid.UUID) (*models.Restaurant, error)
	CandidateCouriers(ctx context.Context, restaurantID uuid.UUID, excludeHalalMode bool) ([]models.Courier, error)
	PendingEntries(ctx context.Context) ([]models.OrderQueueEntry, error)
	MarkEntryAssigned(ctx context.Context, entryID uuid.UUID, now time.Time) (bool, error)
	MarkCourierBusy(ctx context.Context, courierID uuid.UUID, now time.Time) (bool, error)
	CreateAssignment(ctx context.Context, assignment *models.OrderAssignment) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a dispatch repository bound to the provided database.
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

// CandidateCouriers returns online couriers affiliated with the restaurant.
// Orders containing alcohol exclude halal-mode couriers outright. Enumeration
// order is courier created_at ascending, which doubles as the documented
// bucket tie-break.
func (r *repositoryImpl) CandidateCouriers(ctx context.Context, restaurantID uuid.UUID, excludeHalalMode bool) ([]models.Courier, error) {
	query := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND status = ?", restaurantID, enums.CourierStatusOnline)
	if excludeHalalMode {
		query = query.Where("halal_mode = ?", false)
	}

	var couriers []models.Courier
	if err := query.Order("created_at ASC").Find(&couriers).Error; err != nil {
		return nil, err
	}
	return couriers, nil
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

// MarkEntryAssigned flips a pending queue entry to assigned exactly once.
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

// MarkCourierBusy flips an online courier to busy. The guarded update is what
// keeps two entries in the same pass from landing on one courier.
func (r *repositoryImpl) MarkCourierBusy(ctx context.Context, courierID uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Courier{}).
		Where("id = ? AND status = ?", courierID, enums.CourierStatusOnline).
		UpdateColumns(map[string]any{
			"status":     enums.CourierStatusBusy,
			"updated_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) CreateAssignment(ctx context.Context, assignment *models.OrderAssignment) error {
	if assignment.ID == uuid.Nil {
		assignment.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(assignment).Error
}
