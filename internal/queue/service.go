package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodexpress/foodexpress-backend/internal/preptime"
	"github.com/foodexpress/foodexpress-backend/pkg/db"
	"github.com/foodexpress/foodexpress-backend/pkg/db/models"
	"github.com/foodexpress/foodexpress-backend/pkg/enums"
	pkgerrors "github.com/foodexpress/foodexpress-backend/pkg/errors"
)

// Service owns the order-queue lifecycle. Accept moves an order into
// preparation and creates its queue entry; the dispatcher consumes
// PendingEntries and flips entries to assigned through the repository.
type Service interface {
	Accept(ctx context.Context, orderID uuid.UUID) (*models.OrderQueueEntry, error)
	PendingEntries(ctx context.Context) ([]models.OrderQueueEntry, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	tx   txRunner
	repo Repository
	now  func() time.Time
}

// ServiceParams wires queue service dependencies.
type ServiceParams struct {
	Tx   txRunner
	Repo Repository
	Now  func() time.Time
}

// NewService wires queue dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "queue tx runner required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "queue repository required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{tx: params.Tx, repo: params.Repo, now: now}, nil
}

// Accept transitions the order into preparation and enqueues it for dispatch.
// The queue entry carries the total order weight and the estimated-ready time
// so the assignment pass never has to re-derive either. An order can be
// accepted exactly once; the unique index on order_id backs the guard.
func (s *service) Accept(ctx context.Context, orderID uuid.UUID) (*models.OrderQueueEntry, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var entry *models.OrderQueueEntry
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not pending acceptance")
		}

		restaurant, err := repo.FindRestaurant(ctx, order.RestaurantID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load restaurant")
		}
		if restaurant == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
		}

		moved, err := repo.UpdateOrderStatus(ctx, orderID, enums.OrderStatusPending, enums.OrderStatusPreparing)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "move order to preparing")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order was accepted concurrently")
		}

		now := s.now()
		entry = &models.OrderQueueEntry{
			OrderID:          orderID,
			Status:           enums.QueueEntryStatusPending,
			WeightGrams:      preptime.TotalWeightGrams(order.Items),
			EstimatedReadyAt: preptime.Estimate(order.Items, restaurant.Capacity, now),
		}
		if err := repo.CreateEntry(ctx, entry); err != nil {
			if db.IsUniqueViolation(err, "ux_order_queue_entries_order_id") {
				return pkgerrors.New(pkgerrors.CodeConflict, "order already queued")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create queue entry")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) PendingEntries(ctx context.Context) ([]models.OrderQueueEntry, error) {
	entries, err := s.repo.PendingEntries(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending queue entries")
	}
	return entries, nil
}
