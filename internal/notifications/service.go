package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/foodexpress/foodexpress-backend/internal/dispatch"
	"github.com/foodexpress/foodexpress-backend/pkg/db/models"
	pkgerrors "github.com/foodexpress/foodexpress-backend/pkg/errors"
	"github.com/foodexpress/foodexpress-backend/pkg/logger"
	"github.com/foodexpress/foodexpress-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const eventTypeOrderAssigned = "order_assigned"

// Service records assignment notifications and exposes read tracking.
type Service interface {
	AssignmentCreated(ctx context.Context, event dispatch.AssignmentEvent) error
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type pushPublisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

// ServiceParams wires notification dependencies. Publisher is optional:
// without one, assignment events are persisted but not pushed.
type ServiceParams struct {
	Tx        txRunner
	Repo      Repository
	Publisher pushPublisher
	Logger    *logger.Logger
	Now       func() time.Time
}

type service struct {
	tx        txRunner
	repo      Repository
	publisher pushPublisher
	logg      *logger.Logger
	now       func() time.Time
}

// NewService wires notifications dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications tx runner required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		tx:        params.Tx,
		repo:      params.Repo,
		publisher: params.Publisher,
		logg:      params.Logger,
		now:       now,
	}, nil
}

// AssignmentCreated writes the courier's in-app notification and the opening
// chat message for the order, then pushes the event. The push is best-effort:
// a publish failure is logged and the rows are kept.
func (s *service) AssignmentCreated(ctx context.Context, event dispatch.AssignmentEvent) error {
	if event.OrderID == uuid.Nil || event.CourierUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "assignment event missing ids")
	}

	notification := models.Notification{
		UserID:  event.CourierUserID,
		Title:   "New delivery assigned",
		Message: fmt.Sprintf("Order %s is ready for pickup.", shortOrderRef(event.OrderID)),
	}
	chat := models.ChatMessage{
		SenderID:   event.CourierUserID,
		ReceiverID: event.CustomerID,
		Text: fmt.Sprintf(
			"Hi! I'm delivering your order, estimated arrival %s.",
			event.EstimatedDeliveryAt.UTC().Format("15:04"),
		),
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, &notification); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
		}
		if event.CustomerID == uuid.Nil {
			return nil
		}
		if err := repo.CreateChatMessage(ctx, &chat); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create chat message")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publishAssignment(ctx, event)
	return nil
}

func (s *service) publishAssignment(ctx context.Context, event dispatch.AssignmentEvent) {
	if s.publisher == nil {
		return
	}

	payload, err := json.Marshal(map[string]any{
		"event_type":            eventTypeOrderAssigned,
		"order_id":              event.OrderID,
		"courier_id":            event.CourierID,
		"customer_id":           event.CustomerID,
		"estimated_delivery_at": event.EstimatedDeliveryAt.UTC(),
	})
	if err != nil {
		s.logg.Error(ctx, "encode assignment event", err)
		return
	}

	result := s.publisher.Publish(ctx, &gcppubsub.Message{
		Data:       payload,
		Attributes: map[string]string{"event_type": eventTypeOrderAssigned},
	})
	if result == nil {
		return
	}
	if _, err := result.Get(ctx); err != nil {
		s.logg.Error(s.logg.WithOrderID(ctx, event.OrderID.String()), "publish assignment event", err)
	}
}

// ListParams configures pagination for a user's notifications.
type ListParams struct {
	UserID     uuid.UUID
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	query := listNotificationsParams{
		UserID:     params.UserID,
		Limit:      params.Limit,
		UnreadOnly: params.UnreadOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}

	return &ListResult{
		Items:  rows,
		Cursor: cursor,
	}, nil
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, userID, notificationID, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	count, err := s.repo.MarkAllRead(ctx, userID, s.now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

func shortOrderRef(id uuid.UUID) string {
	raw := id.String()
	if len(raw) < 8 {
		return raw
	}
	return raw[:8]
}

// NewPushPublisher adapts a Pub/Sub publisher handle to the sink's interface.
func NewPushPublisher(p *gcppubsub.Publisher) pushPublisher {
	if p == nil {
		return nil
	}
	return &gcpPublisher{publisher: p}
}

type gcpPublisher struct {
	publisher *gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.publisher == nil {
		return nil
	}
	return p.publisher.Publish(ctx, msg)
}
