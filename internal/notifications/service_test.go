package notifications

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/foodexpress/foodexpress-backend/internal/dispatch"
	"github.com/foodexpress/foodexpress-backend/pkg/db/models"
	pkgerrors "github.com/foodexpress/foodexpress-backend/pkg/errors"
	"github.com/foodexpress/foodexpress-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDBSeq atomic.Int64

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:notifications_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{
		`CREATE TABLE notifications (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			read_at DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE chat_messages (
			id TEXT PRIMARY KEY,
			sender_id TEXT NOT NULL,
			receiver_id TEXT NOT NULL,
			text TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range ddl {
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

type fakePublisher struct {
	messages []*gcppubsub.Message
	err      error
}

func (f *fakePublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	f.messages = append(f.messages, msg)
	return fakePublishResult{err: f.err}
}

type fakePublishResult struct {
	err error
}

func (f fakePublishResult) Get(ctx context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "m-1", nil
}

func newTestService(t *testing.T, db *gorm.DB, publisher pushPublisher) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Tx:        gormTxRunner{db: db},
		Repo:      NewRepository(db),
		Publisher: publisher,
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
	})
	require.NoError(t, err)
	return svc
}

func assignmentEvent() dispatch.AssignmentEvent {
	return dispatch.AssignmentEvent{
		OrderID:             uuid.New(),
		CourierID:           uuid.New(),
		CourierUserID:       uuid.New(),
		CustomerID:          uuid.New(),
		EstimatedDeliveryAt: time.Date(2026, 2, 1, 18, 45, 0, 0, time.UTC),
	}
}

func TestAssignmentCreatedWritesNotificationAndChat(t *testing.T) {
	db := setupNotificationsTestDB(t)
	publisher := &fakePublisher{}
	svc := newTestService(t, db, publisher)
	event := assignmentEvent()

	require.NoError(t, svc.AssignmentCreated(context.Background(), event))

	var notification models.Notification
	require.NoError(t, db.Where("user_id = ?", event.CourierUserID).First(&notification).Error)
	assert.Equal(t, "New delivery assigned", notification.Title)
	assert.Contains(t, notification.Message, event.OrderID.String()[:8])
	assert.Nil(t, notification.ReadAt)

	var chat models.ChatMessage
	require.NoError(t, db.Where("sender_id = ?", event.CourierUserID).First(&chat).Error)
	assert.Equal(t, event.CustomerID, chat.ReceiverID)
	assert.Contains(t, chat.Text, "18:45")

	require.Len(t, publisher.messages, 1)
	assert.Equal(t, eventTypeOrderAssigned, publisher.messages[0].Attributes["event_type"])
}

func TestAssignmentCreatedWithoutCustomerSkipsChat(t *testing.T) {
	db := setupNotificationsTestDB(t)
	svc := newTestService(t, db, nil)
	event := assignmentEvent()
	event.CustomerID = uuid.Nil

	require.NoError(t, svc.AssignmentCreated(context.Background(), event))

	var chatCount int64
	require.NoError(t, db.Model(&models.ChatMessage{}).Count(&chatCount).Error)
	assert.Zero(t, chatCount)
}

func TestAssignmentCreatedPublishFailureKeepsRows(t *testing.T) {
	db := setupNotificationsTestDB(t)
	publisher := &fakePublisher{err: errors.New("pubsub unavailable")}
	svc := newTestService(t, db, publisher)

	require.NoError(t, svc.AssignmentCreated(context.Background(), assignmentEvent()))

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAssignmentCreatedRejectsMissingIDs(t *testing.T) {
	db := setupNotificationsTestDB(t)
	svc := newTestService(t, db, nil)

	err := svc.AssignmentCreated(context.Background(), dispatch.AssignmentEvent{})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestMarkReadLifecycle(t *testing.T) {
	db := setupNotificationsTestDB(t)
	svc := newTestService(t, db, nil)
	event := assignmentEvent()
	require.NoError(t, svc.AssignmentCreated(context.Background(), event))

	var notification models.Notification
	require.NoError(t, db.Where("user_id = ?", event.CourierUserID).First(&notification).Error)

	require.NoError(t, svc.MarkRead(context.Background(), event.CourierUserID, notification.ID))

	require.NoError(t, db.First(&notification, "id = ?", notification.ID).Error)
	require.NotNil(t, notification.ReadAt)

	// Re-marking an already read notification is a no-op, not an error.
	require.NoError(t, svc.MarkRead(context.Background(), event.CourierUserID, notification.ID))

	err := svc.MarkRead(context.Background(), event.CourierUserID, uuid.New())
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestMarkAllRead(t *testing.T) {
	db := setupNotificationsTestDB(t)
	svc := newTestService(t, db, nil)
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		event := assignmentEvent()
		event.CourierUserID = userID
		require.NoError(t, svc.AssignmentCreated(context.Background(), event))
	}

	count, err := svc.MarkAllRead(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	count, err = svc.MarkAllRead(context.Background(), userID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestListPaginatesNewestFirst(t *testing.T) {
	db := setupNotificationsTestDB(t)
	svc := newTestService(t, db, nil)
	userID := uuid.New()

	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		n := models.Notification{
			ID:        uuid.New(),
			UserID:    userID,
			Title:     "New delivery assigned",
			Message:   fmt.Sprintf("order %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(&n).Error)
	}

	page, err := svc.List(context.Background(), ListParams{UserID: userID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "order 2", page.Items[0].Message)
	require.NotEmpty(t, page.Cursor)

	rest, err := svc.List(context.Background(), ListParams{UserID: userID, Limit: 2, Cursor: page.Cursor})
	require.NoError(t, err)
	require.Len(t, rest.Items, 1)
	assert.Equal(t, "order 0", rest.Items[0].Message)
	assert.Empty(t, rest.Cursor)
}

func TestDeleteOlderThanRemovesReadNotifications(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	readAt := now.Add(-40 * 24 * time.Hour)

	old := models.Notification{
		ID: uuid.New(), UserID: userID, Title: "t", Message: "old",
		ReadAt: &readAt, CreatedAt: now.Add(-45 * 24 * time.Hour),
	}
	oldUnread := models.Notification{
		ID: uuid.New(), UserID: userID, Title: "t", Message: "old unread",
		CreatedAt: now.Add(-45 * 24 * time.Hour),
	}
	recent := models.Notification{
		ID: uuid.New(), UserID: userID, Title: "t", Message: "recent",
		ReadAt: &readAt, CreatedAt: now.Add(-time.Hour),
	}
	for _, n := range []models.Notification{old, oldUnread, recent} {
		require.NoError(t, db.Create(&n).Error)
	}

	deleted, err := repo.DeleteOlderThan(context.Background(), nil, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining []models.Notification
	require.NoError(t, db.Order("created_at").Find(&remaining).Error)
	require.Len(t, remaining, 2)
	assert.Equal(t, "old unread", remaining[0].Message)
	assert.Equal(t, "recent", remaining[1].Message)
}
