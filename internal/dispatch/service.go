package dispatch

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/foodexpress/foodexpress-backend/pkg/db/models"
	"github.com/foodexpress/foodexpress-backend/pkg/enums"
	pkgerrors "github.com/foodexpress/foodexpress-backend/pkg/errors"
	"github.com/foodexpress/foodexpress-backend/pkg/logger"
	"github.com/foodexpress/foodexpress-backend/pkg/metrics"
	"github.com/foodexpress/foodexpress-backend/pkg/routing"
)

// DistanceService is the routing surface the matcher consumes.
type DistanceService interface {
	Route(ctx context.Context, profile string, from, to routing.Point) (*routing.Route, error)
}

// AssignmentEvent describes one completed match for the notification sink.
type AssignmentEvent struct {
	OrderID             uuid.UUID
	CourierID           uuid.UUID
	CourierUserID       uuid.UUID
	CustomerID          uuid.UUID
	EstimatedDeliveryAt time.Time
}

// NotificationSink receives assignment events after the match commits.
// Emission is best-effort; sink failures never unwind an assignment.
type NotificationSink interface {
	AssignmentCreated(ctx context.Context, event AssignmentEvent) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service runs the periodic assignment pass.
type Service interface {
	RunPass(ctx context.Context) (PassStats, error)
}

// PassStats summarizes one assignment pass.
type PassStats struct {
	Pending  int
	Assigned int
	Deferred int
	Skipped  int
}

type service struct {
	tx       txRunner
	repo     Repository
	distance DistanceService
	sink     NotificationSink
	metrics  *metrics.DispatchMetrics
	logger   *logger.Logger
	now      func() time.Time
}

// ServiceParams wires dispatch service dependencies. Sink and Metrics are
// optional; everything else is required.
type ServiceParams struct {
	Tx       txRunner
	Repo     Repository
	Distance DistanceService
	Sink     NotificationSink
	Metrics  *metrics.DispatchMetrics
	Logger   *logger.Logger
	Now      func() time.Time
}

// NewService wires dispatch dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "dispatch tx runner required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "dispatch repository required")
	}
	if params.Distance == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "dispatch distance service required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "dispatch logger required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		tx:       params.Tx,
		repo:     params.Repo,
		distance: params.Distance,
		sink:     params.Sink,
		metrics:  params.Metrics,
		logger:   params.Logger,
		now:      now,
	}, nil
}

// RunPass processes every pending queue entry once. Entries are independent:
// a failure on one is logged and the pass moves on, with the failures
// combined into the returned error. Orders that cannot be matched stay
// pending and are retried on the next pass.
func (s *service) RunPass(ctx context.Context) (PassStats, error) {
	started := time.Now()
	entries, err := s.repo.PendingEntries(ctx)
	if err != nil {
		return PassStats{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending queue entries")
	}

	stats := PassStats{Pending: len(entries)}
	s.metrics.SetQueueDepth(len(entries))

	var errs []error
	for _, entry := range entries {
		entryCtx := s.logger.WithOrderID(ctx, entry.OrderID.String())
		outcome, err := s.processEntry(entryCtx, entry)
		if err != nil {
			stats.Deferred++
			s.metrics.IncDeferral(outcome)
			s.logger.Error(entryCtx, "dispatch entry deferred", err)
			errs = append(errs, err)
			continue
		}
		switch outcome {
		case outcomeAssigned:
			stats.Assigned++
		case outcomeSkipped:
			stats.Skipped++
		default:
			stats.Deferred++
			s.metrics.IncDeferral(outcome)
		}
	}

	passOutcome := "ok"
	if len(errs) > 0 {
		passOutcome = "partial"
	}
	s.metrics.ObservePass(passOutcome, time.Since(started))

	return stats, multierr.Combine(errs...)
}

const (
	outcomeAssigned     = "assigned"
	outcomeSkipped      = "skipped"
	outcomeNoCourier    = "no_courier"
	outcomeCourierRace  = "courier_race"
	outcomeRoutingError = "routing_error"
)

// processEntry matches one queue entry. All mutations for the entry commit in
// a single transaction; any failure leaves the entry pending for the next
// pass. The notification emission happens after the commit.
func (s *service) processEntry(ctx context.Context, entry models.OrderQueueEntry) (string, error) {
	order, err := s.repo.FindOrder(ctx, entry.OrderID)
	if err != nil {
		return outcomeRoutingError, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order == nil {
		s.logger.Warn(ctx, "queue entry references missing order, skipping")
		return outcomeSkipped, nil
	}

	restaurant, err := s.repo.FindRestaurant(ctx, order.RestaurantID)
	if err != nil {
		return outcomeRoutingError, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load restaurant")
	}
	if restaurant == nil {
		s.logger.Warn(ctx, "order references missing restaurant, skipping")
		return outcomeSkipped, nil
	}

	containsAlcohol := false
	for _, item := range order.Items {
		if item.Category == enums.ItemCategoryAlcohol {
			containsAlcohol = true
			break
		}
	}

	candidates, err := s.repo.CandidateCouriers(ctx, order.RestaurantID, containsAlcohol)
	if err != nil {
		return outcomeRoutingError, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load candidate couriers")
	}
	if len(candidates) == 0 {
		s.logger.Debug(ctx, "no candidate couriers, order stays queued")
		return outcomeNoCourier, nil
	}

	pickup := routing.Point{Latitude: restaurant.Latitude, Longitude: restaurant.Longitude}
	dropoff := routing.Point{Latitude: order.DeliveryLatitude, Longitude: order.DeliveryLongitude}

	scores := make([]candidateScore, 0, len(candidates))
	for _, courier := range candidates {
		route, err := s.distance.Route(ctx, routing.Profile(courier.VehicleType), pickup, dropoff)
		if err != nil {
			// Routing trouble defers the whole entry rather than silently
			// scoring with partial data.
			return outcomeRoutingError, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "compute route distance")
		}

		feasible, breakdown := scoreChange(order, courier.Wallet)
		scores = append(scores, candidateScore{
			courier:        courier,
			distanceMeters: route.DistanceMeters,
			travelTime:     route.Duration,
			meetsWeight:    meetsWeight(courier.VehicleType, entry.WeightGrams),
			meetsDistance:  meetsDistance(courier.VehicleType, route.DistanceMeters),
			meetsChange:    feasible,
			optimalChange:  breakdown,
		})
	}

	selected, ok := pickBest(scores)
	if !ok {
		return outcomeNoCourier, nil
	}

	now := s.now()
	assignment := &models.OrderAssignment{
		OrderID:             order.ID,
		CourierID:           selected.courier.ID,
		Status:              enums.AssignmentStatusInDelivery,
		AssignedAt:          now,
		EstimatedDeliveryAt: entry.EstimatedReadyAt.Add(selected.travelTime),
		OptimalChange:       selected.optimalChange,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		busy, err := repo.MarkCourierBusy(ctx, selected.courier.ID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark courier busy")
		}
		if !busy {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "courier no longer online")
		}

		moved, err := repo.MarkEntryAssigned(ctx, entry.ID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark queue entry assigned")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "queue entry no longer pending")
		}

		if err := repo.CreateAssignment(ctx, assignment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create assignment")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
			return outcomeCourierRace, err
		}
		return outcomeRoutingError, err
	}

	s.metrics.IncAssignment(strconv.Itoa(selected.criteriaMet()))
	s.logger.Info(s.logger.WithCourierID(ctx, selected.courier.ID.String()), "order assigned to courier")

	if s.sink != nil {
		event := AssignmentEvent{
			OrderID:             order.ID,
			CourierID:           selected.courier.ID,
			CourierUserID:       selected.courier.UserID,
			CustomerID:          order.CustomerID,
			EstimatedDeliveryAt: assignment.EstimatedDeliveryAt,
		}
		if err := s.sink.AssignmentCreated(ctx, event); err != nil {
			s.logger.Error(ctx, "assignment notification failed", err)
		}
	}

	return outcomeAssigned, nil
}
