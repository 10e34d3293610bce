package delivery

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodexpress/foodexpress-backend/pkg/enums"
	pkgerrors "github.com/foodexpress/foodexpress-backend/pkg/errors"
	"github.com/foodexpress/foodexpress-backend/pkg/logger"
	"github.com/foodexpress/foodexpress-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service completes deliveries. An order is finished only after both sides
// confirm: the customer first, then the courier.
type Service interface {
	CustomerFinish(ctx context.Context, assignmentID uuid.UUID) error
	CourierFinish(ctx context.Context, assignmentID uuid.UUID) error
}

// ServiceParams wires delivery completion dependencies.
type ServiceParams struct {
	Tx     txRunner
	Repo   Repository
	Logger *logger.Logger
	Now    func() time.Time
}

type service struct {
	tx   txRunner
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

// NewService wires delivery completion dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "delivery tx runner required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "delivery repository required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "delivery logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		tx:   params.Tx,
		repo: params.Repo,
		logg: params.Logger,
		now:  now,
	}, nil
}

// CustomerFinish records the customer's delivery confirmation. It is
// idempotent while the assignment is in flight.
func (s *service) CustomerFinish(ctx context.Context, assignmentID uuid.UUID) error {
	if assignmentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "assignment id required")
	}

	assignment, err := s.repo.FindAssignment(ctx, assignmentID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
	}
	if assignment == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
	}
	if assignment.Status != enums.AssignmentStatusInDelivery {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "assignment is no longer in delivery")
	}

	updated, err := s.repo.SetCustomerFinish(ctx, assignmentID, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm delivery")
	}
	if !updated {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "assignment is no longer in delivery")
	}
	return nil
}

// CourierFinish closes out a delivery once the customer has confirmed. For
// cash orders the courier wallet absorbs the tendered denominations and gives
// up the stored optimal change before the courier goes back online.
func (s *service) CourierFinish(ctx context.Context, assignmentID uuid.UUID) error {
	if assignmentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "assignment id required")
	}

	assignment, err := s.repo.FindAssignment(ctx, assignmentID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
	}
	if assignment == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
	}
	if assignment.Status != enums.AssignmentStatusInDelivery {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "assignment is no longer in delivery")
	}
	if !assignment.CustomerFinish {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "customer has not confirmed the delivery")
	}

	logCtx := s.logg.WithOrderID(ctx, assignment.OrderID.String())
	logCtx = s.logg.WithCourierID(logCtx, assignment.CourierID.String())

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := s.now().UTC()

		order, err := repo.FindOrder(ctx, assignment.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		courier, err := repo.FindCourier(ctx, assignment.CourierID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load courier")
		}
		if courier == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "courier not found")
		}

		wallet := courier.Wallet
		if order.PaymentMethod == enums.PaymentMethodCash {
			wallet = s.settleWallet(logCtx, courier.Wallet, order.Tender, assignment.OptimalChange)
		}
		walletTotal, err := wallet.TotalCents()
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "courier wallet")
		}

		updated, err := repo.MarkAssignmentDelivered(ctx, assignment.ID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close assignment")
		}
		if !updated {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "assignment is no longer in delivery")
		}
		if _, err := repo.MarkOrderDelivered(ctx, order.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close order")
		}
		released, err := repo.ReleaseCourier(ctx, courier.ID, wallet, walletTotal, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release courier")
		}
		if !released {
			s.logg.Warn(logCtx, "courier was not busy at completion")
		}

		s.logg.Info(logCtx, "delivery completed")
		return nil
	})
}

// settleWallet applies a cash settlement to a copy of the courier wallet:
// tendered denominations in, optimal change out. Change the wallet can no
// longer cover is logged and skipped; the courier hands back what they have.
func (s *service) settleWallet(ctx context.Context, wallet, tender types.Wallet, change types.ChangeBreakdown) types.Wallet {
	settled := wallet.Clone()
	if settled == nil {
		settled = types.Wallet{}
	}
	for label, count := range tender {
		settled.Add(label, count)
	}
	for _, line := range change {
		if err := settled.Remove(line.Denomination, line.Count); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "denomination", line.Denomination), "change denomination unavailable, skipping")
		}
	}
	return settled
}
