package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reservas-api/internal/domain"
	"reservas-api/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrInvalidTarget     = errors.New("reservation must reference exactly one of product or custom package")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrInvalidStatus     = errors.New("unknown reservation status")
	ErrInvalidTransition = errors.New("invalid reservation status transition")
	ErrNotOwner          = errors.New("reservation does not belong to the requester")
	ErrPackageImmutable  = errors.New("package reservations cannot change product or quantity")
)

// CreateReservationInput is a standard booking request. The target type
// makes "neither product nor package" unrepresentable.
type CreateReservationInput struct {
	Target          domain.ReservationTarget
	Quantity        int
	ReservationDate time.Time
}

// UpdateReservationInput carries the mutable reservation fields. A nil
// ProductID keeps the current product.
type UpdateReservationInput struct {
	ProductID       *uuid.UUID
	Quantity        int
	ReservationDate time.Time
	Status          string
}

// DirectSaleInput is a point-of-sale booking: product, walk-in customer
// contact and the payment taken on the spot.
type DirectSaleInput struct {
	ProductID     uuid.UUID
	Contact       CustomerContact
	Quantity      int
	PaymentMethod string
	OperationCode *string
	Note          *string
	ImageURL      *string
}

// DirectSaleResult bundles everything a direct sale produced
type DirectSaleResult struct {
	Reservation   *domain.Reservation `json:"reservation"`
	Payment       *domain.Payment     `json:"payment"`
	ClientCreated bool                `json:"client_created"`
}

// ReservationService is the reservation lifecycle manager. Every
// operation takes the acting identity explicitly; there is no ambient
// current user. All multi-step writes run inside one Store transaction,
// so a failure after the stock decrement rolls the decrement back.
type ReservationService interface {
	Create(ctx context.Context, userID uuid.UUID, in CreateReservationInput) (*domain.Reservation, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateReservationInput) (*domain.Reservation, error)
	Delete(ctx context.Context, id, requesterID uuid.UUID) error
	DirectSale(ctx context.Context, staffID uuid.UUID, in DirectSaleInput) (*DirectSaleResult, error)

	Get(ctx context.Context, id uuid.UUID) (*domain.ReservationView, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.ReservationView, error)
	ListForEntrepreneur(ctx context.Context, entrepreneurID uuid.UUID) ([]*domain.ReservationView, error)
}

// userReservationLimit caps the customer reservation listing
const userReservationLimit = 10

type reservationService struct {
	store     repository.Store
	pricing   PricingEngine
	customers CustomerResolver
	payments  PaymentRecorder
}

// NewReservationService creates a new instance of ReservationService
func NewReservationService(
	store repository.Store,
	pricing PricingEngine,
	customers CustomerResolver,
	payments PaymentRecorder,
) ReservationService {
	return &reservationService{
		store:     store,
		pricing:   pricing,
		customers: customers,
		payments:  payments,
	}
}

// newReservationCode generates an opaque booking code. UUIDs are random,
// so codes generated in the same millisecond are still distinct.
func newReservationCode() string {
	return fmt.Sprintf("RES-%s", uuid.NewString())
}

// Create books a product quantity or a custom package for a customer.
// Product bookings decrement stock atomically; if persisting the
// reservation fails afterwards, the transaction returns the stock.
func (s *reservationService) Create(ctx context.Context, userID uuid.UUID, in CreateReservationInput) (*domain.Reservation, error) {
	if !in.Target.Valid() {
		return nil, ErrInvalidTarget
	}
	if in.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	var reservation *domain.Reservation
	err := s.store.ExecTx(ctx, func(tx repository.Store) error {
		var (
			productID *uuid.UUID
			packageID *uuid.UUID
			total     float64
		)

		if pid, ok := in.Target.ProductID(); ok {
			if err := tx.Inventory().CheckAndReserve(ctx, pid, in.Quantity); err != nil {
				return err
			}
			product, err := tx.Products().FindByID(ctx, pid)
			if err != nil {
				return err
			}
			total = s.pricing.PriceForProduct(product, in.Quantity)
			productID = &pid
		} else if pkgID, ok := in.Target.PackageID(); ok {
			pkg, err := tx.Packages().FindByID(ctx, pkgID)
			if err != nil {
				return err
			}
			total = s.pricing.PriceForPackage(pkg)
			packageID = &pkgID
		}

		now := time.Now()
		reservation = &domain.Reservation{
			ID:              uuid.New(),
			UserID:          userID,
			ProductID:       productID,
			CustomPackageID: packageID,
			ReservationCode: newReservationCode(),
			Quantity:        in.Quantity,
			ReservationDate: in.ReservationDate,
			TotalAmount:     total,
			Status:          domain.StatusPending,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		return tx.Reservations().Create(ctx, reservation)
	})
	if err != nil {
		return nil, err
	}

	return reservation, nil
}

// Update changes a reservation's product, quantity, date or status. The
// ledger is reconciled against the change: quantity growth reserves the
// extra units, shrinkage and cancellation return them, and a product swap
// moves the hold to the new product. The total is repriced whenever the
// held product or quantity changes.
func (s *reservationService) Update(ctx context.Context, id uuid.UUID, in UpdateReservationInput) (*domain.Reservation, error) {
	if in.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if !domain.ValidStatus(in.Status) {
		return nil, ErrInvalidStatus
	}

	var updated *domain.Reservation
	err := s.store.ExecTx(ctx, func(tx repository.Store) error {
		reservation, err := tx.Reservations().FindByID(ctx, id)
		if err != nil {
			return err
		}

		if !domain.CanTransition(reservation.Status, in.Status) {
			return ErrInvalidTransition
		}

		if reservation.CustomPackageID != nil {
			// Package reservations carry no product stock; only date and
			// status may change.
			if in.ProductID != nil || in.Quantity != reservation.Quantity {
				return ErrPackageImmutable
			}
			reservation.ReservationDate = in.ReservationDate
			reservation.Status = in.Status
			reservation.UpdatedAt = time.Now()
			updated = reservation
			return tx.Reservations().Update(ctx, reservation)
		}

		oldProduct := *reservation.ProductID
		newProduct := oldProduct
		if in.ProductID != nil {
			newProduct = *in.ProductID
		}

		oldHold := 0
		if reservation.Active() {
			oldHold = reservation.Quantity
		}
		newHold := 0
		if in.Status != domain.StatusCancelled {
			newHold = in.Quantity
		}

		if newProduct == oldProduct {
			switch delta := newHold - oldHold; {
			case delta > 0:
				if err := tx.Inventory().CheckAndReserve(ctx, newProduct, delta); err != nil {
					return err
				}
			case delta < 0:
				if err := tx.Inventory().Restock(ctx, newProduct, -delta); err != nil {
					return err
				}
			}
		} else {
			if oldHold > 0 {
				if err := tx.Inventory().Restock(ctx, oldProduct, oldHold); err != nil {
					return err
				}
			}
			if newHold > 0 {
				if err := tx.Inventory().CheckAndReserve(ctx, newProduct, newHold); err != nil {
					return err
				}
			}
		}

		if in.Status != domain.StatusCancelled && (newProduct != oldProduct || in.Quantity != reservation.Quantity) {
			product, err := tx.Products().FindByID(ctx, newProduct)
			if err != nil {
				return err
			}
			reservation.TotalAmount = s.pricing.PriceForProduct(product, in.Quantity)
		}

		reservation.ProductID = &newProduct
		reservation.Quantity = in.Quantity
		reservation.ReservationDate = in.ReservationDate
		reservation.Status = in.Status
		reservation.UpdatedAt = time.Now()
		updated = reservation
		return tx.Reservations().Update(ctx, reservation)
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes a reservation on behalf of its owning customer. Active
// product reservations return their held stock in the same transaction.
func (s *reservationService) Delete(ctx context.Context, id, requesterID uuid.UUID) error {
	return s.store.ExecTx(ctx, func(tx repository.Store) error {
		reservation, err := tx.Reservations().FindByID(ctx, id)
		if err != nil {
			return err
		}

		if reservation.UserID != requesterID {
			return ErrNotOwner
		}

		if reservation.ProductID != nil && reservation.Active() {
			if err := tx.Inventory().Restock(ctx, *reservation.ProductID, reservation.Quantity); err != nil {
				return err
			}
		}

		return tx.Reservations().Delete(ctx, id)
	})
}

// DirectSale books and immediately confirms a product reservation for a
// walk-in customer, recording the payment taken in person. Stock
// decrement, customer provisioning, reservation and payment are one
// transaction: if any step fails nothing is persisted.
func (s *reservationService) DirectSale(ctx context.Context, staffID uuid.UUID, in DirectSaleInput) (*DirectSaleResult, error) {
	if in.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	result := &DirectSaleResult{}
	err := s.store.ExecTx(ctx, func(tx repository.Store) error {
		if err := tx.Inventory().CheckAndReserve(ctx, in.ProductID, in.Quantity); err != nil {
			return err
		}

		product, err := tx.Products().FindByID(ctx, in.ProductID)
		if err != nil {
			return err
		}

		customer, created, err := s.customers.ResolveOrCreate(ctx, tx, in.Contact)
		if err != nil {
			return err
		}
		result.ClientCreated = created

		now := time.Now()
		reservation := &domain.Reservation{
			ID:              uuid.New(),
			UserID:          customer.ID,
			ProductID:       &in.ProductID,
			ReservationCode: newReservationCode(),
			Quantity:        in.Quantity,
			ReservationDate: now,
			TotalAmount:     s.pricing.PriceForProduct(product, in.Quantity),
			Status:          domain.StatusConfirmed,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := tx.Reservations().Create(ctx, reservation); err != nil {
			return err
		}
		result.Reservation = reservation

		payment, err := s.payments.Record(ctx, tx, RecordPaymentInput{
			ReservationID: reservation.ID,
			Method:        in.PaymentMethod,
			Type:          domain.PaymentTypeInPerson,
			OperationCode: in.OperationCode,
			Note:          in.Note,
			ImageURL:      in.ImageURL,
			ConfirmedBy:   &staffID,
		})
		if err != nil {
			return err
		}
		result.Payment = payment

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Get retrieves the full nested view of a reservation
func (s *reservationService) Get(ctx context.Context, id uuid.UUID) (*domain.ReservationView, error) {
	return s.store.Reservations().GetView(ctx, id)
}

// ListForUser retrieves a customer's most recent reservations
func (s *reservationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.ReservationView, error) {
	return s.store.Reservations().ListByUser(ctx, userID, userReservationLimit)
}

// ListForEntrepreneur retrieves reservations touching an entrepreneur's
// products, directly or through a package
func (s *reservationService) ListForEntrepreneur(ctx context.Context, entrepreneurID uuid.UUID) ([]*domain.ReservationView, error) {
	return s.store.Reservations().ListByEntrepreneur(ctx, entrepreneurID)
}
