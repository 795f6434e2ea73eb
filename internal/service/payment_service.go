package service

import (
	"context"
	"fmt"
	"time"

	"reservas-api/internal/domain"
	"reservas-api/internal/repository"

	"github.com/google/uuid"
)

// RecordPaymentInput describes a payment to attach to a reservation.
// When ConfirmedBy is set the payment is recorded as already confirmed
// (the direct-sale path); otherwise it starts pending.
type RecordPaymentInput struct {
	ReservationID uuid.UUID
	Method        string
	Type          string
	OperationCode *string
	Note          *string
	ImageURL      *string
	ConfirmedBy   *uuid.UUID
}

// PaymentRecorder attaches payments to reservations. Record takes the
// Store explicitly so a direct sale can include the payment in its
// transaction.
type PaymentRecorder interface {
	Record(ctx context.Context, store repository.Store, in RecordPaymentInput) (*domain.Payment, error)
	Confirm(ctx context.Context, reservationID, staffID uuid.UUID) (*domain.Payment, error)
}

type paymentRecorder struct {
	store repository.Store
}

// NewPaymentRecorder creates a new instance of PaymentRecorder
func NewPaymentRecorder(store repository.Store) PaymentRecorder {
	return &paymentRecorder{store: store}
}

// Record creates the payment row for a reservation. A reservation holds
// at most one payment.
func (s *paymentRecorder) Record(ctx context.Context, store repository.Store, in RecordPaymentInput) (*domain.Payment, error) {
	now := time.Now()
	payment := &domain.Payment{
		ID:            uuid.New(),
		ReservationID: in.ReservationID,
		PaymentMethod: in.Method,
		PaymentType:   in.Type,
		OperationCode: in.OperationCode,
		Note:          in.Note,
		ImageURL:      in.ImageURL,
		Status:        domain.PaymentStatusPending,
		CreatedAt:     now,
	}

	if in.ConfirmedBy != nil {
		payment.Status = domain.PaymentStatusConfirmed
		payment.IsConfirmed = true
		payment.ConfirmationTime = &now
		payment.ConfirmationBy = in.ConfirmedBy
	}

	if err := store.Payments().Create(ctx, payment); err != nil {
		return nil, err
	}

	return payment, nil
}

// Confirm marks the pending payment of a reservation as confirmed by a
// staff member
func (s *paymentRecorder) Confirm(ctx context.Context, reservationID, staffID uuid.UUID) (*domain.Payment, error) {
	payment, err := s.store.Payments().FindByReservationID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	if payment.IsConfirmed {
		return payment, nil
	}

	if err := s.store.Payments().Confirm(ctx, payment.ID, staffID); err != nil {
		return nil, fmt.Errorf("failed to confirm payment: %w", err)
	}

	return s.store.Payments().FindByReservationID(ctx, reservationID)
}
