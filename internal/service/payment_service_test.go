package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"reservas-api/internal/domain"
	"reservas-api/internal/repository"

	"github.com/google/uuid"
)

func seedReservation(store *mockStore, productID uuid.UUID) *domain.Reservation {
	reservation := &domain.Reservation{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		ProductID:       &productID,
		ReservationCode: newReservationCode(),
		Quantity:        1,
		ReservationDate: time.Now(),
		TotalAmount:     10,
		Status:          domain.StatusPending,
		CreatedAt:       time.Now(),
	}
	store.reservations[reservation.ID] = reservation
	return reservation
}

func TestRecordPayment_StartsPending(t *testing.T) {
	store := newMockStore()
	product := seedProduct(store, 10, 5)
	reservation := seedReservation(store, product.ID)
	recorder := NewPaymentRecorder(store)

	code := "OP-123"
	payment, err := recorder.Record(context.Background(), store, RecordPaymentInput{
		ReservationID: reservation.ID,
		Method:        "transfer",
		Type:          domain.PaymentTypeOnline,
		OperationCode: &code,
	})
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}

	if payment.Status != domain.PaymentStatusPending || payment.IsConfirmed {
		t.Errorf("online payment must start pending")
	}
	if payment.ConfirmationTime != nil || payment.ConfirmationBy != nil {
		t.Errorf("pending payment must carry no confirmation details")
	}
	if payment.OperationCode == nil || *payment.OperationCode != code {
		t.Errorf("operation code not stored")
	}
}

func TestRecordPayment_OnePerReservation(t *testing.T) {
	store := newMockStore()
	product := seedProduct(store, 10, 5)
	reservation := seedReservation(store, product.ID)
	recorder := NewPaymentRecorder(store)

	in := RecordPaymentInput{
		ReservationID: reservation.ID,
		Method:        "cash",
		Type:          domain.PaymentTypeInPerson,
	}
	if _, err := recorder.Record(context.Background(), store, in); err != nil {
		t.Fatalf("first record failed: %v", err)
	}

	_, err := recorder.Record(context.Background(), store, in)
	if !errors.Is(err, repository.ErrPaymentAlreadyExists) {
		t.Fatalf("expected ErrPaymentAlreadyExists, got %v", err)
	}
}

func TestConfirmPayment(t *testing.T) {
	store := newMockStore()
	product := seedProduct(store, 10, 5)
	reservation := seedReservation(store, product.ID)
	recorder := NewPaymentRecorder(store)
	staffID := uuid.New()

	if _, err := recorder.Record(context.Background(), store, RecordPaymentInput{
		ReservationID: reservation.ID,
		Method:        "transfer",
		Type:          domain.PaymentTypeOnline,
	}); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	payment, err := recorder.Confirm(context.Background(), reservation.ID, staffID)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	if !payment.IsConfirmed || payment.Status != domain.PaymentStatusConfirmed {
		t.Errorf("payment not confirmed")
	}
	if payment.ConfirmationBy == nil || *payment.ConfirmationBy != staffID {
		t.Errorf("confirmation not attributed to staff")
	}
	if payment.ConfirmationTime == nil {
		t.Errorf("confirmation time not set")
	}

	// Confirming twice is a no-op, not an error.
	again, err := recorder.Confirm(context.Background(), reservation.ID, uuid.New())
	if err != nil {
		t.Fatalf("second confirm failed: %v", err)
	}
	if again.ConfirmationBy == nil || *again.ConfirmationBy != staffID {
		t.Errorf("second confirm must not reassign the confirming staff")
	}
}

func TestConfirmPayment_MissingPayment(t *testing.T) {
	recorder := NewPaymentRecorder(newMockStore())

	_, err := recorder.Confirm(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, repository.ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}
