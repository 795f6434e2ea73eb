package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"reservas-api/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrPaymentAlreadyExists = errors.New("reservation already has a payment")
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint errors
const uniqueViolation = "23505"

// PaymentRepository defines the interface for payment data access. A
// reservation has at most one payment, enforced by a unique constraint.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	FindByReservationID(ctx context.Context, reservationID uuid.UUID) (*domain.Payment, error)
	Confirm(ctx context.Context, id uuid.UUID, confirmedBy uuid.UUID) error
}

type paymentRepository struct {
	db DBTX
}

// NewPaymentRepository creates a new instance of PaymentRepository
func NewPaymentRepository(db DBTX) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create inserts a new payment linked to a reservation
func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, reservation_id, payment_method, payment_type, operation_code,
			note, image_url, status, is_confirmed, confirmation_time, confirmation_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		payment.ID,
		payment.ReservationID,
		payment.PaymentMethod,
		payment.PaymentType,
		payment.OperationCode,
		payment.Note,
		payment.ImageURL,
		payment.Status,
		payment.IsConfirmed,
		payment.ConfirmationTime,
		payment.ConfirmationBy,
		payment.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrPaymentAlreadyExists
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// FindByReservationID retrieves the payment attached to a reservation
func (r *paymentRepository) FindByReservationID(ctx context.Context, reservationID uuid.UUID) (*domain.Payment, error) {
	query := `
		SELECT id, reservation_id, payment_method, payment_type, operation_code,
		       note, image_url, status, is_confirmed, confirmation_time, confirmation_by, created_at
		FROM payments
		WHERE reservation_id = $1
	`

	payment := &domain.Payment{}
	err := r.db.QueryRowContext(ctx, query, reservationID).Scan(
		&payment.ID,
		&payment.ReservationID,
		&payment.PaymentMethod,
		&payment.PaymentType,
		&payment.OperationCode,
		&payment.Note,
		&payment.ImageURL,
		&payment.Status,
		&payment.IsConfirmed,
		&payment.ConfirmationTime,
		&payment.ConfirmationBy,
		&payment.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}

	return payment, nil
}

// Confirm marks a pending payment as confirmed. Already confirmed
// payments are left untouched.
func (r *paymentRepository) Confirm(ctx context.Context, id uuid.UUID, confirmedBy uuid.UUID) error {
	query := `
		UPDATE payments
		SET status = $2, is_confirmed = TRUE, confirmation_time = now(), confirmation_by = $3
		WHERE id = $1 AND is_confirmed = FALSE
	`

	result, err := r.db.ExecContext(ctx, query, id, domain.PaymentStatusConfirmed, confirmedBy)
	if err != nil {
		return fmt.Errorf("failed to confirm payment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPaymentNotFound
	}

	return nil
}
