package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"reservas-api/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrReservationNotFound = errors.New("reservation not found")
)

// ReservationRepository defines the interface for reservation data access.
// The view methods assemble reservations with their related product,
// package, customer and payment records for the read endpoints.
type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) error
	Update(ctx context.Context, reservation *domain.Reservation) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error)
	GetView(ctx context.Context, id uuid.UUID) (*domain.ReservationView, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.ReservationView, error)
	ListByEntrepreneur(ctx context.Context, entrepreneurID uuid.UUID) ([]*domain.ReservationView, error)
}

type reservationRepository struct {
	db DBTX
}

// NewReservationRepository creates a new instance of ReservationRepository
func NewReservationRepository(db DBTX) ReservationRepository {
	return &reservationRepository{db: db}
}

// Create inserts a new reservation
func (r *reservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	query := `
		INSERT INTO reservations (id, user_id, product_id, custom_package_id, reservation_code,
			quantity, reservation_date, total_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		reservation.ID,
		reservation.UserID,
		reservation.ProductID,
		reservation.CustomPackageID,
		reservation.ReservationCode,
		reservation.Quantity,
		reservation.ReservationDate,
		reservation.TotalAmount,
		reservation.Status,
		reservation.CreatedAt,
		reservation.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	return nil
}

// Update rewrites the mutable fields of a reservation
func (r *reservationRepository) Update(ctx context.Context, reservation *domain.Reservation) error {
	query := `
		UPDATE reservations
		SET product_id = $2, custom_package_id = $3, quantity = $4, reservation_date = $5,
		    total_amount = $6, status = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		reservation.ID,
		reservation.ProductID,
		reservation.CustomPackageID,
		reservation.Quantity,
		reservation.ReservationDate,
		reservation.TotalAmount,
		reservation.Status,
		reservation.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrReservationNotFound
	}

	return nil
}

// Delete removes a reservation
func (r *reservationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrReservationNotFound
	}

	return nil
}

const reservationColumns = `id, user_id, product_id, custom_package_id, reservation_code,
	quantity, reservation_date, total_amount, status, created_at, updated_at`

// FindByID retrieves a bare reservation by ID
func (r *reservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	reservation := &domain.Reservation{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&reservation.ID,
		&reservation.UserID,
		&reservation.ProductID,
		&reservation.CustomPackageID,
		&reservation.ReservationCode,
		&reservation.Quantity,
		&reservation.ReservationDate,
		&reservation.TotalAmount,
		&reservation.Status,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to find reservation by ID: %w", err)
	}

	return reservation, nil
}

const viewQuery = `
	SELECT r.id, r.user_id, r.product_id, r.custom_package_id, r.reservation_code,
	       r.quantity, r.reservation_date, r.total_amount, r.status, r.created_at, r.updated_at,
	       p.id, p.entrepreneur_id, p.name, p.description, p.price, p.stock, p.created_at, p.updated_at,
	       cp.id, cp.name, cp.total_amount, cp.created_at,
	       u.id, u.name, u.phone, u.email, u.role, u.created_at, u.updated_at
	FROM reservations r
	LEFT JOIN products p ON p.id = r.product_id
	LEFT JOIN custom_packages cp ON cp.id = r.custom_package_id
	JOIN users u ON u.id = r.user_id
`

func scanView(rows interface {
	Scan(dest ...any) error
}) (*domain.ReservationView, error) {
	view := &domain.ReservationView{}

	var (
		pID    sql.Null[uuid.UUID]
		pOwner sql.Null[uuid.UUID]
		pName  sql.NullString
		pDesc  sql.NullString
		pPrice sql.NullFloat64
		pStock sql.NullInt64
		pCr    sql.NullTime
		pUp    sql.NullTime

		cpID    sql.Null[uuid.UUID]
		cpName  sql.NullString
		cpTotal sql.NullFloat64
		cpCr    sql.NullTime
	)

	user := &domain.User{}

	err := rows.Scan(
		&view.ID,
		&view.UserID,
		&view.ProductID,
		&view.CustomPackageID,
		&view.ReservationCode,
		&view.Quantity,
		&view.ReservationDate,
		&view.TotalAmount,
		&view.Status,
		&view.CreatedAt,
		&view.UpdatedAt,
		&pID, &pOwner, &pName, &pDesc, &pPrice, &pStock, &pCr, &pUp,
		&cpID, &cpName, &cpTotal, &cpCr,
		&user.ID, &user.Name, &user.Phone, &user.Email, &user.Role, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if pID.Valid {
		view.Product = &domain.Product{
			ID:             pID.V,
			EntrepreneurID: pOwner.V,
			Name:           pName.String,
			Description:    pDesc.String,
			Price:          pPrice.Float64,
			Stock:          int(pStock.Int64),
			CreatedAt:      pCr.Time,
			UpdatedAt:      pUp.Time,
		}
	}

	if cpID.Valid {
		view.CustomPackage = &domain.CustomPackage{
			ID:          cpID.V,
			Name:        cpName.String,
			TotalAmount: cpTotal.Float64,
			CreatedAt:   cpCr.Time,
		}
	}

	view.User = user
	return view, nil
}

// GetView retrieves a reservation with product, package (and its
// products), customer and payment attached
func (r *reservationRepository) GetView(ctx context.Context, id uuid.UUID) (*domain.ReservationView, error) {
	view, err := scanView(r.db.QueryRowContext(ctx, viewQuery+` WHERE r.id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to get reservation view: %w", err)
	}

	if view.CustomPackage != nil {
		pkg, err := NewPackageRepository(r.db).FindByID(ctx, view.CustomPackage.ID)
		if err != nil {
			return nil, err
		}
		view.CustomPackage = pkg
	}

	payment, err := NewPaymentRepository(r.db).FindByReservationID(ctx, id)
	if err != nil && err != ErrPaymentNotFound {
		return nil, err
	}
	view.Payment = payment

	return view, nil
}

func (r *reservationRepository) listViews(ctx context.Context, query string, args ...any) ([]*domain.ReservationView, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	views := []*domain.ReservationView{}
	for rows.Next() {
		view, err := scanView(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		views = append(views, view)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reservations: %w", err)
	}

	return views, nil
}

// ListByUser retrieves a customer's most recent reservations
func (r *reservationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.ReservationView, error) {
	query := viewQuery + ` WHERE r.user_id = $1 ORDER BY r.created_at DESC LIMIT $2`
	return r.listViews(ctx, query, userID, limit)
}

// ListByEntrepreneur retrieves reservations that touch an entrepreneur's
// products, either directly or through a custom package containing one.
func (r *reservationRepository) ListByEntrepreneur(ctx context.Context, entrepreneurID uuid.UUID) ([]*domain.ReservationView, error) {
	query := viewQuery + `
	WHERE p.entrepreneur_id = $1
	   OR EXISTS (
		SELECT 1 FROM custom_package_products cpp
		JOIN products pp ON pp.id = cpp.product_id
		WHERE cpp.custom_package_id = r.custom_package_id
		  AND pp.entrepreneur_id = $1
	   )
	ORDER BY r.created_at DESC`
	return r.listViews(ctx, query, entrepreneurID)
}
