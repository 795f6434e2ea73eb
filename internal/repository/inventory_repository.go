package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InventoryRepository is the stock ledger. All stock mutations go through
// it; product rows are never updated with a stock value computed in Go.
type InventoryRepository interface {
	// CheckAndReserve decrements stock by quantity if enough is available.
	// The check and the decrement are a single atomic statement, so two
	// concurrent reservations can never both pass the check and oversell.
	CheckAndReserve(ctx context.Context, productID uuid.UUID, quantity int) error

	// Restock returns quantity units to the product, used when a
	// reservation is cancelled or deleted.
	Restock(ctx context.Context, productID uuid.UUID, quantity int) error

	// StockOf reads the current stock counter
	StockOf(ctx context.Context, productID uuid.UUID) (int, error)
}

type inventoryRepository struct {
	db DBTX
}

// NewInventoryRepository creates a new instance of InventoryRepository
func NewInventoryRepository(db DBTX) InventoryRepository {
	return &inventoryRepository{db: db}
}

// CheckAndReserve relies on the conditional UPDATE taking a row lock: the
// WHERE clause re-reads stock under that lock, so the decrement only
// happens when stock is still sufficient at commit time. The stock >= 0
// CHECK constraint backstops the invariant.
func (r *inventoryRepository) CheckAndReserve(ctx context.Context, productID uuid.UUID, quantity int) error {
	query := `
		UPDATE products
		SET stock = stock - $2, updated_at = $3
		WHERE id = $1 AND stock >= $2
	`

	result, err := r.db.ExecContext(ctx, query, productID, quantity, time.Now())
	if err != nil {
		return fmt.Errorf("failed to reserve stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Either the product does not exist or stock ran out; look at the
		// row to report the right error.
		if _, err := r.StockOf(ctx, productID); err != nil {
			return err
		}
		return ErrInsufficientStock
	}

	return nil
}

func (r *inventoryRepository) Restock(ctx context.Context, productID uuid.UUID, quantity int) error {
	query := `
		UPDATE products
		SET stock = stock + $2, updated_at = $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, productID, quantity, time.Now())
	if err != nil {
		return fmt.Errorf("failed to restock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *inventoryRepository) StockOf(ctx context.Context, productID uuid.UUID) (int, error) {
	var stock int
	err := r.db.QueryRowContext(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrProductNotFound
		}
		return 0, fmt.Errorf("failed to read stock: %w", err)
	}
	return stock, nil
}
