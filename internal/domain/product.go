package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a bookable tour or product offered by an entrepreneur.
// Stock is the number of remaining slots; all mutations go through the
// inventory ledger so it cannot go negative.
type Product struct {
	ID             uuid.UUID `json:"id" db:"id"`
	EntrepreneurID uuid.UUID `json:"entrepreneur_id" db:"entrepreneur_id"`
	Name           string    `json:"name" db:"name"`
	Description    string    `json:"description" db:"description"`
	Price          float64   `json:"price" db:"price"`
	Stock          int       `json:"stock" db:"stock"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// CustomPackage is a bundle of products sold as a single priced unit.
// TotalAmount is fixed at package creation and trusted as-is at booking
// time; it is not recomputed from the constituent product prices.
type CustomPackage struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	TotalAmount float64   `json:"total_amount" db:"total_amount"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	Products    []Product `json:"products,omitempty" db:"-"`
}
