package domain

import (
	"time"

	"github.com/google/uuid"
)

// Reservation statuses
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// ValidStatus reports whether s is a known reservation status
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusCancelled
}

// CanTransition reports whether a reservation may move from one status to
// another. Cancelled is terminal: no update is allowed once a reservation
// is cancelled, not even one restating the same status.
func CanTransition(from, to string) bool {
	if from == StatusCancelled {
		return false
	}
	if from == to {
		return true
	}
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCancelled
	}
	return false
}

// ReservationTarget identifies what a reservation books: exactly one of a
// product or a custom package. The zero value is invalid, so a target with
// neither reference is unrepresentable in the service API.
type ReservationTarget struct {
	productID *uuid.UUID
	packageID *uuid.UUID
}

// TargetProduct returns a target booking a single product
func TargetProduct(id uuid.UUID) ReservationTarget {
	return ReservationTarget{productID: &id}
}

// TargetPackage returns a target booking a custom package
func TargetPackage(id uuid.UUID) ReservationTarget {
	return ReservationTarget{packageID: &id}
}

// ProductID returns the product reference, if this is a product target
func (t ReservationTarget) ProductID() (uuid.UUID, bool) {
	if t.productID == nil {
		return uuid.Nil, false
	}
	return *t.productID, true
}

// PackageID returns the package reference, if this is a package target
func (t ReservationTarget) PackageID() (uuid.UUID, bool) {
	if t.packageID == nil {
		return uuid.Nil, false
	}
	return *t.packageID, true
}

// Valid reports whether exactly one reference is set
func (t ReservationTarget) Valid() bool {
	return (t.productID != nil) != (t.packageID != nil)
}

// Reservation represents a booking of a product quantity or a custom
// package by a customer for a date. TotalAmount is computed once at
// creation and never recomputed.
type Reservation struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	UserID          uuid.UUID  `json:"user_id" db:"user_id"`
	ProductID       *uuid.UUID `json:"product_id" db:"product_id"`
	CustomPackageID *uuid.UUID `json:"custom_package_id" db:"custom_package_id"`
	ReservationCode string     `json:"reservation_code" db:"reservation_code"`
	Quantity        int        `json:"quantity" db:"quantity"`
	ReservationDate time.Time  `json:"reservation_date" db:"reservation_date"`
	TotalAmount     float64    `json:"total_amount" db:"total_amount"`
	Status          string     `json:"status" db:"status"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// Active reports whether the reservation still holds stock
func (r *Reservation) Active() bool {
	return r.Status != StatusCancelled
}

// ReservationView is a reservation with its related records attached,
// used by the read endpoints.
type ReservationView struct {
	Reservation
	Product       *Product       `json:"product,omitempty"`
	CustomPackage *CustomPackage `json:"custom_package,omitempty"`
	User          *User          `json:"user,omitempty"`
	Payment       *Payment       `json:"payment,omitempty"`
}
