package domain

import (
	"time"

	"github.com/google/uuid"
)

// Payment types
const (
	PaymentTypeOnline   = "online"
	PaymentTypeInPerson = "in_person"
)

// Payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusConfirmed = "confirmed"
)

// Payment records how a reservation was paid. Direct sales create a
// confirmed payment immediately; online payments start pending and are
// confirmed later by staff. A payment is immutable once confirmed.
type Payment struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	ReservationID    uuid.UUID  `json:"reservation_id" db:"reservation_id"`
	PaymentMethod    string     `json:"payment_method" db:"payment_method"`
	PaymentType      string     `json:"payment_type" db:"payment_type"`
	OperationCode    *string    `json:"operation_code" db:"operation_code"`
	Note             *string    `json:"note" db:"note"`
	ImageURL         *string    `json:"image_url" db:"image_url"`
	Status           string     `json:"status" db:"status"`
	IsConfirmed      bool       `json:"is_confirmed" db:"is_confirmed"`
	ConfirmationTime *time.Time `json:"confirmation_time" db:"confirmation_time"`
	ConfirmationBy   *uuid.UUID `json:"confirmation_by" db:"confirmation_by"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}
