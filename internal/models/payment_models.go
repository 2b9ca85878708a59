package models

import "time"

// Payment purposes.
const (
	PaymentPurposeMembership   = "membership_renewal"
	PaymentPurposeRegistration = "event_registration"
)

// Payment order statuses.
const (
	PaymentStatusCreated  = "created"
	PaymentStatusVerified = "verified"
)

// PaymentOrder represents a monetary transaction tied to a purpose. It is
// created in the "created" state; successful signature verification stamps
// VerifiedAt and PaymentID, which doubles as the replay guard for retried
// gateway callbacks.
type PaymentOrder struct {
	ID         int64      `json:"id"`
	OrderID    string     `json:"order_id" db:"order_id"`
	Receipt    string     `json:"receipt" db:"receipt"`
	Purpose    string     `json:"purpose" db:"purpose"`
	AccountID  int64      `json:"account_id" db:"account_id"`
	EventID    *int64     `json:"event_id,omitempty" db:"event_id"`
	Amount     int64      `json:"amount" db:"amount"`
	Status     string     `json:"status" db:"status"`
	PaymentID  *string    `json:"payment_id,omitempty" db:"payment_id"`
	VerifiedAt *time.Time `json:"verified_at,omitempty" db:"verified_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}
