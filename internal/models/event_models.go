package models

import "time"

// Event level types. National-level events are jurisdiction-agnostic:
// skaters from any state may register.
const (
	EventLevelDistrict = "district"
	EventLevelState    = "state"
	EventLevelNational = "national"
)

// Event statuses.
const (
	EventStatusActive = "active"
	EventStatusClosed = "closed"
)

// Event defines a competition window. DistrictID of 0 signals a state-wide
// or higher-level event not restricted to a single district.
type Event struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title" db:"title"`
	LevelType    string    `json:"level_type" db:"level_type"`
	StateID      int64     `json:"state_id" db:"state_id"`
	DistrictID   int64     `json:"district_id" db:"district_id"`
	EventDate    time.Time `json:"event_date" db:"event_date"`
	RegStartDate time.Time `json:"reg_start_date" db:"reg_start_date"`
	RegEndDate   time.Time `json:"reg_end_date" db:"reg_end_date"`
	Fee          int64     `json:"fee" db:"fee"`
	Status       string    `json:"status" db:"status"`
	CreatedBy    int64     `json:"created_by" db:"created_by"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// EventRegistration links a member to an event exactly once; the
// (member_id, event_id) pair is unique at the storage layer. PaymentID and
// OrderID stay null until the payment gateway confirms the fee.
type EventRegistration struct {
	ID        int64     `json:"id"`
	MemberID  int64     `json:"member_id" db:"member_id"`
	EventID   int64     `json:"event_id" db:"event_id"`
	LevelType string    `json:"level_type" db:"level_type"`
	SuitSize  *string   `json:"suit_size,omitempty" db:"suit_size"`
	PaymentID *string   `json:"payment_id,omitempty" db:"payment_id"`
	OrderID   *string   `json:"order_id,omitempty" db:"order_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// EventFilters narrows event listings.
type EventFilters struct {
	StateID int64
	Status  string
}
