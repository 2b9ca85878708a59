package models

import "time"

// Account lifecycle statuses.
const (
	AccountStatusPending  = "pending"
	AccountStatusActive   = "active"
	AccountStatusInactive = "inactive"
)

// Account represents any human actor in the portal: a state, district or
// club administrator, or a plain member. Which of the subtree-scope fields
// (StateID, DistrictID, ClubID) are meaningful depends on the role depth:
// a state admin is scoped by state only, a club admin by state, district
// and club. Zero means "not applicable at this depth".
type Account struct {
	ID                  int64      `json:"id"`
	FullName            string     `json:"full_name" db:"full_name"`
	Email               string     `json:"email" db:"email"`
	Phone               *string    `json:"phone,omitempty" db:"phone"`
	PasswordHash        string     `json:"-" db:"password_hash"`
	Role                Role       `json:"role" db:"role"`
	StateID             int64      `json:"state_id" db:"state_id"`
	DistrictID          int64      `json:"district_id" db:"district_id"`
	ClubID              *int64     `json:"club_id,omitempty" db:"club_id"`
	EmailVerified       bool       `json:"email_verified" db:"email_verified"`
	Verified            bool       `json:"verified" db:"verified"`
	Status              string     `json:"status" db:"status"`
	OTPCode             *string    `json:"-" db:"otp_code"`
	OTPExpiresAt        *time.Time `json:"-" db:"otp_expires_at"`
	ApprovedBy          *int64     `json:"approved_by,omitempty" db:"approved_by"`
	MembershipExpiresAt *time.Time `json:"membership_expires_at,omitempty" db:"membership_expires_at"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

// Club is owned by a club-admin account. Its verified/status pair mirrors
// the owning account's and must be updated in lock-step with it during
// approval and rejection: the two rows are transactionally coupled.
type Club struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name" db:"name"`
	StateID    int64     `json:"state_id" db:"state_id"`
	DistrictID int64     `json:"district_id" db:"district_id"`
	AdminID    int64     `json:"admin_id" db:"admin_id"`
	Verified   bool      `json:"verified" db:"verified"`
	Status     string    `json:"status" db:"status"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
