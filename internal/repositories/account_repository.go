package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"skatefed_backend/internal/models"

	"github.com/lib/pq" // For pq.Error
)

// AccountRepository defines the interface for account persistence.
type AccountRepository interface {
	Create(executor SQLExecutor, acc *models.Account) (int64, error)
	FindByEmail(email string) (*models.Account, error)
	FindByID(accountID int64) (*models.Account, error)
	SetOTP(executor SQLExecutor, accountID int64, code string, expiresAt time.Time) error
	CompleteOTPVerification(executor SQLExecutor, accountID int64, status string, verified bool) error
	UpdatePassword(executor SQLExecutor, accountID int64, passwordHash string) error
	MarkApproved(executor SQLExecutor, accountID, approverID int64) error
	Delete(executor SQLExecutor, accountID int64) error
	ExtendMembership(executor SQLExecutor, accountID int64, expiresAt time.Time) error
	ListPendingApproval(role models.Role, stateID int64) ([]models.Account, error)
}

type accountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new instance of AccountRepository.
func NewAccountRepository(db *sql.DB) AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `id, full_name, email, phone, password_hash, role, state_id, district_id, club_id,
	email_verified, verified, status, otp_code, otp_expires_at, approved_by, membership_expires_at,
	created_at, updated_at`

func scanAccount(row scanner) (*models.Account, error) {
	acc := &models.Account{}
	var (
		phone       sql.NullString
		clubID      sql.NullInt64
		otpCode     sql.NullString
		otpExpires  sql.NullTime
		approvedBy  sql.NullInt64
		memberUntil sql.NullTime
		role        string
	)

	err := row.Scan(
		&acc.ID, &acc.FullName, &acc.Email, &phone, &acc.PasswordHash, &role,
		&acc.StateID, &acc.DistrictID, &clubID,
		&acc.EmailVerified, &acc.Verified, &acc.Status,
		&otpCode, &otpExpires, &approvedBy, &memberUntil,
		&acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	acc.Role = models.Role(role)
	if phone.Valid {
		acc.Phone = &phone.String
	}
	if clubID.Valid {
		acc.ClubID = &clubID.Int64
	}
	if otpCode.Valid {
		acc.OTPCode = &otpCode.String
	}
	if otpExpires.Valid {
		acc.OTPExpiresAt = &otpExpires.Time
	}
	if approvedBy.Valid {
		acc.ApprovedBy = &approvedBy.Int64
	}
	if memberUntil.Valid {
		acc.MembershipExpiresAt = &memberUntil.Time
	}
	return acc, nil
}

// Create inserts a new account. New accounts always start pending and
// unverified; activation happens through OTP verification and, for admin
// roles, hierarchy approval.
func (r *accountRepository) Create(executor SQLExecutor, acc *models.Account) (int64, error) {
	query := `INSERT INTO accounts (full_name, email, phone, password_hash, role, state_id, district_id, club_id,
	              email_verified, verified, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false, false, $9, $10, $10)
	          RETURNING id`

	currentTime := time.Now()

	var clubID sql.NullInt64
	if acc.ClubID != nil {
		clubID = sql.NullInt64{Int64: *acc.ClubID, Valid: true}
	}

	var accountID int64
	err := executor.QueryRow(
		query,
		acc.FullName,
		acc.Email,
		acc.Phone, // Can be nil
		acc.PasswordHash,
		string(acc.Role),
		acc.StateID,
		acc.DistrictID,
		clubID,
		models.AccountStatusPending,
		currentTime,
	).Scan(&accountID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code.Name() == "unique_violation" {
				return 0, fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
			}
		}
		return 0, fmt.Errorf("%w: creating account: %v", ErrDatabaseError, err)
	}
	return accountID, nil
}

// FindByEmail retrieves an account by its unique email.
func (r *accountRepository) FindByEmail(email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`

	acc, err := scanAccount(r.db.QueryRow(query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding account by email %s: %v", ErrDatabaseError, email, err)
	}
	return acc, nil
}

// FindByID retrieves an account by its ID.
func (r *accountRepository) FindByID(accountID int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	acc, err := scanAccount(r.db.QueryRow(query, accountID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding account by ID %d: %v", ErrDatabaseError, accountID, err)
	}
	return acc, nil
}

// SetOTP stores a one-time code and its expiry, overwriting any prior code.
func (r *accountRepository) SetOTP(executor SQLExecutor, accountID int64, code string, expiresAt time.Time) error {
	query := `UPDATE accounts SET otp_code = $1, otp_expires_at = $2, updated_at = $3 WHERE id = $4`
	res, err := executor.Exec(query, code, expiresAt, time.Now(), accountID)
	if err != nil {
		return fmt.Errorf("%w: setting OTP for account %d: %v", ErrDatabaseError, accountID, err)
	}
	return requireRowAffected(res, accountID)
}

// CompleteOTPVerification clears the OTP fields and records the outcome of
// a successful code check: the new lifecycle status and whether the account
// is fully verified (members) or still awaiting hierarchy approval (admins).
func (r *accountRepository) CompleteOTPVerification(executor SQLExecutor, accountID int64, status string, verified bool) error {
	query := `UPDATE accounts
	          SET otp_code = NULL, otp_expires_at = NULL, email_verified = true, verified = $1, status = $2, updated_at = $3
	          WHERE id = $4`
	res, err := executor.Exec(query, verified, status, time.Now(), accountID)
	if err != nil {
		return fmt.Errorf("%w: completing OTP verification for account %d: %v", ErrDatabaseError, accountID, err)
	}
	return requireRowAffected(res, accountID)
}

// UpdatePassword replaces the credential hash and clears any pending OTP.
func (r *accountRepository) UpdatePassword(executor SQLExecutor, accountID int64, passwordHash string) error {
	query := `UPDATE accounts
	          SET password_hash = $1, otp_code = NULL, otp_expires_at = NULL, updated_at = $2
	          WHERE id = $3`
	res, err := executor.Exec(query, passwordHash, time.Now(), accountID)
	if err != nil {
		return fmt.Errorf("%w: updating password for account %d: %v", ErrDatabaseError, accountID, err)
	}
	return requireRowAffected(res, accountID)
}

// MarkApproved flips the account to active/verified and records who
// approved it. Re-applying to an already-active account is harmless.
func (r *accountRepository) MarkApproved(executor SQLExecutor, accountID, approverID int64) error {
	query := `UPDATE accounts SET status = $1, verified = true, approved_by = $2, updated_at = $3 WHERE id = $4`
	res, err := executor.Exec(query, models.AccountStatusActive, approverID, time.Now(), accountID)
	if err != nil {
		return fmt.Errorf("%w: approving account %d: %v", ErrDatabaseError, accountID, err)
	}
	return requireRowAffected(res, accountID)
}

// Delete removes the account row. Rejection deletes rather than
// soft-disables so the applicant can re-register from scratch.
func (r *accountRepository) Delete(executor SQLExecutor, accountID int64) error {
	res, err := executor.Exec(`DELETE FROM accounts WHERE id = $1`, accountID)
	if err != nil {
		return fmt.Errorf("%w: deleting account %d: %v", ErrDatabaseError, accountID, err)
	}
	return requireRowAffected(res, accountID)
}

// ExtendMembership sets the membership expiry. The new value replaces the
// old one outright; renewal is a flat reset, not additive.
func (r *accountRepository) ExtendMembership(executor SQLExecutor, accountID int64, expiresAt time.Time) error {
	query := `UPDATE accounts SET membership_expires_at = $1, updated_at = $2 WHERE id = $3`
	res, err := executor.Exec(query, expiresAt, time.Now(), accountID)
	if err != nil {
		return fmt.Errorf("%w: extending membership for account %d: %v", ErrDatabaseError, accountID, err)
	}
	return requireRowAffected(res, accountID)
}

// ListPendingApproval returns OTP-verified accounts of the given role still
// awaiting hierarchy approval. Accounts that never completed OTP
// verification are invisible to approvers. A stateID of 0 means no state
// restriction (global admin view).
func (r *accountRepository) ListPendingApproval(role models.Role, stateID int64) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + `
	          FROM accounts
	          WHERE role = $1 AND email_verified = true AND verified = false AND ($2 = 0 OR state_id = $2)
	          ORDER BY created_at`

	rows, err := r.db.Query(query, string(role), stateID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing pending %s accounts: %v", ErrDatabaseError, role, err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning pending account: %v", ErrDatabaseError, err)
		}
		accounts = append(accounts, *acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating pending accounts: %v", ErrDatabaseError, err)
	}
	return accounts, nil
}

// requireRowAffected maps a zero-row update/delete to ErrNotFound.
func requireRowAffected(res sql.Result, accountID int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking rows affected: %v", ErrDatabaseError, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: account %d", ErrNotFound, accountID)
	}
	return nil
}
