package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"skatefed_backend/internal/models"

	"github.com/lib/pq"
)

// ClubRepository defines the interface for club persistence. Mutating
// methods take an SQLExecutor so approval and rejection can couple club
// updates with account updates in one transaction.
type ClubRepository interface {
	Create(executor SQLExecutor, club *models.Club) (int64, error)
	FindByID(clubID int64) (*models.Club, error)
	FindByAdminID(adminID int64) (*models.Club, error)
	MarkApproved(executor SQLExecutor, clubID int64) error
	Delete(executor SQLExecutor, clubID int64) error
	ListPendingByDistrict(districtID int64) ([]models.Club, error)
}

type clubRepository struct {
	db *sql.DB
}

// NewClubRepository creates a new instance of ClubRepository.
func NewClubRepository(db *sql.DB) ClubRepository {
	return &clubRepository{db: db}
}

const clubColumns = `id, name, state_id, district_id, admin_id, verified, status, created_at, updated_at`

func scanClub(row scanner) (*models.Club, error) {
	club := &models.Club{}
	err := row.Scan(
		&club.ID, &club.Name, &club.StateID, &club.DistrictID, &club.AdminID,
		&club.Verified, &club.Status, &club.CreatedAt, &club.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return club, nil
}

// Create inserts a new club owned by a club-admin account. Clubs start
// pending and unverified, mirroring their owner.
func (r *clubRepository) Create(executor SQLExecutor, club *models.Club) (int64, error) {
	query := `INSERT INTO clubs (name, state_id, district_id, admin_id, verified, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, false, $5, $6, $6)
	          RETURNING id`

	var clubID int64
	err := executor.QueryRow(
		query,
		club.Name, club.StateID, club.DistrictID, club.AdminID,
		models.AccountStatusPending, time.Now(),
	).Scan(&clubID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code.Name() == "unique_violation" {
				return 0, fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
			}
		}
		return 0, fmt.Errorf("%w: creating club: %v", ErrDatabaseError, err)
	}
	return clubID, nil
}

// FindByID retrieves a club by its ID.
func (r *clubRepository) FindByID(clubID int64) (*models.Club, error) {
	query := `SELECT ` + clubColumns + ` FROM clubs WHERE id = $1`

	club, err := scanClub(r.db.QueryRow(query, clubID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding club by ID %d: %v", ErrDatabaseError, clubID, err)
	}
	return club, nil
}

// FindByAdminID retrieves the club owned by a club-admin account.
func (r *clubRepository) FindByAdminID(adminID int64) (*models.Club, error) {
	query := `SELECT ` + clubColumns + ` FROM clubs WHERE admin_id = $1`

	club, err := scanClub(r.db.QueryRow(query, adminID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding club by admin ID %d: %v", ErrDatabaseError, adminID, err)
	}
	return club, nil
}

// MarkApproved flips the club to active/verified in lock-step with its
// owning account; callers run it inside the same transaction.
func (r *clubRepository) MarkApproved(executor SQLExecutor, clubID int64) error {
	query := `UPDATE clubs SET status = $1, verified = true, updated_at = $2 WHERE id = $3`
	res, err := executor.Exec(query, models.AccountStatusActive, time.Now(), clubID)
	if err != nil {
		return fmt.Errorf("%w: approving club %d: %v", ErrDatabaseError, clubID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking rows affected: %v", ErrDatabaseError, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: club %d", ErrNotFound, clubID)
	}
	return nil
}

// Delete removes the club row. During rejection this runs before the
// owning account's delete to satisfy referential integrity.
func (r *clubRepository) Delete(executor SQLExecutor, clubID int64) error {
	res, err := executor.Exec(`DELETE FROM clubs WHERE id = $1`, clubID)
	if err != nil {
		return fmt.Errorf("%w: deleting club %d: %v", ErrDatabaseError, clubID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking rows affected: %v", ErrDatabaseError, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: club %d", ErrNotFound, clubID)
	}
	return nil
}

// ListPendingByDistrict returns unapproved clubs in a district whose
// owning admin has completed OTP verification.
func (r *clubRepository) ListPendingByDistrict(districtID int64) ([]models.Club, error) {
	query := `SELECT c.id, c.name, c.state_id, c.district_id, c.admin_id, c.verified, c.status, c.created_at, c.updated_at
	          FROM clubs c
	          JOIN accounts a ON a.id = c.admin_id
	          WHERE c.district_id = $1 AND c.verified = false AND a.email_verified = true
	          ORDER BY c.created_at`

	rows, err := r.db.Query(query, districtID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing pending clubs for district %d: %v", ErrDatabaseError, districtID, err)
	}
	defer rows.Close()

	var clubs []models.Club
	for rows.Next() {
		club, err := scanClub(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning pending club: %v", ErrDatabaseError, err)
		}
		clubs = append(clubs, *club)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating pending clubs: %v", ErrDatabaseError, err)
	}
	return clubs, nil
}
