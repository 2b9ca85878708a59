package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"skatefed_backend/internal/models"

	"github.com/lib/pq"
)

// RegistrationRepository defines the interface for event registration
// persistence. The storage layer enforces a unique (member_id, event_id)
// constraint; Create maps its violation to ErrDuplicateKey so a race
// between concurrent registrations still yields a conflict, not a second
// row. The Exists pre-check is only a fast path for a friendly error.
type RegistrationRepository interface {
	Create(executor SQLExecutor, reg *models.EventRegistration) (int64, error)
	Exists(memberID, eventID int64) (bool, error)
	ListByMember(memberID int64) ([]models.EventRegistration, error)
	StampPayment(executor SQLExecutor, memberID, eventID int64, paymentID, orderID string) error
}

type registrationRepository struct {
	db *sql.DB
}

// NewRegistrationRepository creates a new instance of RegistrationRepository.
func NewRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

const registrationColumns = `id, member_id, event_id, level_type, suit_size, payment_id, order_id, created_at`

func scanRegistration(row scanner) (*models.EventRegistration, error) {
	reg := &models.EventRegistration{}
	var (
		suitSize  sql.NullString
		paymentID sql.NullString
		orderID   sql.NullString
	)

	err := row.Scan(
		&reg.ID, &reg.MemberID, &reg.EventID, &reg.LevelType,
		&suitSize, &paymentID, &orderID, &reg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if suitSize.Valid {
		reg.SuitSize = &suitSize.String
	}
	if paymentID.Valid {
		reg.PaymentID = &paymentID.String
	}
	if orderID.Valid {
		reg.OrderID = &orderID.String
	}
	return reg, nil
}

// Create inserts an unpaid registration. A unique-constraint violation on
// (member_id, event_id) surfaces as ErrDuplicateKey.
func (r *registrationRepository) Create(executor SQLExecutor, reg *models.EventRegistration) (int64, error) {
	query := `INSERT INTO event_registrations (member_id, event_id, level_type, suit_size, created_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`

	var registrationID int64
	err := executor.QueryRow(
		query,
		reg.MemberID, reg.EventID, reg.LevelType, reg.SuitSize, time.Now(),
	).Scan(&registrationID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code.Name() == "unique_violation" {
				return 0, fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
			}
		}
		return 0, fmt.Errorf("%w: creating registration: %v", ErrDatabaseError, err)
	}
	return registrationID, nil
}

// Exists reports whether a registration already exists for the pair.
func (r *registrationRepository) Exists(memberID, eventID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM event_registrations WHERE member_id = $1 AND event_id = $2)`
	err := r.db.QueryRow(query, memberID, eventID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: checking registration existence: %v", ErrDatabaseError, err)
	}
	return exists, nil
}

// ListByMember returns all registrations of a member, newest first.
func (r *registrationRepository) ListByMember(memberID int64) ([]models.EventRegistration, error) {
	query := `SELECT ` + registrationColumns + `
	          FROM event_registrations
	          WHERE member_id = $1
	          ORDER BY created_at DESC`

	rows, err := r.db.Query(query, memberID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing registrations for member %d: %v", ErrDatabaseError, memberID, err)
	}
	defer rows.Close()

	var regs []models.EventRegistration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning registration: %v", ErrDatabaseError, err)
		}
		regs = append(regs, *reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating registrations: %v", ErrDatabaseError, err)
	}
	return regs, nil
}

// StampPayment records the gateway payment id and order id on the
// registration for the (member, event) pair once payment is verified.
func (r *registrationRepository) StampPayment(executor SQLExecutor, memberID, eventID int64, paymentID, orderID string) error {
	query := `UPDATE event_registrations SET payment_id = $1, order_id = $2 WHERE member_id = $3 AND event_id = $4`
	res, err := executor.Exec(query, paymentID, orderID, memberID, eventID)
	if err != nil {
		return fmt.Errorf("%w: stamping payment on registration (member %d, event %d): %v", ErrDatabaseError, memberID, eventID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking rows affected: %v", ErrDatabaseError, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: registration (member %d, event %d)", ErrNotFound, memberID, eventID)
	}
	return nil
}
