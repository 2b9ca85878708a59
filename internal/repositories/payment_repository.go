package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"skatefed_backend/internal/models"

	"github.com/lib/pq"
)

// PaymentRepository defines the interface for payment order persistence.
type PaymentRepository interface {
	Create(executor SQLExecutor, order *models.PaymentOrder) (int64, error)
	FindByOrderID(orderID string) (*models.PaymentOrder, error)
	MarkVerified(executor SQLExecutor, orderID, paymentID string, verifiedAt time.Time) error
}

type paymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository creates a new instance of PaymentRepository.
func NewPaymentRepository(db *sql.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `id, order_id, receipt, purpose, account_id, event_id, amount, status, payment_id, verified_at, created_at`

func scanPaymentOrder(row scanner) (*models.PaymentOrder, error) {
	order := &models.PaymentOrder{}
	var (
		eventID    sql.NullInt64
		paymentID  sql.NullString
		verifiedAt sql.NullTime
	)

	err := row.Scan(
		&order.ID, &order.OrderID, &order.Receipt, &order.Purpose, &order.AccountID,
		&eventID, &order.Amount, &order.Status, &paymentID, &verifiedAt, &order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if eventID.Valid {
		order.EventID = &eventID.Int64
	}
	if paymentID.Valid {
		order.PaymentID = &paymentID.String
	}
	if verifiedAt.Valid {
		order.VerifiedAt = &verifiedAt.Time
	}
	return order, nil
}

// Create inserts a payment order in the "created" state.
func (r *paymentRepository) Create(executor SQLExecutor, order *models.PaymentOrder) (int64, error) {
	query := `INSERT INTO payment_orders (order_id, receipt, purpose, account_id, event_id, amount, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`

	var eventID sql.NullInt64
	if order.EventID != nil {
		eventID = sql.NullInt64{Int64: *order.EventID, Valid: true}
	}

	var id int64
	err := executor.QueryRow(
		query,
		order.OrderID, order.Receipt, order.Purpose, order.AccountID,
		eventID, order.Amount, models.PaymentStatusCreated, time.Now(),
	).Scan(&id)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code.Name() == "unique_violation" {
				return 0, fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
			}
		}
		return 0, fmt.Errorf("%w: creating payment order: %v", ErrDatabaseError, err)
	}
	return id, nil
}

// FindByOrderID retrieves a payment order by its gateway order id.
func (r *paymentRepository) FindByOrderID(orderID string) (*models.PaymentOrder, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_orders WHERE order_id = $1`

	order, err := scanPaymentOrder(r.db.QueryRow(query, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding payment order %s: %v", ErrDatabaseError, orderID, err)
	}
	return order, nil
}

// MarkVerified stamps the order verified with the gateway payment id. The
// verified_at timestamp is the replay guard: an already-verified order is
// never re-processed.
func (r *paymentRepository) MarkVerified(executor SQLExecutor, orderID, paymentID string, verifiedAt time.Time) error {
	query := `UPDATE payment_orders SET status = $1, payment_id = $2, verified_at = $3 WHERE order_id = $4`
	res, err := executor.Exec(query, models.PaymentStatusVerified, paymentID, verifiedAt, orderID)
	if err != nil {
		return fmt.Errorf("%w: marking payment order %s verified: %v", ErrDatabaseError, orderID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking rows affected: %v", ErrDatabaseError, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: payment order %s", ErrNotFound, orderID)
	}
	return nil
}
