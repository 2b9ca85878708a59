package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"skatefed_backend/internal/models"
	"skatefed_backend/internal/repositories"
	"skatefed_backend/pkg/utils"

	"github.com/google/uuid"
)

// --- Custom Service Errors for Payments ---
var (
	ErrPaymentOrderNotFound = errors.New("payment order not found")
	ErrInvalidSignature     = errors.New("payment signature does not match")
	ErrUnknownPurpose       = errors.New("unknown payment purpose")
	ErrPaymentEventMissing  = errors.New("event id is required for event registration payments")
)

// --- Payment DTOs ---
type CreateOrderRequest struct {
	Purpose string `json:"purpose" binding:"required"`
	EventID *int64 `json:"event_id,omitempty"`
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// --- PaymentService Interface ---
type PaymentService interface {
	CreateOrder(accountID int64, req CreateOrderRequest) (*models.PaymentOrder, error)
	Verify(req VerifyPaymentRequest) error
}

// --- paymentService Implementation ---
type paymentService struct {
	paymentRepo      repositories.PaymentRepository
	accountRepo      repositories.AccountRepository
	eventRepo        repositories.EventRepository
	registrationRepo repositories.RegistrationRepository
	db               *sql.DB
	secret           string
	membershipFee    int64
	now              func() time.Time
}

// NewPaymentService creates a new instance of PaymentService. The secret
// is the shared HMAC key configured with the payment gateway; the
// membership fee is the flat annual renewal amount.
func NewPaymentService(
	paymentRepo repositories.PaymentRepository,
	accountRepo repositories.AccountRepository,
	eventRepo repositories.EventRepository,
	registrationRepo repositories.RegistrationRepository,
	db *sql.DB,
	secret string,
	membershipFee int64,
) PaymentService {
	return &paymentService{
		paymentRepo:      paymentRepo,
		accountRepo:      accountRepo,
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		db:               db,
		secret:           secret,
		membershipFee:    membershipFee,
		now:              time.Now,
	}
}

// SignPayment computes the gateway callback signature: hex-encoded
// HMAC-SHA256 over "orderID|paymentID".
func SignPayment(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// CreateOrder records a payment order in the "created" state. The amount
// is computed server-side: the event's fee for registrations, the flat
// annual fee for membership renewals.
func (s *paymentService) CreateOrder(accountID int64, req CreateOrderRequest) (*models.PaymentOrder, error) {
	account, err := s.accountRepo.FindByID(accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to resolve account: %w", err)
	}

	order := &models.PaymentOrder{
		OrderID:   "order_" + uuid.NewString(),
		Receipt:   uuid.NewString(),
		Purpose:   req.Purpose,
		AccountID: account.ID,
	}

	switch req.Purpose {
	case models.PaymentPurposeMembership:
		order.Amount = s.membershipFee
	case models.PaymentPurposeRegistration:
		if req.EventID == nil {
			return nil, ErrPaymentEventMissing
		}
		event, err := s.eventRepo.FindByID(*req.EventID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrEventNotFound
			}
			return nil, fmt.Errorf("failed to resolve event: %w", err)
		}
		order.EventID = &event.ID
		order.Amount = event.Fee
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownPurpose, req.Purpose)
	}

	orderRowID, err := s.paymentRepo.Create(s.db, order)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}
	order.ID = orderRowID
	order.Status = models.PaymentStatusCreated
	return order, nil
}

// Verify validates a gateway callback and applies the payment's effect.
// The signature check is byte-for-byte over the recomputed HMAC. Gateways
// retry webhooks, so re-delivery of an already-verified (order, payment)
// pair is a no-op rather than a second mutation. The stamp and the effect
// run in one transaction; a failure rolls back both.
func (s *paymentService) Verify(req VerifyPaymentRequest) error {
	order, err := s.paymentRepo.FindByOrderID(req.OrderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPaymentOrderNotFound
		}
		return fmt.Errorf("failed to resolve payment order: %w", err)
	}

	expected := SignPayment(s.secret, req.OrderID, req.PaymentID)
	if !hmac.Equal([]byte(expected), []byte(req.Signature)) {
		return ErrInvalidSignature
	}

	if order.Status == models.PaymentStatusVerified {
		if order.PaymentID != nil && *order.PaymentID == req.PaymentID {
			utils.LogInfo("Duplicate payment callback ignored", map[string]interface{}{"order_id": order.OrderID})
			return nil
		}
		return fmt.Errorf("order %s already verified with a different payment", order.OrderID)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin verification transaction: %w", err)
	}
	defer tx.Rollback()

	verifiedAt := s.now()
	if err := s.paymentRepo.MarkVerified(tx, order.OrderID, req.PaymentID, verifiedAt); err != nil {
		return fmt.Errorf("failed to mark order verified: %w", err)
	}

	switch order.Purpose {
	case models.PaymentPurposeMembership:
		// Flat one-year reset from verification time, not additive.
		if err := s.accountRepo.ExtendMembership(tx, order.AccountID, verifiedAt.AddDate(1, 0, 0)); err != nil {
			return fmt.Errorf("failed to extend membership: %w", err)
		}
	case models.PaymentPurposeRegistration:
		if order.EventID == nil {
			return fmt.Errorf("%w: order %s has no event", ErrPaymentEventMissing, order.OrderID)
		}
		if err := s.registrationRepo.StampPayment(tx, order.AccountID, *order.EventID, req.PaymentID, order.OrderID); err != nil {
			return fmt.Errorf("failed to stamp registration: %w", err)
		}
	default:
		return fmt.Errorf("%w: '%s'", ErrUnknownPurpose, order.Purpose)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit verification: %w", err)
	}
	return nil
}
