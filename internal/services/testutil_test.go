package services

import (
	"database/sql"
	"testing"
	"time"

	"skatefed_backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

// newMockDB opens a sqlmock-backed *sql.DB for service tests.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	return db, mock, func() { db.Close() }
}

var accountTestColumns = []string{
	"id", "full_name", "email", "phone", "password_hash", "role",
	"state_id", "district_id", "club_id",
	"email_verified", "verified", "status",
	"otp_code", "otp_expires_at", "approved_by", "membership_expires_at",
	"created_at", "updated_at",
}

// accountRow builds a row for the account select column list.
func accountRow(acc *models.Account) *sqlmock.Rows {
	rows := sqlmock.NewRows(accountTestColumns)
	var phone interface{}
	if acc.Phone != nil {
		phone = *acc.Phone
	}
	var clubID interface{}
	if acc.ClubID != nil {
		clubID = *acc.ClubID
	}
	var otpCode interface{}
	if acc.OTPCode != nil {
		otpCode = *acc.OTPCode
	}
	var otpExpires interface{}
	if acc.OTPExpiresAt != nil {
		otpExpires = *acc.OTPExpiresAt
	}
	rows.AddRow(
		acc.ID, acc.FullName, acc.Email, phone, acc.PasswordHash, string(acc.Role),
		acc.StateID, acc.DistrictID, clubID,
		acc.EmailVerified, acc.Verified, acc.Status,
		otpCode, otpExpires, nil, nil,
		time.Now(), time.Now(),
	)
	return rows
}

var clubTestColumns = []string{
	"id", "name", "state_id", "district_id", "admin_id", "verified", "status", "created_at", "updated_at",
}

func clubRow(club *models.Club) *sqlmock.Rows {
	return sqlmock.NewRows(clubTestColumns).AddRow(
		club.ID, club.Name, club.StateID, club.DistrictID, club.AdminID,
		club.Verified, club.Status, time.Now(), time.Now(),
	)
}

var eventTestColumns = []string{
	"id", "title", "level_type", "state_id", "district_id",
	"event_date", "reg_start_date", "reg_end_date",
	"fee", "status", "created_by", "created_at",
}

func eventRow(event *models.Event) *sqlmock.Rows {
	return sqlmock.NewRows(eventTestColumns).AddRow(
		event.ID, event.Title, event.LevelType, event.StateID, event.DistrictID,
		event.EventDate, event.RegStartDate, event.RegEndDate,
		event.Fee, event.Status, event.CreatedBy, time.Now(),
	)
}

var paymentTestColumns = []string{
	"id", "order_id", "receipt", "purpose", "account_id", "event_id",
	"amount", "status", "payment_id", "verified_at", "created_at",
}

func paymentOrderRow(order *models.PaymentOrder) *sqlmock.Rows {
	var eventID interface{}
	if order.EventID != nil {
		eventID = *order.EventID
	}
	var paymentID interface{}
	if order.PaymentID != nil {
		paymentID = *order.PaymentID
	}
	var verifiedAt interface{}
	if order.VerifiedAt != nil {
		verifiedAt = *order.VerifiedAt
	}
	return sqlmock.NewRows(paymentTestColumns).AddRow(
		order.ID, order.OrderID, order.Receipt, order.Purpose, order.AccountID, eventID,
		order.Amount, order.Status, paymentID, verifiedAt, time.Now(),
	)
}
