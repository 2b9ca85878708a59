package services

import (
	"regexp"
	"testing"
	"time"

	"skatefed_backend/internal/models"
	"skatefed_backend/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(t *testing.T) (*authService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, cleanup := newMockDB(t)
	svc := NewAuthService(
		repositories.NewAccountRepository(db),
		repositories.NewClubRepository(db),
		db,
	).(*authService)
	svc.now = func() time.Time { return fixedNow }
	return svc, mock, cleanup
}

func pendingAdmin(code string, expiresAt time.Time) *models.Account {
	return &models.Account{
		ID: 4, FullName: "Sam Okafor", Email: "sam@example.com",
		Role: models.RoleDistrictAdmin, StateID: 5, DistrictID: 7,
		Status: models.AccountStatusPending,
		OTPCode: &code, OTPExpiresAt: &expiresAt,
	}
}

func expectFindByEmail(mock sqlmock.Sqlmock, acc *models.Account) {
	mock.ExpectQuery(regexp.QuoteMeta(`FROM accounts WHERE email = $1`)).
		WithArgs(acc.Email).
		WillReturnRows(accountRow(acc))
}

func TestVerifyOTP_ExpiredCode(t *testing.T) {
	svc, mock, cleanup := newAuthService(t)
	defer cleanup()

	// Correct code, but issued more than 10 minutes ago.
	acc := pendingAdmin("123456", fixedNow.Add(-time.Minute))
	expectFindByEmail(mock, acc)

	_, err := svc.VerifyOTP(acc.Email, "123456")
	assert.ErrorIs(t, err, ErrOTPExpired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyOTP_WrongCode(t *testing.T) {
	svc, mock, cleanup := newAuthService(t)
	defer cleanup()

	acc := pendingAdmin("123456", fixedNow.Add(5*time.Minute))
	expectFindByEmail(mock, acc)

	_, err := svc.VerifyOTP(acc.Email, "654321")
	assert.ErrorIs(t, err, ErrInvalidOTP)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyOTP_AdminStaysPendingApproval(t *testing.T) {
	svc, mock, cleanup := newAuthService(t)
	defer cleanup()

	acc := pendingAdmin("123456", fixedNow.Add(5*time.Minute))
	expectFindByEmail(mock, acc)
	mock.ExpectExec(regexp.QuoteMeta(`SET otp_code = NULL, otp_expires_at = NULL, email_verified = true`)).
		WithArgs(false, models.AccountStatusPending, sqlmock.AnyArg(), acc.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	result, err := svc.VerifyOTP(acc.Email, "123456")
	require.NoError(t, err)
	assert.False(t, result.AlreadyVerified)
	assert.False(t, result.Account.Verified)
	assert.Equal(t, models.AccountStatusPending, result.Account.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyOTP_MemberActivatesDirectly(t *testing.T) {
	svc, mock, cleanup := newAuthService(t)
	defer cleanup()

	code := "123456"
	expiresAt := fixedNow.Add(5 * time.Minute)
	acc := &models.Account{
		ID: 6, FullName: "Rin Patel", Email: "rin@example.com",
		Role: models.RoleMember, StateID: 5, DistrictID: 2,
		Status: models.AccountStatusPending, OTPCode: &code, OTPExpiresAt: &expiresAt,
	}
	expectFindByEmail(mock, acc)
	mock.ExpectExec(regexp.QuoteMeta(`SET otp_code = NULL, otp_expires_at = NULL, email_verified = true`)).
		WithArgs(true, models.AccountStatusActive, sqlmock.AnyArg(), acc.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	result, err := svc.VerifyOTP(acc.Email, code)
	require.NoError(t, err)
	assert.True(t, result.Account.Verified)
	assert.Equal(t, models.AccountStatusActive, result.Account.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyOTP_IdempotentWhenAlreadyVerified(t *testing.T) {
	svc, mock, cleanup := newAuthService(t)
	defer cleanup()

	acc := activeMember()
	expectFindByEmail(mock, acc)

	result, err := svc.VerifyOTP(acc.Email, "000000")
	require.NoError(t, err)
	assert.True(t, result.AlreadyVerified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, mock, cleanup := newAuthService(t)
	defer cleanup()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	acc := activeMember()
	acc.PasswordHash = string(hash)
	expectFindByEmail(mock, acc)

	_, err = svc.Login(LoginRequest{Email: acc.Email, Password: "battery-staple"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, mock, cleanup := newAuthService(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM accounts WHERE email = $1`)).
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows(accountTestColumns))

	_, err := svc.Login(LoginRequest{Email: "ghost@example.com", Password: "whatever1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_UnapprovedAdminRejected(t *testing.T) {
	svc, mock, cleanup := newAuthService(t)
	defer cleanup()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	acc := pendingAdmin("", fixedNow)
	acc.OTPCode = nil
	acc.OTPExpiresAt = nil
	acc.EmailVerified = true
	acc.PasswordHash = string(hash)
	expectFindByEmail(mock, acc)

	_, err = svc.Login(LoginRequest{Email: acc.Email, Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrAccountNotApproved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_Success(t *testing.T) {
	svc, mock, cleanup := newAuthService(t)
	defer cleanup()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	acc := activeMember()
	acc.PasswordHash = string(hash)
	expectFindByEmail(mock, acc)

	resp, err := svc.Login(LoginRequest{Email: acc.Email, Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Empty(t, resp.Account.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetPassword_UnknownEmailIsGenericSuccess(t *testing.T) {
	// Enumeration prevention: an unknown identifier behaves exactly like
	// a known one from the caller's perspective.
	svc, mock, cleanup := newAuthService(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM accounts WHERE email = $1`)).
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows(accountTestColumns))

	err := svc.ResetPassword("ghost@example.com", "123456", "new-password-9")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForgotPassword_UnknownEmailIsGenericSuccess(t *testing.T) {
	svc, mock, cleanup := newAuthService(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM accounts WHERE email = $1`)).
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows(accountTestColumns))

	err := svc.ForgotPassword("ghost@example.com")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetPassword_WrongOTP(t *testing.T) {
	svc, mock, cleanup := newAuthService(t)
	defer cleanup()

	acc := pendingAdmin("123456", fixedNow.Add(5*time.Minute))
	expectFindByEmail(mock, acc)

	err := svc.ResetPassword(acc.Email, "999999", "new-password-9")
	assert.ErrorIs(t, err, ErrInvalidOTP)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_GlobalAdminDisallowed(t *testing.T) {
	svc, _, cleanup := newAuthService(t)
	defer cleanup()

	_, err := svc.Register(RegisterRequest{
		FullName: "Eve", Email: "eve@example.com", Password: "password123",
		Role: string(models.RoleGlobalAdmin),
	})
	assert.ErrorIs(t, err, ErrRoleInvalid)
}

func TestRegister_ClubAdminRequiresClubName(t *testing.T) {
	svc, _, cleanup := newAuthService(t)
	defer cleanup()

	_, err := svc.Register(RegisterRequest{
		FullName: "Ada", Email: "ada@example.com", Password: "password123",
		Role: string(models.RoleClubAdmin), StateID: 5, DistrictID: 7,
	})
	assert.ErrorIs(t, err, ErrClubNameRequired)
}

func TestRegister_ClubAdminCreatesClubInSameTransaction(t *testing.T) {
	svc, mock, cleanup := newAuthService(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO accounts`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(21)))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO clubs`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(12)))
	mock.ExpectExec(regexp.QuoteMeta(`SET otp_code = $1, otp_expires_at = $2`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	acc, err := svc.Register(RegisterRequest{
		FullName: "Ada", Email: "ada@example.com", Password: "password123",
		Role: string(models.RoleClubAdmin), StateID: 5, DistrictID: 7,
		ClubName: "Rolling Thunder",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(21), acc.ID)
	assert.Equal(t, models.AccountStatusPending, acc.Status)
	assert.Empty(t, acc.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}
