package services

import (
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"skatefed_backend/internal/models"
	"skatefed_backend/internal/repositories"
	"skatefed_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// --- Custom Service Errors ---
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already registered")
	ErrRoleInvalid        = errors.New("unknown or disallowed role")
	ErrScopeRequired      = errors.New("missing subtree scope for role")
	ErrClubNameRequired   = errors.New("club name is required for club admin registration")
	ErrInvalidOTP         = errors.New("invalid one-time code")
	ErrOTPExpired         = errors.New("one-time code has expired")
	ErrAccountNotVerified = errors.New("account has not completed OTP verification")
	ErrAccountNotApproved = errors.New("account is awaiting hierarchy approval")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrTokenGeneration    = errors.New("failed to generate token")
)

// OTPTTL is how long an issued one-time code remains usable.
const OTPTTL = 10 * time.Minute

// --- Data Transfer Objects (DTOs) ---

// RegisterRequest DTO. ClubName is required when registering a club admin;
// the club row is created together with the account so rejection can
// delete both. ClubID lets a member attach to an existing club.
type RegisterRequest struct {
	FullName   string  `json:"full_name" binding:"required"`
	Email      string  `json:"email" binding:"required,email"`
	Phone      string  `json:"phone,omitempty"`
	Password   string  `json:"password" binding:"required,min=8"`
	Role       string  `json:"role" binding:"required"`
	StateID    int64   `json:"state_id"`
	DistrictID int64   `json:"district_id"`
	ClubID     *int64  `json:"club_id,omitempty"`
	ClubName   string  `json:"club_name,omitempty"`
}

// LoginRequest DTO
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse DTO
type AuthResponse struct {
	Account     *models.Account `json:"account"`
	AccessToken string          `json:"access_token"`
}

// VerifyOTPResult reports the outcome of an OTP check.
type VerifyOTPResult struct {
	Account         *models.Account `json:"account"`
	AlreadyVerified bool            `json:"already_verified"`
}

// --- AuthService Interface ---
type AuthService interface {
	Register(req RegisterRequest) (*models.Account, error)
	VerifyOTP(email, code string) (*VerifyOTPResult, error)
	Login(req LoginRequest) (*AuthResponse, error)
	ForgotPassword(email string) error
	ResetPassword(email, otp, newPassword string) error
	GetProfile(accountID int64) (*models.Account, error)
}

// --- authService Implementation ---
type authService struct {
	accountRepo repositories.AccountRepository
	clubRepo    repositories.ClubRepository
	db          *sql.DB
	now         func() time.Time
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(accountRepo repositories.AccountRepository, clubRepo repositories.ClubRepository, db *sql.DB) AuthService {
	return &authService{
		accountRepo: accountRepo,
		clubRepo:    clubRepo,
		db:          db,
		now:         time.Now,
	}
}

// generateOTP produces a 6-digit numeric code from crypto/rand.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// validateScope checks that the scope fields required by the role are set.
func validateScope(role models.Role, req RegisterRequest) error {
	switch role {
	case models.RoleStateAdmin:
		if req.StateID == 0 {
			return fmt.Errorf("%w: state_id", ErrScopeRequired)
		}
	case models.RoleDistrictAdmin:
		if req.StateID == 0 || req.DistrictID == 0 {
			return fmt.Errorf("%w: state_id, district_id", ErrScopeRequired)
		}
	case models.RoleClubAdmin:
		if req.StateID == 0 || req.DistrictID == 0 {
			return fmt.Errorf("%w: state_id, district_id", ErrScopeRequired)
		}
		if utils.IsEmpty(req.ClubName) {
			return ErrClubNameRequired
		}
	case models.RoleMember:
		if req.StateID == 0 || req.DistrictID == 0 {
			return fmt.Errorf("%w: state_id, district_id", ErrScopeRequired)
		}
	}
	return nil
}

// Register creates a pending, unverified account and issues its first OTP.
// Club admin registration also creates the owned club in the same
// transaction, so a later rejection can delete both together.
func (s *authService) Register(req RegisterRequest) (*models.Account, error) {
	role, ok := models.ParseRole(req.Role)
	if !ok || role == models.RoleGlobalAdmin {
		// Global admins are provisioned out of band, never self-registered.
		return nil, fmt.Errorf("%w: '%s'", ErrRoleInvalid, req.Role)
	}
	if err := validateScope(role, req); err != nil {
		return nil, err
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	otp, err := generateOTP()
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        utils.NewNullString(req.Phone),
		PasswordHash: string(hashedPasswordBytes),
		Role:         role,
		StateID:      req.StateID,
		DistrictID:   req.DistrictID,
		ClubID:       req.ClubID,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin registration transaction: %w", err)
	}
	defer tx.Rollback()

	accountID, err := s.accountRepo.Create(tx, account)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to register account: %w", err)
	}
	account.ID = accountID

	if role == models.RoleClubAdmin {
		club := &models.Club{
			Name:       req.ClubName,
			StateID:    req.StateID,
			DistrictID: req.DistrictID,
			AdminID:    accountID,
		}
		if _, err := s.clubRepo.Create(tx, club); err != nil {
			return nil, fmt.Errorf("failed to create club for admin: %w", err)
		}
	}

	if err := s.accountRepo.SetOTP(tx, accountID, otp, s.now().Add(OTPTTL)); err != nil {
		return nil, fmt.Errorf("failed to issue OTP: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit registration: %w", err)
	}

	// Delivery of the code is the mail collaborator's job; the code itself
	// never leaves the server through the API.
	utils.LogInfo("OTP issued for new account", map[string]interface{}{"account_id": accountID, "email": req.Email})

	account.PasswordHash = ""
	account.Status = models.AccountStatusPending
	return account, nil
}

// VerifyOTP checks a one-time code. Members activate immediately; admin
// roles move to awaiting hierarchy approval. Re-verifying an already
// verified account reports AlreadyVerified instead of erroring.
func (s *authService) VerifyOTP(email, code string) (*VerifyOTPResult, error) {
	account, err := s.accountRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if account.EmailVerified {
		account.PasswordHash = ""
		return &VerifyOTPResult{Account: account, AlreadyVerified: true}, nil
	}

	if account.OTPCode == nil || *account.OTPCode != code {
		return nil, ErrInvalidOTP
	}
	if account.OTPExpiresAt == nil || s.now().After(*account.OTPExpiresAt) {
		return nil, ErrOTPExpired
	}

	// Members need no hierarchy approval; admin roles stay pending until
	// their superior approves them.
	status := models.AccountStatusPending
	verified := false
	if account.Role == models.RoleMember {
		status = models.AccountStatusActive
		verified = true
	}

	if err := s.accountRepo.CompleteOTPVerification(s.db, account.ID, status, verified); err != nil {
		return nil, fmt.Errorf("failed to complete OTP verification: %w", err)
	}

	account.EmailVerified = true
	account.Verified = verified
	account.Status = status
	account.OTPCode = nil
	account.OTPExpiresAt = nil
	account.PasswordHash = ""
	return &VerifyOTPResult{Account: account}, nil
}

// Login verifies credentials and issues a signed session token with a
// 24-hour absolute expiry. The comparison is bcrypt only; there is no
// plaintext fallback.
func (s *authService) Login(req LoginRequest) (*AuthResponse, error) {
	account, err := s.accountRepo.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login attempt failed: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !account.EmailVerified {
		return nil, ErrAccountNotVerified
	}
	if account.Role.IsAdmin() && !account.Verified {
		return nil, ErrAccountNotApproved
	}
	if account.Status == models.AccountStatusInactive {
		return nil, ErrAccountInactive
	}

	accessToken, err := utils.GenerateSessionToken(account.ID, string(account.Role))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}

	account.PasswordHash = ""
	return &AuthResponse{
		Account:     account,
		AccessToken: accessToken,
	}, nil
}

// ForgotPassword issues a reset OTP. An unknown email is deliberately
// indistinguishable from a known one to the caller; only the log differs.
func (s *authService) ForgotPassword(email string) error {
	account, err := s.accountRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.LogWarn("Password reset requested for unknown email", map[string]interface{}{"email": email})
			return nil
		}
		return fmt.Errorf("failed to look up account: %w", err)
	}

	otp, err := generateOTP()
	if err != nil {
		return err
	}
	if err := s.accountRepo.SetOTP(s.db, account.ID, otp, s.now().Add(OTPTTL)); err != nil {
		return fmt.Errorf("failed to issue reset OTP: %w", err)
	}

	utils.LogInfo("Password reset OTP issued", map[string]interface{}{"account_id": account.ID})
	return nil
}

// ResetPassword replaces the credential hash after checking the reset OTP.
// As with ForgotPassword, an unknown email yields the generic success.
func (s *authService) ResetPassword(email, otp, newPassword string) error {
	account, err := s.accountRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.LogWarn("Password reset attempted for unknown email", map[string]interface{}{"email": email})
			return nil
		}
		return fmt.Errorf("failed to look up account: %w", err)
	}

	if account.OTPCode == nil || *account.OTPCode != otp {
		return ErrInvalidOTP
	}
	if account.OTPExpiresAt == nil || s.now().After(*account.OTPExpiresAt) {
		return ErrOTPExpired
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.accountRepo.UpdatePassword(s.db, account.ID, string(hashedPasswordBytes)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// GetProfile retrieves an account by its ID, with the hash stripped.
func (s *authService) GetProfile(accountID int64) (*models.Account, error) {
	account, err := s.accountRepo.FindByID(accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to retrieve profile: %w", err)
	}
	account.PasswordHash = ""
	return account, nil
}
