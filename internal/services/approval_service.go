package services

import (
	"database/sql"
	"errors"
	"fmt"

	"skatefed_backend/internal/models"
	"skatefed_backend/internal/repositories"
)

// --- Custom Service Errors for Approvals ---
var (
	ErrApproverNotFound  = errors.New("approver account not found")
	ErrTargetNotFound    = errors.New("target account not found")
	ErrClubNotFound      = errors.New("club not found")
	ErrApprovalForbidden = errors.New("approver is not entitled to act on this target")
)

// PendingApprovals is the role-dispatched listing result: account-level
// approvers see pending accounts, district admins see pending clubs.
type PendingApprovals struct {
	Accounts []models.Account `json:"accounts"`
	Clubs    []models.Club    `json:"clubs"`
}

// --- ApprovalService Interface ---
//
// The approval rule is strictly one level down and subtree-scoped; the
// table lives in models.CanApprove and is consulted nowhere else.
type ApprovalService interface {
	Approve(approverID, targetID int64) error
	Reject(approverID, targetID int64) error
	ApproveClub(approverID, clubID int64) error
	RejectClub(approverID, clubID int64) error
	ListPending(approverID int64) (*PendingApprovals, error)
}

// --- approvalService Implementation ---
type approvalService struct {
	accountRepo repositories.AccountRepository
	clubRepo    repositories.ClubRepository
	db          *sql.DB
}

// NewApprovalService creates a new instance of ApprovalService.
func NewApprovalService(accountRepo repositories.AccountRepository, clubRepo repositories.ClubRepository, db *sql.DB) ApprovalService {
	return &approvalService{
		accountRepo: accountRepo,
		clubRepo:    clubRepo,
		db:          db,
	}
}

// authorize resolves both parties and applies the approval table.
func (s *approvalService) authorize(approverID, targetID int64) (*models.Account, *models.Account, error) {
	approver, err := s.accountRepo.FindByID(approverID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, ErrApproverNotFound
		}
		return nil, nil, fmt.Errorf("failed to resolve approver: %w", err)
	}

	target, err := s.accountRepo.FindByID(targetID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, ErrTargetNotFound
		}
		return nil, nil, fmt.Errorf("failed to resolve target: %w", err)
	}

	if !models.CanApprove(approver, target) {
		return nil, nil, ErrApprovalForbidden
	}
	return approver, target, nil
}

// Approve activates the target account and, for a club admin, applies the
// identical transition to the owned club in the same transaction. Approving
// an already-active account re-applies the same field values, which is a
// safe no-op.
func (s *approvalService) Approve(approverID, targetID int64) error {
	approver, target, err := s.authorize(approverID, targetID)
	if err != nil {
		return err
	}

	var club *models.Club
	if target.Role == models.RoleClubAdmin {
		club, err = s.clubRepo.FindByAdminID(target.ID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("failed to resolve owned club: %w", err)
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin approval transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.accountRepo.MarkApproved(tx, target.ID, approver.ID); err != nil {
		return fmt.Errorf("failed to approve account %d: %w", target.ID, err)
	}
	if club != nil {
		if err := s.clubRepo.MarkApproved(tx, club.ID); err != nil {
			return fmt.Errorf("failed to approve club %d: %w", club.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit approval: %w", err)
	}
	return nil
}

// Reject deletes the target account, and its owned club first if it has
// one, in a single transaction. Deletion is destructive and final; it
// frees the applicant to re-register from scratch. The club-before-account
// order keeps a club from ever referencing a deleted admin.
func (s *approvalService) Reject(approverID, targetID int64) error {
	_, target, err := s.authorize(approverID, targetID)
	if err != nil {
		return err
	}

	var club *models.Club
	if target.Role == models.RoleClubAdmin {
		club, err = s.clubRepo.FindByAdminID(target.ID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("failed to resolve owned club: %w", err)
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin rejection transaction: %w", err)
	}
	defer tx.Rollback()

	if club != nil {
		if err := s.clubRepo.Delete(tx, club.ID); err != nil {
			return fmt.Errorf("failed to delete club %d: %w", club.ID, err)
		}
	}
	if err := s.accountRepo.Delete(tx, target.ID); err != nil {
		return fmt.Errorf("failed to delete account %d: %w", target.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rejection: %w", err)
	}
	return nil
}

// ApproveClub resolves a club to its owning admin account and runs the
// standard account approval, which cascades back onto the club.
func (s *approvalService) ApproveClub(approverID, clubID int64) error {
	club, err := s.clubRepo.FindByID(clubID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrClubNotFound
		}
		return fmt.Errorf("failed to resolve club: %w", err)
	}
	return s.Approve(approverID, club.AdminID)
}

// RejectClub resolves a club to its owning admin account and runs the
// standard rejection, deleting both club and account.
func (s *approvalService) RejectClub(approverID, clubID int64) error {
	club, err := s.clubRepo.FindByID(clubID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrClubNotFound
		}
		return fmt.Errorf("failed to resolve club: %w", err)
	}
	return s.Reject(approverID, club.AdminID)
}

// ListPending returns what the viewer is entitled to act on. Only
// OTP-verified applicants are visible; roles without approval authority
// get Forbidden.
func (s *approvalService) ListPending(approverID int64) (*PendingApprovals, error) {
	viewer, err := s.accountRepo.FindByID(approverID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrApproverNotFound
		}
		return nil, fmt.Errorf("failed to resolve viewer: %w", err)
	}

	result := &PendingApprovals{}
	switch viewer.Role {
	case models.RoleGlobalAdmin:
		result.Accounts, err = s.accountRepo.ListPendingApproval(models.RoleStateAdmin, 0)
	case models.RoleStateAdmin:
		result.Accounts, err = s.accountRepo.ListPendingApproval(models.RoleDistrictAdmin, viewer.StateID)
	case models.RoleDistrictAdmin:
		result.Clubs, err = s.clubRepo.ListPendingByDistrict(viewer.DistrictID)
	default:
		return nil, ErrApprovalForbidden
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list pending approvals: %w", err)
	}

	for i := range result.Accounts {
		result.Accounts[i].PasswordHash = ""
	}
	return result, nil
}
