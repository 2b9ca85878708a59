package services

import (
	"errors"
	"regexp"
	"testing"

	"skatefed_backend/internal/models"
	"skatefed_backend/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApprovalService(t *testing.T) (ApprovalService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, cleanup := newMockDB(t)
	svc := NewApprovalService(
		repositories.NewAccountRepository(db),
		repositories.NewClubRepository(db),
		db,
	)
	return svc, mock, cleanup
}

func expectFindAccount(mock sqlmock.Sqlmock, acc *models.Account) {
	mock.ExpectQuery(regexp.QuoteMeta(`FROM accounts WHERE id = $1`)).
		WithArgs(acc.ID).
		WillReturnRows(accountRow(acc))
}

func TestApprove_RoleTable(t *testing.T) {
	// Every approver/target pairing outside the one-level-down table must
	// be forbidden.
	roles := []models.Role{
		models.RoleGlobalAdmin, models.RoleStateAdmin, models.RoleDistrictAdmin,
		models.RoleClubAdmin, models.RoleMember,
	}
	allowed := map[models.Role]models.Role{
		models.RoleGlobalAdmin:   models.RoleStateAdmin,
		models.RoleStateAdmin:    models.RoleDistrictAdmin,
		models.RoleDistrictAdmin: models.RoleClubAdmin,
	}

	for _, approverRole := range roles {
		for _, targetRole := range roles {
			if allowed[approverRole] == targetRole {
				continue
			}
			t.Run(string(approverRole)+"_cannot_approve_"+string(targetRole), func(t *testing.T) {
				svc, mock, cleanup := newApprovalService(t)
				defer cleanup()

				approver := &models.Account{ID: 1, Role: approverRole, StateID: 5, DistrictID: 7, Status: models.AccountStatusActive}
				target := &models.Account{ID: 2, Role: targetRole, StateID: 5, DistrictID: 7, Status: models.AccountStatusPending}
				expectFindAccount(mock, approver)
				expectFindAccount(mock, target)

				err := svc.Approve(approver.ID, target.ID)
				assert.ErrorIs(t, err, ErrApprovalForbidden)
				assert.NoError(t, mock.ExpectationsWereMet())
			})
		}
	}
}

func TestApprove_CrossSubtreeForbidden(t *testing.T) {
	svc, mock, cleanup := newApprovalService(t)
	defer cleanup()

	approver := &models.Account{ID: 1, Role: models.RoleStateAdmin, StateID: 5, Status: models.AccountStatusActive}
	target := &models.Account{ID: 2, Role: models.RoleDistrictAdmin, StateID: 6, DistrictID: 3, Status: models.AccountStatusPending}
	expectFindAccount(mock, approver)
	expectFindAccount(mock, target)

	err := svc.Approve(approver.ID, target.ID)
	assert.ErrorIs(t, err, ErrApprovalForbidden)

	// Same for reject: the authorization steps are identical.
	expectFindAccount(mock, approver)
	expectFindAccount(mock, target)
	err = svc.Reject(approver.ID, target.ID)
	assert.ErrorIs(t, err, ErrApprovalForbidden)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApprove_TargetNotFound(t *testing.T) {
	svc, mock, cleanup := newApprovalService(t)
	defer cleanup()

	approver := &models.Account{ID: 1, Role: models.RoleGlobalAdmin, Status: models.AccountStatusActive}
	expectFindAccount(mock, approver)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM accounts WHERE id = $1`)).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(accountTestColumns))

	err := svc.Approve(approver.ID, 99)
	assert.ErrorIs(t, err, ErrTargetNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApprove_ClubAdminCascadesToClub(t *testing.T) {
	svc, mock, cleanup := newApprovalService(t)
	defer cleanup()

	approver := &models.Account{ID: 1, Role: models.RoleDistrictAdmin, StateID: 5, DistrictID: 7, Status: models.AccountStatusActive}
	target := &models.Account{ID: 2, Role: models.RoleClubAdmin, StateID: 5, DistrictID: 7, Status: models.AccountStatusPending, EmailVerified: true}
	club := &models.Club{ID: 11, Name: "Rolling Thunder", StateID: 5, DistrictID: 7, AdminID: 2, Status: models.AccountStatusPending}

	expectFindAccount(mock, approver)
	expectFindAccount(mock, target)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM clubs WHERE admin_id = $1`)).
		WithArgs(target.ID).
		WillReturnRows(clubRow(club))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE accounts SET status = $1, verified = true, approved_by = $2`)).
		WithArgs(models.AccountStatusActive, approver.ID, sqlmock.AnyArg(), target.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE clubs SET status = $1, verified = true`)).
		WithArgs(models.AccountStatusActive, sqlmock.AnyArg(), club.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.Approve(approver.ID, target.ID)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApprove_ClubUpdateFailureRollsBack(t *testing.T) {
	// A fault between the account update and the club update must leave
	// neither applied.
	svc, mock, cleanup := newApprovalService(t)
	defer cleanup()

	approver := &models.Account{ID: 1, Role: models.RoleDistrictAdmin, StateID: 5, DistrictID: 7, Status: models.AccountStatusActive}
	target := &models.Account{ID: 2, Role: models.RoleClubAdmin, StateID: 5, DistrictID: 7, Status: models.AccountStatusPending, EmailVerified: true}
	club := &models.Club{ID: 11, Name: "Rolling Thunder", StateID: 5, DistrictID: 7, AdminID: 2, Status: models.AccountStatusPending}

	expectFindAccount(mock, approver)
	expectFindAccount(mock, target)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM clubs WHERE admin_id = $1`)).
		WithArgs(target.ID).
		WillReturnRows(clubRow(club))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE accounts SET status = $1, verified = true, approved_by = $2`)).
		WithArgs(models.AccountStatusActive, approver.ID, sqlmock.AnyArg(), target.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE clubs SET status = $1, verified = true`)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := svc.Approve(approver.ID, target.ID)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReject_ClubAdminDeletesClubThenAccount(t *testing.T) {
	svc, mock, cleanup := newApprovalService(t)
	defer cleanup()

	approver := &models.Account{ID: 1, Role: models.RoleDistrictAdmin, StateID: 5, DistrictID: 7, Status: models.AccountStatusActive}
	target := &models.Account{ID: 2, Role: models.RoleClubAdmin, StateID: 5, DistrictID: 7, Status: models.AccountStatusPending, EmailVerified: true}
	club := &models.Club{ID: 11, Name: "Rolling Thunder", StateID: 5, DistrictID: 7, AdminID: 2, Status: models.AccountStatusPending}

	expectFindAccount(mock, approver)
	expectFindAccount(mock, target)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM clubs WHERE admin_id = $1`)).
		WithArgs(target.ID).
		WillReturnRows(clubRow(club))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM clubs WHERE id = $1`)).
		WithArgs(club.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM accounts WHERE id = $1`)).
		WithArgs(target.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.Reject(approver.ID, target.ID)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReject_StateAdminWithoutClubDeletesOnlyAccount(t *testing.T) {
	svc, mock, cleanup := newApprovalService(t)
	defer cleanup()

	approver := &models.Account{ID: 1, Role: models.RoleGlobalAdmin, Status: models.AccountStatusActive}
	target := &models.Account{ID: 3, Role: models.RoleStateAdmin, StateID: 5, Status: models.AccountStatusPending, EmailVerified: true}

	expectFindAccount(mock, approver)
	expectFindAccount(mock, target)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM accounts WHERE id = $1`)).
		WithArgs(target.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.Reject(approver.ID, target.ID)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPending_RoleDispatch(t *testing.T) {
	t.Run("GlobalAdminSeesStateAdmins", func(t *testing.T) {
		svc, mock, cleanup := newApprovalService(t)
		defer cleanup()

		viewer := &models.Account{ID: 1, Role: models.RoleGlobalAdmin, Status: models.AccountStatusActive}
		expectFindAccount(mock, viewer)

		pending := &models.Account{ID: 5, Role: models.RoleStateAdmin, StateID: 2, EmailVerified: true, Status: models.AccountStatusPending}
		mock.ExpectQuery(regexp.QuoteMeta(`WHERE role = $1 AND email_verified = true AND verified = false`)).
			WithArgs(string(models.RoleStateAdmin), int64(0)).
			WillReturnRows(accountRow(pending))

		result, err := svc.ListPending(viewer.ID)
		assert.NoError(t, err)
		assert.Len(t, result.Accounts, 1)
		assert.Empty(t, result.Clubs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DistrictAdminSeesClubs", func(t *testing.T) {
		svc, mock, cleanup := newApprovalService(t)
		defer cleanup()

		viewer := &models.Account{ID: 1, Role: models.RoleDistrictAdmin, StateID: 5, DistrictID: 7, Status: models.AccountStatusActive}
		expectFindAccount(mock, viewer)

		pending := &models.Club{ID: 4, Name: "Speed Demons", StateID: 5, DistrictID: 7, AdminID: 9, Status: models.AccountStatusPending}
		mock.ExpectQuery(regexp.QuoteMeta(`JOIN accounts a ON a.id = c.admin_id`)).
			WithArgs(viewer.DistrictID).
			WillReturnRows(clubRow(pending))

		result, err := svc.ListPending(viewer.ID)
		assert.NoError(t, err)
		assert.Len(t, result.Clubs, 1)
		assert.Empty(t, result.Accounts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MemberForbidden", func(t *testing.T) {
		svc, mock, cleanup := newApprovalService(t)
		defer cleanup()

		viewer := &models.Account{ID: 1, Role: models.RoleMember, StateID: 5, DistrictID: 7, Status: models.AccountStatusActive}
		expectFindAccount(mock, viewer)

		_, err := svc.ListPending(viewer.ID)
		assert.ErrorIs(t, err, ErrApprovalForbidden)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
