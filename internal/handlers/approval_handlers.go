package handlers

import (
	"errors"
	"net/http"

	"skatefed_backend/internal/middleware"
	"skatefed_backend/internal/services"
	"skatefed_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ApprovalHandler holds the approval service.
type ApprovalHandler struct {
	approvalService services.ApprovalService
}

// NewApprovalHandler creates a new ApprovalHandler.
func NewApprovalHandler(as services.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalService: as}
}

// approvalTarget resolves the approver identity from the session and the
// target id from the path. The approver is never taken from the payload.
func approvalTarget(c *gin.Context) (approverID, targetID int64, ok bool) {
	approverID, exists := middleware.AccountID(c)
	if !exists {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Not authenticated.", "Missing account ID in context"))
		return 0, 0, false
	}
	targetID, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid target id.", err.Error()))
		return 0, 0, false
	}
	return approverID, targetID, true
}

func respondApprovalError(c *gin.Context, err error, action string) {
	utils.LogError(err, action+": Error from approvalService")
	switch {
	case errors.Is(err, services.ErrApproverNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Approver identity could not be resolved.", ""))
	case errors.Is(err, services.ErrTargetNotFound), errors.Is(err, services.ErrClubNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Target not found.", ""))
	case errors.Is(err, services.ErrApprovalForbidden):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "You are not entitled to act on this target.", ""))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Approval operation failed.", "Internal error"))
	}
}

// Approve activates an account one level below the approver. With
// ?type=club the path id names a club, resolved to its owning admin.
func (h *ApprovalHandler) Approve(c *gin.Context) {
	approverID, targetID, ok := approvalTarget(c)
	if !ok {
		return
	}

	var err error
	if c.Query("type") == "club" {
		err = h.approvalService.ApproveClub(approverID, targetID)
	} else {
		err = h.approvalService.Approve(approverID, targetID)
	}
	if err != nil {
		respondApprovalError(c, err, "Approve")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Approved."})
}

// Reject deletes the target account (and its owned club) so the applicant
// can re-register. With ?type=club the path id names a club.
func (h *ApprovalHandler) Reject(c *gin.Context) {
	approverID, targetID, ok := approvalTarget(c)
	if !ok {
		return
	}

	var err error
	if c.Query("type") == "club" {
		err = h.approvalService.RejectClub(approverID, targetID)
	} else {
		err = h.approvalService.Reject(approverID, targetID)
	}
	if err != nil {
		respondApprovalError(c, err, "Reject")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rejected."})
}

// ListPending returns the entities the viewer may act on, dispatched by
// the viewer's role.
func (h *ApprovalHandler) ListPending(c *gin.Context) {
	approverID, exists := middleware.AccountID(c)
	if !exists {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Not authenticated.", "Missing account ID in context"))
		return
	}

	pending, err := h.approvalService.ListPending(approverID)
	if err != nil {
		respondApprovalError(c, err, "ListPending")
		return
	}
	c.JSON(http.StatusOK, pending)
}
