package handlers

import (
	"errors"
	"net/http"

	"skatefed_backend/internal/middleware"
	"skatefed_backend/internal/models"
	"skatefed_backend/internal/services"
	"skatefed_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// EventHandler holds the event service.
type EventHandler struct {
	eventService services.EventService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(es services.EventService) *EventHandler {
	return &EventHandler{eventService: es}
}

// CreateEvent handles event creation by admin roles.
func (h *EventHandler) CreateEvent(c *gin.Context) {
	creatorID, ok := middleware.AccountID(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Not authenticated.", "Missing account ID in context"))
		return
	}

	var req services.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload.", err.Error()))
		return
	}

	event, err := h.eventService.CreateEvent(creatorID, req)
	if err != nil {
		utils.LogError(err, "CreateEvent: Error from eventService.CreateEvent")
		switch {
		case errors.Is(err, services.ErrInvalidEventWindow), errors.Is(err, services.ErrInvalidLevelType):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid event details.", err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create event.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, event)
}

// GetEvents lists events, optionally filtered by state.
func (h *EventHandler) GetEvents(c *gin.Context) {
	filters := models.EventFilters{Status: c.Query("status")}
	if stateIDStr := c.Query("stateId"); stateIDStr != "" {
		stateID, err := utils.StrToInt64(stateIDStr)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid stateId.", err.Error()))
			return
		}
		filters.StateID = stateID
	}

	events, err := h.eventService.ListEvents(filters)
	if err != nil {
		utils.LogError(err, "GetEvents: Error from eventService.ListEvents")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to list events.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// GetEventByID retrieves a single event.
func (h *EventHandler) GetEventByID(c *gin.Context) {
	eventID, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid event id.", err.Error()))
		return
	}

	event, err := h.eventService.GetEvent(eventID)
	if err != nil {
		utils.LogError(err, "GetEventByID: Error from eventService.GetEvent")
		if errors.Is(err, services.ErrEventNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Event not found.", ""))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to retrieve event.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, event)
}

// CloseEvent marks an event closed.
func (h *EventHandler) CloseEvent(c *gin.Context) {
	eventID, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid event id.", err.Error()))
		return
	}

	if err := h.eventService.CloseEvent(eventID); err != nil {
		utils.LogError(err, "CloseEvent: Error from eventService.CloseEvent")
		if errors.Is(err, services.ErrEventNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Event not found.", ""))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to close event.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event closed."})
}

// Register creates a provisional, unpaid registration for the
// authenticated member.
func (h *EventHandler) Register(c *gin.Context) {
	memberID, ok := middleware.AccountID(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Not authenticated.", "Missing account ID in context"))
		return
	}
	eventID, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid event id.", err.Error()))
		return
	}

	// Body is optional; suit size is its only field.
	var req services.RegisterForEventRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload.", err.Error()))
			return
		}
	}

	registrationID, err := h.eventService.Register(memberID, eventID, req.SuitSize)
	if err != nil {
		utils.LogError(err, "Register: Error from eventService.Register")
		switch {
		case errors.Is(err, services.ErrEventNotFound), errors.Is(err, services.ErrMemberNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Event or member not found.", ""))
		case errors.Is(err, services.ErrRegistrationClosed):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeRegistrationClosed, "Registration is closed for this event.", ""))
		case errors.Is(err, services.ErrRegistrationNotOpen):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeRegistrationClosed, "Registration has not opened yet.", ""))
		case errors.Is(err, services.ErrIneligible):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Your jurisdiction does not match this event.", ""))
		case errors.Is(err, services.ErrAlreadyRegistered):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Already registered for this event.", ""))
		case errors.Is(err, services.ErrMemberNotActive):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Account is not active.", ""))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to register.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"registration_id": registrationID})
}

// GetMyRegistrations lists the authenticated member's registrations.
func (h *EventHandler) GetMyRegistrations(c *gin.Context) {
	memberID, ok := middleware.AccountID(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Not authenticated.", "Missing account ID in context"))
		return
	}

	regs, err := h.eventService.ListRegistrations(memberID)
	if err != nil {
		utils.LogError(err, "GetMyRegistrations: Error from eventService.ListRegistrations")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to list registrations.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"registrations": regs})
}
