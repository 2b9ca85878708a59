package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"skatefed_backend/internal/models"
	"skatefed_backend/internal/repositories"
)

// --- Custom Service Errors for Events ---
var (
	ErrEventNotFound       = errors.New("event not found")
	ErrMemberNotFound      = errors.New("member account not found")
	ErrInvalidEventWindow  = errors.New("invalid event or registration window")
	ErrInvalidLevelType    = errors.New("unknown event level type")
	ErrRegistrationNotOpen = errors.New("registration has not opened yet")
	ErrRegistrationClosed  = errors.New("registration is closed for this event")
	ErrIneligible          = errors.New("member jurisdiction does not match event scope")
	ErrAlreadyRegistered   = errors.New("member is already registered for this event")
	ErrMemberNotActive     = errors.New("member account is not active")
)

// eventTimeFormat is how clients submit event timestamps.
const eventTimeFormat = time.RFC3339

// --- Event DTOs ---
type CreateEventRequest struct {
	Title        string `json:"title" binding:"required"`
	LevelType    string `json:"level_type" binding:"required"`
	StateID      int64  `json:"state_id"`
	DistrictID   int64  `json:"district_id"`
	EventDate    string `json:"event_date" binding:"required"`
	RegStartDate string `json:"reg_start_date" binding:"required"`
	RegEndDate   string `json:"reg_end_date" binding:"required"`
	Fee          int64  `json:"fee"`
}

type RegisterForEventRequest struct {
	SuitSize *string `json:"suit_size,omitempty"`
}

// --- EventService Interface ---
type EventService interface {
	CreateEvent(creatorID int64, req CreateEventRequest) (*models.Event, error)
	GetEvent(eventID int64) (*models.Event, error)
	ListEvents(filters models.EventFilters) ([]models.Event, error)
	CloseEvent(eventID int64) error
	Register(memberID, eventID int64, suitSize *string) (int64, error)
	ListRegistrations(memberID int64) ([]models.EventRegistration, error)
}

// --- eventService Implementation ---
type eventService struct {
	eventRepo        repositories.EventRepository
	registrationRepo repositories.RegistrationRepository
	accountRepo      repositories.AccountRepository
	db               *sql.DB
	now              func() time.Time
}

// NewEventService creates a new instance of EventService.
func NewEventService(
	eventRepo repositories.EventRepository,
	registrationRepo repositories.RegistrationRepository,
	accountRepo repositories.AccountRepository,
	db *sql.DB,
) EventService {
	return &eventService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		accountRepo:      accountRepo,
		db:               db,
		now:              time.Now,
	}
}

// CreateEvent validates the competition window and stores the event.
func (s *eventService) CreateEvent(creatorID int64, req CreateEventRequest) (*models.Event, error) {
	switch req.LevelType {
	case models.EventLevelDistrict, models.EventLevelState, models.EventLevelNational:
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidLevelType, req.LevelType)
	}

	eventDate, err := time.Parse(eventTimeFormat, req.EventDate)
	if err != nil {
		return nil, fmt.Errorf("%w: event_date: %v", ErrInvalidEventWindow, err)
	}
	regStart, err := time.Parse(eventTimeFormat, req.RegStartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: reg_start_date: %v", ErrInvalidEventWindow, err)
	}
	regEnd, err := time.Parse(eventTimeFormat, req.RegEndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: reg_end_date: %v", ErrInvalidEventWindow, err)
	}

	if !regEnd.After(regStart) {
		return nil, fmt.Errorf("%w: registration must end after it starts", ErrInvalidEventWindow)
	}
	if eventDate.Before(regEnd) {
		return nil, fmt.Errorf("%w: event date must not precede registration end", ErrInvalidEventWindow)
	}

	event := &models.Event{
		Title:        req.Title,
		LevelType:    req.LevelType,
		StateID:      req.StateID,
		DistrictID:   req.DistrictID,
		EventDate:    eventDate,
		RegStartDate: regStart,
		RegEndDate:   regEnd,
		Fee:          req.Fee,
		CreatedBy:    creatorID,
	}

	eventID, err := s.eventRepo.Create(s.db, event)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	event.ID = eventID
	event.Status = models.EventStatusActive
	return event, nil
}

// GetEvent retrieves a single event.
func (s *eventService) GetEvent(eventID int64) (*models.Event, error) {
	event, err := s.eventRepo.FindByID(eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to retrieve event: %w", err)
	}
	return event, nil
}

// ListEvents returns events matching the filters.
func (s *eventService) ListEvents(filters models.EventFilters) ([]models.Event, error) {
	events, err := s.eventRepo.List(filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// CloseEvent marks an event closed for registration and listing.
func (s *eventService) CloseEvent(eventID int64) error {
	if err := s.eventRepo.UpdateStatus(s.db, eventID, models.EventStatusClosed); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to close event: %w", err)
	}
	return nil
}

// Register records a provisional, unpaid registration after checking the
// window, jurisdiction, and duplicates. It never mutates the event. The
// storage-level unique constraint on (member_id, event_id) is the
// authoritative duplicate guard; the existence pre-check only shortcuts
// the friendly error.
func (s *eventService) Register(memberID, eventID int64, suitSize *string) (int64, error) {
	member, err := s.accountRepo.FindByID(memberID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, ErrMemberNotFound
		}
		return 0, fmt.Errorf("failed to resolve member: %w", err)
	}
	if member.Status != models.AccountStatusActive {
		return 0, ErrMemberNotActive
	}

	event, err := s.eventRepo.FindByID(eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, ErrEventNotFound
		}
		return 0, fmt.Errorf("failed to resolve event: %w", err)
	}

	currentTime := s.now()
	if event.Status == models.EventStatusClosed || currentTime.After(event.RegEndDate) {
		return 0, ErrRegistrationClosed
	}
	if currentTime.Before(event.RegStartDate) {
		return 0, ErrRegistrationNotOpen
	}

	// National events are jurisdiction-agnostic; otherwise the member's
	// state, and district when the event restricts one, must match.
	if event.LevelType != models.EventLevelNational {
		if member.StateID != event.StateID {
			return 0, ErrIneligible
		}
		if event.DistrictID != 0 && member.DistrictID != event.DistrictID {
			return 0, ErrIneligible
		}
	}

	exists, err := s.registrationRepo.Exists(memberID, eventID)
	if err != nil {
		return 0, fmt.Errorf("failed to check existing registration: %w", err)
	}
	if exists {
		return 0, ErrAlreadyRegistered
	}

	registration := &models.EventRegistration{
		MemberID:  memberID,
		EventID:   eventID,
		LevelType: event.LevelType,
		SuitSize:  suitSize,
	}
	registrationID, err := s.registrationRepo.Create(s.db, registration)
	if err != nil {
		// Race loser on the unique constraint still gets the conflict.
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return 0, ErrAlreadyRegistered
		}
		return 0, fmt.Errorf("failed to create registration: %w", err)
	}
	return registrationID, nil
}

// ListRegistrations returns a member's own registrations.
func (s *eventService) ListRegistrations(memberID int64) ([]models.EventRegistration, error) {
	regs, err := s.registrationRepo.ListByMember(memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	return regs, nil
}
