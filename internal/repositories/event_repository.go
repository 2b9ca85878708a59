package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"skatefed_backend/internal/models"
)

// EventRepository defines the interface for event persistence.
type EventRepository interface {
	Create(executor SQLExecutor, event *models.Event) (int64, error)
	FindByID(eventID int64) (*models.Event, error)
	List(filters models.EventFilters) ([]models.Event, error)
	UpdateStatus(executor SQLExecutor, eventID int64, status string) error
}

type eventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new instance of EventRepository.
func NewEventRepository(db *sql.DB) EventRepository {
	return &eventRepository{db: db}
}

const eventColumns = `id, title, level_type, state_id, district_id, event_date, reg_start_date, reg_end_date,
	fee, status, created_by, created_at`

func scanEvent(row scanner) (*models.Event, error) {
	event := &models.Event{}
	err := row.Scan(
		&event.ID, &event.Title, &event.LevelType, &event.StateID, &event.DistrictID,
		&event.EventDate, &event.RegStartDate, &event.RegEndDate,
		&event.Fee, &event.Status, &event.CreatedBy, &event.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return event, nil
}

// Create inserts a new event.
func (r *eventRepository) Create(executor SQLExecutor, event *models.Event) (int64, error) {
	query := `INSERT INTO events (title, level_type, state_id, district_id, event_date, reg_start_date, reg_end_date,
	              fee, status, created_by, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING id`

	var eventID int64
	err := executor.QueryRow(
		query,
		event.Title, event.LevelType, event.StateID, event.DistrictID,
		event.EventDate, event.RegStartDate, event.RegEndDate,
		event.Fee, models.EventStatusActive, event.CreatedBy, time.Now(),
	).Scan(&eventID)

	if err != nil {
		return 0, fmt.Errorf("%w: creating event: %v", ErrDatabaseError, err)
	}
	return eventID, nil
}

// FindByID retrieves an event by its ID.
func (r *eventRepository) FindByID(eventID int64) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(r.db.QueryRow(query, eventID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding event by ID %d: %v", ErrDatabaseError, eventID, err)
	}
	return event, nil
}

// List returns events matching the filters. A StateID of 0 means no state
// restriction; an empty Status means any status.
func (r *eventRepository) List(filters models.EventFilters) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + `
	          FROM events
	          WHERE ($1 = 0 OR state_id = $1) AND ($2 = '' OR status = $2)
	          ORDER BY event_date`

	rows, err := r.db.Query(query, filters.StateID, filters.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: listing events: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning event: %v", ErrDatabaseError, err)
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating events: %v", ErrDatabaseError, err)
	}
	return events, nil
}

// UpdateStatus sets the event status (active or closed).
func (r *eventRepository) UpdateStatus(executor SQLExecutor, eventID int64, status string) error {
	res, err := executor.Exec(`UPDATE events SET status = $1 WHERE id = $2`, status, eventID)
	if err != nil {
		return fmt.Errorf("%w: updating status of event %d: %v", ErrDatabaseError, eventID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking rows affected: %v", ErrDatabaseError, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: event %d", ErrNotFound, eventID)
	}
	return nil
}
