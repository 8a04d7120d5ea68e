package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eventra/server/internal/domain/ids"
	"github.com/eventra/server/internal/metrics"
)

// Caller identifies the requesting user for access-control decisions.
// A nil *Caller is an anonymous request.
type Caller struct {
	ID       string
	Username string
	Verified bool
	Staff    bool
}

// Service owns event access control: who may create, mutate, search and
// register. Reads are public; mutation is restricted to the organizer or
// staff; creation and registration require a verified caller.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

// Create validates the input and persists a new event owned by the caller.
func (s *Service) Create(ctx context.Context, caller *Caller, input EventInput) (*Event, error) {
	if caller == nil || !caller.Verified {
		return nil, ErrForbidden
	}

	data, err := input.validate()
	if err != nil {
		return nil, err
	}

	event, err := s.repo.Create(ctx, CreateParams{
		ID:          ids.NewEventID(),
		Name:        data.Name,
		Description: data.Description,
		Location:    data.Location,
		Date:        data.Date,
		StartTime:   data.StartTime,
		TicketPrice: data.TicketPrice,
		OrganizerID: caller.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	metrics.EventsCreated.Inc()
	s.logger.Info().Str("event_id", event.ID).Str("organizer_id", caller.ID).Msg("event created")
	return event, nil
}

// Get returns a single event by ID.
func (s *Service) Get(ctx context.Context, id string) (*Event, error) {
	if err := ids.ValidateEventID(id); err != nil {
		return nil, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// List returns all events, newest-created-first.
func (s *Service) List(ctx context.Context) ([]Event, error) {
	return s.repo.List(ctx)
}

// Search matches a case-insensitive substring against event name, location
// or organizer username. An empty query is a request error.
func (s *Service) Search(ctx context.Context, query string) ([]Event, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, ValidationError{Field: "query", Message: "Please provide a search query"}
	}
	return s.repo.Search(ctx, trimmed)
}

// Filter matches case-insensitive exact values, ANDed across the supplied
// fields. Supplying none of them is a request error, not an empty result.
func (s *Service) Filter(ctx context.Context, filters Filters) ([]Event, error) {
	filters.Name = strings.TrimSpace(filters.Name)
	filters.Location = strings.TrimSpace(filters.Location)
	filters.Organizer = strings.TrimSpace(filters.Organizer)
	if filters.Empty() {
		return nil, ValidationError{Field: "", Message: "Please provide a filter query"}
	}
	return s.repo.Filter(ctx, filters)
}

// Upcoming returns events dated within [today, today+days], both bounds
// inclusive, evaluated against the event date only.
func (s *Service) Upcoming(ctx context.Context, days int) ([]Event, error) {
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, days)
	return s.repo.ListBetween(ctx, from, to)
}

// Update applies a partial update. Only the organizer or staff may mutate.
func (s *Service) Update(ctx context.Context, caller *Caller, id string, input UpdateInput) (*Event, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canMutate(caller, event) {
		return nil, ErrForbidden
	}

	params, err := input.validate()
	if err != nil {
		return nil, err
	}
	if params.empty() {
		return event, nil
	}

	updated, err := s.repo.Update(ctx, event.ID, params)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	s.logger.Info().Str("event_id", event.ID).Str("caller_id", caller.ID).Msg("event updated")
	return updated, nil
}

// Delete removes an event. Only the organizer or staff may delete.
func (s *Service) Delete(ctx context.Context, caller *Caller, id string) error {
	event, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !canMutate(caller, event) {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, event.ID); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	s.logger.Info().Str("event_id", event.ID).Str("caller_id", caller.ID).Msg("event deleted")
	return nil
}

// RegisterAttendee records the caller's registration for an event. A caller
// may register for an event at most once.
func (s *Service) RegisterAttendee(ctx context.Context, caller *Caller, eventID string) (*Event, *Registration, error) {
	if caller == nil || !caller.Verified {
		return nil, nil, ErrForbidden
	}

	if err := ids.ValidateEventID(eventID); err != nil {
		return nil, nil, ErrNotFound
	}

	event, reg, err := s.repo.RegisterAttendee(ctx, eventID, Registration{
		ID:      uuid.NewString(),
		UserID:  caller.ID,
		EventID: eventID,
	})
	if err != nil {
		return nil, nil, err
	}

	metrics.EventRegistrations.Inc()
	s.logger.Info().Str("event_id", event.ID).Str("user_id", caller.ID).Msg("event registration created")
	return event, reg, nil
}

func canMutate(caller *Caller, event *Event) bool {
	if caller == nil {
		return false
	}
	return caller.ID == event.OrganizerID || caller.Staff
}
