package events

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("event not found")
	ErrForbidden         = errors.New("forbidden")
	ErrAlreadyRegistered = errors.New("already registered for this event")
)

// Event is a persisted event record. Date carries the calendar day only;
// StartTime is the wall-clock time of day. TicketPrice is a fixed-point
// decimal kept as its canonical string form.
type Event struct {
	ID                string
	Name              string
	Description       string
	Location          string
	Date              time.Time
	StartTime         string
	TicketPrice       string
	OrganizerID       string
	OrganizerUsername string
	CreatedAt         time.Time
}

// Registration links a user to an event with the time of registration.
type Registration struct {
	ID           string
	UserID       string
	EventID      string
	RegisteredAt time.Time
}

// CreateParams carries a validated event for insertion.
type CreateParams struct {
	ID          string
	Name        string
	Description string
	Location    string
	Date        time.Time
	StartTime   string
	TicketPrice string
	OrganizerID string
}

// UpdateParams carries a partial update; nil fields are left untouched.
type UpdateParams struct {
	Name        *string
	Description *string
	Location    *string
	Date        *time.Time
	StartTime   *string
	TicketPrice *string
}

// Filters holds the exact-match filter fields. At least one must be set;
// matching is case-insensitive and ANDed across supplied fields.
type Filters struct {
	Name      string
	Location  string
	Organizer string
}

func (f Filters) Empty() bool {
	return f.Name == "" && f.Location == "" && f.Organizer == ""
}

// Repository is the persistence contract for events and registrations.
// List results come back newest-created-first. Missing events surface as
// ErrNotFound; a duplicate registration surfaces as ErrAlreadyRegistered.
// RegisterAttendee resolves the event and records the registration as one
// atomic operation.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Event, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context) ([]Event, error)
	Search(ctx context.Context, query string) ([]Event, error)
	Filter(ctx context.Context, filters Filters) ([]Event, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]Event, error)
	Update(ctx context.Context, id string, params UpdateParams) (*Event, error)
	Delete(ctx context.Context, id string) error
	RegisterAttendee(ctx context.Context, eventID string, reg Registration) (*Event, *Registration, error)
}
