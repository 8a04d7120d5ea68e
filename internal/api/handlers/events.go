package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/eventra/server/internal/api/middleware"
	"github.com/eventra/server/internal/api/respond"
	"github.com/eventra/server/internal/domain/events"
)

// EventsHandler serves event CRUD, discovery and registration endpoints.
type EventsHandler struct {
	Service *events.Service
}

func NewEventsHandler(service *events.Service) *EventsHandler {
	return &EventsHandler{Service: service}
}

type eventPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	TicketPrice string `json:"ticket_price"`
	Organizer   string `json:"organizer"`
}

func newEventPayload(e *events.Event) eventPayload {
	return eventPayload{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Location:    e.Location,
		Date:        e.Date.Format("2006-01-02"),
		Time:        e.StartTime,
		TicketPrice: e.TicketPrice,
		Organizer:   e.OrganizerUsername,
	}
}

func newEventList(items []events.Event) []eventPayload {
	payload := make([]eventPayload, 0, len(items))
	for i := range items {
		payload = append(payload, newEventPayload(&items[i]))
	}
	return payload
}

// caller translates the authenticated user into an access-control identity.
// Nil for anonymous requests.
func caller(r *http.Request) *events.Caller {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		return nil
	}
	return &events.Caller{
		ID:       user.ID,
		Username: user.Username,
		Verified: user.IsVerified,
		Staff:    user.IsStaff,
	}
}

// writeEventError maps domain errors onto the response envelope.
func writeEventError(w http.ResponseWriter, r *http.Request, err error) {
	var valErr events.ValidationError
	switch {
	case errors.As(err, &valErr):
		if valErr.Field == "" {
			respond.Error(w, r, http.StatusBadRequest, valErr.Message, err)
			return
		}
		respond.FieldErrors(w, r, map[string][]string{valErr.Field: {valErr.Message}})
	case errors.Is(err, events.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "Event not found", err)
	case errors.Is(err, events.ErrForbidden):
		respond.Error(w, r, http.StatusForbidden, "You do not have permission to perform this action", err)
	case errors.Is(err, events.ErrAlreadyRegistered):
		respond.Error(w, r, http.StatusBadRequest, "You have already registered for this event", err)
	default:
		respond.Error(w, r, http.StatusInternalServerError, "Internal server error", err)
	}
}

// Create handles POST /events/create.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input events.EventInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	event, err := h.Service.Create(r.Context(), caller(r), input)
	if err != nil {
		writeEventError(w, r, err)
		return
	}

	respond.Success(w, http.StatusCreated, "Event created successfully", newEventPayload(event))
}

// Get handles GET /events/{id}.
func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.Service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEventError(w, r, err)
		return
	}
	respond.Success(w, http.StatusOK, "", newEventPayload(event))
}

// All handles GET /events/all.
func (h *EventsHandler) All(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context())
	if err != nil {
		writeEventError(w, r, err)
		return
	}
	respond.Success(w, http.StatusOK, "", newEventList(items))
}

// Search handles GET /events/search?query=...
func (h *EventsHandler) Search(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		writeEventError(w, r, err)
		return
	}
	respond.Success(w, http.StatusOK, "", newEventList(items))
}

// Filter handles GET /events/filter?name=&location=&organizer=
func (h *EventsHandler) Filter(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	items, err := h.Service.Filter(r.Context(), events.Filters{
		Name:      query.Get("name"),
		Location:  query.Get("location"),
		Organizer: query.Get("organizer"),
	})
	if err != nil {
		writeEventError(w, r, err)
		return
	}
	respond.Success(w, http.StatusOK, "", newEventList(items))
}

// NextSevenDays handles GET /events/next-7-days.
func (h *EventsHandler) NextSevenDays(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.Upcoming(r.Context(), 7)
	if err != nil {
		writeEventError(w, r, err)
		return
	}
	respond.Success(w, http.StatusOK, "", newEventList(items))
}

// NextMonth handles GET /events/next-month.
func (h *EventsHandler) NextMonth(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.Upcoming(r.Context(), 30)
	if err != nil {
		writeEventError(w, r, err)
		return
	}
	respond.Success(w, http.StatusOK, "", newEventList(items))
}

// Update handles PUT and PATCH /events/{id}/update.
func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input events.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	event, err := h.Service.Update(r.Context(), caller(r), r.PathValue("id"), input)
	if err != nil {
		writeEventError(w, r, err)
		return
	}

	respond.Success(w, http.StatusOK, "Event updated successfully", newEventPayload(event))
}

// Delete handles DELETE /events/{id}/delete.
func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), caller(r), r.PathValue("id")); err != nil {
		writeEventError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Register handles POST /events/{id}/register.
func (h *EventsHandler) Register(w http.ResponseWriter, r *http.Request) {
	event, _, err := h.Service.RegisterAttendee(r.Context(), caller(r), r.PathValue("id"))
	if err != nil {
		writeEventError(w, r, err)
		return
	}
	respond.Success(w, http.StatusCreated, "Successfully registered for the event", newEventPayload(event))
}
