package events

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/eventra/server/internal/sanitize"
)

const (
	maxNameLength        = 255
	maxLocationLength    = 255
	maxDescriptionLength = 10000

	dateLayout = "2006-01-02"
)

// priceRegex matches a non-negative fixed-point decimal with at most ten
// integer digits and four fractional digits (NUMERIC(14,4) in the store).
var priceRegex = regexp.MustCompile(`^\d{1,10}(\.\d{1,4})?$`)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// EventInput is the raw event creation request body.
type EventInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	TicketPrice string `json:"ticket_price"`
}

type eventData struct {
	Name        string
	Description string
	Location    string
	Date        time.Time
	StartTime   string
	TicketPrice string
}

func (in EventInput) validate() (eventData, error) {
	data := eventData{
		Name:        strings.TrimSpace(sanitize.Text(in.Name)),
		Description: strings.TrimSpace(sanitize.HTML(in.Description)),
		Location:    strings.TrimSpace(sanitize.Text(in.Location)),
	}

	if data.Name == "" {
		return eventData{}, ValidationError{Field: "name", Message: "is required"}
	}
	if utf8.RuneCountInString(data.Name) > maxNameLength {
		return eventData{}, ValidationError{Field: "name", Message: "must be at most 255 characters"}
	}
	if utf8.RuneCountInString(data.Description) > maxDescriptionLength {
		return eventData{}, ValidationError{Field: "description", Message: "must be at most 10000 characters"}
	}
	if data.Location == "" {
		return eventData{}, ValidationError{Field: "location", Message: "is required"}
	}
	if utf8.RuneCountInString(data.Location) > maxLocationLength {
		return eventData{}, ValidationError{Field: "location", Message: "must be at most 255 characters"}
	}

	date, err := parseEventDate(in.Date)
	if err != nil {
		return eventData{}, err
	}
	data.Date = date

	startTime, err := parseEventTime(in.Time)
	if err != nil {
		return eventData{}, err
	}
	data.StartTime = startTime

	price, err := parseTicketPrice(in.TicketPrice)
	if err != nil {
		return eventData{}, err
	}
	data.TicketPrice = price

	return data, nil
}

// UpdateInput is the raw partial-update request body. Absent fields stay
// untouched; present fields are validated like their creation counterparts.
type UpdateInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	TicketPrice *string `json:"ticket_price"`
}

func (in UpdateInput) validate() (UpdateParams, error) {
	var params UpdateParams

	if in.Name != nil {
		name := strings.TrimSpace(sanitize.Text(*in.Name))
		if name == "" {
			return UpdateParams{}, ValidationError{Field: "name", Message: "must not be empty"}
		}
		if utf8.RuneCountInString(name) > maxNameLength {
			return UpdateParams{}, ValidationError{Field: "name", Message: "must be at most 255 characters"}
		}
		params.Name = &name
	}
	if in.Description != nil {
		description := strings.TrimSpace(sanitize.HTML(*in.Description))
		if utf8.RuneCountInString(description) > maxDescriptionLength {
			return UpdateParams{}, ValidationError{Field: "description", Message: "must be at most 10000 characters"}
		}
		params.Description = &description
	}
	if in.Location != nil {
		location := strings.TrimSpace(sanitize.Text(*in.Location))
		if location == "" {
			return UpdateParams{}, ValidationError{Field: "location", Message: "must not be empty"}
		}
		if utf8.RuneCountInString(location) > maxLocationLength {
			return UpdateParams{}, ValidationError{Field: "location", Message: "must be at most 255 characters"}
		}
		params.Location = &location
	}
	if in.Date != nil {
		date, err := parseEventDate(*in.Date)
		if err != nil {
			return UpdateParams{}, err
		}
		params.Date = &date
	}
	if in.Time != nil {
		startTime, err := parseEventTime(*in.Time)
		if err != nil {
			return UpdateParams{}, err
		}
		params.StartTime = &startTime
	}
	if in.TicketPrice != nil {
		price, err := parseTicketPrice(*in.TicketPrice)
		if err != nil {
			return UpdateParams{}, err
		}
		params.TicketPrice = &price
	}

	return params, nil
}

func (p UpdateParams) empty() bool {
	return p.Name == nil && p.Description == nil && p.Location == nil &&
		p.Date == nil && p.StartTime == nil && p.TicketPrice == nil
}

func parseEventDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, ValidationError{Field: "date", Message: "is required"}
	}
	parsed, err := time.Parse(dateLayout, trimmed)
	if err != nil {
		return time.Time{}, ValidationError{Field: "date", Message: "must be a date in YYYY-MM-DD format"}
	}
	return parsed, nil
}

func parseEventTime(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", ValidationError{Field: "time", Message: "is required"}
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.Format("15:04:05"), nil
		}
	}
	return "", ValidationError{Field: "time", Message: "must be a time in HH:MM or HH:MM:SS format"}
}

func parseTicketPrice(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "0.00", nil
	}
	if !priceRegex.MatchString(trimmed) {
		return "", ValidationError{Field: "ticket_price", Message: "must be a non-negative decimal with at most 4 decimal places"}
	}
	return trimmed, nil
}
