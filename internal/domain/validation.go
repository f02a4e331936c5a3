package domain

import "fmt"

// FieldError represents a single field's validation error.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"message"`
}

func (e FieldError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Msg) }

// NewEventInput is the pre-construction shape of an event as received from
// the JSON API. Date and Time are raw strings; ValidateNewEvent normalizes
// them in place on success.
type NewEventInput struct {
	Subject     string `json:"subject"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Description string `json:"description"`
}

// ValidateNewEvent performs strict checks on an event about to be stored.
// On success the Date and Time fields are rewritten to their normalized
// layout forms.
func ValidateNewEvent(in *NewEventInput) []FieldError {
	var errs []FieldError

	if in.Subject == "" {
		errs = append(errs, FieldError{"subject", "required"})
	} else if len(in.Subject) > MaxSubjectLen {
		errs = append(errs, FieldError{"subject", fmt.Sprintf("max length %d", MaxSubjectLen)})
	}

	if in.Date == "" {
		errs = append(errs, FieldError{"date", "required, format " + DateLayout})
	} else if d, err := ParseDate(in.Date); err != nil {
		errs = append(errs, FieldError{"date", "must match format YYYY-MM-DD"})
	} else {
		in.Date = d
	}

	if in.Time == "" {
		errs = append(errs, FieldError{"time", "required, format " + TimeLayout})
	} else if t, err := ParseTime(in.Time); err != nil {
		errs = append(errs, FieldError{"time", "must match format HH:MM"})
	} else {
		in.Time = t
	}

	if len(in.Description) > MaxDescriptionLen {
		errs = append(errs, FieldError{"description", fmt.Sprintf("max length %d", MaxDescriptionLen)})
	}

	return errs
}
