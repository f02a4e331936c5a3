package domain

import "time"

// Date and time-of-day wire layouts. These are the parsing contract for
// every inbound surface (webhook commands and the JSON API) and are not
// configurable.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Event is a scheduled check the user wants to be reminded about.
// Date and Time hold normalized layout strings, validated before an
// Event is ever constructed; lexicographic order on them matches
// chronological order.
type Event struct {
	ID          int64  `json:"id"`
	Subject     string `json:"subject"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Description string `json:"description,omitempty"`
	Notified    bool   `json:"notified"`
}

// Validation constraints (keep in sync with the webhook help text).
const (
	MaxSubjectLen     = 100
	MaxDescriptionLen = 2000
)

// ParseDate validates s against DateLayout and returns the normalized form.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

// ParseTime validates s against TimeLayout and returns the normalized form.
func ParseTime(s string) (string, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return "", err
	}
	return t.Format(TimeLayout), nil
}
