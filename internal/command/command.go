// Package command interprets inbound text messages from the messaging
// channel. Parsing is total: every input maps to exactly one Action,
// with grammar and format failures represented as the Malformed variant
// rather than errors.
package command

import (
	"strings"

	"github.com/simoamogit/progetto-scuola/internal/domain"
)

// HelpText is the reply for messages that match no known command.
const HelpText = "Hi! I'm the school planner bot. Use:\n" +
	"'add <subject> <date YYYY-MM-DD> <time HH:MM> <description>' to add an event,\n" +
	"or send 'list' to see the upcoming events."

// MalformedAddText is the reply for an add command that does not match
// the grammar or whose date/time fields do not parse.
const MalformedAddText = "Invalid format. Use: add <subject> <date YYYY-MM-DD> <time HH:MM> <description>"

// Action is the result of interpreting one inbound message. Exactly one
// of the concrete variants below is returned for any input.
type Action interface {
	isAction()
}

// AddEvent carries the validated fields of a new event. Date and Time
// are already normalized against the domain layouts.
type AddEvent struct {
	Subject     string
	Date        string
	Time        string
	Description string
}

// ListEvents requests the ordered event listing.
type ListEvents struct{}

// Unknown is returned for messages matching no command keyword; the
// reply is HelpText.
type Unknown struct{}

// Malformed is returned when the add grammar matched but its arguments
// did not. Reason is the user-facing reply.
type Malformed struct {
	Reason string
}

func (AddEvent) isAction()   {}
func (ListEvents) isAction() {}
func (Unknown) isAction()    {}
func (Malformed) isAction()  {}

// Parse interprets one raw message body. The command keyword is matched
// case-insensitively; subject and description keep their original case.
func Parse(body string) Action {
	trimmed := strings.TrimSpace(body)
	lower := strings.ToLower(trimmed)

	switch {
	case strings.HasPrefix(lower, "add"):
		return parseAdd(trimmed)
	case strings.HasPrefix(lower, "list"):
		return ListEvents{}
	default:
		return Unknown{}
	}
}

// parseAdd splits "add <subject> <date> <time> <description...>" into its
// four fields. The description is the remainder of the line, taken
// verbatim including any internal spaces.
func parseAdd(msg string) Action {
	parts := strings.SplitN(msg, " ", 5)
	if len(parts) < 5 {
		return Malformed{Reason: MalformedAddText}
	}
	subject, dateStr, timeStr, description := parts[1], parts[2], parts[3], parts[4]

	date, err := domain.ParseDate(dateStr)
	if err != nil {
		return Malformed{Reason: MalformedAddText}
	}
	tod, err := domain.ParseTime(timeStr)
	if err != nil {
		return Malformed{Reason: MalformedAddText}
	}

	return AddEvent{
		Subject:     subject,
		Date:        date,
		Time:        tod,
		Description: description,
	}
}
