// Package transporthttp serves the planner's HTTP surface: the Twilio
// inbound webhook, the JSON event API and the operational endpoints.
package transporthttp

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/simoamogit/progetto-scuola/internal/command"
	"github.com/simoamogit/progetto-scuola/internal/config"
	"github.com/simoamogit/progetto-scuola/internal/domain"
	"github.com/simoamogit/progetto-scuola/internal/metrics"
	"github.com/simoamogit/progetto-scuola/internal/storage"
)

// ServerDeps carries the handler dependencies, injected from main.
type ServerDeps struct {
	Cfg     config.Config
	Store   storage.EventStore
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Ready probes the storage backend; nil means always ready.
	Ready func(ctx context.Context) error
}

func decodeJSONStrict(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// --- Health ---

func (d *ServerDeps) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (d *ServerDeps) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	if d.Ready != nil {
		if err := d.Ready(r.Context()); err != nil {
			WriteProblem(w, http.StatusServiceUnavailable, "not ready", "storage not reachable", nil)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ready"}`))
}

// --- Inbound webhook ---

// twiml is the reply document Twilio expects from a messaging webhook.
type twiml struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

func writeTwiML(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "text/xml")
	_, _ = w.Write([]byte(xml.Header))
	_ = xml.NewEncoder(w).Encode(twiml{Message: msg})
}

// HandleWebhook interprets one inbound message and always produces
// exactly one reply: a confirmation, a listing, or a help/error text.
func (d *ServerDeps) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	defer DrainBody(r)
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		WriteProblem(w, http.StatusBadRequest, "invalid form", err.Error(), nil)
		return
	}
	body := r.PostFormValue("Body")
	from := r.PostFormValue("From")

	switch act := command.Parse(body).(type) {
	case command.AddEvent:
		d.Metrics.CommandsTotal.WithLabelValues("add").Inc()
		ev, err := d.Store.Insert(r.Context(), act.Subject, act.Date, act.Time, act.Description)
		if err != nil {
			d.Logger.Error("webhook insert failed", "err", err)
			WriteProblem(w, http.StatusInternalServerError, "storage error", "could not save the event", nil)
			return
		}
		d.Logger.Info("event added via webhook", "event_id", ev.ID, "subject", ev.Subject, "from", from)
		writeTwiML(w, fmt.Sprintf("Event %s added for %s at %s!", ev.Subject, ev.Date, ev.Time))

	case command.ListEvents:
		d.Metrics.CommandsTotal.WithLabelValues("list").Inc()
		events, err := d.Store.ListOrdered(r.Context())
		if err != nil {
			d.Logger.Error("webhook list failed", "err", err)
			WriteProblem(w, http.StatusInternalServerError, "storage error", "could not list the events", nil)
			return
		}
		writeTwiML(w, formatListing(events))

	case command.Malformed:
		d.Metrics.CommandsTotal.WithLabelValues("malformed").Inc()
		writeTwiML(w, act.Reason)

	case command.Unknown:
		d.Metrics.CommandsTotal.WithLabelValues("unknown").Inc()
		writeTwiML(w, command.HelpText)
	}
}

func formatListing(events []domain.Event) string {
	if len(events) == 0 {
		return "No events found."
	}
	var b strings.Builder
	b.WriteString("Upcoming events:\n")
	for _, ev := range events {
		fmt.Fprintf(&b, "%d. %s - %s %s - %s\n", ev.ID, ev.Subject, ev.Date, ev.Time, ev.Description)
	}
	return b.String()
}

// --- JSON API ---

func (d *ServerDeps) HandleEvents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		d.handlePostEvent(w, r)
	case http.MethodGet:
		d.handleGetEvents(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (d *ServerDeps) handlePostEvent(w http.ResponseWriter, r *http.Request) {
	defer DrainBody(r)
	var in domain.NewEventInput
	if err := decodeJSONStrict(r, &in); err != nil {
		WriteProblem(w, http.StatusBadRequest, "invalid json", err.Error(), nil)
		return
	}
	if errs := domain.ValidateNewEvent(&in); len(errs) > 0 {
		prob := map[string][]string{}
		for _, fe := range errs {
			prob[fe.Field] = append(prob[fe.Field], fe.Msg)
		}
		WriteProblem(w, http.StatusBadRequest, "validation failed", "one or more fields are invalid", prob)
		return
	}
	ev, err := d.Store.Insert(r.Context(), in.Subject, in.Date, in.Time, in.Description)
	if err != nil {
		d.Logger.Error("api insert failed", "err", err)
		WriteProblem(w, http.StatusInternalServerError, "storage error", "could not save the event", nil)
		return
	}
	d.Logger.Info("event added via api", "event_id", ev.ID, "subject", ev.Subject)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"message": "event added", "id": ev.ID})
}

func (d *ServerDeps) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	events, err := d.Store.ListOrdered(r.Context())
	if err != nil {
		d.Logger.Error("api list failed", "err", err)
		WriteProblem(w, http.StatusInternalServerError, "storage error", "could not list the events", nil)
		return
	}
	if events == nil {
		events = []domain.Event{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"events": events})
}

// --- Router ---

func (d *ServerDeps) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", d.HandleHealthz)
	mux.HandleFunc("/readyz", d.HandleReadyz)
	mux.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{}))

	// Sender authentication on the webhook is out of scope; the body
	// limit still applies.
	var webhook http.Handler = http.HandlerFunc(d.HandleWebhook)
	webhook = BodyLimit(d.Cfg.MaxBodyBytes)(webhook)
	mux.Handle("/twilio", webhook)

	var events http.Handler = http.HandlerFunc(d.HandleEvents)
	events = BodyLimit(d.Cfg.MaxBodyBytes)(events)
	events = RequireJSON(events)
	events = APIKeyAuth(d.Cfg.APIKeys)(events)
	mux.Handle("/api/events", events)

	return mux
}
