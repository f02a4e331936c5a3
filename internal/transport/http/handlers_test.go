package transporthttp

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simoamogit/progetto-scuola/internal/config"
	"github.com/simoamogit/progetto-scuola/internal/metrics"
	"github.com/simoamogit/progetto-scuola/internal/storage/memory"
)

func newTestServer(t *testing.T) (*memory.Store, http.Handler) {
	t.Helper()
	store := memory.NewStore()
	deps := &ServerDeps{
		Cfg: config.Config{
			MaxBodyBytes: 1 << 20,
			APIKeys:      map[string]struct{}{},
		},
		Store:   store,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics: metrics.New(),
	}
	return store, deps.Router()
}

func postWebhook(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{}
	form.Set("Body", body)
	form.Set("From", "whatsapp:+1000")
	req := httptest.NewRequest(http.MethodPost, "/twilio", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestWebhook_AddThenList(t *testing.T) {
	_, h := newTestServer(t)

	rec := postWebhook(t, h, "add Math 2025-03-20 09:30 Polynomials test")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Event Math added for 2025-03-20 at 09:30!")

	rec = postWebhook(t, h, "list")
	require.Equal(t, http.StatusOK, rec.Code)
	reply := rec.Body.String()
	assert.Contains(t, reply, "Math")
	assert.Contains(t, reply, "2025-03-20")
	assert.Contains(t, reply, "09:30")
	assert.Contains(t, reply, "Polynomials test")
}

func TestWebhook_MalformedAddLeavesStoreUntouched(t *testing.T) {
	store, h := newTestServer(t)

	rec := postWebhook(t, h, "add Math notadate 09:30 x")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid format")
	assert.Equal(t, 0, store.Len())
}

func TestWebhook_ListEmpty(t *testing.T) {
	_, h := newTestServer(t)

	rec := postWebhook(t, h, "list")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No events found.")
}

func TestWebhook_UnknownGetsHelp(t *testing.T) {
	_, h := newTestServer(t)

	rec := postWebhook(t, h, "what can you do?")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "school planner bot")
}

func TestWebhook_RepliesAreTwiML(t *testing.T) {
	_, h := newTestServer(t)

	rec := postWebhook(t, h, "list")
	assert.Equal(t, "text/xml", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<Response>")
	assert.Contains(t, body, "<Message>")
}

func TestAPI_PostEvent(t *testing.T) {
	store, h := newTestServer(t)

	payload := `{"subject":"Math","date":"2025-03-20","time":"09:30","description":"Polynomials test"}`
	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, 1, store.Len())
}

func TestAPI_PostEventValidation(t *testing.T) {
	store, h := newTestServer(t)

	tests := []struct {
		name    string
		payload string
	}{
		{"missing subject", `{"date":"2025-03-20","time":"09:30"}`},
		{"bad date", `{"subject":"Math","date":"20/03/2025","time":"09:30"}`},
		{"bad time", `{"subject":"Math","date":"2025-03-20","time":"9am"}`},
		{"unknown field", `{"subject":"Math","date":"2025-03-20","time":"09:30","extra":1}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(tc.payload))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Equal(t, 0, store.Len())
}

func TestAPI_GetEventsOrdered(t *testing.T) {
	_, h := newTestServer(t)

	for _, payload := range []string{
		`{"subject":"Science","date":"2025-04-01","time":"10:00"}`,
		`{"subject":"Math","date":"2025-03-20","time":"09:30"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Events []struct {
			Subject string `json:"subject"`
		} `json:"events"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Events, 2)
	assert.Equal(t, "Math", resp.Events[0].Subject)
	assert.Equal(t, "Science", resp.Events[1].Subject)
}

func TestAPI_RequiresJSONContentType(t *testing.T) {
	_, h := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestAPI_KeyAuth(t *testing.T) {
	store := memory.NewStore()
	deps := &ServerDeps{
		Cfg: config.Config{
			MaxBodyBytes: 1 << 20,
			APIKeys:      map[string]struct{}{"secret": {}},
		},
		Store:   store,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics: metrics.New(),
	}
	h := deps.Router()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// The webhook stays open regardless of configured keys.
	rec = postWebhook(t, h, "list")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthz(t *testing.T) {
	_, h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	_, h := newTestServer(t)

	postWebhook(t, h, "list")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "planner_commands_total")
}
