package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dsp-ops/shift-planner/backend/internal/config"
	"github.com/dsp-ops/shift-planner/backend/internal/domain"
	"github.com/dsp-ops/shift-planner/backend/internal/holiday"
	"github.com/dsp-ops/shift-planner/backend/internal/planner"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	published []amqp.Publishing
	keys      []string
	err       error
}

func (f *fakePublisher) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func newTestHandler(t *testing.T, publisher MailPublisher) *Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Expiration = 1
	cfg.Planner.DefaultMode = "forecast"
	cfg.RabbitMQ.Queue = "email_queue"
	cfg.RabbitMQ.PublishTimeout = 1

	h, err := NewHandler(cfg, nil, nil, holiday.NewCalendar(), publisher, prometheus.NewRegistry())
	require.NoError(t, err)
	h.RegisterRoutes()
	return h
}

func doRequest(t *testing.T, h *Handler, method, target string, token string) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	var resp Response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func validToken(t *testing.T, h *Handler, role domain.Role) string {
	t.Helper()
	token, err := h.signToken(string(role), 1, time.Now().Add(time.Hour))
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware(t *testing.T) {
	h := newTestHandler(t, &fakePublisher{})

	t.Run("missing cookie", func(t *testing.T) {
		rec, resp := doRequest(t, h, http.MethodGet, "/holidays/BY/2025", "")

		require.Equal(t, http.StatusOK, rec.Code)
		require.False(t, resp.Success)
		require.Equal(t, "not logged in", resp.Message)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := newTestHandler(t, &fakePublisher{})
		other.config.JWT.Secret = "another-secret"

		_, resp := doRequest(t, h, http.MethodGet, "/holidays/BY/2025", validToken(t, other, domain.RoleAdmin))

		require.False(t, resp.Success)
		require.Equal(t, "invalid token", resp.Message)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := h.signToken(string(domain.RoleAdmin), 1, time.Now().Add(-time.Minute))
		require.NoError(t, err)

		_, resp := doRequest(t, h, http.MethodGet, "/holidays/BY/2025", token)

		require.False(t, resp.Success)
		require.Equal(t, "invalid token", resp.Message)
	})
}

func TestLogout(t *testing.T) {
	h := newTestHandler(t, &fakePublisher{})

	rec, resp := doRequest(t, h, http.MethodPost, "/auth/logout", "")

	require.True(t, resp.Success)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, tokenCookieName, cookies[0].Name)
	require.Empty(t, cookies[0].Value)
}

func TestGetHolidays(t *testing.T) {
	h := newTestHandler(t, &fakePublisher{})
	token := validToken(t, h, domain.RolePlanner)

	t.Run("lists the holidays of a state", func(t *testing.T) {
		_, resp := doRequest(t, h, http.MethodGet, "/holidays/by/2025", token)

		require.True(t, resp.Success)
		items, ok := resp.Data.([]any)
		require.True(t, ok)
		require.NotEmpty(t, items)
		first := items[0].(map[string]any)
		require.Equal(t, "2025-01-01", first["date"])

		dates := make([]string, 0, len(items))
		for _, item := range items {
			dates = append(dates, item.(map[string]any)["date"].(string))
		}
		require.Contains(t, dates, "2025-01-06")
	})

	t.Run("unknown state", func(t *testing.T) {
		_, resp := doRequest(t, h, http.MethodGet, "/holidays/XX/2025", token)

		require.False(t, resp.Success)
		require.Equal(t, "unknown federal state", resp.Message)
	})

	t.Run("invalid year", func(t *testing.T) {
		_, resp := doRequest(t, h, http.MethodGet, "/holidays/BY/next", token)

		require.False(t, resp.Success)
		require.Equal(t, "invalid year", resp.Message)
	})
}

func TestAutoPlanWeek_RejectsBadInput(t *testing.T) {
	h := newTestHandler(t, &fakePublisher{})
	token := validToken(t, h, domain.RolePlanner)

	t.Run("invalid date", func(t *testing.T) {
		_, resp := doRequest(t, h, http.MethodPost, "/shifts/auto-plan/2025-13-40", token)

		require.False(t, resp.Success)
		require.Contains(t, resp.Message, "invalid date")
	})

	t.Run("invalid mode", func(t *testing.T) {
		_, resp := doRequest(t, h, http.MethodPost, "/shifts/auto-plan/10.03.2025?mode=everything", token)

		require.False(t, resp.Success)
		require.Contains(t, resp.Message, "mode must be")
	})
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_requests_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	cfg := &config.Config{}
	h, err := NewHandler(cfg, nil, nil, holiday.NewCalendar(), &fakePublisher{}, reg)
	require.NoError(t, err)
	h.RegisterRoutes()

	rec, _ := doRequest(t, h, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "test_requests_total 1")
}

func TestPublishShiftPlanned(t *testing.T) {
	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	res := &planner.Result{
		RunID:     "run",
		Mode:      domain.PlanModeForecast,
		WeekStart: monday,
		WeekEnd:   monday.AddDate(0, 0, 6),
		Assignments: []*domain.ShiftAssignment{
			{EmployeeID: 1, Date: monday, ShiftType: domain.ShiftTypeWork},
			{EmployeeID: 1, Date: monday.AddDate(0, 0, 2), ShiftType: domain.ShiftTypeWork},
			{EmployeeID: 2, Date: monday, ShiftType: domain.ShiftTypeWork},
		},
	}
	employees := []*domain.Employee{
		{ID: 1, Name: "Anna Becker", Email: "anna@example.com"},
		{ID: 2, Name: "Jonas Wolf"},
		{ID: 3, Name: "Lea Koch", Email: "lea@example.com"},
	}

	t.Run("one message per employee with email and new days", func(t *testing.T) {
		publisher := &fakePublisher{}
		h := newTestHandler(t, publisher)

		published := h.publishShiftPlanned(employees, res)

		require.Equal(t, 1, published)
		require.Equal(t, []string{"email_queue"}, publisher.keys)

		var msg struct {
			Type string                      `json:"type"`
			To   string                      `json:"to"`
			Data domain.ShiftPlannedMailData `json:"data"`
		}
		require.NoError(t, json.Unmarshal(publisher.published[0].Body, &msg))
		require.Equal(t, domain.MailTypeShiftPlanned, msg.Type)
		require.Equal(t, "anna@example.com", msg.To)
		require.Equal(t, "Anna Becker", msg.Data.Name)
		require.Equal(t, []string{"Mon 10.03.2025", "Wed 12.03.2025"}, msg.Data.Days)
		require.Equal(t, "16.03.2025", msg.Data.WeekEnd)
	})

	t.Run("publish failures are counted out, not fatal", func(t *testing.T) {
		h := newTestHandler(t, &fakePublisher{err: errors.New("channel closed")})

		require.Zero(t, h.publishShiftPlanned(employees, res))
	})
}

func TestReadJSON(t *testing.T) {
	h := newTestHandler(t, &fakePublisher{})
	var dst struct {
		Name string `json:"name"`
	}

	cases := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid", body: `{"name":"Anna"}`},
		{name: "empty body", body: ``, wantErr: "request body is empty"},
		{name: "unknown field", body: `{"name":"Anna","role":"admin"}`, wantErr: "unknown field"},
		{name: "two objects", body: `{"name":"Anna"}{"name":"Jonas"}`, wantErr: "single JSON object"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			err := h.readJSON(httptest.NewRecorder(), req, &dst)
			if tc.wantErr == "" {
				require.NoError(t, err)
				require.Equal(t, "Anna", dst.Name)
				return
			}
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}
