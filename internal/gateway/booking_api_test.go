package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelgateway/internal/domain"
	"travelgateway/internal/domain/models"
	"travelgateway/internal/session"
)

func newTestSession(t *testing.T) (*session.Manager, *session.Session) {
	t.Helper()
	m := session.NewManager(session.NewMemoryStore(), "/login")
	s, err := m.Start(context.Background(), "opaque-token")
	require.NoError(t, err)
	return m, s
}

func TestCall_NoTokenNeverTouchesNetwork(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	m := session.NewManager(session.NewMemoryStore(), "/login")
	api := NewBookingAPI(srv.URL, time.Second, "/login")

	_, err := api.GetBooking(context.Background(), m.Get("unknown"), "b1")
	require.Error(t, err)
	assert.True(t, domain.IsAuthRequired(err))
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}

func TestCall_SendsBearerAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer opaque-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/bookings/b1/confirm-payment", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"b1","payment_status":"paid"}`))
	}))
	defer srv.Close()

	_, s := newTestSession(t)
	api := NewBookingAPI(srv.URL, time.Second, "/login")
	raw, err := api.ConfirmPayment(context.Background(), s, "b1", models.PaymentRequest{PaymentMethod: "upi", TransactionID: "TXN1"})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"paid"`)
}

func TestCall_401TearsDownOnce(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	m, s := newTestSession(t)
	var events int32
	require.NoError(t, m.Subscribe(func(context.Context, session.TeardownEvent) { atomic.AddInt32(&events, 1) }))

	api := NewBookingAPI(srv.URL, time.Second, "/login")
	_, err := api.GetBooking(context.Background(), s, "b1")
	var expired domain.SessionExpiredError
	require.True(t, errors.As(err, &expired))
	assert.True(t, expired.Redirect)
	assert.Equal(t, "/login", expired.Route)

	_, err = api.GetBooking(context.Background(), s, "b1")
	assert.True(t, domain.IsAuthRequired(err))
	assert.False(t, errors.As(err, &expired))

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.Equal(t, int32(1), atomic.LoadInt32(&events))
}

func TestCall_StatusMapping(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		kind    domain.APIErrorKind
		message string
	}{
		{"forbidden", http.StatusForbidden, `{"detail":"Admins only"}`, domain.KindForbidden, "Admins only"},
		{"not found", http.StatusNotFound, `{}`, domain.KindNotFound, ""},
		{"validation list", http.StatusUnprocessableEntity, `{"detail":[{"msg":"seats too high"},{"msg":"bad date"}]}`, domain.KindValidation, "seats too high; bad date"},
		{"conflict", http.StatusConflict, `{"detail":"Booking already confirmed"}`, domain.KindConflict, "Booking already confirmed"},
		{"server message", http.StatusInternalServerError, `{"message":"db down"}`, domain.KindServer, "db down"},
		{"non json", http.StatusBadGateway, `<html>`, domain.KindServer, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, s := newTestSession(t)
			api := NewBookingAPI(srv.URL, time.Second, "/login")
			_, err := api.GetBooking(context.Background(), s, "b1")

			var apiErr domain.APIError
			require.True(t, errors.As(err, &apiErr), "got %v", err)
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, tc.kind, apiErr.Kind)
			assert.Equal(t, tc.message, apiErr.Message)
		})
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

type brokenBody struct{}

func (brokenBody) Read([]byte) (int, error) { return 0, errors.New("connection reset") }
func (brokenBody) Close() error { return nil }

func TestCall_401WithUnreadableBodyStillTearsDown(t *testing.T) {
	m, s := newTestSession(t)
	var events int32
	require.NoError(t, m.Subscribe(func(context.Context, session.TeardownEvent) { atomic.AddInt32(&events, 1) }))

	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusUnauthorized, Body: brokenBody{}, Header: http.Header{}, Request: r}, nil
	})}
	api := NewBookingAPI("http://api.invalid", time.Second, "/login").WithHTTPClient(client)

	_, err := api.GetBooking(context.Background(), s, "b1")
	var expired domain.SessionExpiredError
	require.True(t, errors.As(err, &expired), "got %v", err)
	assert.True(t, expired.Redirect)
	assert.Equal(t, int32(1), atomic.LoadInt32(&events))
}

func TestCall_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, s := newTestSession(t)
	api := NewBookingAPI(url, time.Second, "/login")
	_, err := api.Stats(context.Background(), s)
	assert.True(t, domain.IsTransport(err), "got %v", err)
}

func TestListBookings_BothShapes(t *testing.T) {
	for name, body := range map[string]string{
		"paginated": `{"items":[{"id":"a"},{"id":"b"}],"total":2}`,
		"bare":      `[{"id":"a"},{"id":"b"}]`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			_, s := newTestSession(t)
			api := NewBookingAPI(srv.URL, time.Second, "/login")
			items, err := api.ListBookings(context.Background(), s)
			require.NoError(t, err)
			assert.Len(t, items, 2)
		})
	}
}

func TestAdminList_FixedPageSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/bookings/admin", r.URL.Path)
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		assert.Equal(t, "40", r.URL.Query().Get("skip"))
		assert.Equal(t, "paid", r.URL.Query().Get("payment_status"))
		_, _ = w.Write([]byte(`{"items":[{"id":"x"}],"total":"41"}`))
	}))
	defer srv.Close()

	_, s := newTestSession(t)
	api := NewBookingAPI(srv.URL, time.Second, "/login")
	items, total, err := api.AdminList(context.Background(), s, AdminListParams{PaymentStatus: "paid", Skip: 40})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 41, total)
}

func TestLogin_AcceptsEitherTokenField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"token":"abc"}`))
	}))
	defer srv.Close()

	api := NewBookingAPI(srv.URL, time.Second, "/login")
	tok, err := api.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)
}

func TestNumberish(t *testing.T) {
	var n struct {
		A Numberish `json:"a"`
		B Numberish `json:"b"`
		C Numberish `json:"c"`
		D Numberish `json:"d"`
	}
	require.NoError(t, jsonUnmarshal(`{"a":2,"b":"10998.5","c":"abc","d":null}`, &n))
	assert.Equal(t, 2.0, n.A.Value)
	assert.Equal(t, 10998.5, n.B.Value)
	assert.False(t, n.C.Valid)
	assert.False(t, n.D.Valid)
}

func jsonUnmarshal(s string, v any) error {
	return json.Unmarshal([]byte(s), v)
}
