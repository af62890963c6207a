package api

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	intconfig "travelgateway/internal/config"
	"travelgateway/internal/gateway"
	h "travelgateway/internal/http/handlers"
	"travelgateway/internal/services"
	"travelgateway/internal/session"
	"travelgateway/internal/utils"
)

// upstream answers the few remote routes the router tests touch.
type upstream struct {
	mu    sync.Mutex
	role  string
	token string
}

func (u *upstream) sign(t *testing.T) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "user-7",
		"role": u.role,
		"exp":  time.Now().Add(time.Hour).Unix(),
		"iat":  time.Now().UnixNano(),
	})
	s, err := tok.SignedString([]byte("router-test"))
	require.NoError(t, err)
	return s
}

func (u *upstream) revoke(t *testing.T) {
	next := u.sign(t)
	u.mu.Lock()
	u.token = next
	u.mu.Unlock()
}

func (u *upstream) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		tok := u.token
		u.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": tok})
	})
	mux.HandleFunc("GET /api/bookings", func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		ok := r.Header.Get("Authorization") == "Bearer "+u.token
		u.mu.Unlock()
		if !ok {
			http.Error(w, `{"detail":"Could not validate credentials"}`, http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})
	return mux
}

func newTestRouter(t *testing.T, role string) (*gin.Engine, *upstream) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.SetLogger(nil)

	up := &upstream{role: role}
	up.token = up.sign(t)
	srv := httptest.NewServer(up.handler())
	t.Cleanup(srv.Close)

	hd := &h.Handler{
		API:        gateway.NewBookingAPI(srv.URL, 5*time.Second, "/login"),
		Sessions:   session.NewManager(session.NewMemoryStore(), "/login"),
		Pricing:    utils.DefaultPricing(),
		Validator:  services.NewFormValidator(),
		InFlight:   services.NewInFlight(),
		CookieName: "tb_session",
	}
	r, err := NewRouter(intconfig.Env{CORSAllowedOrigins: []string{"http://localhost:3000"}}, hd)
	require.NoError(t, err)
	return r, up
}

func do(r http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r http.Handler) *http.Cookie {
	t.Helper()
	w := do(r, http.MethodPost, "/api/session", map[string]string{"email": "asha@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == "tb_session" {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t, "customer")
	w := do(r, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "memory", decode(t, w)["session_store"])
}

func TestProtectedRouteWithoutSession(t *testing.T) {
	r, _ := newTestRouter(t, "customer")
	w := do(r, http.MethodGet, "/api/bookings", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Equal(t, "auth_required", decode(t, w)["code"])
}

func TestUnauthorizedUpstreamRedirectsOnce(t *testing.T) {
	r, up := newTestRouter(t, "customer")
	cookie := login(t, r)

	w := do(r, http.MethodGet, "/api/bookings", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	up.revoke(t)

	w = do(r, http.MethodGet, "/api/bookings", nil, cookie)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	body := decode(t, w)
	assert.Equal(t, "session_expired", body["code"])
	assert.Equal(t, "/login", body["redirect"])
	assert.Equal(t, "/login", w.Header().Get("Location"))

	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == "tb_session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "session cookie should be cleared")

	// The session is gone, so the next request never reaches upstream.
	w = do(r, http.MethodGet, "/api/bookings", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "auth_required", decode(t, w)["code"])
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	r, _ := newTestRouter(t, "customer")
	cookie := login(t, r)

	w := do(r, http.MethodGet, "/api/admin/bookings", nil, cookie)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSessionRoundTrip(t *testing.T) {
	r, _ := newTestRouter(t, "admin")
	cookie := login(t, r)

	w := do(r, http.MethodGet, "/api/session", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode(t, w)
	assert.Equal(t, "user-7", me["user_id"])
	assert.Equal(t, "admin", me["role"])

	w = do(r, http.MethodDelete, "/api/session", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["logged_out"])

	w = do(r, http.MethodGet, "/api/session", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginValidation(t *testing.T) {
	r, _ := newTestRouter(t, "customer")
	w := do(r, http.MethodPost, "/api/session", map[string]string{"email": "not-an-email", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", decode(t, w)["code"])
}

func TestQuote(t *testing.T) {
	r, _ := newTestRouter(t, "customer")

	w := do(r, http.MethodPost, "/api/bookings/quote", map[string]any{"price_per_person": 5499, "seats": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	q := decode(t, w)
	assert.EqualValues(t, 10998, q["total"])
	assert.Equal(t, "₹10,998", q["total_display"])

	w = do(r, http.MethodPost, "/api/bookings/quote", map[string]any{"price_per_person": 5499, "seats": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNoRouteAndRoutes(t *testing.T) {
	r, _ := newTestRouter(t, "customer")

	w := do(r, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/api/routes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "/api/admin/bookings/:id/approve"))
}

func TestRouterSubscribesOnce(t *testing.T) {
	hd := &h.Handler{Sessions: session.NewManager(session.NewMemoryStore(), "")}
	_, err := NewRouter(intconfig.Env{}, hd)
	require.NoError(t, err)
	_, err = NewRouter(intconfig.Env{}, hd)
	assert.ErrorIs(t, err, session.ErrSubscriberSet)
}

func TestLogsNeverCarrySessionID(t *testing.T) {
	r, up := newTestRouter(t, "customer")
	core, logs := observer.New(zap.DebugLevel)
	utils.SetLogger(zap.New(core))
	t.Cleanup(func() { utils.SetLogger(nil) })

	cookie := login(t, r)
	up.revoke(t)
	w := do(r, http.MethodGet, "/api/bookings", nil, cookie)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	tag := utils.SessionTag(cookie.Value)
	tagged := 0
	for _, e := range logs.All() {
		assert.NotContains(t, e.Message, cookie.Value)
		for k, v := range e.ContextMap() {
			assert.NotContains(t, fmt.Sprint(v), cookie.Value, "field %s", k)
		}
		if strings.Contains(e.Message, tag) {
			tagged++
		}
	}
	assert.Equal(t, 2, tagged, "login and teardown lines should carry the tag")
}
