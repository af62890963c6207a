package services

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
)

// fakeAPI is an in-memory remote travel API.
type fakeAPI struct {
	t      *testing.T
	srv    *httptest.Server
	token  string
	role   string
	hits   atomic.Int32
	mu     sync.Mutex
	nextID int
	rows   map[string]map[string]any
	order  []string
	status map[string]int
}

var fakeCatalog = map[string]map[string]any{
	"dest-goa": {"id": "dest-goa", "name": "Goa Beach Escape", "location": "Goa", "price": 5499, "image_url": "https://img/goa.jpg"},
}

func newFakeAPI(t *testing.T, role string) *fakeAPI {
	t.Helper()
	f := &fakeAPI{t: t, role: role, rows: map[string]map[string]any{}, status: map[string]int{}}
	f.token = f.sign(time.Now().Add(time.Hour))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", f.login)
	mux.HandleFunc("POST /api/bookings", f.auth(f.create))
	mux.HandleFunc("GET /api/bookings", f.auth(f.list))
	mux.HandleFunc("GET /api/bookings/stats", f.auth(f.stats))
	mux.HandleFunc("GET /api/bookings/admin", f.auth(f.adminList))
	mux.HandleFunc("GET /api/bookings/{id}", f.auth(f.get))
	mux.HandleFunc("DELETE /api/bookings/{id}", f.auth(f.cancel))
	mux.HandleFunc("POST /api/bookings/{id}/confirm-payment", f.auth(f.confirm))
	mux.HandleFunc("POST /api/bookings/{id}/reject-payment", f.auth(f.reject))
	mux.HandleFunc("GET /api/bookings/{id}/payment-info", f.auth(f.paymentInfo))

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) sign(exp time.Time) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "user-1",
		"role": f.role,
		"exp":  exp.Unix(),
	})
	s, err := tok.SignedString([]byte("fake-api-secret"))
	if err != nil {
		f.t.Fatalf("sign token: %v", err)
	}
	return s
}

// revoke invalidates every token issued so far.
func (f *fakeAPI) revoke() {
	next := f.sign(time.Now().Add(2 * time.Hour))
	f.mu.Lock()
	f.token = next
	f.mu.Unlock()
}

// failNext makes the next request to path answer with status.
func (f *fakeAPI) failNext(path string, status int) {
	f.mu.Lock()
	f.status[path] = status
	f.mu.Unlock()
}

func (f *fakeAPI) seed(id string, row map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row["id"] = id
	f.rows[id] = row
	f.order = append(f.order, id)
}

func (f *fakeAPI) row(id string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id]
}

func (f *fakeAPI) write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		f.mu.Lock()
		token := f.token
		f.mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer "+token {
			f.write(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
			return
		}
		f.mu.Lock()
		status, ok := f.status[r.URL.Path]
		delete(f.status, r.URL.Path)
		f.mu.Unlock()
		if ok {
			f.write(w, status, map[string]string{})
			return
		}
		next(w, r)
	}
}

func (f *fakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var in struct{ Email, Password string }
	_ = json.NewDecoder(r.Body).Decode(&in)
	if in.Password != "secret" {
		f.write(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"})
		return
	}
	f.mu.Lock()
	token := f.token
	f.mu.Unlock()
	f.write(w, http.StatusOK, map[string]string{"access_token": token, "token_type": "bearer"})
}

func (f *fakeAPI) create(w http.ResponseWriter, r *http.Request) {
	var in map[string]any
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		f.write(w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]string{{"msg": "invalid body"}}})
		return
	}
	dest, ok := fakeCatalog[fmt.Sprint(in["destination_id"])]
	if !ok {
		f.write(w, http.StatusNotFound, map[string]string{"detail": "Destination not found"})
		return
	}
	f.mu.Lock()
	f.nextID++
	id := fmt.Sprintf("665f00000000000000%04d", f.nextID)
	f.mu.Unlock()

	row := map[string]any{
		"destination_id":   in["destination_id"],
		"destination":      dest,
		"seats":            fmt.Sprint(in["seats"]),
		"total_amount":     in["total_amount"],
		"booking_status":   "pending",
		"payment_status":   "unpaid",
		"travel_date":      in["travel_date"],
		"contact_info":     in["contact_info"],
		"special_requests": in["special_requests"],
		"created_at":       "2026-03-01T09:00:00Z",
	}
	f.seed(id, row)
	f.write(w, http.StatusCreated, f.row(id))
}

func (f *fakeAPI) list(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	items := make([]map[string]any, 0, len(f.order))
	for _, id := range f.order {
		items = append(items, f.rows[id])
	}
	f.mu.Unlock()
	f.write(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

func (f *fakeAPI) adminList(w http.ResponseWriter, r *http.Request) {
	want := r.URL.Query().Get("payment_status")
	f.mu.Lock()
	items := []map[string]any{}
	for _, id := range f.order {
		if want == "" || f.rows[id]["payment_status"] == want {
			items = append(items, f.rows[id])
		}
	}
	f.mu.Unlock()
	f.write(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

func (f *fakeAPI) stats(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	total := len(f.order)
	f.mu.Unlock()
	f.write(w, http.StatusOK, map[string]any{
		"total_bookings":         total,
		"upcoming_trips":         1,
		"completed_trips":        0,
		"total_spent":            "10998",
		"pending_bookings":       1,
		"cancelled_bookings":     0,
		"average_booking_amount": 10998,
		"most_recent_booking":    nil,
	})
}

func (f *fakeAPI) get(w http.ResponseWriter, r *http.Request) {
	row := f.row(r.PathValue("id"))
	if row == nil {
		f.write(w, http.StatusNotFound, map[string]string{"detail": "Booking not found"})
		return
	}
	f.write(w, http.StatusOK, row)
}

func (f *fakeAPI) mutate(w http.ResponseWriter, id string, fn func(row map[string]any)) {
	f.mu.Lock()
	row := f.rows[id]
	if row != nil {
		fn(row)
	}
	f.mu.Unlock()
	if row == nil {
		f.write(w, http.StatusNotFound, map[string]string{"detail": "Booking not found"})
		return
	}
	f.write(w, http.StatusOK, map[string]string{"message": "ok"})
}

func (f *fakeAPI) cancel(w http.ResponseWriter, r *http.Request) {
	f.mutate(w, r.PathValue("id"), func(row map[string]any) {
		row["booking_status"] = "cancelled"
		if row["payment_status"] == "paid" {
			row["payment_status"] = "refunded"
		}
	})
}

func (f *fakeAPI) confirm(w http.ResponseWriter, r *http.Request) {
	var in map[string]string
	_ = json.NewDecoder(r.Body).Decode(&in)
	f.mutate(w, r.PathValue("id"), func(row map[string]any) {
		if row["payment_status"] == "paid" {
			row["booking_status"] = "confirmed"
		}
		row["payment_status"] = "paid"
		row["payment_details"] = map[string]string{"method": in["payment_method"], "transaction_id": in["transaction_id"]}
	})
}

func (f *fakeAPI) reject(w http.ResponseWriter, r *http.Request) {
	f.mutate(w, r.PathValue("id"), func(row map[string]any) {
		row["booking_status"] = "cancelled"
		if row["payment_status"] == "paid" {
			row["payment_status"] = "refunded"
		}
	})
}

func (f *fakeAPI) paymentInfo(w http.ResponseWriter, r *http.Request) {
	row := f.row(r.PathValue("id"))
	if row == nil {
		f.write(w, http.StatusNotFound, map[string]string{"detail": "Booking not found"})
		return
	}
	f.write(w, http.StatusOK, map[string]any{
		"booking_id":     row["id"],
		"payment_method": "upi",
		"transaction_id": "TXN1",
		"amount":         fmt.Sprint(row["total_amount"]),
		"payment_status": strings.ToUpper(fmt.Sprint(row["payment_status"])),
		"paid_at":        "2026-03-01T10:00:00Z",
	})
}
