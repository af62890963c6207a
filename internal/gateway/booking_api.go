// Package gateway is the HTTP client of the remote travel API.
package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"travelgateway/internal/domain"
	"travelgateway/internal/domain/models"
	"travelgateway/internal/session"
)

const maxBodyBytes = 4 << 20

// AdminPageSize is fixed by the remote admin listing.
const AdminPageSize = 20

// Principal is the session a call is made on behalf of.
type Principal interface {
	Credential(ctx context.Context) (session.Credential, error)
	Expire(ctx context.Context, cred session.Credential, reason session.Reason) bool
}

type BookingAPI struct {
	httpClient *http.Client
	baseURL    string
	loginRoute string
}

func NewBookingAPI(baseURL string, timeout time.Duration, loginRoute string) *BookingAPI {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BookingAPI{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		loginRoute: loginRoute,
	}
}

// WithHTTPClient swaps the transport (tests).
func (a *BookingAPI) WithHTTPClient(c *http.Client) *BookingAPI {
	a.httpClient = c
	return a
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	Token       string `json:"token"`
}

// Login exchanges credentials for a bearer token. It does not need a session.
func (a *BookingAPI) Login(ctx context.Context, email, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", err
	}
	resp, err := a.send(ctx, "login", http.MethodPost, "/api/auth/login", nil, body, "")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", domain.TransportError{Op: "login", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		kind := domain.KindForStatus(resp.StatusCode)
		if kind == domain.KindUnauthorized {
			return "", domain.APIError{Status: resp.StatusCode, Kind: kind, Message: firstDetail(raw, "Invalid email or password")}
		}
		return "", domain.APIError{Status: resp.StatusCode, Kind: kind, Message: detailMessage(raw)}
	}

	var lr loginResponse
	if err := json.Unmarshal(raw, &lr); err != nil {
		return "", domain.APIError{Status: resp.StatusCode, Kind: domain.KindUnexpected, Message: "malformed login response"}
	}
	token := strings.TrimSpace(lr.AccessToken)
	if token == "" {
		token = strings.TrimSpace(lr.Token)
	}
	if token == "" {
		return "", domain.APIError{Status: resp.StatusCode, Kind: domain.KindUnexpected, Message: "login response carried no token"}
	}
	return token, nil
}

func (a *BookingAPI) CreateBooking(ctx context.Context, p Principal, req models.CreateBookingRequest) (json.RawMessage, error) {
	return a.call(ctx, p, "create_booking", http.MethodPost, "/api/bookings", nil, req)
}

func (a *BookingAPI) ConfirmPayment(ctx context.Context, p Principal, id string, req models.PaymentRequest) (json.RawMessage, error) {
	return a.call(ctx, p, "confirm_payment", http.MethodPost, bookingPath(id, "confirm-payment"), nil, req)
}

func (a *BookingAPI) RejectPayment(ctx context.Context, p Principal, id string, req models.RejectRequest) (json.RawMessage, error) {
	return a.call(ctx, p, "reject_payment", http.MethodPost, bookingPath(id, "reject-payment"), nil, req)
}

func (a *BookingAPI) CancelBooking(ctx context.Context, p Principal, id string) error {
	_, err := a.call(ctx, p, "cancel_booking", http.MethodDelete, bookingPath(id, ""), nil, nil)
	return err
}

func (a *BookingAPI) GetBooking(ctx context.Context, p Principal, id string) (json.RawMessage, error) {
	return a.call(ctx, p, "get_booking", http.MethodGet, bookingPath(id, ""), nil, nil)
}

func (a *BookingAPI) PaymentInfo(ctx context.Context, p Principal, id string) (json.RawMessage, error) {
	return a.call(ctx, p, "payment_info", http.MethodGet, bookingPath(id, "payment-info"), nil, nil)
}

func (a *BookingAPI) Stats(ctx context.Context, p Principal) (json.RawMessage, error) {
	return a.call(ctx, p, "booking_stats", http.MethodGet, "/api/bookings/stats", nil, nil)
}

// ListBookings returns the raw items of the current user's bookings. Both
// {items,total} and a bare array are accepted.
func (a *BookingAPI) ListBookings(ctx context.Context, p Principal) ([]json.RawMessage, error) {
	raw, err := a.call(ctx, p, "list_bookings", http.MethodGet, "/api/bookings", nil, nil)
	if err != nil {
		return nil, err
	}
	items, _, err := decodeList(raw)
	return items, err
}

type AdminListParams struct {
	PaymentStatus string
	Skip          int
}

// AdminList fetches one page of AdminPageSize bookings.
func (a *BookingAPI) AdminList(ctx context.Context, p Principal, params AdminListParams) ([]json.RawMessage, int, error) {
	q := url.Values{}
	if s := strings.TrimSpace(params.PaymentStatus); s != "" {
		q.Set("payment_status", s)
	}
	if params.Skip < 0 {
		params.Skip = 0
	}
	q.Set("skip", strconv.Itoa(params.Skip))
	q.Set("limit", strconv.Itoa(AdminPageSize))

	raw, err := a.call(ctx, p, "admin_list", http.MethodGet, "/api/bookings/admin", q, nil)
	if err != nil {
		return nil, 0, err
	}
	return decodeList(raw)
}

func bookingPath(id, action string) string {
	p := "/api/bookings/" + url.PathEscape(strings.TrimSpace(id))
	if action != "" {
		p += "/" + action
	}
	return p
}

// call performs an authenticated request. The token is read before anything
// touches the network; a 401 expires the credential it was sent with.
func (a *BookingAPI) call(ctx context.Context, p Principal, op, method, path string, q url.Values, payload any) (json.RawMessage, error) {
	if p == nil {
		return nil, domain.ErrAuthRequired
	}
	cred, err := p.Credential(ctx)
	if err != nil {
		return nil, err
	}

	var body []byte
	if payload != nil {
		if body, err = json.Marshal(payload); err != nil {
			return nil, fmt.Errorf("%s: encode body: %w", op, err)
		}
	}

	resp, err := a.send(ctx, op, method, path, q, body, cred.Token)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		redirect := p.Expire(ctx, cred, session.ReasonUnauthorized)
		return nil, domain.SessionExpiredError{Redirect: redirect, Route: a.loginRoute}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, domain.TransportError{Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.APIError{
			Status:  resp.StatusCode,
			Kind:    domain.KindForStatus(resp.StatusCode),
			Message: detailMessage(raw),
		}
	}
	return raw, nil
}

func (a *BookingAPI) send(ctx context.Context, op, method, path string, q url.Values, body []byte, token string) (*http.Response, error) {
	u := a.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, domain.TransportError{Op: op, Err: err}
	}
	return resp, nil
}

type listEnvelope struct {
	Items    []json.RawMessage `json:"items"`
	Bookings []json.RawMessage `json:"bookings"`
	Total    Numberish         `json:"total"`
}

func decodeList(raw json.RawMessage) ([]json.RawMessage, int, error) {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 || string(t) == "null" {
		return []json.RawMessage{}, 0, nil
	}
	if t[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(t, &items); err != nil {
			return nil, 0, domain.APIError{Status: http.StatusOK, Kind: domain.KindUnexpected, Message: "malformed booking list"}
		}
		return items, len(items), nil
	}
	var env listEnvelope
	if err := json.Unmarshal(t, &env); err != nil {
		return nil, 0, domain.APIError{Status: http.StatusOK, Kind: domain.KindUnexpected, Message: "malformed booking list"}
	}
	items := env.Items
	if items == nil {
		items = env.Bookings
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	total := len(items)
	if env.Total.Valid {
		total = env.Total.Int()
	}
	return items, total, nil
}

type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// detailMessage extracts the server's explanation: a detail string, a list of
// {msg} validation items, or message/error. It returns "" when none is present.
func detailMessage(raw []byte) string {
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err != nil {
		return ""
	}
	if Present(eb.Detail) {
		var s string
		if err := json.Unmarshal(eb.Detail, &s); err == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(eb.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if m := strings.TrimSpace(it.Msg); m != "" {
					msgs = append(msgs, m)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}
	if m := strings.TrimSpace(eb.Message); m != "" {
		return m
	}
	return strings.TrimSpace(eb.Error)
}

func firstDetail(raw []byte, fallback string) string {
	if m := detailMessage(raw); m != "" {
		return m
	}
	return fallback
}
