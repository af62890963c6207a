// Package session holds bearer tokens for authenticated principals and owns
// the logout-on-401 lifecycle: a session is torn down at most once per Init,
// and exactly one subscriber hears about it.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"travelgateway/internal/domain"
	"travelgateway/internal/utils"
)

type Reason string

const (
	ReasonUnauthorized Reason = "unauthorized"
	ReasonExpired      Reason = "expired"
	ReasonLogout       Reason = "logout"
)

// TeardownEvent is delivered to the subscriber once per torn down session.
type TeardownEvent struct {
	SessionID string
	Reason    Reason
	Redirect  string
}

type Subscriber func(ctx context.Context, ev TeardownEvent)

var ErrSubscriberSet = errors.New("session: subscriber already registered")

// Credential is a token together with the Init generation it belongs to.
type Credential struct {
	Token      string
	Generation uint64
}

type Manager struct {
	store      Store
	loginRoute string
	now        func() time.Time

	mu         sync.Mutex
	sessions   map[string]*Session
	subscriber Subscriber
}

func NewManager(store Store, loginRoute string) *Manager {
	if loginRoute == "" {
		loginRoute = "/login"
	}
	return &Manager{
		store:      store,
		loginRoute: loginRoute,
		now:        time.Now,
		sessions:   map[string]*Session{},
	}
}

// WithClock replaces the time source (tests).
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

func (m *Manager) LoginRoute() string { return m.loginRoute }

// Subscribe registers the single teardown subscriber.
func (m *Manager) Subscribe(fn Subscriber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subscriber != nil {
		return ErrSubscriberSet
	}
	m.subscriber = fn
	return nil
}

// Start opens a new session with a fresh id and initializes it with token.
func (m *Manager) Start(ctx context.Context, token string) (*Session, error) {
	s := m.Get(uuid.NewString())
	if err := s.Init(ctx, token); err != nil {
		m.forget(s.id)
		return nil, err
	}
	return s, nil
}

// Get returns the handle for id. Its token is loaded lazily from the store.
func (m *Manager) Get(id string) *Session {
	id = strings.TrimSpace(id)
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s
	}
	s := &Session{id: id, m: m}
	m.sessions[id] = s
	return s
}

func (m *Manager) forget(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

func (m *Manager) notify(ctx context.Context, ev TeardownEvent) {
	m.mu.Lock()
	fn := m.subscriber
	m.mu.Unlock()
	if fn != nil {
		fn(ctx, ev)
	}
}

type Session struct {
	id string
	m  *Manager

	mu         sync.Mutex
	loaded     bool
	token      string
	claims     Claims
	generation uint64
}

func (s *Session) ID() string { return s.id }

// Init stores token and starts a new generation.
func (s *Session) Init(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	claims, err := ParseClaims(token)
	if err != nil {
		return err
	}
	if claims.Expired(s.m.now()) {
		return domain.ErrAuthRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.m.store.Save(ctx, s.id, token); err != nil {
		return domain.InternalError{Msg: "save session", Err: err}
	}
	s.loaded = true
	s.token = token
	s.claims = claims
	s.generation++
	return nil
}

// Credential returns the current token, or ErrAuthRequired when there is
// none. An expired token tears the session down before any network use.
func (s *Session) Credential(ctx context.Context) (Credential, error) {
	s.mu.Lock()
	if err := s.loadLocked(ctx); err != nil {
		s.mu.Unlock()
		return Credential{}, err
	}
	if s.token == "" {
		s.mu.Unlock()
		s.m.forget(s.id)
		return Credential{}, domain.ErrAuthRequired
	}
	cred := Credential{Token: s.token, Generation: s.generation}
	expired := s.claims.Expired(s.m.now())
	s.mu.Unlock()

	if expired {
		s.Expire(ctx, cred, ReasonExpired)
		return Credential{}, domain.ErrAuthRequired
	}
	return cred, nil
}

// Claims returns the claims of the current token.
func (s *Session) Claims(ctx context.Context) (Claims, error) {
	if _, err := s.Credential(ctx); err != nil {
		return Claims{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claims, nil
}

// Expire tears the session down if cred still belongs to the live generation.
// It reports true only for the call that performed the teardown.
func (s *Session) Expire(ctx context.Context, cred Credential, reason Reason) bool {
	s.mu.Lock()
	if s.token == "" || cred.Generation != s.generation {
		s.mu.Unlock()
		return false
	}
	return s.teardownLocked(ctx, reason)
}

// Teardown ends the live generation, whatever it is.
func (s *Session) Teardown(ctx context.Context, reason Reason) bool {
	s.mu.Lock()
	if err := s.loadLocked(ctx); err != nil || s.token == "" {
		s.mu.Unlock()
		return false
	}
	return s.teardownLocked(ctx, reason)
}

// teardownLocked is entered with s.mu held and releases it.
func (s *Session) teardownLocked(ctx context.Context, reason Reason) bool {
	s.token = ""
	s.claims = Claims{}
	err := s.m.store.Delete(ctx, s.id)
	s.mu.Unlock()

	s.m.forget(s.id)
	if err != nil {
		utils.LogError("", "session", "delete", fmt.Errorf("session %s: %w", utils.SessionTag(s.id), err))
	}
	s.m.notify(ctx, TeardownEvent{SessionID: s.id, Reason: reason, Redirect: s.m.loginRoute})
	return true
}

func (s *Session) loadLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	token, err := s.m.store.Load(ctx, s.id)
	if err != nil {
		return domain.InternalError{Msg: "load session", Err: err}
	}
	s.loaded = true
	if token == "" {
		return nil
	}
	claims, err := ParseClaims(token)
	if err != nil {
		return nil
	}
	s.token = token
	s.claims = claims
	s.generation++
	return nil
}
