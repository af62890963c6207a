package services

import (
	"sync"

	"travelgateway/internal/domain"
)

// InFlight refuses a second mutation on the same booking while one is
// outstanding. The zero value is ready to use; share one per process.
type InFlight struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func NewInFlight() *InFlight {
	return &InFlight{keys: map[string]struct{}{}}
}

// Acquire returns a release func, or a ConflictError if key is busy.
func (f *InFlight) Acquire(key string) (func(), error) {
	if f == nil {
		return func() {}, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.keys == nil {
		f.keys = map[string]struct{}{}
	}
	if _, busy := f.keys[key]; busy {
		return nil, domain.ConflictError{Resource: "booking", Msg: "another update for this booking is in progress"}
	}
	f.keys[key] = struct{}{}
	return func() {
		f.mu.Lock()
		delete(f.keys, key)
		f.mu.Unlock()
	}, nil
}
