package user

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/nerrad567/fleetauth-core/internal/infrastructure/vault"
)

var errDiskFull = errors.New("disk full")

// memStore is an in-memory Store. Setting fail makes the next Save fail.
type memStore struct {
	mu    sync.Mutex
	data  map[string]User
	saves int
	fail  bool
}

func (s *memStore) Load(_ context.Context) (map[string]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, vault.ErrAbsent
	}
	out := make(map[string]User, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out, nil
}

func (s *memStore) Save(_ context.Context, users map[string]User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		s.fail = false
		return errDiskFull
	}
	s.data = users
	s.saves++
	return nil
}

// testDirectory opens a Directory over an empty memStore.
func testDirectory(t *testing.T) (*Directory, *memStore) {
	t.Helper()
	store := &memStore{}
	d, err := Open(context.Background(), store)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return d, store
}
