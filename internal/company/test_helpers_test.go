package company

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/fleetauth-core/internal/infrastructure/vault"
)

var errDiskFull = errors.New("disk full")

// memStore is an in-memory Store. Setting fail makes the next Save fail.
type memStore struct {
	mu    sync.Mutex
	data  map[string]Company
	saves int
	fail  bool
}

func (s *memStore) Load(_ context.Context) (map[string]Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, vault.ErrAbsent
	}
	return s.data, nil
}

func (s *memStore) Save(_ context.Context, companies map[string]Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		s.fail = false
		return errDiskFull
	}
	s.data = companies
	s.saves++
	return nil
}

// testRegistry opens a Registry with a fixed clock and sequential ids.
func testRegistry(t *testing.T) (*Registry, *memStore) {
	t.Helper()
	store := &memStore{}
	r, err := Open(context.Background(), store)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var tick int
	r.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	var seq int
	r.newID = func() string {
		seq++
		return fmt.Sprintf("id-%03d", seq)
	}
	return r, store
}

// acme creates "Acme" owned by alice@x.com with the given extra members.
func acme(t *testing.T, r *Registry, members map[string][]string) {
	t.Helper()
	ctx := context.Background()
	if _, err := r.Create(ctx, "Acme", "alice@x.com"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	for email, privs := range members {
		if _, err := r.AddMember(ctx, "Acme", "alice@x.com", email, privs); err != nil {
			t.Fatalf("AddMember(%s) error = %v", email, err)
		}
	}
}
