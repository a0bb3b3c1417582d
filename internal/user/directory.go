package user

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/fleetauth-core/internal/fault"
	"github.com/nerrad567/fleetauth-core/internal/infrastructure/vault"
)

// Store persists the whole user snapshot. vault.File satisfies it.
// Load must return vault.ErrAbsent when nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) (map[string]User, error)
	Save(ctx context.Context, users map[string]User) error
}

// Logger defines the logging interface used by the Directory.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Directory holds every user in memory and writes the full snapshot back
// to its Store after each mutation. A failed write restores the previous
// in-memory state before the error is returned.
//
// All public methods are thread-safe. Returned records are copies.
type Directory struct {
	store  Store
	users  map[string]User
	mu     sync.RWMutex
	logger Logger
	now    func() time.Time
}

// Open loads the snapshot from store. An absent store starts empty; any
// other load failure is returned as a storage error.
func Open(ctx context.Context, store Store) (*Directory, error) {
	users, err := store.Load(ctx)
	if err != nil && !errors.Is(err, vault.ErrAbsent) {
		return nil, fmt.Errorf("%w: loading users: %w", fault.ErrStorage, err)
	}

	d := &Directory{
		store:  store,
		users:  make(map[string]User, len(users)),
		logger: noopLogger{},
		now:    func() time.Time { return time.Now().UTC() },
	}
	for email, u := range users {
		key := NormalizeEmail(email)
		u.Email = key
		d.users[key] = u
	}
	return d, nil
}

// SetLogger sets the logger for the directory.
func (d *Directory) SetLogger(logger Logger) {
	d.logger = logger
}

// Get returns the user with the given email.
func (d *Directory) Get(email string) (User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[NormalizeEmail(email)]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u.clone(), nil
}

// Exists reports whether a user with the given email is registered.
func (d *Directory) Exists(email string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.users[NormalizeEmail(email)]
	return ok
}

// Count returns the number of registered users.
func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.users)
}

// List returns all users ordered by email.
func (d *Directory) List() []User {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]User, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, u.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}

// Create registers a new unverified user. Email is normalised and
// validated; Verified and VerifiedAt on the input are ignored.
func (d *Directory) Create(ctx context.Context, u User) (User, error) {
	u.Email = NormalizeEmail(u.Email)
	u.FullName = strings.TrimSpace(u.FullName)
	if err := ValidateEmail(u.Email); err != nil {
		return User{}, err
	}
	if err := ValidateFullName(u.FullName); err != nil {
		return User{}, err
	}
	if u.PasswordHash == "" {
		return User{}, ErrMissingPassword
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.users[u.Email]; exists {
		return User{}, fmt.Errorf("%w: %s", ErrUserExists, u.Email)
	}

	u.Verified = false
	u.VerifiedAt = nil
	u.CreatedAt = d.now()

	if err := d.commit(ctx, u.Email, &u); err != nil {
		return User{}, err
	}

	d.logger.Info("user created", "email", u.Email, "company", u.CompanyName)
	return u.clone(), nil
}

// MarkVerified performs the one-way unverified to verified transition.
func (d *Directory) MarkVerified(ctx context.Context, email string) (User, error) {
	email = NormalizeEmail(email)

	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.users[email]
	if !ok {
		return User{}, ErrUserNotFound
	}
	if u.Verified {
		return User{}, ErrAlreadyVerified
	}

	now := d.now()
	u.Verified = true
	u.VerifiedAt = &now

	if err := d.commit(ctx, email, &u); err != nil {
		return User{}, err
	}

	d.logger.Info("user verified", "email", email)
	return u.clone(), nil
}

// Delete removes a user. Used to undo a registration whose company step
// failed.
func (d *Directory) Delete(ctx context.Context, email string) error {
	email = NormalizeEmail(email)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.users[email]; !ok {
		return ErrUserNotFound
	}
	if err := d.commit(ctx, email, nil); err != nil {
		return err
	}

	d.logger.Info("user deleted", "email", email)
	return nil
}

// commit applies a single-key change (nil deletes), persists the snapshot
// and restores the previous entry if the write fails. Caller holds d.mu.
func (d *Directory) commit(ctx context.Context, email string, next *User) error {
	prev, hadPrev := d.users[email]

	if next == nil {
		delete(d.users, email)
	} else {
		d.users[email] = *next
	}

	if err := d.store.Save(ctx, d.snapshot()); err != nil {
		if hadPrev {
			d.users[email] = prev
		} else {
			delete(d.users, email)
		}
		d.logger.Error("persisting users failed", "email", email, "error", err)
		return fmt.Errorf("%w: saving users: %w", fault.ErrStorage, err)
	}
	return nil
}

// snapshot copies the map for the store. Caller holds d.mu.
func (d *Directory) snapshot() map[string]User {
	out := make(map[string]User, len(d.users))
	for k, u := range d.users {
		out[k] = u.clone()
	}
	return out
}
