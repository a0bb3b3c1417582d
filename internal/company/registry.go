package company

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/fleetauth-core/internal/fault"
	"github.com/nerrad567/fleetauth-core/internal/infrastructure/vault"
	"github.com/nerrad567/fleetauth-core/internal/privilege"
	"github.com/nerrad567/fleetauth-core/internal/user"
)

// Store persists the whole company snapshot. vault.File satisfies it.
// Load must return vault.ErrAbsent when nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) (map[string]Company, error)
	Save(ctx context.Context, companies map[string]Company) error
}

// Logger defines the logging interface used by the Registry.
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

// Registry owns the in-memory company snapshot and its persistence port.
//
// All public methods are thread-safe. Returned records are copies.
type Registry struct {
	store     Store
	companies map[string]*Company
	mu        sync.RWMutex
	logger    Logger
	now       func() time.Time
	newID     func() string
}

// Open loads the snapshot from store. An absent store starts empty.
func Open(ctx context.Context, store Store) (*Registry, error) {
	snapshot, err := store.Load(ctx)
	if err != nil && !errors.Is(err, vault.ErrAbsent) {
		return nil, fmt.Errorf("%w: loading companies: %w", fault.ErrStorage, err)
	}

	r := &Registry{
		store:     store,
		companies: make(map[string]*Company, len(snapshot)),
		logger:    noopLogger{},
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	for name, c := range snapshot {
		if c.Name == "" {
			c.Name = name
		}
		if c.Members == nil {
			c.Members = make(map[string]Member)
		}
		r.companies[name] = c.clone()
	}
	return r, nil
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Create registers a company with ownerEmail as its sole member holding
// {owner}. Fails with ErrCompanyExists if the name is taken.
func (r *Registry) Create(ctx context.Context, name, ownerEmail string) (Company, error) {
	name = strings.TrimSpace(name)
	ownerEmail = user.NormalizeEmail(ownerEmail)
	if err := ValidateName(name); err != nil {
		return Company{}, err
	}
	if err := user.ValidateEmail(ownerEmail); err != nil {
		return Company{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.companies[name]; exists {
		return Company{}, fmt.Errorf("%w: %q", ErrCompanyExists, name)
	}
	if other := r.companyOf(ownerEmail); other != "" {
		return Company{}, fmt.Errorf("%w: %s is a member of %q", ErrMemberOfOtherCompany, ownerEmail, other)
	}

	now := r.now()
	c := &Company{
		Name:       name,
		UUID:       r.newID(),
		OwnerEmail: ownerEmail,
		Members: map[string]Member{
			ownerEmail: {
				Privileges: []string{string(privilege.Owner)},
				AddedBy:    ownerEmail,
				AddedAt:    now,
			},
		},
		Locations:       []Location{},
		FleetCategories: []FleetCategory{},
		CreatedAt:       now,
	}

	r.companies[name] = c
	if err := r.persist(ctx); err != nil {
		delete(r.companies, name)
		return Company{}, err
	}

	r.logger.Info("company created", "company", name, "owner", ownerEmail)
	return *c.clone(), nil
}

// Delete removes a company without an authorization check. It exists to
// undo a registration whose later steps failed.
func (r *Registry) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.companies[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrCompanyNotFound, name)
	}

	delete(r.companies, name)
	if err := r.persist(ctx); err != nil {
		r.companies[name] = prev
		return err
	}

	r.logger.Warn("company deleted", "company", name)
	return nil
}

// Get returns a copy of the named company.
func (r *Registry) Get(name string) (Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.companies[name]
	if !ok {
		return Company{}, fmt.Errorf("%w: %q", ErrCompanyNotFound, name)
	}
	return *c.clone(), nil
}

// Exists reports whether name is registered.
func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.companies[name]
	return ok
}

// Count returns the number of registered companies.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.companies)
}

// Names returns all company names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.companies))
	for name := range r.companies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PrivilegesOf returns email's privileges in the named company. A
// non-member gets the default {member} set.
func (r *Registry) PrivilegesOf(name, email string) (privilege.Set, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.companies[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrCompanyNotFound, name)
	}
	return c.privilegesOf(user.NormalizeEmail(email)), nil
}

// IsMember reports whether email is a member of the named company.
func (r *Registry) IsMember(name, email string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.companies[name]
	if !ok {
		return false
	}
	_, ok = c.Members[user.NormalizeEmail(email)]
	return ok
}

// Members returns the member list ordered by join time, then email.
func (r *Registry) Members(name string) ([]MemberEntry, error) {
	r.mu.RLock()
	c, ok := r.companies[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCompanyNotFound, name)
	}

	out := make([]MemberEntry, 0, len(c.Members))
	for email, m := range c.clone().Members {
		out = append(out, MemberEntry{Email: email, Member: m})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AddedAt.Equal(out[j].AddedAt) {
			return out[i].AddedAt.Before(out[j].AddedAt)
		}
		return out[i].Email < out[j].Email
	})
	return out, nil
}

// check is a privilege predicate evaluated before a mutation.
type check func(privilege.Set) bool

// mutate runs the shared authorization and copy-on-write pipeline. apply
// receives a private copy of the company and may fail without side effects.
func (r *Registry) mutate(ctx context.Context, name, actor, op string, allowed check,
	apply func(c *Company, actor string, now time.Time) error,
) (*Company, error) {
	actor = user.NormalizeEmail(actor)

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.companies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCompanyNotFound, name)
	}

	if !allowed(current.privilegesOf(actor)) {
		r.logger.Warn("authorization denied", "company", name, "actor", actor, "operation", op)
		return nil, fmt.Errorf("%w: %s may not %s", ErrForbidden, actor, op)
	}

	next := current.clone()
	if err := apply(next, actor, r.now()); err != nil {
		return nil, err
	}

	r.companies[name] = next
	if err := r.persist(ctx); err != nil {
		r.companies[name] = current
		return nil, err
	}

	r.logger.Info("company updated", "company", name, "actor", actor, "operation", op)
	return next, nil
}

// persist writes the whole snapshot. Caller holds r.mu.
func (r *Registry) persist(ctx context.Context) error {
	snapshot := make(map[string]Company, len(r.companies))
	for name, c := range r.companies {
		snapshot[name] = *c.clone()
	}
	if err := r.store.Save(ctx, snapshot); err != nil {
		r.logger.Error("persisting companies failed", "error", err)
		return fmt.Errorf("%w: saving companies: %w", fault.ErrStorage, err)
	}
	return nil
}

// companyOf returns the company email belongs to, or "". Caller holds r.mu.
func (r *Registry) companyOf(email string) string {
	for name, c := range r.companies {
		if _, ok := c.Members[email]; ok {
			return name
		}
	}
	return ""
}
