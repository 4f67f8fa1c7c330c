// Package auth is a mock sign-up/sign-in service. It personalizes the
// dashboard and is not a credential store.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/theirongolddev/tripbudget/internal/kv"
	"github.com/theirongolddev/tripbudget/internal/logging"
	"github.com/theirongolddev/tripbudget/internal/model"
)

// Keys used in the session store.
const (
	SessionKey  = "tripbudget_user"
	RegistryKey = "tripbudget_users"
)

// User-facing failure messages.
const (
	ErrEmailTaken      = "An account with this email already exists."
	ErrNoAccount       = "No account found with this email. Please sign up first."
	ErrBadCredentials  = "Invalid email or password."
	ErrRequestCanceled = "request canceled"
)

// DefaultDelay is the simulated network latency for Signup and Login.
const DefaultDelay = time.Second

// Result is the outcome of Signup or Login.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func fail(msg string) Result { return Result{Error: msg} }

type account struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
}

func (a account) user() model.User {
	return model.User{ID: a.ID, Name: a.Name, Email: a.Email}
}

// Service holds the mock user registry and the signed-in user.
type Service struct {
	mu       sync.RWMutex
	accounts map[string]account // keyed by email
	current  *model.User

	store kv.Store
	delay time.Duration
	cost  int
	newID func() string
	log   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithDelay sets the simulated latency. Zero disables it.
func WithDelay(d time.Duration) Option {
	return func(s *Service) { s.delay = d }
}

// WithHashCost sets the bcrypt cost.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// WithIDGenerator overrides user id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// New returns a Service persisting to store.
func New(store kv.Store, opts ...Option) *Service {
	s := &Service{
		accounts: make(map[string]account),
		store:    store,
		delay:    DefaultDelay,
		cost:     bcrypt.DefaultCost,
		newID:    func() string { return model.NewID("user") },
		log:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore loads the registry and any signed-in user from the store.
func (s *Service) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.store.Get(ctx, RegistryKey)
	if err != nil {
		return fmt.Errorf("loading accounts: %w", err)
	}
	if ok {
		var list []account
		if err := json.Unmarshal(raw, &list); err != nil {
			return fmt.Errorf("decoding accounts: %w", err)
		}
		for _, a := range list {
			s.accounts[normalizeEmail(a.Email)] = a
		}
	}

	raw, ok, err = s.store.Get(ctx, SessionKey)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	if !ok {
		return nil
	}
	var u model.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return fmt.Errorf("decoding session: %w", err)
	}
	s.current = &u
	return nil
}

// Signup registers a new account and signs it in.
func (s *Service) Signup(ctx context.Context, name, email, password string) Result {
	if err := s.wait(ctx); err != nil {
		return fail(ErrRequestCanceled)
	}

	key := normalizeEmail(email)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		s.log.Error("hashing password", "error", err)
		return fail(err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[key]; exists {
		return fail(ErrEmailTaken)
	}

	a := account{
		ID:           s.newID(),
		Name:         strings.TrimSpace(name),
		Email:        strings.TrimSpace(email),
		PasswordHash: string(hash),
	}
	s.accounts[key] = a
	s.persistAccounts(ctx)
	s.signIn(ctx, a.user())
	s.log.Info("user signed up", "user_id", a.ID)
	return Result{Success: true}
}

// Login signs in an existing account.
func (s *Service) Login(ctx context.Context, email, password string) Result {
	if err := s.wait(ctx); err != nil {
		return fail(ErrRequestCanceled)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[normalizeEmail(email)]
	if !ok {
		return fail(ErrNoAccount)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return fail(ErrBadCredentials)
	}

	s.signIn(ctx, a.user())
	s.log.Info("user logged in", "user_id", a.ID)
	return Result{Success: true}
}

// Logout clears the signed-in user.
func (s *Service) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if err := s.store.Delete(ctx, SessionKey); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// CurrentUser returns the signed-in user.
func (s *Service) CurrentUser() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return model.User{}, false
	}
	return *s.current, true
}

// IsAuthenticated reports whether a user is signed in.
func (s *Service) IsAuthenticated() bool {
	_, ok := s.CurrentUser()
	return ok
}

// Lookup finds a registered user by id.
func (s *Service) Lookup(id string) (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.ID == id {
			return a.user(), true
		}
	}
	return model.User{}, false
}

// UserByEmail finds a registered user by email.
func (s *Service) UserByEmail(email string) (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[normalizeEmail(email)]
	if !ok {
		return model.User{}, false
	}
	return a.user(), true
}

func (s *Service) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// signIn must be called with s.mu held.
func (s *Service) signIn(ctx context.Context, u model.User) {
	s.current = &u
	data, err := json.Marshal(u)
	if err == nil {
		err = s.store.Put(ctx, SessionKey, data)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn("persisting session", "error", err)
	}
}

// persistAccounts must be called with s.mu held.
func (s *Service) persistAccounts(ctx context.Context) {
	list := make([]account, 0, len(s.accounts))
	for _, a := range s.accounts {
		list = append(list, a)
	}
	data, err := json.Marshal(list)
	if err == nil {
		err = s.store.Put(ctx, RegistryKey, data)
	}
	if err != nil {
		s.log.Warn("persisting accounts", "error", err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
