// Package session owns the authentication state of the client: the token,
// the minimal identity persisted with it and the full user profile.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/logger"
	"go.uber.org/zap"
)

// ErrSuperseded is returned by Login, Init and RefreshProfile when a logout
// or a newer login happened while the profile was being fetched.
var ErrSuperseded = errors.New("session: superseded by a newer login or logout")

// ProfileFetcher loads the full profile for the session owner.
type ProfileFetcher interface {
	GetUserProfile(ctx context.Context, id int64, token string) (*domain.UserProfile, error)
}

// Navigator moves the user to the login entry point after logout.
type Navigator interface {
	ToLogin()
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func()

func (f NavigatorFunc) ToLogin() { f() }

// State is a snapshot delivered to subscribers.
type State struct {
	Token         string
	Identity      domain.Identity
	Profile       *domain.UserProfile
	Authenticated bool
	Initialized   bool
}

// Store is the single owner of session state. State changes happen under
// mu; storage writes and profile fetches run outside it. Writes are ordered
// by persistMu and skipped once a newer login or logout took over, so the
// last writer always matches the in-memory state.
type Store struct {
	storage Storage
	fetcher ProfileFetcher
	nav     Navigator
	log     *logger.Logger

	persistMu sync.Mutex

	mu          sync.Mutex
	token       string
	identity    domain.Identity
	profile     *domain.UserProfile
	initialized bool
	gen         uint64
	subs        map[int]func(State)
	nextSub     int
}

// NewStore creates a store. nav may be nil.
func NewStore(storage Storage, fetcher ProfileFetcher, nav Navigator, log *logger.Logger) *Store {
	return &Store{
		storage: storage,
		fetcher: fetcher,
		nav:     nav,
		log:     log.Named("session"),
		subs:    make(map[int]func(State)),
	}
}

// Init restores a persisted session and re-fetches its profile before
// marking the store initialized. Any failure behaves as a logout.
func (s *Store) Init(ctx context.Context) error {
	p, err := s.storage.Load(ctx)
	if err != nil {
		s.log.Warn("Failed to load persisted session", zap.Error(err))
		_ = s.Logout(ctx)
		s.markInitialized()
		return fmt.Errorf("restore session: %w", err)
	}
	if p == nil || p.Token == "" {
		s.markInitialized()
		return nil
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.token = p.Token
	s.identity = p.Identity
	s.profile = nil
	s.mu.Unlock()

	err = s.loadProfile(ctx, gen)
	if err != nil && !errors.Is(err, ErrSuperseded) {
		_ = s.Logout(ctx)
	}
	s.markInitialized()
	return err
}

// Login stores the token and identity, persists them and fetches the
// profile. A failed fetch logs the user out.
func (s *Store) Login(ctx context.Context, auth domain.AuthResult) error {
	identity := domain.Identity{UserID: auth.UserID, Email: auth.Email}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.token = auth.Token
	s.identity = identity
	s.profile = nil
	s.mu.Unlock()

	current, err := s.persist(gen, func() error {
		return s.storage.Save(ctx, Persisted{Token: auth.Token, Identity: identity})
	})
	if !current {
		s.log.Debug("Login superseded before it was persisted", zap.Int64("user_id", identity.UserID))
		return ErrSuperseded
	}
	if err != nil {
		s.log.Error("Failed to persist session", zap.Error(err))
		_ = s.Logout(ctx)
		return fmt.Errorf("persist session: %w", err)
	}
	s.notify()

	err = s.loadProfile(ctx, gen)
	if err != nil && !errors.Is(err, ErrSuperseded) {
		s.log.Warn("Profile fetch failed, logging out", zap.Int64("user_id", identity.UserID), zap.Error(err))
		_ = s.Logout(ctx)
	}
	return err
}

// Logout clears the token, the profile and durable storage, then navigates
// to the login entry point.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.token = ""
	s.identity = domain.Identity{}
	s.profile = nil
	s.mu.Unlock()

	_, err := s.persist(gen, func() error { return s.storage.Clear(ctx) })
	if err != nil {
		s.log.Error("Failed to clear persisted session", zap.Error(err))
	}
	s.notify()
	if s.nav != nil {
		s.nav.ToLogin()
	}
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// RefreshProfile re-fetches the profile of the current session. An
// unauthorized response logs the user out.
func (s *Store) RefreshProfile(ctx context.Context) error {
	s.mu.Lock()
	gen := s.gen
	hasToken := s.token != ""
	s.mu.Unlock()
	if !hasToken {
		return domain.ErrUnauthorized
	}

	err := s.loadProfile(ctx, gen)
	if errors.Is(err, domain.ErrUnauthorized) {
		_ = s.Logout(ctx)
	}
	return err
}

// persist runs write if gen is still the latest session generation. It
// reports false when a newer login or logout made the write obsolete.
func (s *Store) persist(gen uint64, write func() error) (bool, error) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	current := gen == s.gen
	s.mu.Unlock()
	if !current {
		return false, nil
	}
	return true, write()
}

func (s *Store) loadProfile(ctx context.Context, gen uint64) error {
	s.mu.Lock()
	id, token := s.identity.UserID, s.token
	s.mu.Unlock()

	profile, err := s.fetcher.GetUserProfile(ctx, id, token)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.log.Debug("Discarding profile of a superseded session", zap.Int64("user_id", id))
		return ErrSuperseded
	}
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("fetch profile: %w", err)
	}
	s.profile = profile
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *Store) markInitialized() {
	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()
	s.notify()
}

// IsAuthenticated is true only when both the token and the profile are present.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != "" && s.profile != nil
}

func (s *Store) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Store) Identity() domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Profile returns a copy of the loaded profile, or nil.
func (s *Store) Profile() *domain.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	cp := *s.profile
	return &cp
}

// Subscribe registers fn for state changes and returns a function removing it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) snapshot() State {
	st := State{
		Token:         s.token,
		Identity:      s.identity,
		Authenticated: s.token != "" && s.profile != nil,
		Initialized:   s.initialized,
	}
	if s.profile != nil {
		cp := *s.profile
		st.Profile = &cp
	}
	return st
}

func (s *Store) notify() {
	s.mu.Lock()
	st := s.snapshot()
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
}
