package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-client/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-client/internal/domain/user"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/storage"
)

// StorageKey is where the session is persisted.
const StorageKey = "auth-storage.json"

// Snapshot is the observable session and also its persisted form.
// Authenticated is true iff both User and Token are present.
type Snapshot struct {
	User          *user.User `json:"user"`
	Token         string     `json:"token,omitempty"`
	Authenticated bool       `json:"authenticated"`
}

// LogoutReason tells subscribers why the session ended.
type LogoutReason string

const (
	ReasonUser           LogoutReason = "user"
	ReasonUnauthorized   LogoutReason = "unauthorized"
	ReasonInvalidSession LogoutReason = "invalid_session"
)

// ProfileFunc fetches the current user's profile with the token held by the store.
type ProfileFunc func(ctx context.Context) (user.User, error)

// Store is the single source of truth for who is logged in.
type Store struct {
	mu      sync.RWMutex
	user    *user.User
	token   string
	storage storage.Storage
	now     func() time.Time

	listenersMu sync.Mutex
	listeners   []func(LogoutReason)
}

func NewStore(st storage.Storage) *Store {
	return &Store{
		storage: st,
		now:     time.Now,
	}
}

// Login replaces any prior session and persists the new one.
func (s *Store) Login(ctx context.Context, u user.User, token string) error {
	if token == "" {
		return fmt.Errorf("login: %w", auth.ErrInvalidToken)
	}

	s.mu.Lock()
	s.user = &u
	s.token = token
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.persist(ctx, snap); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	slog.Debug("Session started", "user_id", u.ID, "role", u.Role)
	return nil
}

// Logout clears the session and purges the persisted copy.
func (s *Store) Logout(ctx context.Context) error {
	return s.logout(ctx, ReasonUser)
}

// HandleUnauthorized is the global reaction to an authentication failure from any call.
func (s *Store) HandleUnauthorized() {
	if err := s.logout(context.Background(), ReasonUnauthorized); err != nil {
		slog.Error("Failed to clear session after unauthorized response", "error", err)
	}
}

func (s *Store) logout(ctx context.Context, reason LogoutReason) error {
	s.mu.Lock()
	hadSession := s.user != nil || s.token != ""
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	err := s.storage.Delete(ctx, StorageKey)

	if hadSession {
		slog.Debug("Session ended", "reason", reason)
		s.notify(reason)
	}
	if err != nil {
		return fmt.Errorf("failed to purge session: %w", err)
	}
	return nil
}

// IsManager is false when nobody is logged in.
func (s *Store) IsManager() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.IsManager()
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// User returns a copy of the current user.
func (s *Store) User() (user.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return user.User{}, false
	}
	return *s.user, true
}

// Token implements apiclient.TokenSource.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// UpdateUser merges profile fields into the current user. It is a no-op when logged out.
func (s *Store) UpdateUser(ctx context.Context, patch user.ProfileUpdate) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return nil
	}
	updated := *s.user
	patch.Apply(&updated)
	s.user = &updated
	snap := s.snapshotLocked()
	s.mu.Unlock()

	return s.persist(ctx, snap)
}

// OnLogout subscribes fn to every end of session, whatever the cause.
func (s *Store) OnLogout(fn func(LogoutReason)) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Restore loads the persisted session once at startup and re-validates it with the server.
// Until validation succeeds the token is held but the session is not authenticated.
// Any failure leaves the store exactly as after Logout.
func (s *Store) Restore(ctx context.Context, profile ProfileFunc) error {
	persisted, err := s.load(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		slog.Warn("Discarding unreadable session", "error", err)
		_ = s.logout(ctx, ReasonInvalidSession)
		return fmt.Errorf("%w: %v", auth.ErrSessionInvalid, err)
	}

	if !persisted.Authenticated || persisted.User == nil || persisted.Token == "" {
		_ = s.logout(ctx, ReasonInvalidSession)
		return nil
	}

	if jwt.Expired(persisted.Token, s.now()) {
		_ = s.logout(ctx, ReasonInvalidSession)
		return auth.ErrTokenExpired
	}

	s.mu.Lock()
	s.user = nil
	s.token = persisted.Token
	s.mu.Unlock()

	u, err := profile(ctx)
	if err != nil {
		_ = s.logout(ctx, ReasonInvalidSession)
		return fmt.Errorf("%w: %v", auth.ErrSessionInvalid, err)
	}

	return s.Login(ctx, u, persisted.Token)
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{Token: s.token}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	snap.Authenticated = snap.User != nil && snap.Token != ""
	return snap
}

func (s *Store) persist(ctx context.Context, snap Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.storage.Put(ctx, StorageKey, bytes.NewReader(b))
}

func (s *Store) load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	rc, err := s.storage.Get(ctx, StorageKey)
	if err != nil {
		return snap, err
	}
	defer rc.Close()

	if err := json.NewDecoder(rc).Decode(&snap); err != nil {
		return snap, fmt.Errorf("decode session: %w", err)
	}
	return snap, nil
}

func (s *Store) notify(reason LogoutReason) {
	s.listenersMu.Lock()
	listeners := append([]func(LogoutReason){}, s.listeners...)
	s.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(reason)
	}
}
