// Package session holds the authenticated identity for the process. There
// is exactly one Store per process; it is built at startup and passed to
// everything that needs the current user or token.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/seenimoa/bonosportal/internal/apierr"
	"github.com/seenimoa/bonosportal/internal/ports"
	"github.com/seenimoa/bonosportal/internal/storage"
	"github.com/seenimoa/bonosportal/pkg/models"
)

// Reason says why the session changed.
type Reason string

const (
	ReasonRestore Reason = "restore"
	ReasonSignIn  Reason = "sign_in"
	ReasonProfile Reason = "profile"
	ReasonSignUp  Reason = "sign_up"
	ReasonLogout  Reason = "logout"
)

// Event is a session change. Identity is nil when the session is anonymous
// or holds only a token.
type Event struct {
	Identity *models.Identity
	Reason   Reason
}

// Warning is a recoverable problem during sign-in. The user is signed in,
// but the profile could not be fetched, so roles may be missing.
type Warning struct {
	Err error
}

func (w *Warning) Error() string {
	return "signed in without profile: " + w.Err.Error()
}

func (w *Warning) Unwrap() error { return w.Err }

// SignInResult is the outcome of a successful sign-in.
type SignInResult struct {
	Identity *models.Identity
	Warning  *Warning // nil when the profile merge succeeded
}

// Store is the session store. Reads are safe from any goroutine; all
// writes go through set and clear.
type Store struct {
	auth ports.AuthRepository
	kv   storage.KV
	log  zerolog.Logger

	mu      sync.RWMutex
	current *models.Identity
	token   string

	subsMu sync.Mutex
	subs   map[int]chan Event
	nextID int
}

// New builds the store and rehydrates it from kv.
func New(auth ports.AuthRepository, kv storage.KV, log zerolog.Logger) *Store {
	s := &Store{
		auth: auth,
		kv:   kv,
		log:  log.With().Str("component", "session").Logger(),
		subs: make(map[int]chan Event),
	}
	s.Restore()
	return s
}

// --- Sign-in / sign-up ---

// SignIn authenticates in two phases. The phase-1 token is stored before
// the profile is requested so the profile call itself is authenticated.
// A failed profile fetch doesn't fail the sign-in: the phase-1 identity is
// returned together with a Warning.
func (s *Store) SignIn(ctx context.Context, creds models.Credentials) (SignInResult, error) {
	s.log.Info().Str("username", creds.Username).Msg("sign-in attempt")

	partial, err := s.auth.SignIn(ctx, creds)
	if err != nil {
		s.log.Warn().Str("username", creds.Username).Err(err).Msg("sign-in failed")
		return SignInResult{}, err
	}
	if partial.Username == "" {
		partial.Username = creds.Username
	}
	s.set(partial, ReasonSignIn, true)

	profile, err := s.auth.Profile(ctx)
	if err != nil {
		s.log.Warn().
			Str("username", partial.Username).
			Str("class", string(apierr.ClassOf(err))).
			Err(err).
			Msg("profile fetch failed, continuing without roles")
		return SignInResult{Identity: partial.Clone(), Warning: &Warning{Err: err}}, nil
	}

	merged := merge(partial, profile)
	if !s.setIfToken(merged, partial.Token, ReasonProfile) {
		// Logged out or signed in again while the profile was in flight.
		return SignInResult{Identity: partial.Clone()}, nil
	}
	s.log.Info().
		Str("username", merged.Username).
		Strs("roles", merged.Roles).
		Msg("signed in")
	return SignInResult{Identity: merged.Clone()}, nil
}

// merge takes id, username and roles from the profile and keeps the
// phase-1 token.
func merge(partial, profile *models.Identity) *models.Identity {
	merged := &models.Identity{
		ID:       profile.ID,
		Username: profile.Username,
		Token:    partial.Token,
		Roles:    append(models.RoleSet{}, profile.Roles...),
	}
	if merged.ID == 0 {
		merged.ID = partial.ID
	}
	if merged.Username == "" {
		merged.Username = partial.Username
	}
	return merged
}

// SignUp registers a user. The session is persisted only when the backend
// returns a token.
func (s *Store) SignUp(ctx context.Context, data models.SignUpData) (*models.Identity, error) {
	s.log.Info().Str("username", data.Username).Strs("roles", data.Roles).Msg("sign-up attempt")

	id, err := s.auth.SignUp(ctx, data)
	if err != nil {
		s.log.Warn().Str("username", data.Username).Err(err).Msg("sign-up failed")
		return nil, err
	}
	s.set(id, ReasonSignUp, id.Token != "")
	return id.Clone(), nil
}

// Logout clears memory and durable storage and notifies subscribers before
// it returns.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := ""
	if s.current != nil {
		username = s.current.Username
	}
	s.current = nil
	s.token = ""
	if err := s.kv.Delete(storage.KeyToken, storage.KeyUser); err != nil {
		s.log.Error().Err(err).Msg("failed to clear stored session")
	}
	s.publish(Event{Reason: ReasonLogout})
	s.log.Info().Str("username", username).Msg("logged out")
}

// --- Reads ---

// Current returns a copy of the identity, or nil when anonymous.
func (s *Store) Current() *models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Token returns the bearer token, or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsAuthenticated reports whether a token is held.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// HasRole reports whether the current identity has the role. name may be
// given in any form CanonicalRole accepts.
func (s *Store) HasRole(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.HasRole(name)
}

// HasRoleRef is HasRole for a structured role reference.
func (s *Store) HasRoleRef(ref models.RoleRef) bool {
	return s.HasRole(ref.Canonical())
}

func (s *Store) IsEmisor() bool   { return s.HasRole(models.RoleEmisor) }
func (s *Store) IsInversor() bool { return s.HasRole(models.RoleInversor) }

// PrimaryRole returns the first role of the identity, or "".
func (s *Store) PrimaryRole() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil || len(s.current.Roles) == 0 {
		return ""
	}
	return s.current.Roles[0]
}

// --- Rehydration ---

// Restore loads the stored session. A stored user that can't be parsed is
// logged, purged, and leaves the store anonymous; it is never returned as
// an error.
func (s *Store) Restore() {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, _, err := s.kv.Get(storage.KeyToken)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to read stored token")
		return
	}
	raw, ok, err := s.kv.Get(storage.KeyUser)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to read stored user")
		return
	}

	var id *models.Identity
	if ok {
		id, err = decodeIdentity(raw)
		if err != nil {
			s.log.Error().
				Str("class", string(apierr.DataShape)).
				Err(err).
				Msg("stored session is corrupt, purging")
			if derr := s.kv.Delete(storage.KeyUser, storage.KeyToken); derr != nil {
				s.log.Error().Err(derr).Msg("failed to purge stored session")
			}
			s.current, s.token = nil, ""
			s.publish(Event{Reason: ReasonRestore})
			return
		}
		if token == "" {
			token = id.Token
		}
		id.Token = token
	}

	s.current, s.token = id, token
	s.publish(Event{Identity: id.Clone(), Reason: ReasonRestore})
	if id != nil {
		s.log.Info().Str("username", id.Username).Strs("roles", id.Roles).Msg("session restored")
	} else if token != "" {
		s.log.Info().Msg("token restored without user")
	}
}

var errEmptyIdentity = errors.New("no username")

// decodeIdentity parses a stored user. A null literal or a user without a
// username is as corrupt as unparsable JSON.
func decodeIdentity(raw string) (*models.Identity, error) {
	var id *models.Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		return nil, &apierr.DataShapeError{What: "stored user", Err: err}
	}
	if id == nil || id.Username == "" {
		return nil, &apierr.DataShapeError{What: "stored user", Err: errEmptyIdentity}
	}
	return id, nil
}

// --- Writes ---

// set replaces the identity, optionally persists it, and publishes.
func (s *Store) set(id *models.Identity, reason Reason, persist bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(id, reason, persist)
}

// setIfToken applies id only if the session still holds token.
func (s *Store) setIfToken(id *models.Identity, token string, reason Reason) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != token {
		return false
	}
	s.apply(id, reason, true)
	return true
}

// apply must be called with mu held.
func (s *Store) apply(id *models.Identity, reason Reason, persist bool) {
	s.current = id.Clone()
	s.token = id.Token
	if persist {
		if err := s.persist(id); err != nil {
			s.log.Error().Err(err).Msg("failed to persist session")
		}
	}
	s.publish(Event{Identity: id.Clone(), Reason: reason})
}

func (s *Store) persist(id *models.Identity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	if id.Token != "" {
		if err := s.kv.Set(storage.KeyToken, id.Token); err != nil {
			return err
		}
	}
	return s.kv.Set(storage.KeyUser, string(data))
}

// --- Subscriptions ---

// Subscribe returns a channel of session changes and a cancel function.
// The channel immediately holds the current value. It keeps only the
// latest event, so a slow reader never blocks a writer.
func (s *Store) Subscribe() (<-chan Event, func()) {
	// Holding mu keeps writers out between the snapshot and registration.
	s.mu.RLock()
	ch := make(chan Event, 1)
	ch <- Event{Identity: s.current.Clone(), Reason: ReasonRestore}
	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subsMu.Unlock()
	s.mu.RUnlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
			close(ch)
		})
	}
}

func (s *Store) publish(ev Event) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			// Drop the stale event and keep the newest.
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}
