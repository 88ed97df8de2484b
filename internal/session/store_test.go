package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/bonosportal/internal/apierr"
	"github.com/seenimoa/bonosportal/internal/storage"
	"github.com/seenimoa/bonosportal/pkg/models"
)

type fakeAuth struct {
	signIn  func(models.Credentials) (*models.Identity, error)
	signUp  func(models.SignUpData) (*models.Identity, error)
	profile func() (*models.Identity, error)
}

func (f *fakeAuth) SignIn(_ context.Context, c models.Credentials) (*models.Identity, error) {
	return f.signIn(c)
}

func (f *fakeAuth) SignUp(_ context.Context, d models.SignUpData) (*models.Identity, error) {
	return f.signUp(d)
}

func (f *fakeAuth) Profile(context.Context) (*models.Identity, error) {
	return f.profile()
}

func newStore(t *testing.T, auth *fakeAuth, kv storage.KV) *Store {
	t.Helper()
	if kv == nil {
		kv = storage.NewMemory()
	}
	return New(auth, kv, zerolog.Nop())
}

func aliceAuth() *fakeAuth {
	return &fakeAuth{
		signIn: func(c models.Credentials) (*models.Identity, error) {
			return &models.Identity{ID: 1, Username: c.Username, Token: "abc", Roles: models.RoleSet{}}, nil
		},
		profile: func() (*models.Identity, error) {
			return &models.Identity{Roles: models.RoleSetOf(models.RoleInversor)}, nil
		},
	}
}

// ── Sign-in ──

func TestSignInMergesProfile(t *testing.T) {
	auth := aliceAuth()
	kv := storage.NewMemory()
	s := newStore(t, auth, kv)

	var tokenDuringProfile string
	inner := auth.profile
	auth.profile = func() (*models.Identity, error) {
		tokenDuringProfile = s.Token()
		stored, _, _ := kv.Get(storage.KeyToken)
		assert.Equal(t, "abc", stored, "token persisted before phase 2")
		return inner()
	}

	res, err := s.SignIn(context.Background(), models.Credentials{Username: "alice", Password: "x"})
	require.NoError(t, err)
	assert.Nil(t, res.Warning)

	assert.Equal(t, "abc", tokenDuringProfile)
	assert.Equal(t, "alice", res.Identity.Username)
	assert.Equal(t, "abc", res.Identity.Token)
	assert.Equal(t, models.RoleSetOf(models.RoleInversor), res.Identity.Roles)

	assert.True(t, s.IsAuthenticated())
	assert.True(t, s.IsInversor())
	assert.False(t, s.IsEmisor())
	assert.Equal(t, models.RoleInversor, s.PrimaryRole())
	assert.Equal(t, res.Identity, s.Current())
}

func TestSignInProfileFailureKeepsPhaseOne(t *testing.T) {
	auth := aliceAuth()
	auth.profile = func() (*models.Identity, error) {
		return nil, &apierr.Error{Class: apierr.Server, Status: 500}
	}
	s := newStore(t, auth, nil)

	res, err := s.SignIn(context.Background(), models.Credentials{Username: "alice", Password: "x"})
	require.NoError(t, err)
	require.NotNil(t, res.Warning)
	assert.ErrorIs(t, res.Warning, apierr.ErrServer)

	want := &models.Identity{ID: 1, Username: "alice", Token: "abc", Roles: models.RoleSet{}}
	assert.Equal(t, want, res.Identity)
	assert.Equal(t, want, s.Current())
	assert.Equal(t, "abc", s.Token())
	assert.False(t, s.HasRole(models.RoleInversor))
}

func TestSignInFailureStaysAnonymous(t *testing.T) {
	auth := &fakeAuth{signIn: func(models.Credentials) (*models.Identity, error) {
		return nil, &apierr.Error{Class: apierr.Authentication, Status: 401}
	}}
	s := newStore(t, auth, nil)

	_, err := s.SignIn(context.Background(), models.Credentials{Username: "bob", Password: "bad"})
	assert.ErrorIs(t, err, apierr.ErrAuthentication)
	assert.Nil(t, s.Current())
	assert.False(t, s.IsAuthenticated())
}

func TestSignInLogoutDuringProfileWins(t *testing.T) {
	auth := aliceAuth()
	s := newStore(t, auth, nil)
	inner := auth.profile
	auth.profile = func() (*models.Identity, error) {
		s.Logout()
		return inner()
	}

	_, err := s.SignIn(context.Background(), models.Credentials{Username: "alice", Password: "x"})
	require.NoError(t, err)
	assert.Nil(t, s.Current())
	assert.False(t, s.IsAuthenticated())
}

// ── Sign-up ──

func TestSignUpPersistsOnlyWithToken(t *testing.T) {
	kv := storage.NewMemory()
	auth := &fakeAuth{signUp: func(d models.SignUpData) (*models.Identity, error) {
		return &models.Identity{ID: 5, Username: d.Username, Roles: models.RoleSetOf(d.Roles...)}, nil
	}}
	s := newStore(t, auth, kv)

	id, err := s.SignUp(context.Background(), models.SignUpData{Username: "carla", Password: "p", Roles: []string{models.RoleEmisor}})
	require.NoError(t, err)
	assert.Equal(t, "carla", id.Username)
	assert.True(t, s.IsEmisor())

	_, ok, _ := kv.Get(storage.KeyUser)
	assert.False(t, ok)
}

// ── Roles ──

func TestHasRoleAcceptsBothForms(t *testing.T) {
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(storage.KeyToken, "t"))
	require.NoError(t, kv.Set(storage.KeyUser,
		`{"id":3,"username":"dana","roles":["ROLE_EMISOR",{"id":2,"name":" ROLE_INVERSOR "}]}`))
	s := newStore(t, &fakeAuth{}, kv)

	assert.True(t, s.HasRole("ROLE_EMISOR"))
	assert.True(t, s.HasRole("ROLE_INVERSOR"))
	assert.True(t, s.HasRoleRef(models.RoleRef{ID: 2, Name: "ROLE_INVERSOR"}))
	assert.True(t, s.HasRoleRef(models.RoleRef{Name: " ROLE_EMISOR"}))
	assert.False(t, s.HasRole("ROLE_ADMIN"))
	assert.False(t, s.HasRole(""))
}

// ── Rehydration ──

func TestIdentityRoundTrip(t *testing.T) {
	kv := storage.NewMemory()
	s := newStore(t, aliceAuth(), kv)
	res, err := s.SignIn(context.Background(), models.Credentials{Username: "alice", Password: "x"})
	require.NoError(t, err)

	reloaded := newStore(t, &fakeAuth{}, kv)
	assert.Equal(t, res.Identity, reloaded.Current())
	assert.Equal(t, "abc", reloaded.Token())
}

func TestCorruptStoredUserIsPurged(t *testing.T) {
	tests := map[string]string{
		"truncated json": `{"username": "alice", "roles": [`,
		"null literal":   `null`,
		"no username":    `{"id": 3, "roles": ["ROLE_INVERSOR"]}`,
	}
	for name, stored := range tests {
		t.Run(name, func(t *testing.T) {
			kv := storage.NewMemory()
			require.NoError(t, kv.Set(storage.KeyToken, "abc"))
			require.NoError(t, kv.Set(storage.KeyUser, stored))

			var s *Store
			require.NotPanics(t, func() { s = newStore(t, &fakeAuth{}, kv) })
			assert.Nil(t, s.Current())
			assert.False(t, s.IsAuthenticated())

			_, ok, _ := kv.Get(storage.KeyUser)
			assert.False(t, ok)
			_, ok, _ = kv.Get(storage.KeyToken)
			assert.False(t, ok)
		})
	}
}

func TestTokenOnlyRestore(t *testing.T) {
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(storage.KeyToken, "abc"))
	s := newStore(t, &fakeAuth{}, kv)

	assert.True(t, s.IsAuthenticated())
	assert.Nil(t, s.Current())
	assert.Equal(t, "", s.PrimaryRole())
}

// ── Logout / subscriptions ──

func TestLogoutClearsEverythingAndNotifies(t *testing.T) {
	kv := storage.NewMemory()
	s := newStore(t, aliceAuth(), kv)
	_, err := s.SignIn(context.Background(), models.Credentials{Username: "alice", Password: "x"})
	require.NoError(t, err)

	events, cancel := s.Subscribe()
	defer cancel()
	first := <-events
	require.NotNil(t, first.Identity)
	assert.Equal(t, "alice", first.Identity.Username)

	s.Logout()

	select {
	case ev := <-events:
		assert.Equal(t, ReasonLogout, ev.Reason)
		assert.Nil(t, ev.Identity)
	default:
		t.Fatal("logout event not delivered before Logout returned")
	}
	assert.Nil(t, s.Current())
	assert.Equal(t, "", s.Token())
	_, ok, _ := kv.Get(storage.KeyToken)
	assert.False(t, ok)
	_, ok, _ = kv.Get(storage.KeyUser)
	assert.False(t, ok)
}

func TestSubscribeKeepsLatest(t *testing.T) {
	s := newStore(t, aliceAuth(), nil)
	events, cancel := s.Subscribe()

	// Nobody reads: sign-in publishes twice, logout once.
	_, err := s.SignIn(context.Background(), models.Credentials{Username: "alice", Password: "x"})
	require.NoError(t, err)
	s.Logout()

	ev := <-events
	assert.Equal(t, ReasonLogout, ev.Reason)

	cancel()
	cancel()
	_, open := <-events
	assert.False(t, open)
}

// ── Token expiry ──

func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": exp.Unix(),
	}).SignedString([]byte("not-the-server-key"))
	require.NoError(t, err)

	got, err := TokenExpiry(tok)
	require.NoError(t, err)
	assert.True(t, exp.Equal(got))

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "alice"}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, err = TokenExpiry(noExp)
	assert.True(t, errors.Is(err, ErrNoExpiry))

	_, err = TokenExpiry("abc")
	assert.Error(t, err)
}
