package tokens

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-test-secret-test-secret")

func testConfig() Config {
	return Config{Secret: testSecret, Issuer: "geo_forum", Audience: "geo_forum_clients"}
}

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()

	svc, err := New(testConfig(), opts...)
	require.NoError(t, err)
	return svc
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestNew_RequiresConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "empty secret", mutate: func(c *Config) { c.Secret = nil }, wantErr: ErrMissingConfig},
		{name: "empty issuer", mutate: func(c *Config) { c.Issuer = "" }, wantErr: ErrMissingConfig},
		{name: "empty audience", mutate: func(c *Config) { c.Audience = "" }, wantErr: ErrMissingConfig},
		{name: "short secret", mutate: func(c *Config) { c.Secret = []byte("short") }, wantErr: ErrWeakSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig()
			tt.mutate(&cfg)
			svc, err := New(cfg)
			assert.Nil(t, svc)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateAccessToken_RoundTrip(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	tests := []struct {
		name  string
		roles []string
	}{
		{name: "no roles", roles: nil},
		{name: "one role", roles: []string{"ForumUser"}},
		{name: "two roles", roles: []string{"Admin", "ForumUser"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			userID := uuid.NewString()
			token, err := svc.CreateAccessToken("alice", userID, tt.roles)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			claims, err := svc.ParseAccessToken(token)
			require.NoError(t, err)
			assert.Equal(t, userID, claims.Subject)
			assert.Equal(t, "alice", claims.Name)
			assert.ElementsMatch(t, tt.roles, []string(claims.Roles))
			assert.NotEmpty(t, claims.ID)
			require.NotNil(t, claims.ExpiresAt)
			require.NotNil(t, claims.IssuedAt)
			assert.Equal(t, AccessTokenTTL, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
		})
	}
}

func TestCreateAccessToken_UniqueTokenIDs(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	a, err := svc.CreateAccessToken("alice", "id-1", nil)
	require.NoError(t, err)
	b, err := svc.CreateAccessToken("alice", "id-1", nil)
	require.NoError(t, err)

	ca, err := svc.ParseAccessToken(a)
	require.NoError(t, err)
	cb, err := svc.ParseAccessToken(b)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestCreateRefreshToken_RoundTrip(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	userID := uuid.NewString()

	token, err := svc.CreateRefreshToken(userID)
	require.NoError(t, err)

	claims, ok := svc.TryParseRefreshToken(token)
	require.True(t, ok)
	assert.Equal(t, userID, claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, RefreshTokenTTL, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestTryParseRefreshToken_Expired(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestService(t, WithClock(clock.Now))

	token, err := svc.CreateRefreshToken("user-1")
	require.NoError(t, err)

	clock.Advance(RefreshTokenTTL - time.Minute)
	_, ok := svc.TryParseRefreshToken(token)
	require.True(t, ok)

	clock.Advance(2 * time.Minute)
	claims, ok := svc.TryParseRefreshToken(token)
	assert.False(t, ok)
	assert.Nil(t, claims)
}

func TestParseAccessToken_Expired(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestService(t, WithClock(clock.Now))

	token, err := svc.CreateAccessToken("alice", "user-1", []string{"ForumUser"})
	require.NoError(t, err)

	clock.Advance(AccessTokenTTL + time.Second)
	_, err = svc.ParseAccessToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTryParseRefreshToken_OtherKeyRejected(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Secret = []byte("another-secret-another-secret-1234")
	other, err := New(cfg)
	require.NoError(t, err)

	token, err := other.CreateRefreshToken("user-1")
	require.NoError(t, err)

	_, ok := newTestService(t).TryParseRefreshToken(token)
	assert.False(t, ok)
}

func TestTryParseRefreshToken_IssuerAndAudience(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "wrong issuer", mutate: func(c *Config) { c.Issuer = "someone-else" }},
		{name: "wrong audience", mutate: func(c *Config) { c.Audience = "other-clients" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig()
			tt.mutate(&cfg)
			issuer, err := New(cfg)
			require.NoError(t, err)

			token, err := issuer.CreateRefreshToken("user-1")
			require.NoError(t, err)

			_, ok := svc.TryParseRefreshToken(token)
			assert.False(t, ok)
		})
	}
}

func TestTryParseRefreshToken_ArbitraryInput(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-1", "jti": "x", "iss": "geo_forum", "aud": "geo_forum_clients",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	valid, err := svc.CreateRefreshToken("user-1")
	require.NoError(t, err)
	parts := strings.Split(valid, ".")

	inputs := map[string]string{
		"empty":            "",
		"garbage":          "not-a-jwt",
		"three dots":       "a.b.c",
		"binary":           string([]byte{0x00, 0xff, 0xfe, '.', 0x01, '.', 0x02}),
		"alg none":         none,
		"tampered payload": parts[0] + "." + parts[1] + "x." + parts[2],
		"missing sig":      parts[0] + "." + parts[1] + ".",
		"huge":             strings.Repeat("A", 1<<16),
	}

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var claims *RefreshClaims
			var ok bool
			require.NotPanics(t, func() { claims, ok = svc.TryParseRefreshToken(in) })
			assert.False(t, ok)
			assert.Nil(t, claims)
		})
	}
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	access, err := svc.CreateAccessToken("alice", "user-1", []string{"Admin"})
	require.NoError(t, err)
	_, ok := svc.TryParseRefreshToken(access)
	assert.False(t, ok)

	refresh, err := svc.CreateRefreshToken("user-1")
	require.NoError(t, err)
	_, err = svc.ParseAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessToken_SingleRoleString(t *testing.T) {
	t.Parallel()

	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		ClaimSubject: "user-1",
		ClaimName:    "alice",
		ClaimTokenID: "jti-1",
		ClaimRole:    "Admin",
		"iss":        "geo_forum",
		"aud":        "geo_forum_clients",
		"iat":        now.Unix(),
		"exp":        now.Add(time.Minute).Unix(),
	}).SignedString(testSecret)
	require.NoError(t, err)

	claims, err := newTestService(t).ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, []string{"Admin"}, []string(claims.Roles))
}

func TestCreate_RejectsEmptySubject(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	_, err := svc.CreateRefreshToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.CreateAccessToken("", "id", nil)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
