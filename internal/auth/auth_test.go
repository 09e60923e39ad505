package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/expense-tracker-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", 0)
	assert.Equal(t, DefaultTokenTTL, m.TTL())

	token, expiresAt, err := m.Generate("user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, 5*time.Second)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, expiresAt.Unix(), claims.ExpiresAt.Unix())
}

func TestTokenExpired(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	issued := time.Now().Add(-2 * time.Hour)
	m.now = func() time.Time { return issued }

	token, _, err := m.Generate("user-1")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Validate(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", time.Hour).Generate("user-1")
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", time.Hour).Validate(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestTokenRejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{
		UserID:           "user-1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Hour).Validate(unsigned)
	assert.Error(t, err)
}

func TestTokenRequiresExpiryAndSubject(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "user-1"}).SignedString(m.key)
	require.NoError(t, err)
	_, err = m.Validate(noExpiry)
	assert.Error(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(m.key)
	require.NoError(t, err)
	_, err = m.Validate(noSubject)
	assert.Error(t, err)

	_, err = m.Validate("not-a-token")
	assert.Error(t, err)
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, TokenFromRequest(r))

	r.AddCookie(&http.Cookie{Name: CookieName, Value: "from-cookie"})
	assert.Equal(t, "from-cookie", TokenFromRequest(r))

	r.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", TokenFromRequest(r))

	r.Header.Set("Authorization", "Basic abc")
	assert.Equal(t, "from-cookie", TokenFromRequest(r))
}

func TestSessionCookies(t *testing.T) {
	w := httptest.NewRecorder()
	expires := time.Now().Add(time.Hour)
	SetSessionCookie(w, "tok", expires, true)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, CookieName, c.Name)
	assert.Equal(t, "tok", c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)

	w = httptest.NewRecorder()
	ClearSessionCookie(w, false)
	cookies = w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

type stubResolver struct {
	user *models.User
	err  error
	got  string
}

func (s *stubResolver) ResolveIdentity(_ context.Context, token string) (*models.User, error) {
	s.got = token
	return s.user, s.err
}

func TestMiddleware(t *testing.T) {
	errDenied := errors.New("denied")
	writeError := func(w http.ResponseWriter, _ *http.Request, err error) {
		http.Error(w, err.Error(), http.StatusUnauthorized)
	}

	t.Run("rejects", func(t *testing.T) {
		resolver := &stubResolver{err: errDenied}
		called := false
		h := Middleware(resolver, writeError)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, called)
	})

	t.Run("attaches sanitized user", func(t *testing.T) {
		resolver := &stubResolver{user: &models.User{ID: "u1", PasswordHash: "hash"}}
		var seen *models.User
		h := Middleware(resolver, writeError)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen, _ = UserFromContext(r.Context())
		}))

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: CookieName, Value: "tok"})
		h.ServeHTTP(httptest.NewRecorder(), r)

		require.NotNil(t, seen)
		assert.Equal(t, "u1", seen.ID)
		assert.Empty(t, seen.PasswordHash)
		assert.Equal(t, "tok", resolver.got)
	})
}

func TestMemoryRevoker(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRevoker()
	now := time.Now()
	r.now = func() time.Time { return now }

	require.NoError(t, r.Revoke(ctx, "live", now.Add(time.Hour)))
	require.NoError(t, r.Revoke(ctx, "already-expired", now.Add(-time.Minute)))
	assert.Equal(t, 1, r.Len())

	revoked, err := r.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = r.IsRevoked(ctx, "other")
	require.NoError(t, err)
	assert.False(t, revoked)

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 0, r.Len())
}

func TestNopRevoker(t *testing.T) {
	var r Revoker = NopRevoker{}
	require.NoError(t, r.Revoke(context.Background(), "tok", time.Now().Add(time.Hour)))
	revoked, err := r.IsRevoked(context.Background(), "tok")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenKey(t *testing.T) {
	assert.Len(t, TokenKey("abc"), 64)
	assert.Equal(t, TokenKey("abc"), TokenKey("abc"))
	assert.NotEqual(t, TokenKey("abc"), TokenKey("abd"))
}
