package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.NoError(t, h.Check(hash, "secret1"))
	assert.ErrorIs(t, h.Check(hash, "wrong"), ErrPasswordMismatch)
	assert.Error(t, h.Check("", "secret1"))
}

func TestPasswordHasher_DummyHashMatchesCost(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost + 1)

	hash := h.dummyHash()
	cost, err := bcrypt.Cost(hash)
	require.NoError(t, err)
	assert.Equal(t, h.Cost, cost)
	assert.Equal(t, hash, h.dummyHash())

	h.CheckDummy("anything")
}

func TestNewPasswordHasher_OutOfRangeCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).Cost)
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(99).Cost)
	assert.Equal(t, 12, NewPasswordHasher(12).Cost)
}

func TestNewResetToken(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tok, err := NewResetToken(now, 30*time.Minute)
	require.NoError(t, err)

	assert.Len(t, tok.Raw, 40)
	assert.Len(t, tok.Hash, 64)
	assert.Equal(t, HashResetToken(tok.Raw), tok.Hash)
	assert.Equal(t, now.Add(30*time.Minute), tok.Expire)

	other, err := NewResetToken(now, time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, tok.Raw, other.Raw)
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	i := NewTokenIssuer("super-secret", time.Hour, false)

	tok, err := i.Issue("user-123")
	require.NoError(t, err)

	claims, err := i.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	require.NotNil(t, claims.IssuedAt)
	require.NotNil(t, claims.ExpiresAt)
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestTokenIssuer_Expired(t *testing.T) {
	i := NewTokenIssuer("secret", time.Minute, false)
	i.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	tok, err := i.Issue("u1")
	require.NoError(t, err)

	i.now = time.Now
	_, err = i.Parse(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenIssuer_WrongSecretAndGarbage(t *testing.T) {
	tok, err := NewTokenIssuer("right", time.Hour, false).Issue("u2")
	require.NoError(t, err)

	_, err = NewTokenIssuer("wrong", time.Hour, false).Parse(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = NewTokenIssuer("right", time.Hour, false).Parse("not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenIssuer_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{UserID: "u3", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = NewTokenIssuer("k", time.Hour, false).Parse(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenIssuer_Cookies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	i := NewTokenIssuer("k", 48*time.Hour, true)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	i.SetCookie(c, "abc")

	set := w.Header().Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(set, "token=abc"))
	assert.Contains(t, set, "HttpOnly")
	assert.Contains(t, set, "Secure")
	assert.Contains(t, set, "Max-Age=172800")

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	i.ClearCookie(c)

	resp := http.Response{Header: w.Header()}
	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "token", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.True(t, cookies[0].MaxAge < 0)
}
