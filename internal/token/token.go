// Package token issues and verifies the signed session credential.
// Tokens are self-contained and stateless: the server keeps no session store
// and no revocation list. Clients carry the token either as an
// "Authorization: Bearer" header or in the session cookie.
package token

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"stockswift/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName is the session cookie the dashboard relies on.
const CookieName = "token"

// TTL is the fixed token lifetime. There is no refresh flow; clients
// re-authenticate after expiry.
const TTL = 7 * 24 * time.Hour

var (
	// ErrNoToken means the request carried no credential at all.
	ErrNoToken = errors.New("missing token")
	// ErrInvalidToken covers malformed, tampered, and expired tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims are embedded in every session token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Service signs and validates session tokens with a shared HMAC secret.
// An empty secret is rejected at config load, never here.
type Service struct {
	secret        []byte
	secureCookies bool
}

func NewService(cfg *config.Config) *Service {
	return &Service{
		secret:        []byte(cfg.JWTSecret),
		secureCookies: cfg.Env == "production",
	}
}

// Issue signs a token binding the user identity, expiring in TTL.
func (s *Service) Issue(userID uuid.UUID, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID.String(),
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify validates signature and expiry.
func (s *Service) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// FromRequest extracts the raw token. The Authorization header always wins
// over the cookie when both are present.
func (s *Service) FromRequest(r *http.Request) (string, error) {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer "), nil
	}
	if ck, err := r.Cookie(CookieName); err == nil && ck.Value != "" {
		return ck.Value, nil
	}
	return "", ErrNoToken
}

// Authenticate composes FromRequest and Verify. Callers can tell a request
// with no credential (ErrNoToken) apart from one with a bad credential
// (ErrInvalidToken); both map to 401.
func (s *Service) Authenticate(r *http.Request) (*Claims, error) {
	raw, err := s.FromRequest(r)
	if err != nil {
		return nil, err
	}
	return s.Verify(raw)
}

// SetAuthCookie attaches the session cookie to the response:
// http-only, SameSite=Lax, path "/", max-age = TTL, secure in production.
func (s *Service) SetAuthCookie(c *gin.Context, tok string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, tok, int(TTL.Seconds()), "/", "", s.secureCookies, true)
}

// ClearAuthCookie expires the session cookie.
func (s *Service) ClearAuthCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", s.secureCookies, true)
}
