// Package auth carries the caller's identity explicitly. Handlers resolve a
// Principal from the session cookie and pass it to services, which check it
// with Require.
package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/abrezinsky/gymscore/internal/errors"
	"github.com/abrezinsky/gymscore/internal/models"
)

const (
	CookieName    = "gymscore_session"
	SessionExpiry = 24 * time.Hour
)

// Gym-themed words for password generation
var gymWords = []string{
	"vault", "rings", "floor", "beam", "bars",
	"salto", "twist", "handspring", "kip", "tuck",
	"pike", "layout", "chalk", "landing", "dismount",
	"pommel", "routine", "stick", "flair",
}

// Principal is the authenticated caller of an operation
type Principal struct {
	UserID   int         `json:"user_id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

// Anonymous is the principal of an unauthenticated request
var Anonymous = Principal{}

// Authenticated reports whether the principal is a logged-in user
func (p Principal) Authenticated() bool {
	return p.UserID != 0
}

func (p Principal) IsAdmin() bool {
	return p.Authenticated() && p.Role == models.RoleAdmin
}

// CanScore reports whether the principal may submit scores
func (p Principal) CanScore() bool {
	return p.Authenticated() && (p.Role == models.RoleAdmin || p.Role == models.RoleJudge)
}

// Require returns an Unauthorized error for anonymous principals and a
// Forbidden error when the principal holds none of roles. No roles means any
// logged-in user.
func Require(p Principal, roles ...models.Role) error {
	if !p.Authenticated() {
		return errors.Unauthorized("login required")
	}
	if len(roles) == 0 {
		return nil
	}
	for _, role := range roles {
		if p.Role == role {
			return nil
		}
	}
	return errors.Forbidden("insufficient permissions")
}

// GeneratePassword creates a random 3-word password
func GeneratePassword() string {
	words := make([]string, 3)
	for i := range words {
		idx := randomInt(len(gymWords))
		words[i] = gymWords[idx]
	}
	return strings.Join(words, "-")
}

// sessionClaims is the JWT payload of a session cookie
type sessionClaims struct {
	jwt.RegisteredClaims
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

// Sessions issues and validates signed session tokens
type Sessions struct {
	secret  []byte
	ttl     time.Duration
	revoked map[string]time.Time // jti -> token expiry
	mu      sync.RWMutex
}

// NewSessions creates a Sessions signing tokens with secret
func NewSessions(secret string) *Sessions {
	return &Sessions{
		secret:  []byte(secret),
		ttl:     SessionExpiry,
		revoked: make(map[string]time.Time),
	}
}

// Issue signs a session token for p
func (s *Sessions) Issue(p Principal) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.Itoa(p.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Username: p.Username,
		Role:     p.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Sessions) parse(token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Validate returns the principal of a valid, unrevoked token
func (s *Sessions) Validate(token string) (Principal, bool) {
	claims, err := s.parse(token)
	if err != nil {
		return Anonymous, false
	}

	s.mu.RLock()
	_, revoked := s.revoked[claims.ID]
	s.mu.RUnlock()
	if revoked {
		return Anonymous, false
	}

	userID, err := strconv.Atoi(claims.Subject)
	if err != nil || userID == 0 {
		return Anonymous, false
	}
	return Principal{UserID: userID, Username: claims.Username, Role: claims.Role}, true
}

// Revoke invalidates a token until it would have expired anyway
func (s *Sessions) Revoke(token string) {
	claims, err := s.parse(token)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, id)
		}
	}
	if claims.ExpiresAt != nil {
		s.revoked[claims.ID] = claims.ExpiresAt.Time
	}
}

// FromRequest resolves the principal from the session cookie
func (s *Sessions) FromRequest(r *http.Request) (Principal, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Anonymous, false
	}
	return s.Validate(cookie.Value)
}

type principalKey struct{}

// WithPrincipal returns a context carrying p
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal attached by Authenticate, or Anonymous
func FromContext(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalKey{}).(Principal); ok {
		return p
	}
	return Anonymous
}

// Authenticate attaches the session's principal, if any, to the request context
func (s *Sessions) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := s.FromRequest(r); ok {
			r = r.WithContext(WithPrincipal(r.Context(), p))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole middleware for API endpoints (401 when anonymous, 403 for other roles)
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := Require(FromContext(r.Context()), roles...)
			if err == nil {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			if errors.Is(err, errors.ErrUnauthorized) {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"code":"UNAUTHORIZED","error":"Unauthorized - please log in"}`))
				return
			}
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"code":"FORBIDDEN","error":"Forbidden - insufficient permissions"}`))
		})
	}
}

// SetSessionCookie sets the session cookie on the response
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(SessionExpiry.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// randomInt returns a random int in [0, max)
func randomInt(max int) int {
	bytes := make([]byte, 1)
	rand.Read(bytes)
	return int(bytes[0]) % max
}
