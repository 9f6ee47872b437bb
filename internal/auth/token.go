package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"postboard/internal/apperr"
	"postboard/internal/domain"
)

const defaultTokenTTL = 24 * time.Hour

// Claims is the canonical claim set signed into a session token.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller resolved from a valid token.
type Identity struct {
	UserID string
	Email  string
	Role   domain.Role
}

// TokenIssuer creates and validates signed session tokens. Tokens are
// stateless: validity ends only at expiry, there is no revocation list.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer returns a TokenIssuer signing with the given secret.
// If ttl <= 0 the 24h default applies. now may be nil for time.Now.
func NewTokenIssuer(secret string, ttl time.Duration, now func() time.Time) *TokenIssuer {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	if now == nil {
		now = time.Now
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: now}
}

// Issue signs a token embedding the user's id, email and role.
func (t *TokenIssuer) Issue(u domain.User) (string, error) {
	issued := t.now()
	claims := &Claims{
		Email: u.Email,
		Role:  string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(t.ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(t.secret)
}

// Validate parses and verifies a token string and returns the identity it
// carries. Any signature, shape or expiry problem comes back as an
// Unauthenticated fault.
func (t *TokenIssuer) Validate(tokenStr string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{},
		func(*jwt.Token) (interface{}, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return Identity{}, apperr.New(apperr.KindUnauthenticated, "invalid or expired token")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return Identity{}, apperr.New(apperr.KindUnauthenticated, "invalid or expired token")
	}
	return Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   domain.Role(claims.Role),
	}, nil
}
