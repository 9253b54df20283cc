// Package token issues and verifies the signed bearer tokens that carry
// caller identity across requests.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/safecity/incident-api/internal/core/domain"
)

// DefaultTTL is how long an issued token stays valid.
const DefaultTTL = 31 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// Claims is the full claim set embedded in a token. IsBanned is a snapshot at
// issuance time; privileged paths must re-fetch the live user record.
type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsBanned bool   `json:"is_banned"`
	jwt.RegisteredClaims
}

// Issuer signs and validates identity tokens with a shared symmetric secret.
type Issuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

func NewIssuer(secret, issuer, audience string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{secret: []byte(secret), issuer: issuer, audience: audience, ttl: ttl}
}

// Issue signs a token for the user. The JTI is unique per token so a future
// revocation list can key on it.
func (i *Issuer) Issue(user *domain.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		IsBanned: user.IsBanned,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(i.secret)
}

// Verify validates the signature, issuer, audience, and expiry (zero clock
// skew) and returns the embedded claims. Any failure yields ErrInvalidToken;
// a tampered token is treated as absent identity, not as a distinct error.
func (i *Issuer) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return i.secret, nil
	},
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !t.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
