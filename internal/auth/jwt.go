package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "product-catalog"

type Scope string

const (
	ScopeRead  Scope = "read"
	ScopeWrite Scope = "write"
)

var (
	ErrInvalidKey   = errors.New("invalid api key")
	ErrInvalidScope = errors.New("invalid scope")
)

// Allows reports whether a key with scope s may perform an action needing want.
// Write keys can also read.
func (s Scope) Allows(want Scope) bool {
	return s == want || (s == ScopeWrite && want == ScopeRead)
}

func ParseScope(v string) (Scope, error) {
	switch s := Scope(v); s {
	case ScopeRead, ScopeWrite:
		return s, nil
	}
	return "", ErrInvalidScope
}

// KeyMaker issues and verifies API keys. A key is an HS256 token naming the
// client and its scope.
type KeyMaker struct {
	secret []byte
}

func NewKeyMaker(secret string) *KeyMaker {
	return &KeyMaker{secret: []byte(secret)}
}

type Claims struct {
	Scope Scope `json:"scope"`
	jwt.RegisteredClaims
}

// New signs a key for client. A zero ttl means the key does not expire.
func (k *KeyMaker) New(client string, scope Scope, ttl time.Duration) (string, error) {
	if _, err := ParseScope(string(scope)); err != nil {
		return "", err
	}

	now := time.Now()
	claims := Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  client,
			Issuer:   issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(k.secret)
}

func (k *KeyMaker) Parse(key string) (Claims, error) {
	var c Claims

	token, err := jwt.ParseWithClaims(key, &c, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return k.secret, nil
	}, jwt.WithIssuer(issuer))
	if err != nil || token == nil || !token.Valid {
		return Claims{}, ErrInvalidKey
	}

	if _, err := ParseScope(string(c.Scope)); err != nil || c.Subject == "" {
		return Claims{}, ErrInvalidKey
	}
	return c, nil
}
