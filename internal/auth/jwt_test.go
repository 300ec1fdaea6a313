package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"ProductCatalog/internal/auth"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestKeyMaker_RoundTrip(t *testing.T) {
	keys := auth.NewKeyMaker(secret)

	key, err := keys.New("importer", auth.ScopeWrite, time.Hour)
	require.NoError(t, err)

	claims, err := keys.Parse(key)
	require.NoError(t, err)
	require.Equal(t, "importer", claims.Subject)
	require.Equal(t, auth.ScopeWrite, claims.Scope)
	require.NotNil(t, claims.ExpiresAt)
}

func TestKeyMaker_NoExpiry(t *testing.T) {
	keys := auth.NewKeyMaker(secret)

	key, err := keys.New("dashboard", auth.ScopeRead, 0)
	require.NoError(t, err)

	claims, err := keys.Parse(key)
	require.NoError(t, err)
	require.Nil(t, claims.ExpiresAt)
}

func TestKeyMaker_RejectsUnknownScope(t *testing.T) {
	_, err := auth.NewKeyMaker(secret).New("x", auth.Scope("admin"), 0)
	require.ErrorIs(t, err, auth.ErrInvalidScope)
}

func TestKeyMaker_ParseRejects(t *testing.T) {
	keys := auth.NewKeyMaker(secret)

	sign := func(method jwt.SigningMethod, key any, claims auth.Claims) string {
		t.Helper()
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	valid := func() auth.Claims {
		return auth.Claims{
			Scope: auth.ScopeRead,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject: "client",
				Issuer:  "product-catalog",
			},
		}
	}

	other, err := auth.NewKeyMaker("ffffffffffffffffffffffffffffffff").New("x", auth.ScopeRead, 0)
	require.NoError(t, err)

	expired := valid()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongIssuer := valid()
	wrongIssuer.Issuer = "someone-else"

	noSubject := valid()
	noSubject.Subject = ""

	badScope := valid()
	badScope.Scope = "admin"

	tests := []struct {
		name string
		key  string
	}{
		{"garbage", "not-a-token"},
		{"other secret", other},
		{"expired", sign(jwt.SigningMethodHS256, []byte(secret), expired)},
		{"wrong issuer", sign(jwt.SigningMethodHS256, []byte(secret), wrongIssuer)},
		{"no subject", sign(jwt.SigningMethodHS256, []byte(secret), noSubject)},
		{"unknown scope", sign(jwt.SigningMethodHS256, []byte(secret), badScope)},
		{"other hmac", sign(jwt.SigningMethodHS512, []byte(secret), valid())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := keys.Parse(tt.key)
			require.ErrorIs(t, err, auth.ErrInvalidKey)
		})
	}
}

func TestScope_Allows(t *testing.T) {
	require.True(t, auth.ScopeRead.Allows(auth.ScopeRead))
	require.False(t, auth.ScopeRead.Allows(auth.ScopeWrite))
	require.True(t, auth.ScopeWrite.Allows(auth.ScopeWrite))
	require.True(t, auth.ScopeWrite.Allows(auth.ScopeRead))
	require.False(t, auth.Scope("").Allows(auth.ScopeRead))
}

func TestParseScope(t *testing.T) {
	s, err := auth.ParseScope("write")
	require.NoError(t, err)
	require.Equal(t, auth.ScopeWrite, s)

	_, err = auth.ParseScope("WRITE")
	require.ErrorIs(t, err, auth.ErrInvalidScope)
}
