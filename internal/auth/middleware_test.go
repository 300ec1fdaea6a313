package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"ProductCatalog/internal/auth"
)

func TestRequireAPIKey(t *testing.T) {
	keys := auth.NewKeyMaker(secret)
	readKey, err := keys.New("dashboard", auth.ScopeRead, 0)
	require.NoError(t, err)
	writeKey, err := keys.New("importer", auth.ScopeWrite, 0)
	require.NoError(t, err)

	var seen auth.Client
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.ClientFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name string
		want auth.Scope
		key  string
		code int
		who  string
	}{
		{"missing", auth.ScopeRead, "", http.StatusUnauthorized, ""},
		{"invalid", auth.ScopeRead, "nope", http.StatusUnauthorized, ""},
		{"read for read", auth.ScopeRead, readKey, http.StatusOK, "dashboard"},
		{"read for write", auth.ScopeWrite, readKey, http.StatusForbidden, ""},
		{"write for read", auth.ScopeRead, writeKey, http.StatusOK, "importer"},
		{"write for write", auth.ScopeWrite, writeKey, http.StatusOK, "importer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = auth.Client{}

			req := httptest.NewRequest(http.MethodGet, "/products", nil)
			if tt.key != "" {
				req.Header.Set(auth.HeaderAPIKey, tt.key)
			}
			rec := httptest.NewRecorder()

			auth.RequireAPIKey(keys, tt.want)(next).ServeHTTP(rec, req)

			require.Equal(t, tt.code, rec.Code)
			require.Equal(t, tt.who, seen.Name)
		})
	}
}

func TestRequireAPIKey_NilKeysPassThrough(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		_, ok := auth.ClientFromContext(r.Context())
		require.False(t, ok)
	})

	rec := httptest.NewRecorder()
	auth.RequireAPIKey(nil, auth.ScopeWrite)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products", nil))

	require.True(t, called)
	require.Equal(t, http.StatusOK, rec.Code)
}
