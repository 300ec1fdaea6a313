package auth

import (
	"context"
	"net/http"

	"ProductCatalog/pkg/kit"
)

const HeaderAPIKey = "X-API-Key"

type ctxKey string

const clientKey ctxKey = "api_client"

type Client struct {
	Name  string
	Scope Scope
}

func ClientFromContext(ctx context.Context) (Client, bool) {
	c, ok := ctx.Value(clientKey).(Client)
	return c, ok
}

// RequireAPIKey rejects requests without a valid key allowing want.
// A nil KeyMaker disables the check.
func RequireAPIKey(keys *KeyMaker, want Scope) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if keys == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(HeaderAPIKey)
			if raw == "" {
				kit.WriteError(w, r, http.StatusUnauthorized, "missing api key", nil)
				return
			}

			claims, err := keys.Parse(raw)
			if err != nil {
				kit.WriteError(w, r, http.StatusUnauthorized, "invalid api key", nil)
				return
			}
			if !claims.Scope.Allows(want) {
				kit.WriteError(w, r, http.StatusForbidden, "insufficient scope", map[string]any{"required": want})
				return
			}

			ctx := context.WithValue(r.Context(), clientKey, Client{Name: claims.Subject, Scope: claims.Scope})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
