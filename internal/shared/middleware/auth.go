package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/emiliopalmerini/punchclock/internal/ports"
	apperrors "github.com/emiliopalmerini/punchclock/internal/shared/errors"
)

var errUnauthorized = apperrors.Unauthorized("missing or invalid bearer token")

// StaticTokens resolves tokens from a fixed token to employee map.
type StaticTokens map[string]string

func (s StaticTokens) Resolve(_ context.Context, token string) (string, error) {
	if id, ok := s[token]; ok && id != "" {
		return id, nil
	}
	return "", errUnauthorized
}

// Auth rejects requests without a bearer token the resolver knows and
// stores the resolved employee id in the request context.
func Auth(resolver ports.TokenResolver, log hclog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				apperrors.HandleError(w, log, errUnauthorized)
				return
			}
			employeeID, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				if !apperrors.Is(err, apperrors.KindUnauthorized) {
					err = apperrors.Internal("resolve token", err)
				}
				apperrors.HandleError(w, log, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithEmployee(r.Context(), employeeID)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
