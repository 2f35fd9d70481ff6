package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
	wrap "github.com/Temutjin2k/ride-dispatch/pkg/logger/wrapper"
)

const apiKeyHeader = "X-API-Key"

// Auth resolves the caller from an X-API-Key header or a bearer token and puts
// it into the context. Requests without credentials continue as anonymous.
func (h *Middleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if key := r.Header.Get(apiKeyHeader); key != "" {
			p, err := h.auth.CheckAPIKey(key)
			if err != nil {
				h.log.Warn(ctx, "rejected api key", "error", err.Error())
				reject(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(models.WithPrincipal(ctx, p)))
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := extractBearerToken(header)
		if !ok {
			reject(w, errBadAuthHeader)
			return
		}

		p, err := h.auth.Verify(ctx, token)
		if err != nil || p == nil {
			h.log.Warn(ctx, "failed to authenticate user", "error", fmt.Sprint(err))
			reject(w, errBadCredentials)
			return
		}

		ctx = wrap.WithUserID(ctx, p.UserID)
		next.ServeHTTP(w, r.WithContext(models.WithPrincipal(ctx, p)))
	})
}

// RequireAuth lets through any authenticated caller.
func (h *Middleware) RequireAuth(next http.HandlerFunc) http.Handler {
	return h.RequireRoles(next)
}

// RequireRoles wraps a handler and allows only callers with one of the given roles.
// Without roles any authenticated caller passes.
func (h *Middleware) RequireRoles(next http.HandlerFunc, allowedRoles ...types.UserRole) http.Handler {
	allowed := make(map[types.UserRole]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := models.PrincipalFromContext(r.Context())
		if p.IsAnonymous() {
			reject(w, types.ErrUnauthorized)
			return
		}
		if len(allowed) > 0 {
			if _, ok := allowed[p.Role]; !ok {
				reject(w, types.ErrForbidden)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func extractBearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
