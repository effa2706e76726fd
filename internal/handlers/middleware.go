package handlers

import (
	"net/http"
	"strings"

	"gitlab.com/testsys2pcms.net/internal/core/ports/primary"
	"gitlab.com/testsys2pcms.net/internal/domain"
	"gitlab.com/testsys2pcms.net/internal/static/errs"
)

type MiddlewareProvider struct {
	jwtService primary.JWTService
	method     string
	enabled    bool
	logger     primary.Logger
}

// New creates the middleware provider; with enabled false every request passes
func New(jwtService primary.JWTService, method string, enabled bool, logger primary.Logger) *MiddlewareProvider {
	return &MiddlewareProvider{
		jwtService: jwtService,
		method:     method,
		enabled:    enabled,
		logger:     logger,
	}
}

// JWTMiddleware requires a valid token carrying the convert permission
func (m *MiddlewareProvider) JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			ResponseError(w, errs.MissingAuthorization.Error(), http.StatusUnauthorized)
			return
		}

		// Extract token from "Bearer <token>"
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		valid, err := m.jwtService.VerifyTokenHMAC(r.Context(), tokenString, m.method)
		if err != nil || !valid {
			m.logger.Warn("Rejected request", "path", r.URL.Path, "error", err)
			ResponseError(w, errs.InvalidToken.Error(), http.StatusUnauthorized)
			return
		}

		payload, err := m.jwtService.DecodeTokenPayload(r.Context(), tokenString)
		if err != nil {
			m.logger.Warn("Unreadable token payload", "path", r.URL.Path, "error", err)
			ResponseError(w, errs.InvalidToken.Error(), http.StatusUnauthorized)
			return
		}
		if !payload.HasPermission(domain.PermissionConvert) {
			m.logger.Warn("Missing permission", "path", r.URL.Path, "subject", payload.Subject)
			ResponseError(w, errs.PermissionDenied.Error(), http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
