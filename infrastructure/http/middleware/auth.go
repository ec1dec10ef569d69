package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/fixora/resourcesvc/application/port/outbound"
	"github.com/fixora/resourcesvc/infrastructure/http/response"
	"github.com/fixora/resourcesvc/infrastructure/service/jwt"
	"github.com/fixora/resourcesvc/infrastructure/service/logger"
	"github.com/fixora/resourcesvc/infrastructure/service/metrics"
)

type contextKey string

const (
	AuthUserKey contextKey = "auth_user"
)

type AuthMiddleware struct {
	tokenService outbound.TokenService
	logger       logger.Logger
	metrics      *metrics.Metrics
}

// NewAuthMiddleware builds the bearer-token guard. m may be nil.
func NewAuthMiddleware(tokenService outbound.TokenService, log logger.Logger, m *metrics.Metrics) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
		logger:       log,
		metrics:      m,
	}
}

// RequireAuth rejects requests without a valid access token and stores the
// token claims in the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, reason := bearerToken(r.Header.Get("Authorization"))
		if reason != "" {
			m.reject(w, r, reason)
			return
		}

		claims, err := m.tokenService.ValidateAccessToken(token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				m.reject(w, r, "Token expired")
				return
			}
			m.reject(w, r, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), AuthUserKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request, reason string) {
	if m.metrics != nil {
		m.metrics.RecordInvalidToken()
	}
	logger.LogSecurityEvent(r.Context(), m.logger, "auth_rejected", "LOW", map[string]interface{}{
		"reason": reason,
		"path":   r.URL.Path,
		"ip":     getClientIP(r),
	})
	response.Unauthorized(w, reason)
}

func bearerToken(header string) (string, string) {
	if header == "" {
		return "", "Authorization header required"
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", "Invalid authorization header format"
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", "Token cannot be empty"
	}
	return token, ""
}

// GetUserClaims retrieves user claims from context
func GetUserClaims(ctx context.Context) *outbound.TokenClaims {
	if claims, ok := ctx.Value(AuthUserKey).(*outbound.TokenClaims); ok {
		return claims
	}
	return nil
}

// ActorID is the authenticated user id, or "" for anonymous requests.
func ActorID(ctx context.Context) string {
	if claims := GetUserClaims(ctx); claims != nil {
		return claims.UserID
	}
	return ""
}

// WithUserClaims is used by tests and internal callers that authenticate
// out of band.
func WithUserClaims(ctx context.Context, claims *outbound.TokenClaims) context.Context {
	return context.WithValue(ctx, AuthUserKey, claims)
}
