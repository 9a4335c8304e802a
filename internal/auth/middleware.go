// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package auth

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// Client-facing messages for rejected requests.
const (
	MsgNoToken         = "No token provided"
	MsgInvalidToken    = "Invalid token"
	MsgTooManyRequests = "Too many requests"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// Middleware authenticates requests and applies per-user limits.
type Middleware struct {
	jwtManager     *JWTManager
	userLimiter    *RateLimiter
	trustedProxies map[string]bool
}

// NewMiddleware creates the auth middleware. A nil limiter disables per-user
// rate limiting.
func NewMiddleware(jwtManager *JWTManager, userLimiter *RateLimiter, trustedProxies []string) *Middleware {
	trusted := make(map[string]bool, len(trustedProxies))
	for _, p := range trustedProxies {
		trusted[strings.TrimSpace(p)] = true
	}
	return &Middleware{
		jwtManager:     jwtManager,
		userLimiter:    userLimiter,
		trustedProxies: trusted,
	}
}

// RequireUser rejects requests without a valid bearer token and stores the
// claims in the request context.
func (m *Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := extractToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, MsgNoToken)
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			logging.CtxWarn(r.Context()).Err(err).Msg("Token validation failed")
			writeError(w, http.StatusUnauthorized, MsgInvalidToken)
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		ctx = logging.ContextWithLogger(ctx, logging.LoggerFromContext(ctx).With().Str("user_id", claims.UserID()).Logger())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LimitUser applies the per-user token bucket. It must run after RequireUser.
func (m *Middleware) LimitUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.userLimiter == nil {
			next.ServeHTTP(w, r)
			return
		}
		userID, ok := UserIDFromContext(r.Context())
		if ok && !m.userLimiter.Allow(userID) {
			metrics.RecordRateLimitHit("user")
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, MsgTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractToken reads the bearer token from the Authorization header or,
// failing that, the "token" cookie.
func extractToken(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			return "", false
		}
		token = strings.TrimSpace(token)
		return token, token != ""
	}
	if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return "", false
}

// ClaimsFromContext returns the claims stored by RequireUser.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok && claims != nil
}

// UserIDFromContext returns the authenticated user id.
func UserIDFromContext(ctx context.Context) (string, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return "", false
	}
	return claims.UserID(), true
}

// SecurityHeaders sets the response headers every JSON API response carries.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		if r.Header.Get("X-Forwarded-Proto") == "https" || r.TLS != nil {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP returns the caller's address. Forwarding headers are honoured
// only when the direct peer is a trusted proxy.
func (m *Middleware) ClientIP(r *http.Request) string {
	remoteIP := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		remoteIP = host
	}
	if !m.trustedProxies[remoteIP] {
		return remoteIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	return remoteIP
}

// writeError writes the API error envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}
