// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package auth authenticates API callers and applies per-user limits.

Tokens are HS256 JWTs issued elsewhere in the streaming platform and shared
with this service through JWT_SECRET. The user id is the "sub" claim.

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	limiter := auth.NewRateLimiter(cfg.Security.UserRateLimit, cfg.Security.UserRateBurst)
	defer limiter.Stop()

	mw := auth.NewMiddleware(jwtManager, limiter, cfg.Security.TrustedProxies)
	r.With(mw.RequireUser, mw.LimitUser).Get("/personalized", handler)

A token is read from "Authorization: Bearer <token>" or, failing that, the
"token" cookie. Rejections use the API error envelope:

	401 {"success": false, "message": "No token provided"}
	401 {"success": false, "message": "Invalid token"}
	429 {"success": false, "message": "Too many requests"}

Handlers read the caller with UserIDFromContext.
*/
package auth
