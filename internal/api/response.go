// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"errors"
	"hash/fnv"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/datastore"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/recommend"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// errorMessages names the client-facing text for one endpoint's failures.
type errorMessages struct {
	NotFound string
	Failure  string
}

const (
	msgMovieNotFound = "Movie not found"
	msgUserNotFound  = "User not found"
	msgInvalid       = "Invalid request"
)

// respondJSON writes v with an ETag. A matching If-None-Match yields 304.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.CtxErr(r.Context(), err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Vary", "Accept-Encoding")

	if status == http.StatusOK {
		etag := generateETag(data)
		h.Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.CtxDebug(r.Context()).Err(err).Msg("Failed to write JSON response")
	}
}

// generateETag creates a weak ETag from the FNV-1a hash of the body.
func generateETag(data []byte) string {
	hash := fnv.New64a()
	_, _ = hash.Write(data)
	return `W/"` + strconv.FormatUint(hash.Sum64(), 16) + `"`
}

// respondError sends the error envelope.
func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respondJSON(w, r, status, errorResponse{Success: false, Message: message})
}

// writeEngineError maps an engine or store error onto a status code.
// Store failures are logged with the request context and answered with the
// endpoint's generic failure message.
func writeEngineError(w http.ResponseWriter, r *http.Request, err error, msgs errorMessages) {
	ctx := r.Context()

	switch {
	case errors.Is(err, recommend.ErrInvalidRequest):
		respondError(w, r, http.StatusBadRequest, msgInvalid)
	case errors.Is(err, recommend.ErrUnauthenticated):
		respondError(w, r, http.StatusUnauthorized, auth.MsgNoToken)
	case errors.Is(err, recommend.ErrNotFound):
		respondError(w, r, http.StatusNotFound, msgs.NotFound)
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		// client went away; nobody reads the body
		logging.CtxDebug(ctx).Msg("Request canceled by client")
		respondError(w, r, http.StatusInternalServerError, msgs.Failure)
	case errors.Is(err, datastore.ErrUnavailable):
		logging.CtxWarn(ctx).Err(err).Msg("Store unavailable, circuit breaker open")
		respondError(w, r, http.StatusInternalServerError, msgs.Failure)
	case recommend.IsStoreFailure(err):
		logging.CtxErr(ctx, err).Msg("Store read failed")
		respondError(w, r, http.StatusInternalServerError, msgs.Failure)
	default:
		logging.CtxErr(ctx, err).Msg("Recommendation request failed")
		respondError(w, r, http.StatusInternalServerError, msgs.Failure)
	}
}
