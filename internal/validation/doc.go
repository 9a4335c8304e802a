// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared by the HTTP query structs and the seed
// fixture loader. Fields tagged `query:"name"` report that name in messages so
// clients see the parameter they sent:
//
//	type trendingQuery struct {
//	    Limit  int    `query:"limit" validate:"gte=1,lte=50"`
//	    Window string `query:"window" validate:"omitempty,oneof=all week"`
//	}
//
//	if verr := validation.ValidateStruct(&q); verr != nil {
//	    // "limit must be less than or equal to 50"
//	}
//
// Custom tags:
//   - catalogid: non-empty, at most MaxCatalogIDLength bytes, no whitespace,
//     control characters or slashes
package validation
