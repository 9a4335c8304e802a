// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"
	"github.com/swaggo/swag"
)

// OpenAPIInfo holds the exported Swagger Info so clients can modify it
var OpenAPIInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Marquee API",
	Description:      "Movie recommendations: personalized, similar, trending, because-you-watched and top picks.",
	InfoInstanceName: swag.Name,
	SwaggerTemplate:  openAPITemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(OpenAPIInfo.InstanceName(), OpenAPIInfo)
}

// swaggerCSP relaxes the global CSP for the bundled Swagger UI, which needs
// its own inline bootstrap script and styles.
func swaggerCSP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy",
			"default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

func swaggerHandler() http.HandlerFunc {
	return httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.InstanceName(OpenAPIInfo.InstanceName()),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	)
}

// openAPITemplate documents the routes registered in SetupChi. Keep the two
// in step when adding an endpoint.
const openAPITemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "AGPL-3.0-or-later",
            "url": "https://www.gnu.org/licenses/agpl-3.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/recommendations/personalized": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Movies from the caller's top genres, excluding anything watched or on the watchlist. Falls back to popular movies when the caller has no usable signal.",
                "produces": ["application/json"],
                "tags": ["recommendations"],
                "summary": "Personalized recommendations",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RecommendationsResponse"}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "500": {"description": "Store failure", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/recommendations/similar/{itemId}": {
            "get": {
                "description": "Movies sharing a genre, a director or one of the first three cast members with the reference movie, rated at least 6.0.",
                "produces": ["application/json"],
                "tags": ["recommendations"],
                "summary": "Similar movies",
                "parameters": [
                    {"type": "string", "description": "Reference movie id", "name": "itemId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RecommendationsResponse"}},
                    "400": {"description": "Malformed id", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "404": {"description": "Movie not found", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "500": {"description": "Store failure", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/recommendations/trending": {
            "get": {
                "description": "Most watched movies over the last 7 days, or over all time with window=all.",
                "produces": ["application/json"],
                "tags": ["recommendations"],
                "summary": "Trending movies",
                "parameters": [
                    {"maximum": 50, "minimum": 1, "type": "integer", "default": 10, "description": "Result size", "name": "limit", "in": "query"},
                    {"enum": ["week", "all"], "type": "string", "default": "week", "description": "Aggregation window", "name": "window", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RecommendationsResponse"}},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "500": {"description": "Store failure", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/recommendations/because-you-watched/{itemId}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Movies similar to one the caller watched, rated no more than one point below it, excluding the caller's history and watchlist.",
                "produces": ["application/json"],
                "tags": ["recommendations"],
                "summary": "Because you watched",
                "parameters": [
                    {"type": "string", "description": "Reference movie id", "name": "itemId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RecommendationsResponse"}},
                    "400": {"description": "Malformed id", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "404": {"description": "Movie not found", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "500": {"description": "Store failure", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/recommendations/top-picks": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Highly rated movies (8.0+) from the caller's top genres, with viewing insights.",
                "produces": ["application/json"],
                "tags": ["recommendations"],
                "summary": "Top picks",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RecommendationsResponse"}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "500": {"description": "Store failure", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/movies/trending/top10": {
            "get": {
                "description": "The ten most watched movies of the last 7 days with watch statistics.",
                "produces": ["application/json"],
                "tags": ["movies"],
                "summary": "Top 10 this week",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TopTenResponse"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "500": {"description": "Store failure", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/health/live": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/HealthResponse"}}
                }
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready", "schema": {"$ref": "#/definitions/HealthResponse"}},
                    "503": {"description": "A dependency check failed", "schema": {"$ref": "#/definitions/HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "Movie": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "plot": {"type": "string"},
                "poster": {"type": "string"},
                "rated": {"type": "string"},
                "genres": {"type": "array", "items": {"type": "string"}},
                "cast": {"type": "array", "items": {"type": "string"}},
                "directors": {"type": "array", "items": {"type": "string"}},
                "year": {"type": "integer"},
                "runtime": {"type": "integer"},
                "rating": {"type": "number"},
                "votes": {"type": "integer"},
                "imdbId": {"type": "string"}
            }
        },
        "Recommendation": {
            "allOf": [
                {"$ref": "#/definitions/Movie"},
                {"type": "object", "properties": {"rank": {"type": "integer"}}}
            ]
        },
        "Insights": {
            "type": "object",
            "properties": {
                "preferredViewingTime": {"type": "integer", "x-nullable": true},
                "totalWatched": {"type": "integer"},
                "totalCompleted": {"type": "integer"},
                "candidatesConsidered": {"type": "integer"}
            }
        },
        "RecommendationsResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "recommendations": {"type": "array", "items": {"$ref": "#/definitions/Recommendation"}},
                "reason": {"type": "string"},
                "topGenres": {"type": "array", "items": {"type": "string"}},
                "basedOn": {"type": "string"},
                "insights": {"$ref": "#/definitions/Insights"}
            }
        },
        "TopTenEntry": {
            "type": "object",
            "properties": {
                "rank": {"type": "integer"},
                "movie": {"$ref": "#/definitions/Movie"},
                "stats": {
                    "type": "object",
                    "properties": {
                        "watchCount": {"type": "integer"},
                        "avgCompletion": {"type": "integer"}
                    }
                }
            }
        },
        "TopTenResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "top10": {"type": "array", "items": {"$ref": "#/definitions/TopTenEntry"}},
                "period": {"type": "string"}
            }
        },
        "HealthResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "status": {"type": "string"},
                "uptime": {"type": "number"},
                "checks": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "ErrorResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "HS256 JWT as \"Bearer <token>\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`
