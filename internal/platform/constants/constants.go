// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Janitor intervals and Redis key prefixes.
  - Startup: Connection retry budget for backing services.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "yomira-identity"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second

	// MaxRequestBodyBytes caps JSON bodies on the public endpoints.
	MaxRequestBodyBytes = 1 << 20
)

// # Rate Limiting

const (
	// RateLimitCleanupInterval is how often idle client entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RedisPrefixRateLimit namespaces the fixed-window counters.
	RedisPrefixRateLimit = "identity:ratelimit:"
)

// # Startup

const (
	// ConnectRetryBase is the first backoff delay when dialing Postgres or Redis.
	ConnectRetryBase = 500 * time.Millisecond

	// ConnectRetryMax is the number of retries before startup gives up.
	ConnectRetryMax = 5
)

// # HTTP Headers

const (
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderOrigin        = "Origin"
	HeaderRetryAfter    = "Retry-After"

	// BearerScheme prefixes access tokens in the Authorization header.
	BearerScheme = "Bearer"
)

// # JSON Field Identifiers

const (
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Database Schemas

const (
	SchemaUsers = "users"
)
