// Package rest implements driven.Gateway over the underwriting service's
// HTTP JSON API.
//
// Every call carries a fresh X-Request-Id and, when configured, an
// X-API-Key header and an OAuth2 bearer token. A client-side token bucket
// paces calls and honours Retry-After on 429. The client never retries.
package rest
