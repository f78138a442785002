// Package common contains shared constants and sentinel errors used across
// MovieKeeper components.
package common

// AuthorizationHeaderName carries the bearer token on REST requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token inside the Authorization header.
const BearerPrefix = "Bearer "

// TokenQueryParam carries the token when opening the push channel, where
// browsers and mobile websocket stacks cannot set headers.
const TokenQueryParam = "token"

// Push event types delivered over the push channel.
const (
	EventCreated = "created"
	EventUpdated = "updated"
)

// HealthServiceName is the grpc.health.v1 service the server reports and
// the client probes.
const HealthServiceName = "moviekeeper"
