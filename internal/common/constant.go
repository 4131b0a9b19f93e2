// Package common contains shared constants and sentinel errors used across
// lifedesk components.
package common

// AuthorizationHeaderName carries the bearer access token on HTTP requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the only accepted Authorization scheme.
const BearerScheme = "Bearer"

// MaskedSecret is what vault listings return in place of a stored password.
const MaskedSecret = "********"
