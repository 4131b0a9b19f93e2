// Package client is the Go client for the lifedesk JSON API.
//
// # Overview
//
// Client speaks HTTP to the server and decodes its {success, message, data}
// envelope. Authenticated calls read the caller's Session from the context
// (see WithSession); the Session in turn keeps its token pair in a
// TokenStore, either MemoryTokenStore or the file-backed FileTokenStore.
//
// # Token refresh
//
// When an authenticated call is rejected because the access token expired
// or is invalid, Client exchanges the refresh token for a new access token
// and retries the call once. A failed refresh ends the session locally.
//
// # Reveal
//
// Reveal returns a RevealedSecret that wipes itself after the configured
// timeout. Its String method always prints the mask.
//
// # Errors
//
// Transport failures wrap ErrUnavailable. Non-2xx replies are *APIError
// values that unwrap to ErrUnauthorized or to the sentinels in
// internal/common.
package client
