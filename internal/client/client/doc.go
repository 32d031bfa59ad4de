// Package client talks to the SparkBytes backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface): login, session
//     check, logout, event list/create/update/delete, preference update and a
//     liveness Ping.
//  2. HTTPClient, the JSON-over-HTTP implementation. It keeps the session
//     credential in a cookie jar (the backend sets it on login) and also sends
//     the returned access token as a bearer header.
//
// # Error Handling
//
// Transport failures wrap ErrUnavailable. Non-2xx responses are *APIError
// values carrying the backend's "detail" message; a 401 also matches
// ErrUnauthorized. Undecodable bodies wrap ErrMalformedResponse.
//
// HTTPClient is safe for concurrent use. All operations honor ctx.
package client
