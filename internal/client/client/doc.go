// Package client talks to the LLM Answer Watcher backend over HTTP.
//
// # Overview
//
// The Client interface is the transport-agnostic contract used by the
// credential flow: Register, Login (token exchange), GetCurrentUser and
// StoreAPIKeys, plus Ping for the status command. HTTPClient implements it
// with one round trip per call and no retries.
//
// # Error Handling
//
// Every failure is a *Error whose Kind is one of the sentinels below, so
// callers match with errors.Is:
//
//   - ErrValidation   the backend rejected the input (4xx on register)
//   - ErrUnauthorized bad credentials or an invalid/expired token (401/403)
//   - ErrUnavailable  the request could not complete (network, timeout)
//   - ErrServer       the backend failed (5xx) or answered with garbage
//
// The backend's "detail" message, when present, is kept in Error.Detail.
package client
