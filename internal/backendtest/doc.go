// Package backendtest runs an in-process fake of the LLM Answer Watcher
// backend for tests. It implements the same HTTP contract as the real
// service (register, token exchange, current user, API key storage, root
// liveness) with bcrypt password hashes and HS256 JWT access tokens, and
// lets a test force any route to fail with a chosen status.
//
//	srv := backendtest.New()
//	defer srv.Close()
//	c, _ := client.NewHTTPClient(srv.URL, time.Second, logging.Nop())
package backendtest
