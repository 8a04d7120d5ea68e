// Package internal documents the Eventra server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, response rendering, and routing
// - domain: business logic for accounts and events
// - storage: database access and repositories (pgx + Postgres)
// - jobs: background workers and the verification email queue
// - auth, config, email, metrics, sanitize: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
