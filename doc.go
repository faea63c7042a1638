// Package quillhub provides the Quill blogging platform: API server,
// supporting tooling, and a terminal client.

// The code is organized into subpackages:

// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/models: Data models and database schemas
// - internal/auth: Authentication and token services
// - internal/projection: Viewer-relative read models and feed queries
// - internal/pagination: Composite-cursor pagination engine
// - internal/storage: File storage (S3) operations
// - internal/database: Database connection and migrations
// - internal/email: Email service integration
// - internal/middleware: HTTP middleware (auth guards, rate limiting, etc.)
// - internal/cleanup: Scheduled account removal sweeper
// - client/api: Typed API client used by the CLI
// - client/cache: Paginated view cache for client state
// - client/cmd: CLI commands

// See the individual package documentation for detailed reference.
package quillhub
