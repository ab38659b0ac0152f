// Package http provides the inbound HTTP transport for the wisp gateway.
//
// Every request runs as its own goroutine; the auth guard and session store
// never block on external I/O, and the only suspension point is the RPC
// dispatcher call into a backend service.
//
// # Endpoints
//
//	POST   /api/v1/user/register           register the master account
//	POST   /api/v1/user/login              authenticate, receive a token
//	POST   /api/v1/user/logout             revoke the caller's session
//	POST   /api/v1/user/logoutAll          revoke every session of the caller
//	GET    /api/v1/user/sessions           list the caller's sessions
//	DELETE /api/v1/user/session/{tokenId}  revoke one of the caller's sessions
//	GET    /api/v1/user/info               the caller's own record
//	GET    /api/v1/user/master/info        public master profile
//	POST   /api/v1/posts                   create a post (master only)
//	GET    /api/v1/posts                   list posts
//	GET    /api/v1/posts/{slug}            fetch one post
//	GET    /health                         component health
//	GET    /metrics                        Prometheus metrics
//
// # Request Headers
//
//	Authorization: Bearer <token>   opaque session token
//	Content-Type: application/json  required for POST bodies
//
// # Middleware Chain
//
// Requests pass through middleware in this order:
//
//  1. MetricsMiddleware - records duration and status (outermost)
//  2. RequestIDMiddleware - extracts/generates request ID, enriches logger
//  3. RealIPMiddleware - extracts client IP from proxy headers
//  4. Guard.Require - resolves the bearer token (protected routes only)
//  5. Guard.MasterOnly - role check (master-only routes)
//  6. Handler - composes a command and dispatches it to the owning backend
package http
