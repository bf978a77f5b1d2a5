// Package httputil provides HTTP handler utilities: JSON encoding, request
// parsing, middleware, and the problem-detail error shape every API
// response uses.
//
// # Error contract
//
// All error responses share one JSON shape:
//
//	{
//	  "status": 409,
//	  "title": "Conflict",
//	  "detail": "user already exists",
//	  "code": "USER_ALREADY_EXISTS",
//	  "fields": ["email"]
//	}
//
// `code` is machine-readable and stable; `detail` is for humans and may
// change. Internal failures always render the same generic body so
// infrastructure details never leak.
//
// # Middleware
//
// Chain composes middleware in declaration order:
//
//	handler := httputil.Chain(
//	    httputil.LoggingMiddleware(logger),
//	    httputil.RecoveryMiddleware(logger),
//	    httputil.MaxBytesMiddleware(1 << 20),
//	)(router)
package httputil
