package middleware

import "net/http"

// Middleware is the common signature for HTTP middleware: a function
// that wraps an http.Handler with behavior running before or after it.
type Middleware func(http.Handler) http.Handler

// CreateStack composes the given middleware into one. The first
// middleware in xs becomes the outermost wrapper and therefore runs
// first on each request.
func CreateStack(xs ...Middleware) Middleware {
	return func(next http.Handler) http.Handler {
		for i := len(xs) - 1; i >= 0; i-- {
			next = xs[i](next)
		}
		return next
	}
}
