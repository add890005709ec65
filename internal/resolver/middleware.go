package resolver

import "net/http"

// Middleware rewrites the request URL path through Resolve before handing
// the request to next. Only the path is touched; method, headers, query and
// body pass through untouched. Used by the local preview server to mimic
// the edge rewrite.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.URL.Path = Resolve(r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
