package middleware

import "net/http"

// NewMaxBodySizeHandler caps request bodies at limit bytes.
//
// A request that announces a larger Content-Length never reaches next: reject
// is called with an *http.MaxBytesError instead, so the response uses the same
// error body as every other failure. Bodies of unknown length are wrapped in
// http.MaxBytesReader and fail on read once the limit is crossed.
func NewMaxBodySizeHandler(limit int64, reject func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				reject(w, r, &http.MaxBytesError{Limit: limit})
				return
			}
			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
