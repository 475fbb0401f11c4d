package i18n

import "net/http"

// Middleware injects a localizer matching the request's Accept-Language
// header, falling back to lang.
func Middleware(lang string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			best := Match(r.Header.Get("Accept-Language"))
			loc := NewLocalizer(best, lang)
			w.Header().Set("Content-Language", best)
			next.ServeHTTP(w, r.WithContext(WithLocalizer(r.Context(), loc)))
		})
	}
}
