package security

import (
	"net/http"
	"net/url"

	applog "expenselog/internal/log"
)

// IsCrossSite reports whether a browser marked the request as coming from
// another site, or its Origin does not match the Host.
func IsCrossSite(r *http.Request) bool {
	switch r.Header.Get("Sec-Fetch-Site") {
	case "cross-site", "same-site":
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || origin == "null" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil {
		return true
	}
	return u.Host != r.Host
}

// SameOrigin refuses unsafe requests that come from another site with 403.
// Any page the user visits can post forms to a loopback address.
func SameOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
		default:
			if IsCrossSite(r) {
				applog.FromContext(r.Context()).WithComponent(applog.ComponentSecurity).
					WarnContext(r.Context(), "Cross-site request refused",
						applog.FieldMethod, r.Method, applog.FieldPath, r.URL.Path, "origin", r.Header.Get("Origin"))
				http.Error(w, "cross-site request refused", http.StatusForbidden)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
