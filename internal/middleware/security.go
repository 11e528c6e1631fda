package middleware

import "net/http"

// contentSecurityPolicy allows the site's own assets plus the IPFS gateway
// ledger and wallet endpoints the site talks to.
const contentSecurityPolicy = "default-src 'self'; " +
	"script-src 'self'; " +
	"style-src 'self' 'unsafe-inline'; " +
	"img-src 'self' data: https://xrpfuzzy.com https://ipfs.xrp.cafe https://ipfs.io; " +
	"connect-src 'self' https://xumm.app wss://xrpl.ws https://ipfs.xrp.cafe https://ipfs.io wss://xrplcluster.com https://bithomp.com; " +
	"font-src 'self' data:; " +
	"object-src 'none'; " +
	"frame-ancestors 'self'; " +
	"base-uri 'self'"

// SecureHeaders sets the browser hardening headers on every response.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", contentSecurityPolicy)
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cross-Origin-Opener-Policy", "same-origin")
		h.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}
