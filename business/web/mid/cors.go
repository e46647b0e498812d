package mid

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/ardanlabs/forkchain/foundation/web"
)

// Headers and methods a browser is allowed to use against the API.
var (
	corsMethods = strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodOptions}, ", ")
	corsHeaders = strings.Join([]string{"Origin", "Accept", "Content-Type", "Content-Length", "Accept-Encoding"}, ", ")
	corsMaxAge  = strconv.Itoa(86400)
)

// Cors sets the Cross-Origin Resource Sharing headers for requests made from
// one of the allowed origins. An origin of "*" allows any origin. Requests
// from other origins are served without the headers.
func Cors(origins ...string) web.Middleware {
	allowed := make(map[string]bool, len(origins))
	for _, origin := range origins {
		allowed[origin] = true
	}

	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			hdr := w.Header()

			switch origin := r.Header.Get("Origin"); {
			case allowed["*"]:
				hdr.Set("Access-Control-Allow-Origin", "*")
			case origin != "" && allowed[origin]:
				hdr.Set("Access-Control-Allow-Origin", origin)
				hdr.Add("Vary", "Origin")
			default:
				return handler(ctx, w, r)
			}

			hdr.Set("Access-Control-Allow-Methods", corsMethods)
			hdr.Set("Access-Control-Allow-Headers", corsHeaders)
			hdr.Set("Access-Control-Max-Age", corsMaxAge)

			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
