package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler exposes the default prometheus registry. Individual subsystems
// register their own collectors via promauto.
func Handler() http.Handler {
	return promhttp.Handler()
}
