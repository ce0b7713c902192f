package profiling

import (
	"net"
	"net/http"

	// Registers the pprof handlers on the default mux.
	_ "net/http/pprof"

	"github.com/tari-project/tari-sub014/infrastructure/logger"
	"github.com/tari-project/tari-sub014/util/panics"
)

// Start serves the pprof handlers on the given port from a background
// goroutine. The root path redirects to /debug/pprof.
func Start(port string, log *logger.Logger) {
	panics.Spawn(log, func() {
		addr := net.JoinHostPort("", port)
		log.Infof("Profile server listening on %s", addr)
		http.Handle("/", http.RedirectHandler("/debug/pprof", http.StatusSeeOther))
		log.Error(http.ListenAndServe(addr, nil))
	})
}
