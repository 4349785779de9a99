package profiling

import (
	"net"
	"net/http"
	"net/http/pprof"
	"strconv"

	"github.com/ledgersim/ledgersim/infrastructure/logger"
	"github.com/ledgersim/ledgersim/util/panics"
	"github.com/pkg/errors"
)

// Start serves the pprof handlers on port in a background goroutine
func Start(port string, log *logger.Logger) error {
	portNumber, err := strconv.Atoi(port)
	if err != nil || portNumber < 1024 || portNumber > 65535 {
		return errors.Errorf("the profile port must be between 1024 and 65535, got %s", port)
	}

	mux := http.NewServeMux()
	mux.Handle("/", http.RedirectHandler("/debug/pprof/", http.StatusSeeOther))
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	spawn := panics.GoroutineWrapperFunc(log)
	spawn("profiling.Start", func() {
		listenAddr := net.JoinHostPort("", port)
		log.Infof("Profile server listening on %s", listenAddr)
		log.Error(http.ListenAndServe(listenAddr, mux))
	})
	return nil
}
