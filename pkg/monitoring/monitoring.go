package monitoring

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/liteview/liteview/pkg/config"
	"github.com/liteview/liteview/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Monitoring struct {
	conf   config.Monitoring
	server *http.Server
	log    *logger.Logger
}

// New creates new monitoring service.
func New(conf config.Monitoring, log *logger.Logger) *Monitoring {
	log = log.Module("monitoring")
	h := http.NewServeMux()
	addr := fmt.Sprintf(":%d", conf.Port)

	if conf.ProfilingEnabled {
		prefix := conf.URLPrefix + "/debug/pprof"
		log.Info().Msgf("profiling is enabled at %v", addr+prefix)
		h.HandleFunc(prefix+"/", pprof.Index)
		h.HandleFunc(prefix+"/cmdline", pprof.Cmdline)
		h.HandleFunc(prefix+"/profile", pprof.Profile)
		h.HandleFunc(prefix+"/symbol", pprof.Symbol)
		h.HandleFunc(prefix+"/trace", pprof.Trace)
		// named profiles under a custom prefix need explicit handlers
		for _, name := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
			h.Handle(prefix+"/"+name, pprof.Handler(name))
		}
	}

	if conf.MetricEnabled {
		metricPath := conf.URLPrefix + "/metrics"
		log.Info().Msgf("prometheus metrics are enabled at %v", addr+metricPath)
		h.Handle(metricPath, promhttp.Handler())
	}

	return &Monitoring{
		conf:   conf,
		server: &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second},
		log:    log,
	}
}

func (m *Monitoring) Run() {
	ln, err := net.Listen("tcp", m.server.Addr)
	if err != nil {
		m.log.Error().Err(err).Msg("monitoring server")
		return
	}
	m.log.Info().Msgf("starting monitoring server at %v", ln.Addr())
	go func() {
		if err := m.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.log.Error().Err(err).Msg("monitoring server")
		}
	}()
}

func (m *Monitoring) Shutdown(ctx context.Context) error {
	m.log.Info().Msg("shutting down monitoring server")
	return m.server.Shutdown(ctx)
}

func (m *Monitoring) String() string {
	return fmt.Sprintf("monitoring::%s:%d", m.conf.URLPrefix, m.conf.Port)
}
