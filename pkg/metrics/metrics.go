package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/synchub/synchub/pkg/log"
)

// Conf holds metrics server configuration.
type Conf struct {
	Host   string
	Port   int
	Enable bool
}

var (
	// RecordsProcessed counts records stamped processed, by kind and outcome.
	RecordsProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "synchub_records_processed_total",
		Help: "Number of records processed by the batch scheduler.",
	}, []string{"kind", "outcome"})

	// InvitationsSent counts consent invitations dispatched, by kind.
	InvitationsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "synchub_invitations_sent_total",
		Help: "Number of consent invitations sent.",
	}, []string{"kind"})

	// RegistryCalls counts remote registry calls, by method and status code.
	RegistryCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "synchub_registry_calls_total",
		Help: "Number of remote registry API calls.",
	}, []string{"method", "status"})

	// TasksCompleted counts tasks rolled up to completion.
	TasksCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "synchub_tasks_completed_total",
		Help: "Number of batch tasks marked completed.",
	})
)

// Server exposes the prometheus registry over HTTP.
type Server struct {
	conf     Conf
	server   *http.Server
	registry *prometheus.Registry
}

func NewServer(conf Conf) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(RecordsProcessed, InvitationsSent, RegistryCalls, TasksCompleted)

	return &Server{conf: conf, registry: registry}
}

// Start starts the metrics HTTP server.
func (s *Server) Start() error {
	if !s.conf.Enable {
		log.Info("metrics server is disabled")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.conf.Host, s.conf.Port),
		Handler: mux,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("metrics server error: %v", err)
		}
	}()
	log.Infof("metrics server listening on %s", s.server.Addr)
	return nil
}

// Stop shuts the metrics server down.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}
