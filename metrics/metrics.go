package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	// EventsReceived counts gateway events that may concern a board
	EventsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "boards",
		Name:      "events_received_total",
		Help:      "Gateway events handed to the router.",
	})

	// EventsRouted counts gateway events forwarded to the aggregator, by event
	EventsRouted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "boards",
		Name:      "events_routed_total",
		Help:      "Gateway events forwarded to the aggregator.",
	}, []string{"event"})

	// EventsDropped counts gateway events the router filtered out, by reason
	EventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "boards",
		Name:      "events_dropped_total",
		Help:      "Gateway events dropped by the router.",
	}, []string{"reason"})

	// MirrorsCreated counts posted mirror messages, by board kind
	MirrorsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "boards",
		Name:      "mirrors_created_total",
		Help:      "Mirror messages posted on a board.",
	}, []string{"kind"})

	// MirrorsEdited counts mirror message edits, by board kind
	MirrorsEdited = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "boards",
		Name:      "mirrors_edited_total",
		Help:      "Mirror messages edited after a count change.",
	}, []string{"kind"})

	// MirrorsDeleted counts removed mirror records, by board kind
	MirrorsDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "boards",
		Name:      "mirrors_deleted_total",
		Help:      "Mirror records removed.",
	}, []string{"kind"})

	// PlatformFailures counts failed discord calls, by operation
	PlatformFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "boards",
		Name:      "platform_failures_total",
		Help:      "Failed discord calls.",
	}, []string{"op"})

	// HandlePanics counts recovered panics while handling an event
	HandlePanics = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "boards",
		Name:      "handle_panics_total",
		Help:      "Panics recovered while handling an event.",
	})

	// CommandsExecuted increases after each command execution
	CommandsExecuted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "boards",
		Name:      "commands_executed_total",
		Help:      "Executed bot commands.",
	})

	// Uptime stores the timestamp of the bot's boot
	Uptime = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "boards",
		Name:      "start_time_seconds",
		Help:      "Unix time the bot was started at.",
	})
)

// Init starts the metrics http server on address, it returns the server so it can be shut down
func Init(address string, log *logrus.Entry) *http.Server {
	Uptime.Set(float64(time.Now().Unix()))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infof("listening on %s", address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("metrics server stopped")
		}
	}()
	return server
}
