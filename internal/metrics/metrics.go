package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BotUpdates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventbot", Name: "updates_total", Help: "Processed telegram updates",
	}, []string{"kind"})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "eventbot", Name: "handler_errors_total", Help: "Handler errors",
	})
	RouteHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventbot", Name: "route_hits_total", Help: "Updates consumed by route",
	}, []string{"chain", "route"})
	Registrations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventbot", Name: "event_registrations_total", Help: "Event registration attempts by outcome",
	}, []string{"outcome"})
	WizardCommits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventbot", Name: "wizard_commits_total", Help: "Completed wizards",
	}, []string{"wizard"})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "eventbot", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})

	UpcomingEvents = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "eventbot", Name: "upcoming_events", Help: "Events that have not started yet",
	})
	OpenHomeworks = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "eventbot", Name: "open_homeworks", Help: "Homeworks still accepting answers",
	})
	Users = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "eventbot", Name: "users", Help: "Known users",
	})
)

func init() {
	prometheus.MustRegister(BotUpdates, HandlerErrors, RouteHits, Registrations, WizardCommits, DBPing,
		UpcomingEvents, OpenHomeworks, Users)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }
