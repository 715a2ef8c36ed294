// Package metrics exposes the bot's Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/antinuke"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds every metric. A nil *Recorder is a no-op.
type Recorder struct {
	evaluations      *prometheus.CounterVec
	evaluationErrors *prometheus.CounterVec
	punishments      *prometheus.CounterVec
	punishDuration   *prometheus.HistogramVec
	filterHits       *prometheus.CounterVec
	commands         *prometheus.CounterVec
	guilds           prometheus.Gauge
	writeQueue       prometheus.Gauge
}

// NewRecorder registers metrics with the provided registry.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pancyguard_antinuke_evaluations_total",
			Help: "Monitored actions evaluated, by action kind and outcome",
		}, []string{"action", "outcome"}),
		evaluationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pancyguard_antinuke_evaluation_errors_total",
			Help: "Evaluations aborted by a persistence failure",
		}, []string{"action"}),
		punishments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pancyguard_antinuke_punishments_total",
			Help: "Punishments executed, by type and status",
		}, []string{"type", "status"}),
		punishDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pancyguard_antinuke_punishment_duration_seconds",
			Help:    "Latency of punishment execution",
			Buckets: prometheus.DefBuckets,
		}, []string{"type"}),
		filterHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pancyguard_filter_violations_total",
			Help: "Content filter violations, by module",
		}, []string{"module"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pancyguard_commands_total",
			Help: "Slash commands executed, by command and result",
		}, []string{"command", "result"}),
		guilds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pancyguard_guilds",
			Help: "Guilds the bot is in",
		}),
		writeQueue: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pancyguard_db_write_queue_depth",
			Help: "Database writes waiting for a reconnection",
		}),
	}

	reg.MustRegister(
		r.evaluations,
		r.evaluationErrors,
		r.punishments,
		r.punishDuration,
		r.filterHits,
		r.commands,
		r.guilds,
		r.writeQueue,
	)
	return r
}

// Handler returns the HTTP handler serving reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// ObserveEvaluation implements antinuke.Observer.
func (r *Recorder) ObserveEvaluation(ev antinuke.Event, res antinuke.Result, err error) {
	if r == nil {
		return
	}
	if err != nil {
		r.evaluationErrors.WithLabelValues(string(ev.Kind)).Inc()
		return
	}
	r.evaluations.WithLabelValues(string(ev.Kind), res.Outcome.String()).Inc()
}

// ObservePunishment implements antinuke.Observer.
func (r *Recorder) ObservePunishment(_ antinuke.Event, res antinuke.PunishmentResult, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.punishments.WithLabelValues(string(res.Action), string(res.Status)).Inc()
	r.punishDuration.WithLabelValues(string(res.Action)).Observe(elapsed.Seconds())
}

// ObserveFilterViolation counts one content filter hit.
func (r *Recorder) ObserveFilterViolation(module models.FilterModule) {
	if r == nil {
		return
	}
	r.filterHits.WithLabelValues(string(module)).Inc()
}

// ObserveCommand counts one slash command execution.
func (r *Recorder) ObserveCommand(name string, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.commands.WithLabelValues(name, result).Inc()
}

// SetGuilds records the guild count.
func (r *Recorder) SetGuilds(n int) {
	if r == nil {
		return
	}
	r.guilds.Set(float64(n))
}

// SetWriteQueueDepth records the pending offline write count.
func (r *Recorder) SetWriteQueueDepth(n int) {
	if r == nil {
		return
	}
	r.writeQueue.Set(float64(n))
}
