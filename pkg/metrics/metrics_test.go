package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/antinuke"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveEvaluation(t *testing.T) {
	r := NewRecorder(prometheus.NewRegistry())
	ev := antinuke.Event{Kind: models.ActionChannelDelete}

	r.ObserveEvaluation(ev, antinuke.Result{Outcome: antinuke.OutcomeBelowThreshold}, nil)
	r.ObserveEvaluation(ev, antinuke.Result{Outcome: antinuke.OutcomeBreached}, nil)
	r.ObserveEvaluation(ev, antinuke.Result{Outcome: antinuke.OutcomeBreached}, nil)
	r.ObserveEvaluation(ev, antinuke.Result{}, errors.New("db down"))

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"below", testutil.ToFloat64(r.evaluations.WithLabelValues("channelDelete", "below_threshold")), 1},
		{"breached", testutil.ToFloat64(r.evaluations.WithLabelValues("channelDelete", "breached")), 2},
		{"errors", testutil.ToFloat64(r.evaluationErrors.WithLabelValues("channelDelete")), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestObservePunishment(t *testing.T) {
	r := NewRecorder(prometheus.NewRegistry())
	r.ObservePunishment(antinuke.Event{}, antinuke.PunishmentResult{
		Action: models.PunishmentBan,
		Status: antinuke.StatusApplied,
	}, 30*time.Millisecond)

	if got := testutil.ToFloat64(r.punishments.WithLabelValues("ban", "applied")); got != 1 {
		t.Errorf("punishments = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(r.punishDuration); got != 1 {
		t.Errorf("punishDuration series = %d, want 1", got)
	}
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.ObserveEvaluation(antinuke.Event{}, antinuke.Result{}, nil)
	r.ObservePunishment(antinuke.Event{}, antinuke.PunishmentResult{}, 0)
	r.ObserveFilterViolation(models.FilterCaps)
	r.ObserveCommand("ping", nil)
	r.SetGuilds(3)
	r.SetWriteQueueDepth(1)
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)
	r.ObserveFilterViolation(models.FilterInvites)
	r.ObserveCommand("antinuke", errors.New("x"))
	r.SetGuilds(7)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`pancyguard_filter_violations_total{module="invites"} 1`,
		`pancyguard_commands_total{command="antinuke",result="error"} 1`,
		`pancyguard_guilds 7`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}
