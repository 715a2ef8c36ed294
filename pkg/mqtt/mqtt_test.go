package mqtt

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/antinuke"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/goccy/go-json"
)

func TestTopicMatch(t *testing.T) {
	tests := []struct {
		pattern string
		topic   string
		want    bool
	}{
		{"pancy/antinuke/+/breach", "pancy/antinuke/123/breach", true},
		{"pancy/antinuke/+/breach", "pancy/antinuke/123/punishment", false},
		{"pancy/antinuke/#", "pancy/antinuke/123/breach", true},
		{"pancy/antinuke/#", "pancy/antinuke", true},
		{"pancy/request/status", "pancy/request/status", true},
		{"pancy/request/status", "pancy/request/status/x", false},
		{"pancy/+", "pancy", false},
	}
	for _, tt := range tests {
		if got := topicMatch(tt.pattern, tt.topic); got != tt.want {
			t.Errorf("topicMatch(%q, %q) = %v, want %v", tt.pattern, tt.topic, got, tt.want)
		}
	}
}

func TestHandleRequest(t *testing.T) {
	body, _ := json.Marshal(MqttRequest{CorrelationID: "abc", Payload: map[string]interface{}{"guildId": "g1"}})

	topic, resp, err := handleRequest("guard", "guard/request/antinuke/status", body, func(p map[string]interface{}) (interface{}, error) {
		if p["_topic"] != "antinuke/status" {
			t.Errorf("_topic = %v, want %v", p["_topic"], "antinuke/status")
		}
		return p["guildId"], nil
	})
	if err != nil {
		t.Fatalf("handleRequest() error = %v", err)
	}
	if topic != "guard/response/antinuke/status/abc" {
		t.Errorf("topic = %v, want %v", topic, "guard/response/antinuke/status/abc")
	}
	if resp.Data != "g1" || resp.Error != "" {
		t.Errorf("response = %+v, want data g1", resp)
	}

	_, resp, _ = handleRequest("guard", "guard/request/x", body, func(map[string]interface{}) (interface{}, error) {
		return nil, errors.New("fallo")
	})
	if resp.Error != "fallo" {
		t.Errorf("response.Error = %v, want %v", resp.Error, "fallo")
	}

	if _, _, err := handleRequest("guard", "guard/request/x", []byte("{"), nil); err == nil {
		t.Error("handleRequest(invalid json) error = nil")
	}
}

type recPublisher struct {
	mu     sync.Mutex
	topics []string
	bodies []interface{}
	err    error
}

func (r *recPublisher) Publish(topic string, payload interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
	r.bodies = append(r.bodies, payload)
	return r.err
}

func TestBusPublishesBreachesAndPunishments(t *testing.T) {
	pub := &recPublisher{}
	bus := NewBus(pub, "pancy", 8)

	ev := antinuke.Event{GuildID: "g1", ActorID: "a1", Kind: models.ActionRoleDelete, At: time.Now()}
	bus.ObserveEvaluation(ev, antinuke.Result{Outcome: antinuke.OutcomeBelowThreshold, Count: 1, Max: 3}, nil)
	bus.ObserveEvaluation(ev, antinuke.Result{Outcome: antinuke.OutcomeBreached, Count: 3, Max: 3, IncidentID: "inc"}, nil)
	bus.ObserveEvaluation(ev, antinuke.Result{Outcome: antinuke.OutcomeBreached}, errors.New("db"))
	bus.ObservePunishment(ev, antinuke.PunishmentResult{Action: models.PunishmentKick, Status: antinuke.StatusApplied, Success: true}, time.Second)
	bus.Close()

	want := []string{"pancy/antinuke/g1/breach", "pancy/antinuke/g1/punishment"}
	if len(pub.topics) != len(want) {
		t.Fatalf("topics = %v, want %v", pub.topics, want)
	}
	for i := range want {
		if pub.topics[i] != want[i] {
			t.Errorf("topics[%d] = %v, want %v", i, pub.topics[i], want[i])
		}
	}

	breach, ok := pub.bodies[0].(BreachEvent)
	if !ok || breach.IncidentID != "inc" || breach.Count != 3 {
		t.Errorf("breach = %+v, want incident inc count 3", pub.bodies[0])
	}
	punish, ok := pub.bodies[1].(PunishmentEvent)
	if !ok || punish.ElapsedMs != 1000 || punish.Punishment != models.PunishmentKick {
		t.Errorf("punishment = %+v, want kick after 1000ms", pub.bodies[1])
	}
}

type blockingPublisher struct {
	release chan struct{}
	count   int
	mu      sync.Mutex
}

func (b *blockingPublisher) Publish(string, interface{}) error {
	<-b.release
	b.mu.Lock()
	b.count++
	b.mu.Unlock()
	return nil
}

func TestBusNeverBlocks(t *testing.T) {
	pub := &blockingPublisher{release: make(chan struct{})}
	bus := NewBus(pub, "pancy", 1)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			bus.ObservePunishment(antinuke.Event{GuildID: "g"}, antinuke.PunishmentResult{}, 0)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("observer blocked on a stuck publisher")
	}
	close(pub.release)
	bus.Close()

	if pub.count > 2 {
		t.Errorf("published = %d, want at most 2", pub.count)
	}
}
