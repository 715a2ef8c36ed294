package mqtt

import (
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/antinuke"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

// Publisher sends a JSON payload to a topic.
type Publisher interface {
	Publish(topic string, payload interface{}) error
}

// BreachEvent is published when an actor crosses a threshold.
type BreachEvent struct {
	IncidentID string            `json:"incidentId"`
	GuildID    string            `json:"guildId"`
	GuildName  string            `json:"guildName,omitempty"`
	ActorID    string            `json:"actorId"`
	ActorName  string            `json:"actorName,omitempty"`
	Action     models.ActionKind `json:"action"`
	Count      uint              `json:"count"`
	Limit      uint              `json:"limit"`
	Timestamp  time.Time         `json:"timestamp"`
}

// PunishmentEvent is published after every punishment attempt.
type PunishmentEvent struct {
	GuildID    string                    `json:"guildId"`
	ActorID    string                    `json:"actorId"`
	Action     models.ActionKind         `json:"action"`
	Punishment models.PunishmentKind     `json:"punishment"`
	Status     antinuke.PunishmentStatus `json:"status"`
	Success    bool                      `json:"success"`
	Reason     string                    `json:"reason,omitempty"`
	ElapsedMs  int64                     `json:"elapsedMs"`
	Timestamp  time.Time                 `json:"timestamp"`
}

type outgoing struct {
	topic   string
	payload interface{}
}

// Bus publishes anti-nuke incidents. It implements antinuke.Observer and
// never blocks the caller: messages beyond the buffer are dropped.
type Bus struct {
	pub    Publisher
	prefix string
	queue  chan outgoing
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

// NewBus starts a Bus publishing through pub under prefix.
func NewBus(pub Publisher, prefix string, buffer int) *Bus {
	if buffer <= 0 {
		buffer = 256
	}
	b := &Bus{
		pub:    pub,
		prefix: prefix,
		queue:  make(chan outgoing, buffer),
		done:   make(chan struct{}),
	}
	b.wg.Add(1)
	go b.run()
	return b
}

func (b *Bus) run() {
	defer b.wg.Done()
	for {
		select {
		case msg := <-b.queue:
			b.send(msg)
		case <-b.done:
			for {
				select {
				case msg := <-b.queue:
					b.send(msg)
				default:
					return
				}
			}
		}
	}
}

func (b *Bus) send(msg outgoing) {
	if err := b.pub.Publish(msg.topic, msg.payload); err != nil {
		logger.Warn(fmt.Sprintf("No se pudo publicar en %s: %v", msg.topic, err), "MQTT")
	}
}

func (b *Bus) enqueue(topic string, payload interface{}) {
	select {
	case b.queue <- outgoing{topic: topic, payload: payload}:
	default:
		logger.Warn(fmt.Sprintf("Cola MQTT llena, se descarta %s", topic), "MQTT")
	}
}

// BreachTopic is where breaches of a guild are published.
func (b *Bus) BreachTopic(guildID string) string {
	return buildTopic(b.prefix, "antinuke", guildID, "breach")
}

// PunishmentTopic is where punishments of a guild are published.
func (b *Bus) PunishmentTopic(guildID string) string {
	return buildTopic(b.prefix, "antinuke", guildID, "punishment")
}

// ObserveEvaluation publishes breaches. Other outcomes are ignored.
func (b *Bus) ObserveEvaluation(ev antinuke.Event, res antinuke.Result, err error) {
	if err != nil || !res.Breached() {
		return
	}
	b.enqueue(b.BreachTopic(ev.GuildID), BreachEvent{
		IncidentID: res.IncidentID,
		GuildID:    ev.GuildID,
		GuildName:  ev.GuildName,
		ActorID:    ev.ActorID,
		ActorName:  ev.ActorName,
		Action:     ev.Kind,
		Count:      res.Count,
		Limit:      res.Max,
		Timestamp:  ev.At,
	})
}

// ObservePunishment publishes the punishment result.
func (b *Bus) ObservePunishment(ev antinuke.Event, res antinuke.PunishmentResult, elapsed time.Duration) {
	b.enqueue(b.PunishmentTopic(ev.GuildID), PunishmentEvent{
		GuildID:    ev.GuildID,
		ActorID:    ev.ActorID,
		Action:     ev.Kind,
		Punishment: res.Action,
		Status:     res.Status,
		Success:    res.Success,
		Reason:     res.Reason,
		ElapsedMs:  elapsed.Milliseconds(),
		Timestamp:  time.Now(),
	})
}

// Close flushes pending messages and stops the worker.
func (b *Bus) Close() {
	b.once.Do(func() { close(b.done) })
	b.wg.Wait()
}
