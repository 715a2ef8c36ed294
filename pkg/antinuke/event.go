package antinuke

import (
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

// Event is a normalized monitored action.
type Event struct {
	GuildID    string
	GuildName  string
	OwnerID    string
	ActorID    string
	ActorName  string
	ActorIsBot bool
	Kind       models.ActionKind
	TargetID   string
	TargetName string
	Metadata   map[string]interface{}
	At         time.Time
}

// Outcome is the state an evaluation ended in.
type Outcome int

const (
	OutcomeSkipped Outcome = iota
	OutcomeBelowThreshold
	OutcomeBreached
)

func (o Outcome) String() string {
	switch o {
	case OutcomeBelowThreshold:
		return "below_threshold"
	case OutcomeBreached:
		return "breached"
	default:
		return "skipped"
	}
}

// SkipReason says why an event was not counted.
type SkipReason string

const (
	SkipDisabled     SkipReason = "disabled"
	SkipKindDisabled SkipReason = "kind_disabled"
	SkipWhitelisted  SkipReason = "whitelisted"
)

// Result is what Evaluate returns.
type Result struct {
	Outcome    Outcome
	SkipReason SkipReason
	Count      uint
	Max        uint
	IncidentID string
	Policy     *models.GuildPolicy
}

// Breached reports whether the caller must punish.
func (r Result) Breached() bool {
	return r.Outcome == OutcomeBreached
}
