package antinuke

import (
	"context"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/PancyStudios/PancyGuardGo/pkg/permissions"
)

// PolicyStore loads and saves guild policies. GetOrCreatePolicy never
// returns nil without an error.
type PolicyStore interface {
	GetOrCreatePolicy(ctx context.Context, guildID string) (*models.GuildPolicy, error)
	SavePolicy(ctx context.Context, policy *models.GuildPolicy) error
}

// CounterStore keeps the per guild, actor and kind counters. Increment must
// be atomic per key and return the post-increment value.
type CounterStore interface {
	Increment(ctx context.Context, guildID, actorID string, kind models.ActionKind, at time.Time) (uint, error)
	ResetCounters(ctx context.Context, guildID, actorID string, kind *models.ActionKind) (int64, error)
	Counters(ctx context.Context, guildID, actorID string) ([]models.ActionCounter, error)
}

// ViolationLog is the append-only action and punishment history.
type ViolationLog interface {
	Append(ctx context.Context, entry models.ViolationLogEntry) error
	Query(ctx context.Context, q models.ViolationQuery) ([]models.ViolationLogEntry, error)
}

// ConfinementStore records confinements so they can be lifted later.
type ConfinementStore interface {
	SaveConfinement(ctx context.Context, c models.Confinement) error
}

// Role is a guild role as seen by the punisher.
type Role struct {
	ID          string
	Name        string
	Permissions int64
	Position    int
	Managed     bool
}

// Membership performs member lookups and moderation calls on the platform.
// FetchMember returns ErrMemberNotFound when the user is not in the guild.
type Membership interface {
	FetchMember(ctx context.Context, guildID, userID string) (permissions.Member, error)
	MemberRoles(ctx context.Context, guildID, userID string) ([]Role, error)
	BotHighestRoleRank(ctx context.Context, guildID string) (int, error)
	Kick(ctx context.Context, guildID, userID, reason string) error
	Ban(ctx context.Context, guildID, userID, reason string, purgeDays int) error
	RemoveRole(ctx context.Context, guildID, userID, roleID, reason string) error
	Confine(ctx context.Context, guildID, userID, roleID string, until time.Time, reason string) error
}

// OwnerResolver looks up the current owner of a guild.
type OwnerResolver interface {
	GuildOwner(ctx context.Context, guildID string) (string, error)
}

// Notifier delivers notifications to the guild log channel and to users.
type Notifier interface {
	LogToChannel(ctx context.Context, channelID string, n Notification) error
	DirectMessage(ctx context.Context, userID string, n Notification) error
}

// Observer receives every evaluation and punishment, for metrics and the
// event bus. Implementations must not block.
type Observer interface {
	ObserveEvaluation(ev Event, res Result, err error)
	ObservePunishment(ev Event, res PunishmentResult, elapsed time.Duration)
}
