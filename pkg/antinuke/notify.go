package antinuke

import (
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

// NotificationKind selects how a notification is rendered.
type NotificationKind string

const (
	NotifyAction     NotificationKind = "action"
	NotifyPunishment NotificationKind = "punishment"
	NotifyDirect     NotificationKind = "direct"
)

// Notification is a platform independent payload for the log channel or a DM.
type Notification struct {
	Kind                NotificationKind
	GuildID             string
	GuildName           string
	ActorID             string
	Action              models.ActionKind
	Count               uint
	Limit               uint
	Punishment          models.PunishmentKind
	Status              PunishmentStatus
	Success             bool
	Reason              string
	RemovedRoles        []string
	StrippedPermissions []string
	ConfinedUntil       *time.Time
	IncidentID          string
	Timestamp           time.Time
}
