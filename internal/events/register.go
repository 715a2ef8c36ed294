// Package events wires gateway events to the anti-nuke engine, the content
// filter and the confinement sweeper.
package events

import (
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/discord/access"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/metrics"
)

// Deps are the collaborators the event handlers need.
type Deps struct {
	Engine        Handler
	Guard         *discord.Guard
	Access        access.Checker
	Filters       FilterStore
	Confinements  ConfinementSource
	Metrics       *metrics.Recorder
	AuditWindow   time.Duration
	SweepInterval time.Duration
	FilterEnabled bool
	GuildsWebhook string
}

// Registry holds the running event components.
type Registry struct {
	Monitor *Monitor
	Filter  *ContentFilter
	Sweeper *Sweeper
}

// RegisterAll registers all events with the Discord client
func RegisterAll(client *discord.ExtendedClient, deps Deps) *Registry {
	logger.System("📋 Registrando eventos del bot...", "Events")

	reg := &Registry{}
	eh := client.EventHandler

	// Ready event (bot startup)
	RegisterReadyEvent(client, deps.Metrics)

	// Shard connection state
	RegisterShardEvents(client)

	// Anti-nuke monitoring
	reg.Monitor = NewMonitor(deps.Engine, NewAttributor(client.Session, deps.AuditWindow), sessionDirectory{client.Session})
	eh.OnAuditLogEntryCreate(reg.Monitor.RecordAudit)
	eh.OnChannelCreate(reg.Monitor.onChannelCreate)
	eh.OnChannelDelete(reg.Monitor.onChannelDelete)
	eh.OnGuildRoleCreate(reg.Monitor.onRoleCreate)
	eh.OnGuildRoleDelete(reg.Monitor.onRoleDelete)
	eh.OnGuildRoleUpdate(reg.Monitor.onRoleUpdate)
	eh.OnGuildBanAdd(reg.Monitor.onBanAdd)
	eh.OnGuildMemberRemove(reg.Monitor.onMemberRemove)
	eh.OnWebhooksUpdate(reg.Monitor.onWebhooksUpdate)
	eh.OnGuildEmojisUpdate(reg.Monitor.onEmojisUpdate)
	eh.OnGuildUpdate(reg.Monitor.onGuildUpdate)

	// Guild events (server join/leave)
	RegisterGuildEvents(client, reg.Monitor, deps.Metrics, deps.GuildsWebhook)

	// Content filter
	if deps.FilterEnabled && deps.Filters != nil {
		reg.Filter = NewContentFilter(deps.Filters, deps.Access, deps.Guard, deps.Metrics)
		eh.OnMessageCreate(reg.Filter.onMessageCreate)
	} else {
		logger.Info("Filtro de contenido desactivado", "Events")
	}

	// Confinement expiry
	if deps.Confinements != nil && deps.Guard != nil {
		reg.Sweeper = NewSweeper(deps.Confinements, deps.Guard, deps.SweepInterval)
		reg.Sweeper.Start()
	}

	logger.Success("✅ Todos los eventos registrados correctamente", "Events")
	return reg
}

// Stop halts background work started by RegisterAll.
func (r *Registry) Stop() {
	if r != nil && r.Sweeper != nil {
		r.Sweeper.Stop()
	}
}
