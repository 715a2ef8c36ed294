// Package discord provides the event handler for managing Discord events.
package discord

import (
	"fmt"
	"sync"

	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// EventHandler manages event loading and registration
type EventHandler struct {
	client *ExtendedClient
	events []interface{}
	mu     sync.RWMutex
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(client *ExtendedClient) *EventHandler {
	return &EventHandler{
		client: client,
		events: make([]interface{}, 0),
	}
}

// LoadEvents reports the handlers registered before the session opens
func (eh *EventHandler) LoadEvents() error {
	eh.mu.RLock()
	n := len(eh.events)
	eh.mu.RUnlock()
	logger.System(fmt.Sprintf("Carga finalizada. %d manejadores de eventos activos.", n), "EventHandler")
	return nil
}

// Count returns how many handlers were registered
func (eh *EventHandler) Count() int {
	eh.mu.RLock()
	defer eh.mu.RUnlock()
	return len(eh.events)
}

// RegisterEvent adds an event handler to the Discord session. handler must
// have an unnamed func type; discordgo ignores named ones.
func (eh *EventHandler) RegisterEvent(handler interface{}) {
	eh.client.Session.AddHandler(handler)
	eh.mu.Lock()
	eh.events = append(eh.events, handler)
	eh.mu.Unlock()
	logger.Debug("Evento registrado", "EventHandler")
}

// Event handler types for common Discord events

// ReadyHandler is called when the bot is ready
type ReadyHandler func(s *discordgo.Session, r *discordgo.Ready)

// GuildCreateHandler is called when the bot joins a guild
type GuildCreateHandler func(s *discordgo.Session, g *discordgo.GuildCreate)

// GuildDeleteHandler is called when the bot leaves a guild
type GuildDeleteHandler func(s *discordgo.Session, g *discordgo.GuildDelete)

// MessageCreateHandler is called when a message is created
type MessageCreateHandler func(s *discordgo.Session, m *discordgo.MessageCreate)

// MessageUpdateHandler is called when a message is updated
type MessageUpdateHandler func(s *discordgo.Session, m *discordgo.MessageUpdate)

// MessageDeleteHandler is called when a message is deleted
type MessageDeleteHandler func(s *discordgo.Session, m *discordgo.MessageDelete)

// GuildMemberAddHandler is called when a member joins a guild
type GuildMemberAddHandler func(s *discordgo.Session, m *discordgo.GuildMemberAdd)

// GuildMemberRemoveHandler is called when a member leaves a guild
type GuildMemberRemoveHandler func(s *discordgo.Session, m *discordgo.GuildMemberRemove)

// GuildMemberUpdateHandler is called when a member is updated
type GuildMemberUpdateHandler func(s *discordgo.Session, m *discordgo.GuildMemberUpdate)

// ChannelCreateHandler is called when a channel is created
type ChannelCreateHandler func(s *discordgo.Session, c *discordgo.ChannelCreate)

// ChannelDeleteHandler is called when a channel is deleted
type ChannelDeleteHandler func(s *discordgo.Session, c *discordgo.ChannelDelete)

// GuildRoleCreateHandler is called when a role is created
type GuildRoleCreateHandler func(s *discordgo.Session, r *discordgo.GuildRoleCreate)

// GuildRoleDeleteHandler is called when a role is deleted
type GuildRoleDeleteHandler func(s *discordgo.Session, r *discordgo.GuildRoleDelete)

// GuildRoleUpdateHandler is called when a role is updated
type GuildRoleUpdateHandler func(s *discordgo.Session, r *discordgo.GuildRoleUpdate)

// GuildBanAddHandler is called when a user is banned
type GuildBanAddHandler func(s *discordgo.Session, b *discordgo.GuildBanAdd)

// WebhooksUpdateHandler is called when a channel's webhooks change
type WebhooksUpdateHandler func(s *discordgo.Session, w *discordgo.WebhooksUpdate)

// GuildEmojisUpdateHandler is called when the guild emoji list changes
type GuildEmojisUpdateHandler func(s *discordgo.Session, e *discordgo.GuildEmojisUpdate)

// GuildUpdateHandler is called when guild settings change
type GuildUpdateHandler func(s *discordgo.Session, g *discordgo.GuildUpdate)

// AuditLogEntryCreateHandler is called when an audit log entry is written
type AuditLogEntryCreateHandler func(s *discordgo.Session, e *discordgo.GuildAuditLogEntryCreate)

// InteractionCreateHandler is called when an interaction is created
type InteractionCreateHandler func(s *discordgo.Session, i *discordgo.InteractionCreate)

// Helper functions to register common event types

// OnReady registers a ready event handler
func (eh *EventHandler) OnReady(handler ReadyHandler) {
	eh.RegisterEvent((func(s *discordgo.Session, r *discordgo.Ready))(handler))
	logger.Debug("Evento 'Ready' registrado", "EventHandler")
}

// OnGuildCreate registers a guild create event handler
func (eh *EventHandler) OnGuildCreate(handler GuildCreateHandler) {
	eh.RegisterEvent((func(s *discordgo.Session, g *discordgo.GuildCreate))(handler))
	logger.Debug("Evento 'GuildCreate' registrado", "EventHandler")
}

// OnGuildDelete registers a guild delete event handler
func (eh *EventHandler) OnGuildDelete(handler GuildDeleteHandler) {
	eh.RegisterEvent((func(s *discordgo.Session, g *discordgo.GuildDelete))(handler))
	logger.Debug("Evento 'GuildDelete' registrado", "EventHandler")
}

// OnMessageCreate registers a message create event handler
func (eh *EventHandler) OnMessageCreate(handler MessageCreateHandler) {
	eh.RegisterEvent((func(s *discordgo.Session, m *discordgo.MessageCreate))(handler))
	logger.Debug("Evento 'MessageCreate' registrado", "EventHandler")
}

// OnMessageUpdate registers a message update event handler
func (eh *EventHandler) OnMessageUpdate(handler MessageUpdateHandler) {
	eh.RegisterEvent((func(s *discordgo.Session, m *discordgo.MessageUpdate))(handler))
	logger.Debug("Evento 'MessageUpdate' registrado", "EventHandler")
}

// OnMessageDelete registers a message delete event handler
func (eh *EventHandler) OnMessageDelete(handler MessageDeleteHandler) {
	eh.RegisterEvent((func(s *discordgo.Session, m *discordgo.MessageDelete))(handler))
	logger.Debug("Evento 'MessageDelete' registrado", "EventHandler")
}

// OnGuildMemberAdd registers a guild member add event handler
func (eh *EventHandler) OnGuildMemberAdd(handler GuildMemberAddHandler) {
	eh.RegisterEvent((func(s *discordgo.Session, m *discordgo.GuildMemberAdd))(handler))
	logger.Debug("Evento 'GuildMemberAdd' registrado", "EventHandler")
}

// OnGuildMemberRemove registers a guild member remove event handler
func (eh *EventHandler) OnGuildMemberRemove(handler GuildMemberRemoveHandler) {
	eh.RegisterEvent((func(s *discordgo.Session, m *discordgo.GuildMemberRemove))(handler))
	logger.Debug("Evento 'GuildMemberRemove' registrado", "EventHandler")
}

// OnGuildMemberUpdate registers a guild member update event handler
func (eh *EventHandler) OnGuildMemberUpdate(handler GuildMemberUpdateHandler) {
	eh.RegisterEvent((func(s *discordgo.Session, m *discordgo.GuildMemberUpdate))(handler))
	logger.Debug("Evento 'GuildMemberUpdate' registrado", "EventHandler")
}

// OnChannelCreate registers a channel create event handler
func (eh *EventHandler) OnChannelCreate(handler ChannelCreateHandler) {
	eh.RegisterEvent((func(s *discordgo.Session, c *discordgo.ChannelCreate))(handler))
	logger.Debug("Evento 'ChannelCreate' registrado", "EventHandler")
}

// OnChannelDelete registers a channel delete event handler
func (eh *EventHandler) OnChannelDelete(handler ChannelDeleteHandler) {
	eh.RegisterEvent((func(s *discordgo.Session, c *discordgo.ChannelDelete))(handler))
	logger.Debug("Evento 'ChannelDelete' registrado", "EventHandler")
}

// OnGuildRoleCreate registers a role create event handler
func (eh *EventHandler) OnGuildRoleCreate(handler GuildRoleCreateHandler) {
	eh.RegisterEvent((func(s *discordgo.Session, r *discordgo.GuildRoleCreate))(handler))
	logger.Debug("Evento 'GuildRoleCreate' registrado", "EventHandler")
}

// OnGuildRoleDelete registers a role delete event handler
func (eh *EventHandler) OnGuildRoleDelete(handler GuildRoleDeleteHandler) {
	eh.RegisterEvent((func(s *discordgo.Session, r *discordgo.GuildRoleDelete))(handler))
	logger.Debug("Evento 'GuildRoleDelete' registrado", "EventHandler")
}

// OnGuildRoleUpdate registers a role update event handler
func (eh *EventHandler) OnGuildRoleUpdate(handler GuildRoleUpdateHandler) {
	eh.RegisterEvent((func(s *discordgo.Session, r *discordgo.GuildRoleUpdate))(handler))
	logger.Debug("Evento 'GuildRoleUpdate' registrado", "EventHandler")
}

// OnGuildBanAdd registers a ban event handler
func (eh *EventHandler) OnGuildBanAdd(handler GuildBanAddHandler) {
	eh.RegisterEvent((func(s *discordgo.Session, b *discordgo.GuildBanAdd))(handler))
	logger.Debug("Evento 'GuildBanAdd' registrado", "EventHandler")
}

// OnWebhooksUpdate registers a webhooks update event handler
func (eh *EventHandler) OnWebhooksUpdate(handler WebhooksUpdateHandler) {
	eh.RegisterEvent((func(s *discordgo.Session, w *discordgo.WebhooksUpdate))(handler))
	logger.Debug("Evento 'WebhooksUpdate' registrado", "EventHandler")
}

// OnGuildEmojisUpdate registers an emoji update event handler
func (eh *EventHandler) OnGuildEmojisUpdate(handler GuildEmojisUpdateHandler) {
	eh.RegisterEvent((func(s *discordgo.Session, e *discordgo.GuildEmojisUpdate))(handler))
	logger.Debug("Evento 'GuildEmojisUpdate' registrado", "EventHandler")
}

// OnGuildUpdate registers a guild update event handler
func (eh *EventHandler) OnGuildUpdate(handler GuildUpdateHandler) {
	eh.RegisterEvent((func(s *discordgo.Session, g *discordgo.GuildUpdate))(handler))
	logger.Debug("Evento 'GuildUpdate' registrado", "EventHandler")
}

// OnAuditLogEntryCreate registers an audit log entry event handler
func (eh *EventHandler) OnAuditLogEntryCreate(handler AuditLogEntryCreateHandler) {
	eh.RegisterEvent((func(s *discordgo.Session, e *discordgo.GuildAuditLogEntryCreate))(handler))
	logger.Debug("Evento 'GuildAuditLogEntryCreate' registrado", "EventHandler")
}

// OnInteractionCreate registers an interaction create event handler
func (eh *EventHandler) OnInteractionCreate(handler InteractionCreateHandler) {
	eh.RegisterEvent((func(s *discordgo.Session, i *discordgo.InteractionCreate))(handler))
	logger.Debug("Evento 'InteractionCreate' registrado", "EventHandler")
}
