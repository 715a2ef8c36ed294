package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/database"
	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/metrics"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/PancyStudios/PancyGuardGo/pkg/mqtt"
	"github.com/PancyStudios/PancyGuardGo/pkg/web"
)

// runtimeStatus answers the web status routes from the live client.
type runtimeStatus struct {
	client *discord.ExtendedClient
	db     *database.Database
}

func (s runtimeStatus) DatabaseStatus(ctx context.Context) (string, bool) {
	return s.db.GetStatus(ctx)
}

func (s runtimeStatus) BotStatus() web.BotStatus {
	st := web.BotStatus{}
	if s.client == nil || s.client.Session == nil {
		return st
	}
	st.Online = s.client.IsReady()
	st.Guilds = s.client.GuildCount()
	st.Latency = s.client.Session.HeartbeatLatency()
	if u := s.client.Session.State.User; u != nil {
		st.ID = u.ID
		st.Username = u.Username
		st.Avatar = u.AvatarURL("")
	}
	return st
}

type policyReader interface {
	Policy(ctx context.Context, guildID string) (*models.GuildPolicy, error)
}

// policySummary is the compact policy view published over MQTT.
func policySummary(p *models.GuildPolicy) map[string]interface{} {
	limits := make(map[string]interface{}, len(p.Limits))
	for _, k := range models.AllActionKinds() {
		l := p.Limit(k)
		limits[string(k)] = map[string]interface{}{"enabled": l.Enabled, "max": l.Max}
	}
	return map[string]interface{}{
		"guildId":    p.GuildID,
		"enabled":    p.Enabled,
		"punishment": p.Punishment.Type,
		"limits":     limits,
		"whitelist":  len(p.Whitelist.UserIDs),
		"admins":     len(p.AdminUserIDs),
		"logging":    p.Logging.Enabled && p.Logging.ChannelID != "",
		"updatedAt":  p.UpdatedAt,
	}
}

// antinukeStatusHandler answers the "antinuke/status" request.
func antinukeStatusHandler(engine policyReader) mqtt.RequestHandler {
	return func(payload map[string]interface{}) (interface{}, error) {
		guildID, _ := payload["guildId"].(string)
		if guildID == "" {
			return nil, errors.New("guildId requerido")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		policy, err := engine.Policy(ctx, guildID)
		if err != nil {
			return nil, fmt.Errorf("no se pudo leer la política: %w", err)
		}
		return policySummary(policy), nil
	}
}

// watchWriteQueue samples the offline write queue into the metrics until ctx ends.
func watchWriteQueue(ctx context.Context, db *database.Database, rec *metrics.Recorder, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rec.SetWriteQueueDepth(db.QueueLength())
		case <-ctx.Done():
			return
		}
	}
}
