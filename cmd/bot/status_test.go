package main

import (
	"context"
	"errors"
	"testing"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

type fakePolicies struct {
	policy *models.GuildPolicy
	err    error
	asked  string
}

func (f *fakePolicies) Policy(ctx context.Context, guildID string) (*models.GuildPolicy, error) {
	f.asked = guildID
	return f.policy, f.err
}

func TestPolicySummary(t *testing.T) {
	p := models.DefaultGuildPolicy("g1")
	p.Enabled = true
	p.Whitelist.UserIDs = []string{"a", "b"}
	p.AdminUserIDs = []string{"c"}
	p.Logging.ChannelID = "chan"

	got := policySummary(p)

	if got["guildId"] != "g1" {
		t.Errorf("guildId = %v, want g1", got["guildId"])
	}
	if got["enabled"] != true {
		t.Errorf("enabled = %v, want true", got["enabled"])
	}
	if got["punishment"] != models.PunishmentBan {
		t.Errorf("punishment = %v, want %v", got["punishment"], models.PunishmentBan)
	}
	if got["whitelist"] != 2 {
		t.Errorf("whitelist = %v, want 2", got["whitelist"])
	}
	if got["admins"] != 1 {
		t.Errorf("admins = %v, want 1", got["admins"])
	}
	if got["logging"] != true {
		t.Errorf("logging = %v, want true", got["logging"])
	}

	limits, ok := got["limits"].(map[string]interface{})
	if !ok {
		t.Fatalf("limits has type %T", got["limits"])
	}
	if len(limits) != len(models.AllActionKinds()) {
		t.Errorf("len(limits) = %d, want %d", len(limits), len(models.AllActionKinds()))
	}
	ban, ok := limits[string(models.ActionMemberBan)].(map[string]interface{})
	if !ok {
		t.Fatalf("limits[%s] missing", models.ActionMemberBan)
	}
	if ban["max"] != uint(3) {
		t.Errorf("memberBan max = %v, want 3", ban["max"])
	}
}

func TestPolicySummaryLoggingWithoutChannel(t *testing.T) {
	p := models.DefaultGuildPolicy("g1")
	if got := policySummary(p)["logging"]; got != false {
		t.Errorf("logging = %v, want false", got)
	}
}

func TestAntinukeStatusHandler(t *testing.T) {
	store := &fakePolicies{policy: models.DefaultGuildPolicy("g1")}
	handler := antinukeStatusHandler(store)

	if _, err := handler(map[string]interface{}{}); err == nil {
		t.Error("handler() without guildId returned nil error")
	}

	resp, err := handler(map[string]interface{}{"guildId": "g1"})
	if err != nil {
		t.Fatalf("handler() error = %v", err)
	}
	if store.asked != "g1" {
		t.Errorf("Policy() asked for %q, want g1", store.asked)
	}
	summary, ok := resp.(map[string]interface{})
	if !ok || summary["guildId"] != "g1" {
		t.Errorf("handler() = %v, want summary for g1", resp)
	}

	boom := errors.New("boom")
	failing := antinukeStatusHandler(&fakePolicies{err: boom})
	if _, err := failing(map[string]interface{}{"guildId": "g1"}); !errors.Is(err, boom) {
		t.Errorf("handler() error = %v, want %v", err, boom)
	}
}
