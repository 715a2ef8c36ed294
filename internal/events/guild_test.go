package events

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestParseWebhookURL(t *testing.T) {
	tests := []struct {
		raw       string
		id, token string
		ok        bool
	}{
		{"https://discord.com/api/webhooks/123/abc", "123", "abc", true},
		{"https://discord.com/api/v10/webhooks/123/abc-def/", "123", "abc-def", true},
		{"https://discord.com/api/webhooks/123", "", "", false},
		{"https://example.com/hooks/123/abc", "", "", false},
		{"", "", "", false},
		{"::not a url", "", "", false},
	}

	for _, tt := range tests {
		id, token, ok := parseWebhookURL(tt.raw)
		if id != tt.id || token != tt.token || ok != tt.ok {
			t.Errorf("parseWebhookURL(%q) = %q, %q, %v, want %q, %q, %v", tt.raw, id, token, ok, tt.id, tt.token, tt.ok)
		}
	}
}

func TestGuildReportEmbed(t *testing.T) {
	joined := guildReportEmbed(&discordgo.Guild{ID: "1", Name: "Test", MemberCount: 5}, true)
	if joined.Title != "➕ Nuevo servidor" {
		t.Errorf("Title = %q, want join title", joined.Title)
	}
	if joined.Fields[2].Value != "5" {
		t.Errorf("members = %q, want %q", joined.Fields[2].Value, "5")
	}

	left := guildReportEmbed(&discordgo.Guild{ID: "1"}, false)
	if left.Title != "➖ Servidor abandonado" {
		t.Errorf("Title = %q, want leave title", left.Title)
	}
	if left.Fields[0].Value != "Desconocido" {
		t.Errorf("name = %q, want %q", left.Fields[0].Value, "Desconocido")
	}
}
