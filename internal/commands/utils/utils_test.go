package utils

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0 segundos"},
		{45 * time.Second, "45 segundos"},
		{time.Hour + 30*time.Second, "1 horas, 30 segundos"},
		{26*time.Hour + 5*time.Minute, "1 días, 2 horas, 5 minutos"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPingText(t *testing.T) {
	got := pingText(42*time.Millisecond, 7*time.Millisecond, nil)
	want := "🏓 Pong!\n• Gateway: 42ms\n• Base de datos: 7ms"
	if got != want {
		t.Errorf("pingText() = %q, want %q", got, want)
	}

	got = pingText(42*time.Millisecond, 0, errors.New("down"))
	if !strings.HasSuffix(got, "Base de datos: sin conexión") {
		t.Errorf("pingText() = %q, want offline database", got)
	}
}

func TestStatusReport(t *testing.T) {
	r := statusReport{Database: "🟢 | En linea", Broker: "🟢 | Conectado", Guilds: 3, Protected: -1}
	got := r.String()
	if strings.Contains(got, "AntiNuke activo") {
		t.Errorf("String() = %q, want no protected line when unknown", got)
	}
	if strings.Contains(got, "pendientes") {
		t.Errorf("String() = %q, want no queue line when empty", got)
	}

	r.Protected = 2
	r.Queued = 5
	got = r.String()
	for _, want := range []string{"• Servidores: 3", "AntiNuke activo: 2", "Escrituras pendientes: 5"} {
		if !strings.Contains(got, want) {
			t.Errorf("String() = %q, want it to contain %q", got, want)
		}
	}
}

func TestHelpEmbed(t *testing.T) {
	embed := helpEmbed()
	if len(embed.Fields) != len(helpSections) {
		t.Fatalf("fields = %d, want %d", len(embed.Fields), len(helpSections))
	}
	for _, f := range embed.Fields {
		if len(f.Value) > 1024 {
			t.Errorf("field %q is %d chars, over the embed limit", f.Name, len(f.Value))
		}
	}
}
