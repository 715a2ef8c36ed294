package logger

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestNewLogger(t *testing.T) {
	l := NewLogger("", "")
	if l == nil {
		t.Fatal("Expected logger to be created, got nil")
	}

	l.Info("Test info message", "TEST")
	l.Warn("Test warning message", "TEST")
	l.Debug("Test debug message", "TEST")
	l.System("Test system message", "TEST")
	l.Success("Test success message", "TEST")

	l.Close()
	// Writes after Close must not panic.
	l.Error("after close", "TEST")
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelCritical, "CRITICAL"},
		{LevelError, "ERROR"},
		{LevelWarn, "WARN"},
		{LevelSuccess, "SUCCESS"},
		{LevelInfo, "INFO"},
		{LevelDebug, "DEBUG"},
		{LevelSystem, "SYSTEM"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("LogLevel.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLogLevelDiscordColor(t *testing.T) {
	tests := []struct {
		level LogLevel
		color int
	}{
		{LevelCritical, 0xFF0000},
		{LevelError, 0xFF0000},
		{LevelWarn, 0xFFFF00},
		{LevelSuccess, 0x00FF00},
		{LevelInfo, 0x0000FF},
		{LevelDebug, 0x800080},
		{LevelSystem, 0x808080},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := tt.level.DiscordColor(); got != tt.color {
				t.Errorf("LogLevel.DiscordColor() = %v, want %v", got, tt.color)
			}
		})
	}
}

func TestLogrusLevelMapping(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  logrus.Level
	}{
		{LevelCritical, logrus.ErrorLevel},
		{LevelError, logrus.ErrorLevel},
		{LevelWarn, logrus.WarnLevel},
		{LevelSuccess, logrus.InfoLevel},
		{LevelInfo, logrus.InfoLevel},
		{LevelSystem, logrus.InfoLevel},
		{LevelDebug, logrus.DebugLevel},
	}

	for _, tt := range tests {
		if got := tt.level.logrusLevel(); got != tt.want {
			t.Errorf("%s.logrusLevel() = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestLineFormatter(t *testing.T) {
	entry := &logrus.Entry{
		Time:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Message: "contador reiniciado",
		Data:    logrus.Fields{fieldLevel: LevelWarn, fieldPrefix: "AntiNuke"},
	}

	out, err := (&lineFormatter{}).Format(entry)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	want := "[2025-01-02 03:04:05] [WARN] [AntiNuke]: contador reiniciado\n"
	if string(out) != want {
		t.Errorf("Format() = %q, want %q", out, want)
	}

	colored, _ := (&lineFormatter{colors: true}).Format(entry)
	if !strings.Contains(string(colored), LevelWarn.Color()) {
		t.Errorf("colored output %q lacks the level color", colored)
	}
}

func TestFileHookSplitsErrors(t *testing.T) {
	dir := t.TempDir()
	combined, _ := os.Create(filepath.Join(dir, "combined.log"))
	errorsFile, _ := os.Create(filepath.Join(dir, "error.log"))
	hook := &fileHook{formatter: &lineFormatter{}, combined: combined, errors: errorsFile}

	for _, lvl := range []LogLevel{LevelInfo, LevelError, LevelCritical} {
		entry := &logrus.Entry{Time: time.Now(), Message: lvl.String(), Data: logrus.Fields{fieldLevel: lvl, fieldPrefix: "TEST"}}
		if err := hook.Fire(entry); err != nil {
			t.Fatalf("Fire() error = %v", err)
		}
	}
	combined.Close()
	errorsFile.Close()

	all, _ := os.ReadFile(filepath.Join(dir, "combined.log"))
	errs, _ := os.ReadFile(filepath.Join(dir, "error.log"))
	if got := strings.Count(string(all), "\n"); got != 3 {
		t.Errorf("combined.log lines = %v, want %v", got, 3)
	}
	if got := strings.Count(string(errs), "\n"); got != 2 {
		t.Errorf("error.log lines = %v, want %v", got, 2)
	}
	if strings.Contains(string(errs), "[INFO]") {
		t.Error("error.log should not contain info entries")
	}
}

func TestLogFileCreation(t *testing.T) {
	logsDir := filepath.Join(".", "logs")
	os.RemoveAll(logsDir)

	l := NewLogger("", "")
	defer l.Close()

	if _, err := os.Stat(logsDir); os.IsNotExist(err) {
		t.Error("Expected logs directory to be created")
	}

	for _, name := range []string{"combined.log", "error.log"} {
		if _, err := os.Stat(filepath.Join(logsDir, name)); os.IsNotExist(err) {
			t.Errorf("Expected %s to be created", name)
		}
	}
}

func TestGlobalLoggerInit(t *testing.T) {
	logger = nil
	once = sync.Once{}

	l := Init("", "")
	if l == nil {
		t.Fatal("Expected Init to return a logger")
	}

	l2 := Init("different", "different")
	if l != l2 {
		t.Error("Expected Init to return the same logger on subsequent calls")
	}

	l3 := Get()
	if l != l3 {
		t.Error("Expected Get to return the same logger")
	}

	l.Close()
}
