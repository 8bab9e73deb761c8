package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DISCORD_TOKEN", "DISCORD_CLIENT_ID", "DISCORD_CLIENT_SECRET", "DISCORD_REDIRECT_URI",
		"LINE_CHANNEL_SECRET", "LINE_CHANNEL_ACCESS_TOKEN", "LINE_API_BASE_URL",
		"DATABASE_URL", "SQLITE_PATH", "SEED_DEFAULT_RESTAURANTS",
		"WEB_BIND", "JWT_SECRET", "ADMIN_USER_IDS", "ORDER_REMINDER_AFTER",
	} {
		// Setenv restores the original value after the test.
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestParseDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_TOKEN", "token")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.WebBind != "0.0.0.0:3000" {
		t.Errorf("WebBind = %q", cfg.WebBind)
	}
	if cfg.WebUIBaseURL != "http://localhost:3000" {
		t.Errorf("WebUIBaseURL = %q", cfg.WebUIBaseURL)
	}
	if !cfg.SeedDefaults {
		t.Error("SeedDefaults should default to true")
	}
	if cfg.ReminderAfter != 0 {
		t.Errorf("ReminderAfter = %v", cfg.ReminderAfter)
	}
	if !cfg.DiscordEnabled() || cfg.LineEnabled() {
		t.Errorf("DiscordEnabled = %v, LineEnabled = %v", cfg.DiscordEnabled(), cfg.LineEnabled())
	}
}

func TestParseValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("LINE_CHANNEL_SECRET", "secret")
	t.Setenv("LINE_CHANNEL_ACCESS_TOKEN", "access")
	t.Setenv("ADMIN_USER_IDS", "1,2")
	t.Setenv("JWT_SECRET", "a-real-secret")
	t.Setenv("ORDER_REMINDER_AFTER", "30m")
	t.Setenv("DISCORD_REDIRECT_URI", "https://bot.example.com/api/auth/callback")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !cfg.LineEnabled() {
		t.Error("LineEnabled() = false")
	}
	if !cfg.IsAdmin("2") || cfg.IsAdmin("3") {
		t.Errorf("AdminUserIDs = %v", cfg.AdminUserIDs)
	}
	if cfg.ReminderAfter != 30*time.Minute {
		t.Errorf("ReminderAfter = %v", cfg.ReminderAfter)
	}
	if cfg.WebUIBaseURL != "https://bot.example.com" {
		t.Errorf("WebUIBaseURL = %q", cfg.WebUIBaseURL)
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "no transport", env: map[string]string{}, wantErr: "DISCORD_TOKEN or LINE_CHANNEL_SECRET"},
		{name: "line without token", env: map[string]string{"LINE_CHANNEL_SECRET": "s"}, wantErr: "LINE_CHANNEL_ACCESS_TOKEN"},
		{
			name:    "two databases",
			env:     map[string]string{"DISCORD_TOKEN": "t", "DATABASE_URL": "postgres://x", "SQLITE_PATH": "a.db"},
			wantErr: "only one of",
		},
		{
			name:    "admins with default jwt secret",
			env:     map[string]string{"DISCORD_TOKEN": "t", "ADMIN_USER_IDS": "1"},
			wantErr: "JWT_SECRET",
		},
		{
			name:    "admins with explicit default jwt secret",
			env:     map[string]string{"DISCORD_TOKEN": "t", "ADMIN_USER_IDS": "1", "JWT_SECRET": defaultJWTSecret},
			wantErr: "JWT_SECRET",
		},
		{name: "bad duration", env: map[string]string{"DISCORD_TOKEN": "t", "ORDER_REMINDER_AFTER": "soon"}, wantErr: "parse env"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Parse()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestExtractBaseURL(t *testing.T) {
	if got := extractBaseURL("::bad"); got != "http://localhost:3000" {
		t.Errorf("extractBaseURL(bad) = %q", got)
	}
}
