package main

import (
	"log/slog"
	"testing"
)

func TestLogLevel(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{"", slog.LevelDebug},
		{"true", slog.LevelDebug},
		{"1", slog.LevelDebug},
		{"false", slog.LevelInfo},
		{"0", slog.LevelInfo},
		{"invalid", slog.LevelDebug},
	}
	for _, tt := range tests {
		t.Setenv("DEBUG", tt.value)
		if got := logLevel(); got != tt.want {
			t.Errorf("logLevel with DEBUG=%q = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestValidateRequiredConfig(t *testing.T) {
	token := "t"
	key := "k"
	domain := "https://bot.example.com"
	empty := ""

	flags := Flags{telegramToken: &token, openRouterKey: &key, domain: &domain}
	if err := validateRequiredConfig(flags); err != nil {
		t.Fatalf("unexpected error with full config: %v", err)
	}

	flags = Flags{telegramToken: &empty, openRouterKey: &key, domain: &empty}
	err := validateRequiredConfig(flags)
	if err == nil {
		t.Fatal("expected error with missing config")
	}
	want := "required configuration not set: TELEGRAM_TOKEN, DOMAIN"
	if err.Error() != want {
		t.Errorf("unexpected error message: %q", err.Error())
	}
}
