package util

import (
	"testing"
	"time"
)

func TestParseBoolEnv(t *testing.T) {
	tests := []struct {
		value        string
		defaultValue bool
		want         bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"YES", false, true},
		{"on", false, true},
		{"false", true, false},
		{"0", true, false},
		{"no", true, false},
		{"OFF", true, false},
		{"", true, true},
		{"", false, false},
		{"maybe", true, true},
		{" true ", false, true},
	}
	for _, tt := range tests {
		t.Setenv("TEST_BOOL", tt.value)
		if got := ParseBoolEnv("TEST_BOOL", tt.defaultValue); got != tt.want {
			t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", tt.value, tt.defaultValue, got, tt.want)
		}
	}
}

func TestParseIntEnv(t *testing.T) {
	tests := []struct {
		value        string
		defaultValue int
		want         int
	}{
		{"42", 0, 42},
		{"-7", 0, -7},
		{" 100 ", 0, 100},
		{"", 5, 5},
		{"abc", 5, 5},
		{"1.5", 5, 5},
	}
	for _, tt := range tests {
		t.Setenv("TEST_INT", tt.value)
		if got := ParseIntEnv("TEST_INT", tt.defaultValue); got != tt.want {
			t.Errorf("ParseIntEnv(%q, %d) = %d, want %d", tt.value, tt.defaultValue, got, tt.want)
		}
	}
}

func TestParseDurationEnv(t *testing.T) {
	tests := []struct {
		value        string
		defaultValue time.Duration
		want         time.Duration
	}{
		{"30s", time.Second, 30 * time.Second},
		{"24h", time.Second, 24 * time.Hour},
		{" 5m ", time.Second, 5 * time.Minute},
		{"", 10 * time.Second, 10 * time.Second},
		{"soon", 10 * time.Second, 10 * time.Second},
		{"30", 10 * time.Second, 10 * time.Second},
	}
	for _, tt := range tests {
		t.Setenv("TEST_DURATION", tt.value)
		if got := ParseDurationEnv("TEST_DURATION", tt.defaultValue); got != tt.want {
			t.Errorf("ParseDurationEnv(%q, %s) = %s, want %s", tt.value, tt.defaultValue, got, tt.want)
		}
	}
}
