// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// captureGlobal swaps the global logger for one writing to a buffer and
// restores both logger and level when the test ends.
func captureGlobal(t *testing.T) *bytes.Buffer {
	t.Helper()
	prev := Logger()
	prevLevel := zerolog.GlobalLevel()
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() {
		SetLogger(prev)
		zerolog.SetGlobalLevel(prevLevel)
	})
	return &buf
}

// decodeLine parses the single JSON entry in buf.
func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("log output %q is not one JSON object: %v", buf.String(), err)
	}
	return entry
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"disabled", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInit(t *testing.T) {
	prev := Logger()
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		SetLogger(prev)
		zerolog.SetGlobalLevel(prevLevel)
	})

	t.Run("json filters below level", func(t *testing.T) {
		var buf bytes.Buffer
		Init(Config{Level: "warn", Format: "json", Output: &buf})

		Info().Msg("hidden")
		Warn().Str("store", "badger").Msg("visible")

		entry := decodeLine(t, &buf)
		if entry["message"] != "visible" || entry["store"] != "badger" {
			t.Errorf("entry = %v, want visible warn with store=badger", entry)
		}
		if _, ok := entry["time"]; ok {
			t.Error("time field present with Timestamp disabled")
		}
	})

	t.Run("console", func(t *testing.T) {
		var buf bytes.Buffer
		Init(Config{Level: "info", Format: "console", Timestamp: true, Output: &buf})

		Info().Msg("Store initialized")
		if out := buf.String(); !strings.Contains(out, "Store initialized") || strings.HasPrefix(out, "{") {
			t.Errorf("console output = %q", out)
		}
	})
}

func TestGlobalEvents(t *testing.T) {
	tests := []struct {
		name  string
		event func() *zerolog.Event
		level string
	}{
		{"trace", Trace, "trace"},
		{"debug", Debug, "debug"},
		{"info", Info, "info"},
		{"warn", Warn, "warn"},
		{"error", Error, "error"},
		{"err", func() *zerolog.Event { return Err(errors.New("boom")) }, "error"},
		{"err nil", func() *zerolog.Event { return Err(nil) }, "info"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureGlobal(t)
			tt.event().Msg("m")
			if got := decodeLine(t, buf)["level"]; got != tt.level {
				t.Errorf("level = %v, want %s", got, tt.level)
			}
		})
	}
}

func TestWith(t *testing.T) {
	buf := captureGlobal(t)

	logger := With().Str("component", "seed").Logger()
	logger.Info().Msg("applied")

	if got := decodeLine(t, buf)["component"]; got != "seed" {
		t.Errorf("component = %v, want seed", got)
	}
}

func TestNewTestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestLogger(&buf)
	logger.Info().Msg("captured")

	entry := decodeLine(t, &buf)
	if entry["message"] != "captured" {
		t.Errorf("message = %v, want captured", entry["message"])
	}
	if _, ok := entry["time"]; !ok {
		t.Error("time field missing")
	}
}
