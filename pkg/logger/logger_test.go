package logger

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newBufferLogger(buf *bytes.Buffer) *zerologLogger {
	zlog := zerolog.New(buf).With().Timestamp().Logger()
	return &zerologLogger{
		logger: &zlog,
		fields: make(map[string]interface{}),
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{"info level", &Config{Level: "info"}, false},
		{"debug level", &Config{Level: "debug"}, false},
		{"invalid level", &Config{Level: "loud"}, true},
		{"empty level", &Config{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && log == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func TestNewWithFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "igfollowers.log")
	log, err := New(&Config{Level: "info", File: path})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	log.Info("written to file")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"fatal", zerolog.FatalLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"loud", zerolog.InfoLevel, true},
		{"", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseLogLevel() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if level != tt.expected {
				t.Errorf("parseLogLevel() = %v, want %v", level, tt.expected)
			}
		})
	}
}

func TestLoggerMethods(t *testing.T) {
	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log := newBufferLogger(&buf)

	tests := []struct {
		name string
		emit func(string)
	}{
		{"Debug", log.Debug},
		{"Info", log.Info},
		{"Warn", log.Warn},
		{"Error", log.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.emit(tt.name + " message")
			if !strings.Contains(buf.String(), tt.name+" message") {
				t.Errorf("%s message not found in output", tt.name)
			}
		})
	}
}

func TestWithField(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	log.WithField("target", "thebakery").Info("collection started")

	output := buf.String()
	if !strings.Contains(output, "collection started") {
		t.Error("message not found in output")
	}
	if !strings.Contains(output, `"target":"thebakery"`) {
		t.Error("field not found in output")
	}
}

func TestWithFieldsAndChaining(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	log.
		WithField("target", "thebakery").
		WithFields(map[string]interface{}{
			"collected": 120,
			"fast":      true,
		}).
		Info("page collected")

	output := buf.String()
	for _, want := range []string{
		`"target":"thebakery"`,
		`"collected":120`,
		`"fast":true`,
		"page collected",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("%s not found in output", want)
		}
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	if got := log.WithError(nil); got != log {
		t.Error("WithError(nil) should return the same logger")
	}

	log.WithError(errors.New("session expired")).Error("enrichment stopped")

	output := buf.String()
	if !strings.Contains(output, "enrichment stopped") {
		t.Error("message not found in output")
	}
	if !strings.Contains(output, "session expired") {
		t.Error("error not found in output")
	}
}

func TestInfoWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	log.InfoWithFields("report written", map[string]interface{}{
		"report": "all_followers.csv",
		"rows":   42,
	})

	output := buf.String()
	if !strings.Contains(output, `"report":"all_followers.csv"`) {
		t.Error("report field not found in output")
	}
	if !strings.Contains(output, `"rows":42`) {
		t.Error("rows field not found in output")
	}
}

func TestGlobalLogger(t *testing.T) {
	if err := Initialize(&Config{Level: "debug"}); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	if GetLogger() == nil {
		t.Fatal("GetLogger() returned nil")
	}

	GetLogger().WithField("key", "value").Info("global logger works")
}
