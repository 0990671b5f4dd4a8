package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARNING", slog.LevelWarn},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseLogLevel(tt.input)
			if result != tt.expected {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig returned error for missing file: %v", err)
	}

	if config.Level != "INFO" {
		t.Errorf("Default level = %q, want %q", config.Level, "INFO")
	}
	if !config.ConsoleEnabled {
		t.Error("Default ConsoleEnabled = false, want true")
	}
	if config.FileEnabled {
		t.Error("Default FileEnabled = true, want false")
	}
	if config.FilePath != "logs/deepcave.log" {
		t.Errorf("Default FilePath = %q, want %q", config.FilePath, "logs/deepcave.log")
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deepcave.yaml")
	yamlContent := `cave:
  width: 80
logging:
  level: DEBUG
  console_enabled: false
  console_format: json
  file_enabled: true
  file_path: test.log
  file_max_size_mb: 20
`
	if err := os.WriteFile(path, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if config.Level != "DEBUG" {
		t.Errorf("Level = %q, want %q", config.Level, "DEBUG")
	}
	if config.ConsoleEnabled {
		t.Error("ConsoleEnabled = true, want false")
	}
	if config.ConsoleFormat != "json" {
		t.Errorf("ConsoleFormat = %q, want %q", config.ConsoleFormat, "json")
	}
	if !config.FileEnabled {
		t.Error("FileEnabled = false, want true")
	}
	if config.FilePath != "test.log" {
		t.Errorf("FilePath = %q, want %q", config.FilePath, "test.log")
	}
	if config.FileMaxSizeMB != 20 {
		t.Errorf("FileMaxSizeMB = %d, want %d", config.FileMaxSizeMB, 20)
	}
	if config.FileMaxBackups != 5 {
		t.Errorf("FileMaxBackups = %d, want default 5", config.FileMaxBackups)
	}
}

func TestLoadConfigWithoutLoggingSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deepcave.yaml")
	if err := os.WriteFile(path, []byte("cave:\n  seed: 4\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	config, _ := LoadConfig(path)
	if !config.ConsoleEnabled {
		t.Error("ConsoleEnabled = false, want default true when section absent")
	}
}

func TestEnvVarOverride(t *testing.T) {
	t.Setenv("LOG_LEVEL", "ERROR")
	t.Setenv("LOG_CONSOLE_FORMAT", "json")
	t.Setenv("LOG_FILE_ENABLED", "true")
	t.Setenv("LOG_FILE_PATH", "/custom/path.log")

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if config.Level != "ERROR" {
		t.Errorf("Level = %q, want %q (from env var)", config.Level, "ERROR")
	}
	if config.ConsoleFormat != "json" {
		t.Errorf("ConsoleFormat = %q, want %q (from env var)", config.ConsoleFormat, "json")
	}
	if !config.FileEnabled {
		t.Error("FileEnabled = false, want true (from env var)")
	}
	if config.FilePath != "/custom/path.log" {
		t.Errorf("FilePath = %q, want %q (from env var)", config.FilePath, "/custom/path.log")
	}
}

func TestInitializeWriterText(t *testing.T) {
	var buf bytes.Buffer
	InitializeWriter(&buf, "text", "INFO")
	defer func() { logger = nil }()

	Info("Cave generated", "floor", 3)
	Debug("This should not appear")

	output := buf.String()
	if !strings.Contains(output, "Cave generated") {
		t.Errorf("Output missing INFO message: %s", output)
	}
	if !strings.Contains(output, "floor=3") {
		t.Errorf("Output missing structured field: %s", output)
	}
	if strings.Contains(output, "This should not appear") {
		t.Errorf("Output contains DEBUG message when level is INFO: %s", output)
	}
}

func TestInitializeWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	InitializeWriter(&buf, "json", "INFO")
	defer func() { logger = nil }()

	Info("JSON test", "seed", "abc", "rocks", 42)

	output := buf.String()
	if !strings.Contains(output, `"msg":"JSON test"`) {
		t.Errorf("Output missing JSON message field: %s", output)
	}
	if !strings.Contains(output, `"rocks":42`) {
		t.Errorf("Output missing numeric JSON field: %s", output)
	}
}

func TestAlwaysBypassesLogLevel(t *testing.T) {
	var buf bytes.Buffer
	InitializeWriter(&buf, "text", "ERROR")
	defer func() { logger = nil }()

	Debug("Debug message")
	Info("Info message")
	Warning("Warning")
	Error("Error message")
	Always("Always message")

	output := buf.String()
	if strings.Contains(output, "Debug message") || strings.Contains(output, "Info message") || strings.Contains(output, "Warning") {
		t.Errorf("Below-ERROR messages appeared: %s", output)
	}
	if !strings.Contains(output, "Error message") {
		t.Error("ERROR message missing from output")
	}
	if !strings.Contains(output, "level=ALWAYS") {
		t.Errorf("ALWAYS level not formatted correctly: %s", output)
	}
}

func TestFormattedLogging(t *testing.T) {
	var buf bytes.Buffer
	InitializeWriter(&buf, "text", "DEBUG")
	defer func() { logger = nil }()

	Debugf("Debug: %d + %d = %d", 1, 2, 3)
	Infof("Info: %s", "test")
	Warningf("Warning: %.2f%%", 99.95)
	Errorf("Error: %v", "failed")
	Alwaysf("Always: %s %d", "count", 5)

	output := buf.String()
	for _, want := range []string{"Debug: 1 + 2 = 3", "Info: test", "Warning: 99.95%", "Error: failed", "Always: count 5"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing %q", want)
		}
	}
}

func TestElapsedAddsDuration(t *testing.T) {
	var buf bytes.Buffer
	InitializeWriter(&buf, "text", "INFO")
	defer func() { logger = nil }()

	Elapsed("Floor built", time.Now().Add(-time.Millisecond), "floor", 1)
	if !strings.Contains(buf.String(), "duration=") {
		t.Errorf("Output missing duration: %s", buf.String())
	}
}

func TestMultiHandler(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	handler1 := slog.NewTextHandler(&buf1, &slog.HandlerOptions{Level: slog.LevelInfo})
	handler2 := slog.NewTextHandler(&buf2, &slog.HandlerOptions{Level: slog.LevelWarn})
	logger = slog.New(newMultiHandler(handler1, handler2))
	defer func() { logger = nil }()

	Info("Info only", "field", "value")
	Warning("Both")

	if !strings.Contains(buf1.String(), "Info only") || !strings.Contains(buf1.String(), "field=value") {
		t.Errorf("First handler missing info record: %s", buf1.String())
	}
	if strings.Contains(buf2.String(), "Info only") {
		t.Error("Second handler received record below its level")
	}
	if !strings.Contains(buf2.String(), "Both") {
		t.Error("Second handler did not receive warning")
	}
}

func TestInitializeFileLogging(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "cave.log")
	config := DefaultConfig()
	config.ConsoleEnabled = false
	config.FileEnabled = true
	config.FilePath = path
	if err := Initialize(config); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer func() { logger = nil }()

	Info("to file")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("Log file missing record: %s", data)
	}
}

func TestNilLogger(t *testing.T) {
	logger = nil

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logging with nil logger caused panic: %v", r)
		}
	}()

	Debug("debug")
	Info("info")
	Warning("warning")
	Error("error")
	Always("always")
	With("k", "v").Info("discarded")
}
