package logger

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds logging configuration
type Config struct {
	Level          string `yaml:"level"`
	ConsoleEnabled bool   `yaml:"console_enabled"`
	ConsoleFormat  string `yaml:"console_format"`
	FileEnabled    bool   `yaml:"file_enabled"`
	FilePath       string `yaml:"file_path"`
	FileFormat     string `yaml:"file_format"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb"`
	FileMaxBackups int    `yaml:"file_max_backups"`
	FileMaxAgeDays int    `yaml:"file_max_age_days"`
	FileCompress   bool   `yaml:"file_compress"`
}

// DefaultConfig logs INFO and above as text to the console only.
func DefaultConfig() Config {
	return Config{
		Level:          "INFO",
		ConsoleEnabled: true,
		ConsoleFormat:  "text",
		FilePath:       "logs/deepcave.log",
		FileFormat:     "text",
		FileMaxSizeMB:  10,
		FileMaxBackups: 5,
		FileMaxAgeDays: 30,
	}
}

// fileConfig is the top-level document; logging lives under its own key so it
// can share a file with the application config.
type fileConfig struct {
	Logging *rawConfig `yaml:"logging"`
}

// rawConfig distinguishes unset booleans from false.
type rawConfig struct {
	Level          string `yaml:"level"`
	ConsoleEnabled *bool  `yaml:"console_enabled"`
	ConsoleFormat  string `yaml:"console_format"`
	FileEnabled    *bool  `yaml:"file_enabled"`
	FilePath       string `yaml:"file_path"`
	FileFormat     string `yaml:"file_format"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb"`
	FileMaxBackups int    `yaml:"file_max_backups"`
	FileMaxAgeDays int    `yaml:"file_max_age_days"`
	FileCompress   *bool  `yaml:"file_compress"`
}

// LoadConfig loads logging configuration from the "logging" section of a YAML
// file and applies environment variable overrides. A missing or unreadable
// file leaves the defaults in place.
func LoadConfig(configPath string) (Config, error) {
	config := DefaultConfig()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			var fc fileConfig
			if err := yaml.Unmarshal(data, &fc); err == nil && fc.Logging != nil {
				config.merge(fc.Logging)
			}
		}
	}

	config.applyEnv()
	return config, nil
}

func (c *Config) merge(raw *rawConfig) {
	if raw.Level != "" {
		c.Level = raw.Level
	}
	if raw.ConsoleEnabled != nil {
		c.ConsoleEnabled = *raw.ConsoleEnabled
	}
	if raw.ConsoleFormat != "" {
		c.ConsoleFormat = raw.ConsoleFormat
	}
	if raw.FileEnabled != nil {
		c.FileEnabled = *raw.FileEnabled
	}
	if raw.FilePath != "" {
		c.FilePath = raw.FilePath
	}
	if raw.FileFormat != "" {
		c.FileFormat = raw.FileFormat
	}
	if raw.FileMaxSizeMB > 0 {
		c.FileMaxSizeMB = raw.FileMaxSizeMB
	}
	if raw.FileMaxBackups > 0 {
		c.FileMaxBackups = raw.FileMaxBackups
	}
	if raw.FileMaxAgeDays > 0 {
		c.FileMaxAgeDays = raw.FileMaxAgeDays
	}
	if raw.FileCompress != nil {
		c.FileCompress = *raw.FileCompress
	}
}

func (c *Config) applyEnv() {
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Level = logLevel
	}
	if consoleFormat := os.Getenv("LOG_CONSOLE_FORMAT"); consoleFormat != "" {
		c.ConsoleFormat = consoleFormat
	}
	if fileEnabled := os.Getenv("LOG_FILE_ENABLED"); fileEnabled != "" {
		if enabled, err := strconv.ParseBool(fileEnabled); err == nil {
			c.FileEnabled = enabled
		}
	}
	if filePath := os.Getenv("LOG_FILE_PATH"); filePath != "" {
		c.FilePath = filePath
	}
}
