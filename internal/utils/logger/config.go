// internal/utils/logger/config.go
package logger

// Config selects the log level, output encoding and an optional file sink.
type Config struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format is "console" or "json".
	Format string `mapstructure:"format"`
	// File receives a JSON copy of the stream when set.
	File string `mapstructure:"file"`
	// Quiet drops the stdout sink; used when the terminal is owned by the
	// TUI. Requires File.
	Quiet bool `mapstructure:"quiet"`
	// Development switches to the development encoder defaults and enables
	// debug logging regardless of Level.
	Development bool `mapstructure:"development"`
}

// DefaultConfig returns console logging at info level with no file sink.
func DefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: "console",
	}
}
