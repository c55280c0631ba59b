package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	HTTPAddr        string        `mapstructure:"http_addr" yaml:"http_addr"`
	DatabasePath    string        `mapstructure:"database_path" yaml:"database_path"`
	DefaultRoom     string        `mapstructure:"default_room" yaml:"default_room"`
	HistoryLimit    int           `mapstructure:"history_limit" yaml:"history_limit"`
	MaxFileBytes    int64         `mapstructure:"max_file_bytes" yaml:"max_file_bytes"`
	ClientQueueSize int           `mapstructure:"client_queue_size" yaml:"client_queue_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel        string        `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:            ":5000",
		HTTPAddr:        ":8080",
		DatabasePath:    "chat_history.db",
		DefaultRoom:     "Lobby",
		HistoryLimit:    50,
		MaxFileBytes:    5 << 20,
		ClientQueueSize: 64,
		ShutdownTimeout: 5 * time.Second,
		LogLevel:        "info",
	}
}
