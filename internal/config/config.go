package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Gateway   GatewayConfig   `mapstructure:"gateway"`
	Bot       BotConfig       `mapstructure:"bot"`
	Directory DirectoryConfig `mapstructure:"directory"`
	Report    ReportConfig    `mapstructure:"report"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds audit database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// GatewayConfig holds session gateway configuration
type GatewayConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	APIToken     string        `mapstructure:"api_token"`
	WebhookToken string        `mapstructure:"webhook_token"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// BotConfig holds conversation configuration
type BotConfig struct {
	HelpdeskGroupID string        `mapstructure:"helpdesk_group_id"`
	LeaveFormURL    string        `mapstructure:"leave_form_url"`
	TypingDelayMin  time.Duration `mapstructure:"typing_delay_min"`
	TypingDelayMax  time.Duration `mapstructure:"typing_delay_max"`
	QueueBuffer     int           `mapstructure:"queue_buffer"`
}

// DirectoryConfig holds employee directory configuration
type DirectoryConfig struct {
	Path string `mapstructure:"path"`
}

// ReportConfig holds overtime report configuration
type ReportConfig struct {
	TemplatePath string `mapstructure:"template_path"`
	OutputDir    string `mapstructure:"output_dir"`
}

// StorageConfig holds media storage configuration
type StorageConfig struct {
	MediaDir string `mapstructure:"media_dir"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	viper.SetDefault("database.path", "data/siska.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	viper.SetDefault("gateway.base_url", "http://127.0.0.1:3000")
	viper.SetDefault("gateway.timeout", 30*time.Second)

	viper.SetDefault("bot.typing_delay_min", time.Second)
	viper.SetDefault("bot.typing_delay_max", 3*time.Second)
	viper.SetDefault("bot.queue_buffer", 256)

	viper.SetDefault("directory.path", "data/employees.json")

	viper.SetDefault("report.template_path", "templates/laporan_lembur.xlsx")
	viper.SetDefault("report.output_dir", "generated_reports")

	viper.SetDefault("storage.media_dir", "media")

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	// Sensitive values and deployment identifiers come from the environment
	viper.BindEnv("gateway.api_token", "GATEWAY_API_TOKEN")
	viper.BindEnv("gateway.webhook_token", "GATEWAY_WEBHOOK_TOKEN")
	viper.BindEnv("bot.helpdesk_group_id", "HELPDESK_GROUP_ID")
	viper.BindEnv("bot.leave_form_url", "LEAVE_FORM_URL")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Gateway.BaseURL == "" {
		return fmt.Errorf("gateway.base_url is required")
	}
	if c.Bot.HelpdeskGroupID == "" {
		return fmt.Errorf("bot.helpdesk_group_id is required")
	}
	if c.Bot.LeaveFormURL == "" {
		return fmt.Errorf("bot.leave_form_url is required")
	}
	if c.Directory.Path == "" {
		return fmt.Errorf("directory.path is required")
	}
	if c.Report.TemplatePath == "" {
		return fmt.Errorf("report.template_path is required")
	}
	if c.Bot.TypingDelayMax < c.Bot.TypingDelayMin {
		return fmt.Errorf("bot.typing_delay_max must not be less than bot.typing_delay_min")
	}
	return nil
}
