package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	Sweeper   SweeperConfig   `mapstructure:"sweeper"`
	Documents DocumentsConfig `mapstructure:"documents"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// WorkerConfig holds letter worker pool configuration
type WorkerConfig struct {
	Concurrency   int           `mapstructure:"concurrency"`
	QueueSize     int           `mapstructure:"queue_size"`
	RenderTimeout time.Duration `mapstructure:"render_timeout"`
}

// SweeperConfig holds offer expiry sweep configuration
type SweeperConfig struct {
	Schedule string `mapstructure:"schedule"`
}

// DocumentsConfig holds offer letter generation configuration
type DocumentsConfig struct {
	OutputDir   string `mapstructure:"output_dir"`
	CompanyName string `mapstructure:"company_name"`
}

// Load loads configuration from a .env file (if present), the YAML config
// file, and environment variables, in increasing precedence.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := gotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

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

	viper.SetDefault("database.path", "data/hireflow.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")

	viper.SetDefault("worker.concurrency", 2)
	viper.SetDefault("worker.queue_size", 64)
	viper.SetDefault("worker.render_timeout", 30*time.Second)

	viper.SetDefault("sweeper.schedule", "@every 1h")

	viper.SetDefault("documents.output_dir", "generated_letters")
	viper.SetDefault("documents.company_name", "TalentOps Inc")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	viper.BindEnv("server.port", "HIREFLOW_PORT")
	viper.BindEnv("database.path", "HIREFLOW_DB_PATH")
	viper.BindEnv("logger.level", "HIREFLOW_LOG_LEVEL")
	viper.BindEnv("documents.company_name", "HIREFLOW_COMPANY_NAME")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Database.MigrationsDir == "" {
		return fmt.Errorf("database.migrations_dir is required")
	}
	if c.Worker.Concurrency <= 0 {
		return fmt.Errorf("worker.concurrency must be positive")
	}
	if c.Worker.QueueSize <= 0 {
		return fmt.Errorf("worker.queue_size must be positive")
	}
	if c.Sweeper.Schedule == "" {
		return fmt.Errorf("sweeper.schedule is required")
	}
	if c.Documents.OutputDir == "" {
		return fmt.Errorf("documents.output_dir is required")
	}
	return nil
}
