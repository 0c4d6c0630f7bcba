package config

import (
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the check-in service.
//
// Fields:
// - Env: The current environment (local, development, production).
// - Port: The HTTP port the service listens on.
// - LogFile: Path of the append-only backup file.
// - VideoURL: Where visitors are sent after the landing page.
// - Database: Optional PostgreSQL settings; the primary store is off when Host is empty.
type Config struct {
	Env      string         `mapstructure:"WAYPOINT_ENV"`       // Env is the current environment: local, development, production.
	Port     int            `mapstructure:"PORT"`               // Port is the HTTP server port.
	LogFile  string         `mapstructure:"WAYPOINT_LOG_FILE"`  // LogFile is the backup file path.
	VideoURL string         `mapstructure:"WAYPOINT_VIDEO_URL"` // VideoURL is the landing page destination.
	Database PostgresConfig `mapstructure:"-"`                  // Database holds the postgres database configuration.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `mapstructure:"DB_HOST"`     // Host is the database server address.
	Port     string `mapstructure:"DB_PORT"`     // Port is the database server port.
	User     string `mapstructure:"DB_USERNAME"` // User is the database user.
	Password string `mapstructure:"DB_PASSWORD"` // Password is the database user's password.
	Name     string `mapstructure:"DB_NAME"`     // Name is the name of the database.
}

// Enabled reports whether a primary store is configured.
func (p PostgresConfig) Enabled() bool {
	return p.Host != ""
}

// MustLoad reads an optional .env file, then the environment, and panics on invalid values.
func MustLoad() *Config {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()

	v.SetDefault("WAYPOINT_ENV", "production")
	v.SetDefault("PORT", 3000)
	v.SetDefault("WAYPOINT_LOG_FILE", "logs.txt")
	v.SetDefault("WAYPOINT_VIDEO_URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	v.SetDefault("DB_HOST", "")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USERNAME", "")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic("failed to parse port from configuration, must be an integer")
	}

	cfg.Database = PostgresConfig{
		Host:     v.GetString("DB_HOST"),
		Port:     v.GetString("DB_PORT"),
		User:     v.GetString("DB_USERNAME"),
		Password: v.GetString("DB_PASSWORD"),
		Name:     v.GetString("DB_NAME"),
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		panic("port must be between 1 and 65535")
	}

	return &cfg
}
