package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port          string        `mapstructure:"port"`
	Domain        string        `mapstructure:"domain"`
	LogLevel      string        `mapstructure:"log_level"`
	DBDriver      string        `mapstructure:"db_driver"`      // sqlite or mongo
	SqliteDB      string        `mapstructure:"sqlite_db"`
	MongoURI      string        `mapstructure:"mongo_uri"`
	MongoDB       string        `mapstructure:"mongo_db"`
	SessionName   string        `mapstructure:"session_name"`
	SessionKey    string        `mapstructure:"session_secret"`
	SessionSecure bool          `mapstructure:"session_secure"` // HTTPS-only session cookie
	CacheDir      string        `mapstructure:"cache_dir"`
	CacheMaxAge   time.Duration `mapstructure:"cache_max_age"`
	SMTP          `mapstructure:",squash"`
}

type SMTP struct {
	Host      string `mapstructure:"smtp_host"`
	Port      string `mapstructure:"smtp_port"`
	User      string `mapstructure:"smtp_user"`
	Password  string `mapstructure:"smtp_password"`
	From      string `mapstructure:"smtp_from"`
	ContactTo string `mapstructure:"contact_to"`
}

var defaults = map[string]interface{}{
	"port":           "8080",
	"domain":         "http://localhost:8080",
	"log_level":      "info",
	"db_driver":      "sqlite",
	"sqlite_db":      "articlehub.db",
	"mongo_uri":      "mongodb://localhost:27017",
	"mongo_db":       "articlehub",
	"session_name":   "articlehub-session",
	"session_secret": "",
	"session_secure": false,
	"cache_dir":      "cache",
	"cache_max_age":  "10m",
	"smtp_host":      "",
	"smtp_port":      "587",
	"smtp_user":      "",
	"smtp_password":  "",
	"smtp_from":      "",
	"contact_to":     "",
}

// Load reads an optional .env file, then lets environment variables
// (PORT, DB_DRIVER, SESSION_SECRET, ...) override the defaults.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// A missing .env is normal outside development.
		_ = godotenv.Load(f)
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.DBDriver = strings.ToLower(cfg.DBDriver)
	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "mongo" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return &cfg, nil
}
