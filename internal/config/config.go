package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type Config struct {
	Env                string
	HTTPAddr           string
	DB                 DBConfig
	JWT                JWTConfig
	BcryptCost         int
	AdminEmails        []string
	Log                LogConfig
	CORSAllowedOrigins string
	RealtimeEnabled    bool
}

type DBConfig struct {
	Driver     string
	User       string
	Password   string
	Host       string
	Port       string
	Name       string
	SQLitePath string
}

type JWTConfig struct {
	Secret    string
	ExpiresIn time.Duration
}

type LogConfig struct {
	Level string
	File  string
}

// DSN builds the driver-specific data source name.
func (c DBConfig) DSN() string {
	if c.Driver == DriverSQLite {
		return c.SQLitePath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)&_txlock=immediate"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
	)
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DB_DRIVER", DriverMySQL)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_NAME", "teamtasks")
	v.SetDefault("SQLITE_PATH", "teamtasks.db")
	v.SetDefault("JWT_EXPIRES_IN", "24h")
	v.SetDefault("BCRYPT_COST", 8)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("REALTIME_ENABLED", true)
}

// Load resolves configuration from .env, an optional YAML file and the
// environment, in increasing order of precedence.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}
	v.AutomaticEnv()

	cfg := &Config{
		Env:      v.GetString("APP_ENV"),
		HTTPAddr: v.GetString("HTTP_ADDR"),
		DB: DBConfig{
			Driver:     strings.ToLower(v.GetString("DB_DRIVER")),
			User:       v.GetString("DB_USER"),
			Password:   v.GetString("DB_PASSWORD"),
			Host:       v.GetString("DB_HOST"),
			Port:       v.GetString("DB_PORT"),
			Name:       v.GetString("DB_NAME"),
			SQLitePath: v.GetString("SQLITE_PATH"),
		},
		JWT: JWTConfig{
			Secret:    v.GetString("JWT_SECRET"),
			ExpiresIn: v.GetDuration("JWT_EXPIRES_IN"),
		},
		BcryptCost:         v.GetInt("BCRYPT_COST"),
		AdminEmails:        splitList(v.GetString("ADMIN_EMAILS")),
		CORSAllowedOrigins: v.GetString("CORS_ALLOWED_ORIGINS"),
		RealtimeEnabled:    v.GetBool("REALTIME_ENABLED"),
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
			File:  v.GetString("LOG_FILE"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWT.ExpiresIn <= 0 {
		return fmt.Errorf("JWT_EXPIRES_IN must be positive, got %s", c.JWT.ExpiresIn)
	}
	if c.DB.Driver != DriverMySQL && c.DB.Driver != DriverSQLite {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(strings.ToLower(item))
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
