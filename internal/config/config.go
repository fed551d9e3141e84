package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Planner   PlannerConfig   `yaml:"planner"`
	Calendar  CalendarConfig  `yaml:"calendar"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// ReminderSchedule is a cron spec (with seconds) for the weekly
	// check-in reminder. Empty uses the server default; "off" disables it.
	ReminderSchedule string `yaml:"reminder_schedule"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// PlannerConfig holds defaults applied to plan requests.
type PlannerConfig struct {
	DaysPerWeek       int     `yaml:"days_per_week"`
	MaxWeeklyIncrease float64 `yaml:"max_weekly_increase"`
	BatchLimit        int     `yaml:"batch_limit"`
}

// CalendarConfig points at the intervals.icu-style calendar service.
type CalendarConfig struct {
	URL       string `yaml:"url"`
	AthleteID string `yaml:"athlete_id"`
	APIKey    string `yaml:"api_key"`
	StateDB   string `yaml:"state_db"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix RUNPLAN_ and underscore-separated paths:
//
//	RUNPLAN_SERVER_HOST, RUNPLAN_SERVER_PORT, RUNPLAN_SERVER_REMINDER,
//	RUNPLAN_DB_HOST, RUNPLAN_DB_PORT, RUNPLAN_DB_NAME,
//	RUNPLAN_DB_USER, RUNPLAN_DB_PASSWORD, RUNPLAN_DB_SSLMODE,
//	RUNPLAN_AUTH_API_KEY,
//	RUNPLAN_TAILSCALE_ENABLED, RUNPLAN_TAILSCALE_HOSTNAME, RUNPLAN_TAILSCALE_STATE_DIR,
//	RUNPLAN_CALENDAR_URL, RUNPLAN_CALENDAR_ATHLETE_ID, RUNPLAN_CALENDAR_API_KEY
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RUNPLAN_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("RUNPLAN_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("RUNPLAN_SERVER_REMINDER"); v != "" {
		cfg.Server.ReminderSchedule = v
	}
	if v := os.Getenv("RUNPLAN_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("RUNPLAN_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("RUNPLAN_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("RUNPLAN_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("RUNPLAN_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("RUNPLAN_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("RUNPLAN_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("RUNPLAN_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	if v := os.Getenv("RUNPLAN_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("RUNPLAN_TAILSCALE_STATE_DIR"); v != "" {
		cfg.Tailscale.StateDir = v
	}
	if v := os.Getenv("RUNPLAN_CALENDAR_URL"); v != "" {
		cfg.Calendar.URL = v
	}
	if v := os.Getenv("RUNPLAN_CALENDAR_ATHLETE_ID"); v != "" {
		cfg.Calendar.AthleteID = v
	}
	if v := os.Getenv("RUNPLAN_CALENDAR_API_KEY"); v != "" {
		cfg.Calendar.APIKey = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Tailscale.Enabled && cfg.Tailscale.Hostname == "" {
		cfg.Tailscale.Hostname = "runplan"
	}
	if cfg.Planner.BatchLimit == 0 {
		cfg.Planner.BatchLimit = 4
	}
	if cfg.Calendar.StateDB == "" {
		cfg.Calendar.StateDB = "runplan-upload.db"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Planner.DaysPerWeek != 0 && (c.Planner.DaysPerWeek < 3 || c.Planner.DaysPerWeek > 6) {
		return fmt.Errorf("planner.days_per_week must be between 3 and 6")
	}
	if c.Planner.MaxWeeklyIncrease < 0 || c.Planner.MaxWeeklyIncrease > 0.5 {
		return fmt.Errorf("planner.max_weekly_increase must be between 0 and 0.5")
	}
	return nil
}
