package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Competitor is one tracked source site. The table is read-only after
// startup; adding or removing a competitor is a configuration change.
type Competitor struct {
	Name    string
	BaseURL string
}

type Config struct {
	Server  ServerConfig
	Fetch   FetchConfig
	Sweep   SweepConfig
	Store   StoreConfig
	Redis   RedisConfig
	Logging LoggingConfig

	Competitors []Competitor
	Brands      []string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type FetchConfig struct {
	Timeout      time.Duration
	UserAgent    string
	HostMinDelay time.Duration
}

type SweepConfig struct {
	MaxConcurrent int
	Deadline      time.Duration
	InitialDelay  time.Duration
}

type StoreConfig struct {
	Driver      string // "file" or "postgres"
	DataFile    string
	DatabaseURL string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", "8080"),
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Fetch: FetchConfig{
			Timeout:      getDurationOrDefault("FETCH_TIMEOUT", 15*time.Second),
			UserAgent:    getEnvOrDefault("FETCH_USER_AGENT", defaultUserAgent),
			HostMinDelay: getDurationOrDefault("FETCH_HOST_MIN_DELAY", 500*time.Millisecond),
		},
		Sweep: SweepConfig{
			MaxConcurrent: getIntOrDefault("SWEEP_MAX_CONCURRENT", 4),
			Deadline:      getDurationOrDefault("SWEEP_DEADLINE", 2*time.Minute),
			InitialDelay:  getDurationOrDefault("SWEEP_INITIAL_DELAY", 3*time.Second),
		},
		Store: StoreConfig{
			Driver:      getEnvOrDefault("STORE_DRIVER", "file"),
			DataFile:    getEnvOrDefault("STORE_DATA_FILE", "prices_data.json"),
			DatabaseURL: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getIntOrDefault("REDIS_DB", 0),
			Stream:   getEnvOrDefault("REDIS_STREAM", "stream:price_snapshots"),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
		Competitors: defaultCompetitors(),
		Brands:      getStringSliceOrDefault("TRACKED_BRANDS", defaultBrands()),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Sweep.MaxConcurrent < 1 || c.Sweep.MaxConcurrent > 8 {
		return fmt.Errorf("SWEEP_MAX_CONCURRENT must be between 1 and 8")
	}
	if c.Store.Driver != "file" && c.Store.Driver != "postgres" {
		return fmt.Errorf("STORE_DRIVER must be file or postgres, got %q", c.Store.Driver)
	}
	if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=postgres")
	}
	if len(c.Brands) == 0 {
		return fmt.Errorf("at least one tracked brand is required")
	}
	return nil
}

// CompetitorNames returns the tracked competitor names in table order.
func (c *Config) CompetitorNames() []string {
	names := make([]string, len(c.Competitors))
	for i, comp := range c.Competitors {
		names[i] = comp.Name
	}
	return names
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func defaultCompetitors() []Competitor {
	return []Competitor{
		{Name: "MorySkin", BaseURL: "https://moryskin.com"},
		{Name: "Hyaloo", BaseURL: "https://hyaloo.de"},
		{Name: "AUDERMAESTHETIC", BaseURL: "https://www.auderm.de"},
		{Name: "Jollifill", BaseURL: "https://jolifill.de"},
		{Name: "hyamarkt", BaseURL: "https://www.hyamarkt.de"},
		{Name: "FARMA MEDICAL", BaseURL: "https://farma-medical.de"},
	}
}

func defaultBrands() []string {
	return []string{"Jalupro", "DSD", "Hydropeptide", "MD:ceuticals"}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
