package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Empty category policies accepted by grading.empty_category_policy.
const (
	EmptyCategoryExclude = "exclude"
	EmptyCategoryZero    = "zero"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	LogLevel            string
	DatabaseURL         string
	RedisURL            string
	NATSURL             string
	EventSubjectPrefix  string
	JWTSecret           string
	GradeCacheTTL       time.Duration
	RequestTimeout      time.Duration
	EmptyCategoryPolicy string
	AdminAllowList      []string
	WriteRateLimit      int
	WriteRateWindow     time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GEMA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	v.SetDefault("app.name", "GEMA Gradebook API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("events.subject_prefix", "gema.gradebook")
	v.SetDefault("grades.cache_ttl", "2m")
	v.SetDefault("request.timeout", "10s")
	v.SetDefault("grading.empty_category_policy", EmptyCategoryExclude)
	v.SetDefault("rate_limit.write_max", 30)
	v.SetDefault("rate_limit.write_window", "1m")

	ttl, err := parseDuration(v.GetString("grades.cache_ttl"), "2m")
	if err != nil {
		return Config{}, fmt.Errorf("invalid grades cache ttl: %w", err)
	}

	timeout, err := parseDuration(v.GetString("request.timeout"), "10s")
	if err != nil {
		return Config{}, fmt.Errorf("invalid request timeout: %w", err)
	}

	window, err := parseDuration(v.GetString("rate_limit.write_window"), "1m")
	if err != nil {
		return Config{}, fmt.Errorf("invalid write rate window: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		LogLevel:            strings.ToLower(v.GetString("log.level")),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		EventSubjectPrefix:  v.GetString("events.subject_prefix"),
		JWTSecret:           v.GetString("jwt.secret"),
		GradeCacheTTL:       ttl,
		RequestTimeout:      timeout,
		EmptyCategoryPolicy: strings.ToLower(strings.TrimSpace(v.GetString("grading.empty_category_policy"))),
		AdminAllowList:      splitList(v.GetString("admin.allow_list")),
		WriteRateLimit:      v.GetInt("rate_limit.write_max"),
		WriteRateWindow:     window,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.EmptyCategoryPolicy {
	case EmptyCategoryExclude, EmptyCategoryZero:
	default:
		return Config{}, fmt.Errorf("unknown empty category policy %q", cfg.EmptyCategoryPolicy)
	}

	if cfg.WriteRateLimit <= 0 {
		cfg.WriteRateLimit = 30
	}

	return cfg, nil
}

func parseDuration(value, fallback string) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		value = fallback
	}
	return time.ParseDuration(value)
}

func splitList(input string) []string {
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
