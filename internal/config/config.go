package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Attendance AttendanceConfig
	Leave      LeaveConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	RateLimit  RateLimitConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration. Tokens are issued elsewhere; this service only verifies them.
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	Timezone    string
	FrontendURL string
}

// AttendanceConfig holds the check-in/check-out policy.
type AttendanceConfig struct {
	LateAfter        string
	CheckInCooldown  time.Duration
	CheckOutCooldown time.Duration
	MinimumDuration  time.Duration
	CooldownScope    string
}

// LeaveConfig holds the per-year leave allowance defaults.
type LeaveConfig struct {
	DefaultVacationDays int
	DefaultSickDays     int
	DefaultPersonalDays int
	EnforceBalance      bool
}

// RedisConfig is optional; an empty Addr disables idempotency keys.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers      []string
	TopicPrefix  string
	PollInterval time.Duration
	BatchSize    int
	// MetricsAddr is where cmd/worker serves /metrics; empty disables it.
	MetricsAddr  string
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading configuration from environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "cmlabs-hris-ledger"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Timezone:    getEnv("APP_TIMEZONE", "UTC"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	// Attendance policy
	checkInCooldown, err := getEnvDuration("ATTENDANCE_CHECKIN_COOLDOWN", time.Minute)
	if err != nil {
		return nil, err
	}
	checkOutCooldown, err := getEnvDuration("ATTENDANCE_CHECKOUT_COOLDOWN", time.Minute)
	if err != nil {
		return nil, err
	}
	minDuration, err := getEnvDuration("ATTENDANCE_MIN_DURATION", time.Minute)
	if err != nil {
		return nil, err
	}

	config.Attendance = AttendanceConfig{
		LateAfter:        getEnv("ATTENDANCE_LATE_AFTER", "09:30"),
		CheckInCooldown:  checkInCooldown,
		CheckOutCooldown: checkOutCooldown,
		MinimumDuration:  minDuration,
		CooldownScope:    getEnv("ATTENDANCE_COOLDOWN_SCOPE", "employee"),
	}

	// Leave allowance
	vacation, err := getEnvInt("LEAVE_DEFAULT_VACATION", 20)
	if err != nil {
		return nil, err
	}
	sick, err := getEnvInt("LEAVE_DEFAULT_SICK", 10)
	if err != nil {
		return nil, err
	}
	personal, err := getEnvInt("LEAVE_DEFAULT_PERSONAL", 5)
	if err != nil {
		return nil, err
	}
	enforce, err := strconv.ParseBool(getEnv("LEAVE_ENFORCE_BALANCE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEAVE_ENFORCE_BALANCE: %w", err)
	}

	config.Leave = LeaveConfig{
		DefaultVacationDays: vacation,
		DefaultSickDays:     sick,
		DefaultPersonalDays: personal,
		EnforceBalance:      enforce,
	}

	// Redis configuration
	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
	}

	// Kafka / outbox relay
	pollInterval, err := getEnvDuration("OUTBOX_POLL_INTERVAL", 3*time.Second)
	if err != nil {
		return nil, err
	}
	batchSize, err := getEnvInt("OUTBOX_BATCH_SIZE", 50)
	if err != nil {
		return nil, err
	}

	config.Kafka = KafkaConfig{
		Brokers:      getEnvSlice("KAFKA_BROKERS"),
		TopicPrefix:  getEnv("KAFKA_TOPIC_PREFIX", "hris"),
		PollInterval: pollInterval,
		BatchSize:    batchSize,
		MetricsAddr:  getEnv("WORKER_METRICS_ADDR", ":9091"),
	}

	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}
	burst, err := getEnvInt("RATE_LIMIT_BURST", 10)
	if err != nil {
		return nil, err
	}

	config.RateLimit = RateLimitConfig{
		RequestsPerSecond: rps,
		Burst:             burst,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.App.Timezone, err)
	}
	if _, err := time.Parse("15:04", c.Attendance.LateAfter); err != nil {
		return fmt.Errorf("ATTENDANCE_LATE_AFTER must be HH:MM, got %q", c.Attendance.LateAfter)
	}
	switch c.Attendance.CooldownScope {
	case "employee", "day":
	default:
		return fmt.Errorf("ATTENDANCE_COOLDOWN_SCOPE must be employee or day, got %q", c.Attendance.CooldownScope)
	}
	if c.Attendance.CheckInCooldown < 0 || c.Attendance.CheckOutCooldown < 0 || c.Attendance.MinimumDuration < 0 {
		return fmt.Errorf("attendance durations must not be negative")
	}
	if c.Leave.DefaultVacationDays < 0 || c.Leave.DefaultSickDays < 0 || c.Leave.DefaultPersonalDays < 0 {
		return fmt.Errorf("leave defaults must not be negative")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Location returns the business timezone used to derive calendar dates and lateness.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, err := time.ParseDuration(getEnv(key, fallback.String()))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string = strings.Split(value, ",")
	return result
}
