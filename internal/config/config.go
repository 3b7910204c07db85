package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends selectable with STORE_TYPE.
const (
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
	StoreMemory   = "memory"
)

type Config struct {
	App         AppConfig
	Store       StoreConfig
	Database    DatabaseConfig
	Mongo       MongoConfig
	Redis       RedisConfig
	JWT         JWTConfig
	CORS        CORSConfig
	SMTP        SMTPConfig
	Reports     ReportsConfig
	Leave       LeaveConfig
	Propagation PropagationConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port            int
	Env             string
	LogLevel        string
	DefaultTimezone string
}

func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

type StoreConfig struct {
	Type string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
}

type MongoConfig struct {
	URI      string
	Database string
}

// RedisConfig enables the template cache when Addr is set.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	TemplateTTL time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	SupportClaim     string
	AccessExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// ReportsConfig controls report artifacts and the nightly run.
type ReportsConfig struct {
	ArtifactDir string
	ArtifactURL string
	// Recipients receive the payroll report of offices without a Recipients document.
	Recipients []string
	CronHour   int
}

type LeaveConfig struct {
	ResetPolicy string
}

type PropagationConfig struct {
	PageSize  int
	PageDelay time.Duration
	QueueSize int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("Config: no .env file, using the environment")
	}

	config := &Config{}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}
	config.App = AppConfig{
		Port:            appPort,
		Env:             getEnv("APP_ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DefaultTimezone: getEnv("DEFAULT_TIMEZONE", "Asia/Kolkata"),
	}
	config.Store = StoreConfig{Type: getEnv("STORE_TYPE", StorePostgres)}

	// Database configuration
	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	maxConns, err := getEnvInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "growthfile"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: maxConns,
	}
	config.Mongo = MongoConfig{
		URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		Database: getEnv("MONGO_DATABASE", "growthfile"),
	}

	// Redis configuration
	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	templateTTL, err := getEnvDuration("REDIS_TEMPLATE_TTL", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	config.Redis = RedisConfig{
		Addr:        getEnv("REDIS_ADDR", ""),
		Password:    getEnv("REDIS_PASSWORD", ""),
		DB:          redisDB,
		TemplateTTL: templateTTL,
	}

	// JWT configuration
	accessExpiration, err := getEnvDuration("JWT_ACCESS_EXPIRATION_TIME", time.Hour)
	if err != nil {
		return nil, err
	}
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		SupportClaim:     getEnv("JWT_SUPPORT_CLAIM", "support"),
		AccessExpiration: accessExpiration,
	}
	config.CORS = CORSConfig{AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"})}

	// SMTP configuration
	smtpPort, err := getEnvInt("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}
	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     smtpPort,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "reports@growthfile.com"),
		FromName: getEnv("SMTP_FROM_NAME", "Growthfile"),
	}

	// Reports configuration
	cronHour, err := getEnvInt("REPORTS_CRON_HOUR", 1)
	if err != nil {
		return nil, err
	}
	config.Reports = ReportsConfig{
		ArtifactDir: getEnv("REPORTS_ARTIFACT_DIR", "./reports"),
		ArtifactURL: getEnv("REPORTS_ARTIFACT_URL", "http://localhost:8080/reports"),
		Recipients:  getEnvSlice("REPORTS_RECIPIENTS", nil),
		CronHour:    cronHour,
	}
	config.Leave = LeaveConfig{ResetPolicy: getEnv("LEAVE_RESET_POLICY", "regrant")}

	// Propagation configuration
	pageSize, err := getEnvInt("PROPAGATION_PAGE_SIZE", 500)
	if err != nil {
		return nil, err
	}
	pageDelay, err := getEnvDuration("PROPAGATION_PAGE_DELAY", 200*time.Millisecond)
	if err != nil {
		return nil, err
	}
	queueSize, err := getEnvInt("PROPAGATION_QUEUE_SIZE", 64)
	if err != nil {
		return nil, err
	}
	config.Propagation = PropagationConfig{PageSize: pageSize, PageDelay: pageDelay, QueueSize: queueSize}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Store.Type {
	case StorePostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case StoreMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("MONGO_URI is required")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("STORE_TYPE must be one of %s, %s, %s", StorePostgres, StoreMongo, StoreMemory)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.LoadLocation(c.App.DefaultTimezone); err != nil {
		return fmt.Errorf("DEFAULT_TIMEZONE is invalid: %w", err)
	}
	if c.Leave.ResetPolicy != "regrant" && c.Leave.ResetPolicy != "reject" {
		return fmt.Errorf("LEAVE_RESET_POLICY must be regrant or reject")
	}
	if c.Propagation.PageSize < 1 || c.Propagation.PageSize > 500 {
		return fmt.Errorf("PROPAGATION_PAGE_SIZE must be between 1 and 500")
	}
	if c.Propagation.QueueSize < 1 {
		return fmt.Errorf("PROPAGATION_QUEUE_SIZE must be positive")
	}
	if c.Reports.CronHour < 0 || c.Reports.CronHour > 23 {
		return fmt.Errorf("REPORTS_CRON_HOUR must be between 0 and 23")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
		c.Database.MaxConns,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, s := range strings.Split(value, ",") {
		if s = strings.TrimSpace(s); s != "" {
			result = append(result, s)
		}
	}
	return result
}
