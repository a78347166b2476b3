package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config configuración principal de la aplicación
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	WhatsApp WhatsAppConfig
	OpenAI   OpenAIConfig
	PMS      PMSConfig
	Report   ReportConfig
	Auth     AuthConfig
	S3       S3Config
	Engine   EngineConfig
	TestAPI  TestAPIConfig
}

// ServerConfig configuración del servidor HTTP
type ServerConfig struct {
	Port            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig configuración de PostgreSQL
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configuración de Redis
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// WhatsAppConfig credenciales del WhatsApp Business API (Meta Graph)
type WhatsAppConfig struct {
	PhoneNumberID      string
	AccessToken        string
	AppSecret          string
	WebhookVerifyToken string
	APIVersion         string
}

// OpenAIConfig credenciales del clasificador LLM
type OpenAIConfig struct {
	APIKey string
	Model  string
}

// PMSConfig configuración del property management system (PelangiManager)
type PMSConfig struct {
	BaseURL  string
	APIToken string
	Timeout  time.Duration
}

// ReportConfig configuración del reporte diario de operaciones
type ReportConfig struct {
	Enabled        bool
	CronExpression string
	Timezone       string
	Recipients     []string
	HostelName     string
}

// AuthConfig credenciales del operador y configuración JWT
type AuthConfig struct {
	JWTSecret        string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	Issuer           string
	OperatorUsername string
	// bcrypt hash of the operator password
	OperatorPasswordHash string
}

// S3Config configuración del archivo de transcripciones
type S3Config struct {
	Enabled   bool
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// EngineConfig parámetros del motor de workflows
type EngineConfig struct {
	DefaultWorkflowID string
	ExecutionTimeout  time.Duration
	RateLimitPerMin   int
	LockTTL           time.Duration
}

// TestAPIConfig habilita el simulador de conversaciones para desarrollo
type TestAPIConfig struct {
	Enabled bool
}

// Load carga la configuración desde variables de entorno
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			ReadTimeout:     getDurationEnv("READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", getEnv("POSTGRES_HOST", "localhost")),
			Port:            getEnv("DB_PORT", getEnv("POSTGRES_PORT", "5432")),
			User:            getEnv("DB_USER", getEnv("POSTGRES_USER", "postgres")),
			Password:        getEnv("DB_PASSWORD", getEnv("POSTGRES_PASSWORD", "postgres")),
			DBName:          getEnv("DB_NAME", getEnv("POSTGRES_DB", "moltbot")),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		WhatsApp: WhatsAppConfig{
			PhoneNumberID:      getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
			AccessToken:        getEnv("WHATSAPP_ACCESS_TOKEN", ""),
			AppSecret:          getEnv("WHATSAPP_APP_SECRET", ""),
			WebhookVerifyToken: getEnv("WHATSAPP_VERIFY_TOKEN", ""),
			APIVersion:         getEnv("WHATSAPP_API_VERSION", "v24.0"),
		},
		OpenAI: OpenAIConfig{
			APIKey: getEnv("OPENAI_API_KEY", ""),
			Model:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
		PMS: PMSConfig{
			BaseURL:  getEnv("PMS_BASE_URL", "http://localhost:3001"),
			APIToken: getEnv("PMS_API_TOKEN", ""),
			Timeout:  getDurationEnv("PMS_TIMEOUT", 30*time.Second),
		},
		Report: ReportConfig{
			Enabled:        getBoolEnv("REPORT_ENABLED", true),
			CronExpression: getEnv("REPORT_CRON", "0 9 * * *"),
			Timezone:       getEnv("REPORT_TIMEZONE", "Asia/Kuala_Lumpur"),
			Recipients:     getListEnv("REPORT_RECIPIENTS"),
			HostelName:     getEnv("HOSTEL_NAME", "Pelangi Capsule Hostel"),
		},
		Auth: AuthConfig{
			JWTSecret:            getEnv("JWT_SECRET", "default-secret-change-in-production"),
			AccessTokenTTL:       getDurationEnv("ACCESS_TOKEN_TTL", 15*time.Minute),
			RefreshTokenTTL:      getDurationEnv("REFRESH_TOKEN_TTL", 7*24*time.Hour),
			Issuer:               getEnv("JWT_ISSUER", "moltbot"),
			OperatorUsername:     getEnv("OPERATOR_USERNAME", "operator"),
			OperatorPasswordHash: getEnv("OPERATOR_PASSWORD_HASH", ""),
		},
		S3: S3Config{
			Enabled:   getBoolEnv("S3_ARCHIVE_ENABLED", false),
			Region:    getEnv("S3_REGION", "ap-southeast-1"),
			Bucket:    getEnv("S3_BUCKET", ""),
			AccessKey: getEnv("S3_ACCESS_KEY", getEnv("AWS_ACCESS_KEY_ID", "")),
			SecretKey: getEnv("S3_SECRET_KEY", getEnv("AWS_SECRET_ACCESS_KEY", "")),
		},
		Engine: EngineConfig{
			DefaultWorkflowID: getEnv("DEFAULT_WORKFLOW_ID", ""),
			ExecutionTimeout:  getDurationEnv("ENGINE_EXECUTION_TIMEOUT", 30*time.Second),
			RateLimitPerMin:   getIntEnv("INBOUND_RATE_LIMIT_PER_MIN", 20),
			LockTTL:           getDurationEnv("CONVERSATION_LOCK_TTL", 30*time.Second),
		},
		TestAPI: TestAPIConfig{
			Enabled: getBoolEnv("TEST_API_ENABLED", true),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate valida la configuración
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.S3.Enabled && c.S3.Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required when S3_ARCHIVE_ENABLED=true")
	}
	if c.Report.Enabled && len(c.Report.Recipients) == 0 && c.Server.Environment == "production" {
		return fmt.Errorf("REPORT_RECIPIENTS is required when REPORT_ENABLED=true")
	}
	return nil
}

// GetDSN retorna el DSN de PostgreSQL
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetAddr retorna la dirección de Redis
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intValue int
		if _, err := fmt.Sscanf(value, "%d", &intValue); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
