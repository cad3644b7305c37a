package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port            string        `yaml:"port" env:"SERVER_PORT"`
		Mode            string        `yaml:"mode" env:"SERVER_MODE"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
		AllowedOrigins  []string      `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS"`
	} `yaml:"server"`

	JWT struct {
		Secret                string        `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration time.Duration `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string        `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Auth struct {
		MaxLoginAttempts int           `yaml:"max_login_attempts" env:"AUTH_MAX_LOGIN_ATTEMPTS"`
		LockoutDuration  time.Duration `yaml:"lockout_duration" env:"AUTH_LOCKOUT_DURATION"`
		BcryptCost       int           `yaml:"bcrypt_cost" env:"AUTH_BCRYPT_COST"`
		ResetTokenTTL    time.Duration `yaml:"reset_token_ttl" env:"AUTH_RESET_TOKEN_TTL"`
		SignupRoles      []string      `yaml:"signup_roles" env:"AUTH_SIGNUP_ROLES"`

		// SessionSweepInterval is how often idle sessions are pruned. A
		// session lives as long as the access token it was issued with.
		SessionSweepInterval time.Duration `yaml:"session_sweep_interval" env:"AUTH_SESSION_SWEEP_INTERVAL"`
	} `yaml:"auth"`

	Recap struct {
		Enabled    bool          `yaml:"enabled" env:"RECAP_ENABLED"`
		Interval   time.Duration `yaml:"interval" env:"RECAP_INTERVAL"`
		Window     time.Duration `yaml:"window" env:"RECAP_WINDOW"`
		MinRatings int           `yaml:"min_ratings" env:"RECAP_MIN_RATINGS"`
		TopN       int           `yaml:"top_n" env:"RECAP_TOP_N"`
	} `yaml:"recap"`

	Toast struct {
		TTL time.Duration `yaml:"ttl" env:"TOAST_TTL"`
	} `yaml:"toast"`

	GenAI struct {
		APIKey        string        `yaml:"api_key" env:"GEMINI_API_KEY"`
		Model         string        `yaml:"model" env:"GENAI_MODEL"`
		BaseURL       string        `yaml:"base_url" env:"GENAI_BASE_URL"`
		Timeout       time.Duration `yaml:"timeout" env:"GENAI_TIMEOUT"`
		MaxTextLength int           `yaml:"max_text_length" env:"GENAI_MAX_TEXT_LENGTH"`
	} `yaml:"genai"`

	Upload struct {
		StoragePath    string `yaml:"storage_path" env:"UPLOAD_STORAGE_PATH"`
		BaseURL        string `yaml:"base_url" env:"UPLOAD_BASE_URL"`
		MaxPDFBytes    int64  `yaml:"max_pdf_bytes" env:"UPLOAD_MAX_PDF_BYTES"`
		MaxAvatarBytes int64  `yaml:"max_avatar_bytes" env:"UPLOAD_MAX_AVATAR_BYTES"`
		MaxMCQCount    int    `yaml:"max_mcq_count" env:"UPLOAD_MAX_MCQ_COUNT"`
	} `yaml:"upload"`

	Mail struct {
		Host       string `yaml:"host" env:"SMTP_HOST"`
		Port       int    `yaml:"port" env:"SMTP_PORT"`
		Username   string `yaml:"username" env:"SMTP_USERNAME"`
		Password   string `yaml:"password" env:"SMTP_PASSWORD"`
		From       string `yaml:"from" env:"SMTP_FROM"`
		AppBaseURL string `yaml:"app_base_url" env:"APP_BASE_URL"`
	} `yaml:"mail"`

	Metrics struct {
		Enabled   bool   `yaml:"enabled" env:"METRICS_ENABLED"`
		Namespace string `yaml:"namespace" env:"METRICS_NAMESPACE"`
	} `yaml:"metrics"`

	Seed struct {
		Enabled bool `yaml:"enabled" env:"SEED_ENABLED"`
	} `yaml:"seed"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// A missing file is fine, defaults and env still apply
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.ShutdownTimeout = 10 * time.Second
	config.Server.AllowedOrigins = []string{"*"}

	// JWT defaults
	config.JWT.AccessTokenExpiration = 24 * time.Hour
	config.JWT.Issuer = "majlis.local"

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"

	// Auth defaults
	config.Auth.MaxLoginAttempts = 5
	config.Auth.LockoutDuration = 15 * time.Minute
	config.Auth.BcryptCost = 10
	config.Auth.ResetTokenTTL = time.Hour
	config.Auth.SignupRoles = []string{"STUDENT", "MEMBER"}
	config.Auth.SessionSweepInterval = 10 * time.Minute

	// Recap defaults
	config.Recap.Enabled = true
	config.Recap.Interval = time.Hour
	config.Recap.Window = 7 * 24 * time.Hour
	config.Recap.MinRatings = 5
	config.Recap.TopN = 3

	config.Toast.TTL = 5 * time.Second

	// GenAI defaults
	config.GenAI.Model = "gemini-2.5-flash"
	config.GenAI.Timeout = 2 * time.Minute
	config.GenAI.MaxTextLength = 1_000_000

	// Upload defaults
	config.Upload.StoragePath = "./uploads"
	config.Upload.BaseURL = "/uploads"
	config.Upload.MaxPDFBytes = 10 << 20
	config.Upload.MaxAvatarBytes = 2 << 20
	config.Upload.MaxMCQCount = 20

	config.Mail.Port = 587
	config.Mail.From = "no-reply@majlis.local"
	config.Mail.AppBaseURL = "http://localhost:3000"

	config.Metrics.Enabled = true
	config.Metrics.Namespace = "majlis"

	config.Seed.Enabled = true
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if config.JWT.AccessTokenExpiration <= 0 {
		return fmt.Errorf("JWT access token expiration must be positive")
	}

	if config.Auth.MaxLoginAttempts < 1 {
		return fmt.Errorf("auth max login attempts must be at least 1")
	}

	if config.Auth.LockoutDuration <= 0 {
		return fmt.Errorf("auth lockout duration must be positive")
	}

	if config.Auth.ResetTokenTTL <= 0 {
		return fmt.Errorf("auth reset token ttl must be positive")
	}

	if config.Auth.SessionSweepInterval <= 0 {
		return fmt.Errorf("auth session sweep interval must be positive")
	}

	for _, origin := range config.Server.AllowedOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("allowed origin %q must be \"*\" or start with http:// or https://", origin)
		}
	}

	for _, role := range config.Auth.SignupRoles {
		switch strings.ToUpper(role) {
		case "STUDENT", "MEMBER", "ADMIN":
		default:
			return fmt.Errorf("unknown signup role %q", role)
		}
	}

	if config.Recap.Interval <= 0 {
		return fmt.Errorf("recap interval must be positive")
	}

	if config.Recap.Window <= 0 {
		return fmt.Errorf("recap window must be positive")
	}

	if config.Recap.TopN < 1 {
		return fmt.Errorf("recap top_n must be at least 1")
	}

	if config.Toast.TTL <= 0 {
		return fmt.Errorf("toast ttl must be positive")
	}

	if config.GenAI.MaxTextLength < 1 {
		return fmt.Errorf("genai max text length must be positive")
	}

	if config.Upload.MaxMCQCount < 1 {
		return fmt.Errorf("upload max mcq count must be at least 1")
	}

	return nil
}

// MailConfigured reports whether SMTP delivery is possible
func (c *Config) MailConfigured() bool {
	return c.Mail.Host != "" && c.Mail.Port != 0
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsInt gets an environment variable as an integer or returns a default value
func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := GetEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
