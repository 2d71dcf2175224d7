package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration. It is constructed once at process
// start and passed explicitly to every component that needs it.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	JWTSecret         string
	JWTIssuer         string
	JWTExpiryDuration time.Duration
	// Refresh Token Config
	RefreshTokenExpiryDuration time.Duration

	// Password Reset Config
	ResetTokenExpiryDuration time.Duration
	AppBaseURL               string
	// ExposeAccountExistence controls whether forgot-password reports an
	// unknown email as 404. Off by default so account existence does not leak.
	ExposeAccountExistence bool

	// Mail transport
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "authgate")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("REFRESH_TOKEN_EXPIRY_DURATION", "168h")
	viper.SetDefault("RESET_TOKEN_EXPIRY_DURATION", "1h")
	viper.SetDefault("APP_BASE_URL", "http://localhost:8080")
	viper.SetDefault("EXPOSE_ACCOUNT_EXISTENCE", false)
	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_USERNAME", "")
	viper.SetDefault("SMTP_PASSWORD", "")
	viper.SetDefault("SMTP_FROM", "")
	viper.SetDefault("SMTP_TIMEOUT", "10s")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration

	refreshExpiryStr := viper.GetString("REFRESH_TOKEN_EXPIRY_DURATION")
	refreshExpiryDuration, err := time.ParseDuration(refreshExpiryStr)
	if err != nil {
		refreshExpiryDuration = time.Hour * 24 * 7
		log.Printf("Warning: Invalid value for REFRESH_TOKEN_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", refreshExpiryStr, refreshExpiryDuration.String())
	}
	cfg.RefreshTokenExpiryDuration = refreshExpiryDuration

	resetExpiryStr := viper.GetString("RESET_TOKEN_EXPIRY_DURATION")
	resetExpiryDuration, err := time.ParseDuration(resetExpiryStr)
	if err != nil {
		resetExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for RESET_TOKEN_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", resetExpiryStr, resetExpiryDuration.String())
	}
	cfg.ResetTokenExpiryDuration = resetExpiryDuration

	cfg.AppBaseURL = viper.GetString("APP_BASE_URL")
	cfg.ExposeAccountExistence = viper.GetBool("EXPOSE_ACCOUNT_EXISTENCE")

	cfg.SMTPHost = viper.GetString("SMTP_HOST")
	cfg.SMTPPort = viper.GetInt("SMTP_PORT")
	cfg.SMTPUsername = viper.GetString("SMTP_USERNAME")
	cfg.SMTPPassword = viper.GetString("SMTP_PASSWORD")
	cfg.SMTPFrom = viper.GetString("SMTP_FROM")

	smtpTimeoutStr := viper.GetString("SMTP_TIMEOUT")
	smtpTimeout, err := time.ParseDuration(smtpTimeoutStr)
	if err != nil {
		smtpTimeout = 10 * time.Second
		log.Printf("Warning: Invalid value for SMTP_TIMEOUT ('%s'). Defaulting to %s.\n", smtpTimeoutStr, smtpTimeout.String())
	}
	cfg.SMTPTimeout = smtpTimeout

	if cfg.SMTPHost == "" {
		log.Println("Warning: SMTP_HOST not set. Password reset mails will not be delivered.")
	}

	return cfg, nil
}
