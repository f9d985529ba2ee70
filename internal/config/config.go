package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URL    string `mapstructure:"url"`
	Path   string `mapstructure:"path"`
}

type PolicyConfig struct {
	BlockDeclinedOnScan   bool `mapstructure:"block_declined_on_scan"`
	BlockDeclinedOnManual bool `mapstructure:"block_declined_on_manual"`
}

type ScannerConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	DedupeWindow  time.Duration `mapstructure:"dedupe_window"`
	FrameDir      string        `mapstructure:"frame_dir"`
	ResultBuffer  int           `mapstructure:"result_buffer"`
	RatePerMinute int           `mapstructure:"rate_per_minute"`
	Policy        PolicyConfig  `mapstructure:"policy"`
}

type EmailConfig struct {
	From            string   `mapstructure:"from"`
	SMTPHost        string   `mapstructure:"smtp_host"`
	SMTPPort        int      `mapstructure:"smtp_port"`
	Username        string   `mapstructure:"username"`
	Password        string   `mapstructure:"password"`
	AlertRecipients []string `mapstructure:"alert_recipients"`
}

type NATSConfig struct {
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

type TelemetryConfig struct {
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

type Config struct {
	ServerPort     string          `mapstructure:"server_port"`
	JWTSecret      string          `mapstructure:"jwt_secret"`
	LogLevel       string          `mapstructure:"log_level"`
	AllowedOrigins []string        `mapstructure:"allowed_origins"`
	Database       DatabaseConfig  `mapstructure:"database"`
	Scanner        ScannerConfig   `mapstructure:"scanner"`
	Email          EmailConfig     `mapstructure:"email"`
	NATS           NATSConfig      `mapstructure:"nats"`
	Telemetry      TelemetryConfig `mapstructure:"telemetry"`
}

// EnvPrefix namespaces environment overrides, e.g. INVITOPIA_DATABASE_URL.
const EnvPrefix = "INVITOPIA"

// Load reads config.yaml from the given directories (default "." and "./config"),
// layers INVITOPIA_* environment variables on top and applies defaults.
// A missing config file is not an error; a missing jwt_secret is.
func Load(paths ...string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Fallback defaults
	if config.ServerPort == "" {
		config.ServerPort = "8080"
	}
	if config.Database.Driver == "" {
		config.Database.Driver = "postgres"
	}
	if config.Scanner.Interval <= 0 {
		config.Scanner.Interval = 500 * time.Millisecond
	}
	if config.Scanner.DedupeWindow <= 0 {
		config.Scanner.DedupeWindow = 3 * time.Second
	}
	if config.Scanner.ResultBuffer <= 0 {
		config.Scanner.ResultBuffer = 50
	}
	if config.Email.SMTPPort == 0 {
		config.Email.SMTPPort = 587
	}
	if config.Telemetry.ServiceName == "" {
		config.Telemetry.ServiceName = "invitopia"
	}

	if config.JWTSecret == "" {
		return nil, errors.New("jwt_secret must be set in the config file or INVITOPIA_JWT_SECRET")
	}

	return &config, nil
}

// setDefaults registers every key so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server_port", "8080")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.url", "")
	v.SetDefault("database.path", "invitopia.db")

	v.SetDefault("scanner.interval", 500*time.Millisecond)
	v.SetDefault("scanner.dedupe_window", 3*time.Second)
	v.SetDefault("scanner.frame_dir", "")
	v.SetDefault("scanner.result_buffer", 50)
	v.SetDefault("scanner.rate_per_minute", 240)
	v.SetDefault("scanner.policy.block_declined_on_scan", true)
	v.SetDefault("scanner.policy.block_declined_on_manual", false)

	v.SetDefault("email.from", "")
	v.SetDefault("email.smtp_host", "")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.alert_recipients", []string{})

	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject_prefix", "invitopia")

	v.SetDefault("telemetry.service_name", "invitopia")
	v.SetDefault("telemetry.otlp_endpoint", "")
}
