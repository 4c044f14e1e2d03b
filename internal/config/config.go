package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mailbeam/billing/internal/types"
)

type Configuration struct {
	Deployment    DeploymentConfig    `validate:"required"`
	Server        ServerConfig        `validate:"required"`
	Logging       LoggingConfig       `validate:"required"`
	Secrets       SecretsConfig       `validate:"required"`
	Postgres      PostgresConfig      `validate:"required"`
	Gateway       GatewayConfig       `validate:"required"`
	Invoicing     InvoicingConfig     `validate:"required"`
	CRM           CRMConfig           `validate:"required"`
	Alert         AlertConfig         `validate:"required"`
	Email         EmailConfig         `validate:"required"`
	Notifications NotificationsConfig `validate:"required"`
	Sentry        SentryConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type SecretsConfig struct {
	// EncryptionKey is the AES-256 master key used to decrypt stored
	// payment instrument fields.
	EncryptionKey string `validate:"required"`
}

type PostgresConfig struct {
	Host                   string
	Port                   int
	User                   string
	Password               string
	DBName                 string
	SSLMode                string
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeMinutes int
}

// GatewayConfig configures the external payment processor
type GatewayConfig struct {
	BaseURL string `validate:"required"`
	APIKey  string
}

// InvoicingConfig configures the external invoicing system push
type InvoicingConfig struct {
	BaseURL          string `validate:"required"`
	BillingSystemID  int
	TransactionRoute string
}

// CRMConfig configures the CRM integration. TimeFormat is the explicit
// serialization format for timestamps in CRM payloads; it is passed to
// the payload serializer rather than set as process-wide state.
type CRMConfig struct {
	BaseURL     string `validate:"required"`
	AccessToken string
	TimeFormat  string
}

// AlertConfig configures the operations alert channel webhook
type AlertConfig struct {
	WebhookURL string `validate:"required"`
	Channel    string
}

// EmailConfig configures the transactional email sender and the
// template ids used by agreement notifications.
type EmailConfig struct {
	BaseURL     string `validate:"required"`
	APIKey      string
	FromAddress string

	CreditsTemplateID          string
	UpgradeTemplateID          string
	SubscribersPlanTemplateID  string
	StandByActivatedTemplateID string
}

// NotificationsConfig configures the queued notification dispatch
type NotificationsConfig struct {
	Enabled bool
	PubSub  types.PubSubType `validate:"required"`
	Topic   string           `validate:"required"`

	// Router retry middleware settings for the notification handler
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	MaxElapsedTime  time.Duration
}

type SentryConfig struct {
	Enabled     bool
	DSN         string
	Environment string
	SampleRate  float64
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/mailbeam-billing")

	// Local development convenience; missing .env is fine
	_ = godotenv.Load()

	v.SetEnvPrefix("MAILBEAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeLocal))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.maxopenconns", 10)
	v.SetDefault("postgres.maxidleconns", 5)
	v.SetDefault("postgres.connmaxlifetimeminutes", 30)
	v.SetDefault("crm.timeformat", "2006-01-02T15:04:05Z")
	v.SetDefault("notifications.enabled", true)
	v.SetDefault("notifications.pubsub", string(types.MemoryPubSub))
	v.SetDefault("notifications.topic", "agreement_notifications")
	v.SetDefault("notifications.maxretries", 3)
	v.SetDefault("notifications.initialinterval", 100*time.Millisecond)
	v.SetDefault("notifications.maxinterval", 5*time.Second)
	v.SetDefault("notifications.multiplier", 2.0)
	v.SetDefault("notifications.maxelapsedtime", time.Minute)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// and tests.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Secrets:    SecretsConfig{EncryptionKey: "local-development-encryption-key"},
		CRM:        CRMConfig{TimeFormat: "2006-01-02T15:04:05Z"},
		Notifications: NotificationsConfig{
			Enabled:         true,
			PubSub:          types.MemoryPubSub,
			Topic:           "agreement_notifications",
			MaxRetries:      3,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     5 * time.Second,
			Multiplier:      2.0,
			MaxElapsedTime:  time.Minute,
		},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}
