package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

// Payment gateways.
const (
	GatewayRazorpay = "razorpay"
	GatewayMock     = "mock"
)

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the connection string for gorm's postgres driver.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// RazorpayConfig holds gateway credentials.
type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Timeout   time.Duration
}

// SMTPConfig holds outbound mail settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Email    string
	Password string
}

// Enabled reports whether mail can be sent at all.
func (c SMTPConfig) Enabled() bool {
	return c.Email != "" && c.Password != ""
}

// KafkaConfig holds broker settings for booking events.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port           string
	AppEnv         string
	BusinessName   string
	StorageDriver  string
	BookingsFile   string
	PromoFile      string
	PublicDir      string
	PaymentGateway string
	RejectOverlaps bool
	NotifyTimeout  time.Duration
	DBConfig       DatabaseConfig
	RazorpayConfig RazorpayConfig
	SMTPConfig     SMTPConfig
	KafkaConfig    KafkaConfig
}

// Load reads configuration from the environment, after loading an optional .env file.
func Load() (*ServiceConfig, error) {
	cfg := load()
	if err := cfg.validateStorage(); err != nil {
		return nil, err
	}
	if err := cfg.validateGateway(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadStorage is Load for offline tools: gateway settings are not validated.
func LoadStorage() (*ServiceConfig, error) {
	cfg := load()
	if err := cfg.validateStorage(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load() *ServiceConfig {
	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return &ServiceConfig{
		Port:           servicePort(v.GetString("SERVICE_PORT")),
		AppEnv:         v.GetString("APP_ENV"),
		BusinessName:   v.GetString("BUSINESS_NAME"),
		StorageDriver:  strings.ToLower(v.GetString("STORAGE_DRIVER")),
		BookingsFile:   v.GetString("BOOKINGS_FILE"),
		PromoFile:      v.GetString("PROMO_FILE"),
		PublicDir:      v.GetString("PUBLIC_DIR"),
		PaymentGateway: strings.ToLower(v.GetString("PAYMENT_GATEWAY")),
		RejectOverlaps: v.GetBool("REJECT_OVERLAPS"),
		NotifyTimeout:  v.GetDuration("NOTIFY_TIMEOUT"),
		DBConfig:       loadDatabaseConfig(v),
		RazorpayConfig: loadRazorpayConfig(v),
		SMTPConfig:     loadSMTPConfig(v),
		KafkaConfig:    loadKafkaConfig(v),
	}
}

func (c *ServiceConfig) validateStorage() error {
	switch c.StorageDriver {
	case StorageFile, StoragePostgres:
		return nil
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
}

func (c *ServiceConfig) validateGateway() error {
	switch c.PaymentGateway {
	case GatewayRazorpay:
		if c.RazorpayConfig.KeyID == "" || c.RazorpayConfig.KeySecret == "" {
			return fmt.Errorf("missing Razorpay credentials in environment")
		}
		return nil
	case GatewayMock:
		return nil
	default:
		return fmt.Errorf("unknown PAYMENT_GATEWAY %q", c.PaymentGateway)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_PORT", "5000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("BUSINESS_NAME", "GreenOBird Farmstay")
	v.SetDefault("STORAGE_DRIVER", StorageFile)
	v.SetDefault("BOOKINGS_FILE", "bookings.json")
	v.SetDefault("PROMO_FILE", "promocodes.csv")
	v.SetDefault("PUBLIC_DIR", "public")
	v.SetDefault("PAYMENT_GATEWAY", GatewayRazorpay)
	v.SetDefault("REJECT_OVERLAPS", false)
	v.SetDefault("NOTIFY_TIMEOUT", "10s")
	v.SetDefault("GATEWAY_TIMEOUT", "15s")
	v.SetDefault("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1")
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 465)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "farmstay")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("KAFKA_TOPIC", "booking.events")
}

func servicePort(p string) string {
	if strings.HasPrefix(p, ":") {
		return p
	}
	return ":" + p
}

func loadDatabaseConfig(v *viper.Viper) DatabaseConfig {
	return DatabaseConfig{
		Host:     v.GetString("DB_HOST"),
		Port:     v.GetString("DB_PORT"),
		User:     v.GetString("DB_USER"),
		Password: v.GetString("DB_PASSWORD"),
		DBName:   v.GetString("DB_NAME"),
		SSLMode:  v.GetString("DB_SSLMODE"),
	}
}

func loadRazorpayConfig(v *viper.Viper) RazorpayConfig {
	return RazorpayConfig{
		KeyID:     v.GetString("RAZORPAY_KEY_ID"),
		KeySecret: v.GetString("RAZORPAY_KEY_SECRET"),
		BaseURL:   v.GetString("RAZORPAY_BASE_URL"),
		Timeout:   v.GetDuration("GATEWAY_TIMEOUT"),
	}
}

func loadSMTPConfig(v *viper.Viper) SMTPConfig {
	return SMTPConfig{
		Host:     v.GetString("SMTP_HOST"),
		Port:     v.GetInt("SMTP_PORT"),
		Email:    v.GetString("SMTP_EMAIL"),
		Password: v.GetString("SMTP_PASSWORD"),
	}
}

func loadKafkaConfig(v *viper.Viper) KafkaConfig {
	var brokers []string
	for _, b := range strings.Split(v.GetString("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return KafkaConfig{
		Brokers: brokers,
		Topic:   v.GetString("KAFKA_TOPIC"),
	}
}
