package utils

import (
	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Booking      BookingConfig
	Payment      PaymentConfig
	Notification NotificationConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

// BookingConfig holds the inventory rules. Cutoff and horizon are process-wide,
// not per-package.
type BookingConfig struct {
	Timezone    string
	CutoffHours int
	HorizonDays int
}

type PaymentConfig struct {
	BaseURL          string
	SecretKey        string
	WebhookSecret    string
	ToleranceSeconds int
}

type NotificationConfig struct {
	AMQPURL string
	Queue   string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("BUSINESS_TIMEZONE", "Asia/Bangkok")
	viper.SetDefault("BOOKING_CUTOFF_HOURS", 10)
	viper.SetDefault("SLOT_HORIZON_DAYS", 90)
	viper.SetDefault("PAYMENT_BASE_URL", "https://api.stripe.com")
	viper.SetDefault("WEBHOOK_TOLERANCE_SECONDS", 300)
	viper.SetDefault("NOTIFY_QUEUE", "booking.confirmed")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Booking: BookingConfig{
			Timezone:    viper.GetString("BUSINESS_TIMEZONE"),
			CutoffHours: viper.GetInt("BOOKING_CUTOFF_HOURS"),
			HorizonDays: viper.GetInt("SLOT_HORIZON_DAYS"),
		},
		Payment: PaymentConfig{
			BaseURL:          viper.GetString("PAYMENT_BASE_URL"),
			SecretKey:        viper.GetString("PAYMENT_SECRET_KEY"),
			WebhookSecret:    viper.GetString("PAYMENT_WEBHOOK_SECRET"),
			ToleranceSeconds: viper.GetInt("WEBHOOK_TOLERANCE_SECONDS"),
		},
		Notification: NotificationConfig{
			AMQPURL: viper.GetString("AMQP_URL"),
			Queue:   viper.GetString("NOTIFY_QUEUE"),
		},
	}

	return config, nil
}
