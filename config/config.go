package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`
	Redis struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	JWT struct {
		SecretKey            string `mapstructure:"secret_key"`
		Algorithm            string `mapstructure:"algorithm"`
		AccessTTLMinutes     int    `mapstructure:"access_ttl_minutes"`
		RefreshTTLDays       int    `mapstructure:"refresh_ttl_days"`
		ResetTokenTTLMinutes int    `mapstructure:"reset_token_ttl_minutes"`
		ResetLinkBaseURL     string `mapstructure:"reset_link_base_url"`
	} `mapstructure:"jwt"`
	Mail struct {
		// Mode selects the notification transport: "smtp" sends directly,
		// "queue" publishes to RabbitMQ for an external sender process,
		// anything else disables outbound mail (sends are logged and dropped).
		Mode string `mapstructure:"mode"`
		From string `mapstructure:"from"`
		SMTP struct {
			Host     string `mapstructure:"host"`
			Port     int    `mapstructure:"port"`
			Username string `mapstructure:"username"`
			Password string `mapstructure:"password"`
		} `mapstructure:"smtp"`
		RabbitMQ struct {
			URL       string `mapstructure:"url"`
			QueueName string `mapstructure:"queue_name"`
		} `mapstructure:"rabbitmq"`
	} `mapstructure:"mail"`
}

var AppConfig Config

func LoadConfig(path string) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yml")

	viper.SetDefault("jwt.algorithm", "HS256")
	viper.SetDefault("jwt.access_ttl_minutes", 15)
	viper.SetDefault("jwt.refresh_ttl_days", 7)
	viper.SetDefault("jwt.reset_token_ttl_minutes", 15)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
}

// AccessTokenTTL returns the configured access token lifetime.
func AccessTokenTTL() time.Duration {
	return time.Duration(AppConfig.JWT.AccessTTLMinutes) * time.Minute
}

// RefreshTokenTTL returns the configured refresh token lifetime.
func RefreshTokenTTL() time.Duration {
	return time.Duration(AppConfig.JWT.RefreshTTLDays) * 24 * time.Hour
}

// ResetTokenTTL returns the configured password reset token lifetime.
func ResetTokenTTL() time.Duration {
	return time.Duration(AppConfig.JWT.ResetTokenTTLMinutes) * time.Minute
}
