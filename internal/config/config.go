package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	SessionSecret       string
	DatabaseURL         string
	RedisURL            string
	SMSBaseURL          string // SMS provider API base, e.g. https://sms.arkesel.com
	SMSAPIKey           string // provider key; empty disables outbound SMS (no-op client)
	SMSSenderID         string // registered sender name shown on recipients' phones
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	IntakeBaseURL       string // base URL for intake invite links
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL")
	if env == "test" && viper.GetString("DATABASE_URL_TEST") != "" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}

	return &Config{
		Env:                 env,
		Port:                port,
		SessionSecret:       viper.GetString("SESSION_SECRET"),
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		SMSBaseURL:          viper.GetString("SMS_BASE_URL"),
		SMSAPIKey:           viper.GetString("SMS_API_KEY"),
		SMSSenderID:         viper.GetString("SMS_SENDER_ID"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		IntakeBaseURL:       intakeBaseURL(viper.GetString("INTAKE_BASE_URL")),
	}, nil
}

func intakeBaseURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "https://portal.ministry.example.org"
	}
	return s
}
