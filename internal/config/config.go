package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string
	Env             string // "dev" | "prod"
	MongoURI        string
	MongoDB         string
	JWTSecret       string
	SessionTTLMin   int
	RedisAddr       string
	RateLimitPerMin int
	RabbitURL       string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	OAuthStateSecret   string

	DDEnabled bool
}

func Load() Config {
	v := viper.New()
	v.SetEnvPrefix("TASKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "dev")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB", "tasks_db")
	v.SetDefault("JWT_SECRET", "default_secret_key")
	v.SetDefault("SESSION_TTL_MIN", 24*60)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("RATE_LIMIT_PER_MIN", 10)
	v.SetDefault("RABBIT_URL", "")
	v.SetDefault("OAUTH_STATE_SECRET", "default_state_secret")
	v.SetDefault("DD_ENABLED", false)

	return Config{
		Port:            v.GetString("PORT"),
		Env:             v.GetString("ENV"),
		MongoURI:        v.GetString("MONGO_URI"),
		MongoDB:         v.GetString("MONGO_DB"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		SessionTTLMin:   v.GetInt("SESSION_TTL_MIN"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		RateLimitPerMin: v.GetInt("RATE_LIMIT_PER_MIN"),
		RabbitURL:       v.GetString("RABBIT_URL"),

		GoogleClientID:     v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  v.GetString("GOOGLE_REDIRECT_URL"),
		OAuthStateSecret:   v.GetString("OAUTH_STATE_SECRET"),

		DDEnabled: v.GetBool("DD_ENABLED"),
	}
}
