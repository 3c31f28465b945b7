package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Service         ServiceConfig        `mapstructure:"service"`
	Databases       DatabasesConfig      `mapstructure:"databases"`
	ExternalClients ExternalClientConfig `mapstructure:"externalClients"`
	Auth            AuthConfig           `mapstructure:"auth"`
	Jobs            JobsConfig           `mapstructure:"jobs"`
}

type ServiceConfig struct {
	Port     string `mapstructure:"port"`
	LogLevel string `mapstructure:"logLevel"`
}

type DatabasesConfig struct {
	SQL   SQLConfig   `mapstructure:"sql"`
	Redis RedisConfig `mapstructure:"redis"`
}

type SQLConfig struct {
	Host             string `mapstructure:"host"`
	Port             string `mapstructure:"port"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	Database         string `mapstructure:"database"`
	ConnectionString string `mapstructure:"connection_string"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

type ExternalClientConfig struct {
	Market MarketConfig `mapstructure:"market"`
}

type MarketConfig struct {
	BaseURL  string        `mapstructure:"baseUrl"`
	APIKey   string        `mapstructure:"apiKey"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cacheTtl"`
}

type AuthConfig struct {
	// JWTSecret signs access tokens. When JWTSecretName is set the secret
	// is fetched from AWS Secrets Manager instead.
	JWTSecret     string        `mapstructure:"jwtSecret"`
	JWTSecretName string        `mapstructure:"jwtSecretName"`
	AWSRegion     string        `mapstructure:"awsRegion"`
	TokenTTL      time.Duration `mapstructure:"tokenTtl"`
	StartingCash  string        `mapstructure:"startingCash"`
}

type JobsConfig struct {
	// QuoteRefreshCron re-warms the quote cache for all held tickers.
	// Empty disables the job.
	QuoteRefreshCron string `mapstructure:"quoteRefreshCron"`
}

func LoadConfig(path string) (*Config, error) {
	var cfg Config

	_ = godotenv.Load(".env")

	viper.AddConfigPath(path)
	viper.SetConfigName("appsettings")
	viper.SetConfigType("yaml")

	// Secrets come from the environment, never from the settings file.
	_ = viper.BindEnv("externalClients.market.apiKey", "MARKET_API_KEY")
	_ = viper.BindEnv("auth.jwtSecret", "JWT_SECRET")
	_ = viper.BindEnv("databases.sql.password", "DB_PASSWORD")
	_ = viper.BindEnv("databases.redis.password", "REDIS_PASSWORD")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}
	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	if cfg.ExternalClients.Market.Timeout == 0 {
		cfg.ExternalClients.Market.Timeout = 5 * time.Second
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}
	if cfg.Auth.StartingCash == "" {
		cfg.Auth.StartingCash = "100000.00"
	}

	return &cfg, nil
}
