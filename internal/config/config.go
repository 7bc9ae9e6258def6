package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	Admin    *AdminConfig    `mapstructure:"admin"`
	Storage  *StorageConfig  `mapstructure:"storage"`
	Solana   *SolanaConfig   `mapstructure:"solana"`
	Payment  *PaymentConfig  `mapstructure:"payment"`
	Redis    *RedisConfig    `mapstructure:"redis"`
}

type APIConfig struct {
	Environment        string   `mapstructure:"environment"`
	Port               string   `mapstructure:"port"`
	BaseURL            string   `mapstructure:"base_url"`
	AllowedCORSDomains []string `mapstructure:"allowed_cors_domains"`
	// TrustedProxies may set X-Forwarded-For. Empty means the peer address is the client IP.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
	// RateLimit is the number of requests per second allowed on admin and RPC-backed routes.
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	URL           string        `mapstructure:"url"`
	Host          string        `mapstructure:"host"`
	Port          string        `mapstructure:"port"`
	User          string        `mapstructure:"user"`
	Password      string        `mapstructure:"password"`
	DB            string        `mapstructure:"db"`
	SSLMode       string        `mapstructure:"sslmode"`
	MaxOpenConns  int           `mapstructure:"max_open_conns"`
	MaxIdleConns  int           `mapstructure:"max_idle_conns"`
	SlowThreshold time.Duration `mapstructure:"slow_threshold"`
}

// AdminConfig holds the single shared credential that gates every mutating operation.
type AdminConfig struct {
	Key             string        `mapstructure:"key"`
	KeyHash         string        `mapstructure:"key_hash"`
	TokenSigningKey string        `mapstructure:"token_signing_key"`
	TokenTTL        time.Duration `mapstructure:"token_ttl"`
}

type StorageConfig struct {
	Driver        string `mapstructure:"driver"`
	Dir           string `mapstructure:"dir"`
	URLPrefix     string `mapstructure:"url_prefix"`
	MaxUploadMB   int64  `mapstructure:"max_upload_mb"`
	MaxImageWidth int    `mapstructure:"max_image_width"`
	S3Bucket      string `mapstructure:"s3_bucket"`
	S3Region      string `mapstructure:"s3_region"`
	S3PublicURL   string `mapstructure:"s3_public_url"`
}

type SolanaConfig struct {
	RPCURL        string        `mapstructure:"rpc_url"`
	WalletAddress string        `mapstructure:"wallet_address"`
	MinLamports   uint64        `mapstructure:"min_lamports"`
	Timeout       time.Duration `mapstructure:"timeout"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
}

type PaymentConfig struct {
	RequireForIssuance bool `mapstructure:"require_for_issuance"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// envBindings maps the historical environment variable names onto config keys.
var envBindings = map[string]string{
	"admin.key":               "ADMIN_KEY",
	"admin.key_hash":          "ADMIN_KEY_HASH",
	"admin.token_signing_key": "ADMIN_TOKEN_SIGNING_KEY",
	"solana.wallet_address":   "SOLANA_WALLET_ADDRESS",
	"solana.rpc_url":          "SOLANA_RPC_URL",
	"postgres.url":            "DATABASE_URL",
	"redis.addr":              "REDIS_ADDR",
	"redis.password":          "REDIS_PASSWORD",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "8000")
	v.SetDefault("api.base_url", "localhost:8000")
	v.SetDefault("api.allowed_cors_domains", []string{"http://localhost:3000"})
	v.SetDefault("api.rate_limit", 10)
	v.SetDefault("api.rate_burst", 20)
	v.SetDefault("api.trusted_proxies", []string{})
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 25)
	v.SetDefault("postgres.max_idle_conns", 10)
	v.SetDefault("postgres.slow_threshold", 200*time.Millisecond)
	v.SetDefault("admin.token_ttl", 15*time.Minute)
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.dir", "uploaded_tickets")
	v.SetDefault("storage.url_prefix", "/uploaded_tickets")
	v.SetDefault("storage.max_upload_mb", 10)
	v.SetDefault("storage.max_image_width", 1600)
	v.SetDefault("solana.rpc_url", "https://api.mainnet-beta.solana.com")
	v.SetDefault("solana.min_lamports", 500_000_000)
	v.SetDefault("solana.timeout", 10*time.Second)
	v.SetDefault("solana.cache_ttl", 10*time.Minute)
	v.SetDefault("payment.require_for_issuance", false)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
}

// Load reads the YAML file at path, applies environment overrides and validates the result.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("v.BindEnv(%s) -> %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("conf.Validate -> %w", err)
	}

	// The admin secret is fixed for the process lifetime, so changes are only reported.
	v.OnConfigChange(func(e fsnotify.Event) {
		zap.L().Warn("config file changed, restart the server to apply it",
			zap.String("file", e.Name), zap.String("op", e.Op.String()))
	})
	v.WatchConfig()

	return conf, nil
}

func (c *AppConfig) Validate() error {
	if c.API == nil || c.Gin == nil || c.Postgres == nil || c.Admin == nil ||
		c.Storage == nil || c.Solana == nil || c.Payment == nil || c.Redis == nil {
		return errors.New("config is missing a section")
	}

	var adminKeyRules []validation.Rule
	if c.Admin.KeyHash == "" {
		adminKeyRules = append(adminKeyRules, validation.Required.Error("ADMIN_KEY or ADMIN_KEY_HASH must be set"))
	}

	var dirRules, bucketRules []validation.Rule
	switch c.Storage.Driver {
	case "local":
		dirRules = append(dirRules, validation.Required)
	case "s3":
		bucketRules = append(bucketRules, validation.Required)
	}

	var walletRules []validation.Rule
	if c.Payment.RequireForIssuance {
		walletRules = append(walletRules, validation.Required.Error("is required when payment.require_for_issuance is enabled"))
	}

	return validation.Errors{
		"api": validation.ValidateStruct(c.API,
			validation.Field(&c.API.Port, validation.Required),
			validation.Field(&c.API.Environment, validation.Required, validation.In("development", "staging", "production", "test")),
			validation.Field(&c.API.RateLimit, validation.Min(0.0)),
		),
		"gin": validation.ValidateStruct(c.Gin,
			validation.Field(&c.Gin.Mode, validation.In("debug", "release", "test")),
		),
		"admin": validation.ValidateStruct(c.Admin,
			validation.Field(&c.Admin.Key, adminKeyRules...),
			validation.Field(&c.Admin.TokenTTL, validation.Min(time.Second)),
		),
		"storage": validation.ValidateStruct(c.Storage,
			validation.Field(&c.Storage.Driver, validation.Required, validation.In("local", "s3")),
			validation.Field(&c.Storage.Dir, dirRules...),
			validation.Field(&c.Storage.S3Bucket, bucketRules...),
			validation.Field(&c.Storage.MaxUploadMB, validation.Required, validation.Min(int64(1))),
		),
		"solana": validation.ValidateStruct(c.Solana,
			validation.Field(&c.Solana.RPCURL, validation.Required),
			validation.Field(&c.Solana.WalletAddress, walletRules...),
			validation.Field(&c.Solana.MinLamports, validation.Required),
			validation.Field(&c.Solana.Timeout, validation.Required, validation.Min(time.Millisecond)),
		),
	}.Filter()
}
