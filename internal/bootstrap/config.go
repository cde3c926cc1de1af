package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// DefaultSecretKey 是开发环境的默认签名密钥，生产环境禁止使用
const DefaultSecretKey = "default_secret_key"

// ErrInsecureSecret 表示生产环境仍在使用默认密钥
var ErrInsecureSecret = errors.New("SECRET_KEY must be set in production")

// Config 结构体用于存储从环境变量或 .env 文件加载的配置
type Config struct {
	DatabaseURL     string
	SecretKey       string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	KeyPrefix       string // Redis Key 前缀
	SessionTTL      time.Duration
	ServerPort      string
	LogLevel        string
	AppEnv          string // development / production
	RateLimitMax    int
	RateLimitWindow time.Duration
	BcryptCost      int
}

// IsProduction 判断是否运行在生产环境
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// LoadConfig 从环境变量加载配置。
// envFile 非空时必须存在；为空时尝试加载当前目录的 .env (可选)。
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load() // 忽略错误，允许只使用环境变量
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("database_url", "sqlite:///todo.db")
	v.SetDefault("secret_key", DefaultSecretKey)
	v.SetDefault("redis_addr", "127.0.0.1:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_key_prefix", "todo:")
	v.SetDefault("session_ttl", "24h")
	v.SetDefault("server_port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("app_env", "development")
	v.SetDefault("rate_limit_max", 20)
	v.SetDefault("rate_limit_window", "1m")
	v.SetDefault("bcrypt_cost", bcrypt.DefaultCost)

	cfg := &Config{
		DatabaseURL:     v.GetString("database_url"),
		SecretKey:       v.GetString("secret_key"),
		RedisAddr:       v.GetString("redis_addr"),
		RedisPassword:   v.GetString("redis_password"),
		RedisDB:         v.GetInt("redis_db"),
		KeyPrefix:       v.GetString("redis_key_prefix"),
		SessionTTL:      v.GetDuration("session_ttl"),
		ServerPort:      v.GetString("server_port"),
		LogLevel:        strings.ToLower(v.GetString("log_level")),
		AppEnv:          strings.ToLower(v.GetString("app_env")),
		RateLimitMax:    v.GetInt("rate_limit_max"),
		RateLimitWindow: v.GetDuration("rate_limit_window"),
		BcryptCost:      v.GetInt("bcrypt_cost"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate 检查并修正配置值
func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("environment variable DATABASE_URL must not be empty")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("environment variable SECRET_KEY must not be empty")
	}
	if c.SecretKey == DefaultSecretKey {
		if c.IsProduction() {
			return ErrInsecureSecret
		}
		logrus.Warn("SECRET_KEY is not set, using the insecure development default")
	}

	// 验证日志级别
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", c.LogLevel)
		c.LogLevel = "info"
	}
	if c.SessionTTL <= 0 {
		logrus.Warnf("Invalid SESSION_TTL '%s', using default 24h", c.SessionTTL)
		c.SessionTTL = 24 * time.Hour
	}
	if c.RateLimitMax <= 0 {
		c.RateLimitMax = 20
	}
	if c.RateLimitWindow <= 0 {
		c.RateLimitWindow = time.Minute
	}
	if c.ServerPort == "" {
		c.ServerPort = "8080"
	}
	return nil
}
