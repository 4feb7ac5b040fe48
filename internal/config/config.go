package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SchedulerMemory = "memory"
	SchedulerRedis  = "redis"
)

type Config struct {
	Server    ServerConfig
	MySQL     MySQLConfig
	Redis     RedisConfig
	RabbitMQ  RabbitMQConfig
	Lifecycle LifecycleConfig
}

type ServerConfig struct {
	Port          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	AllowedOrigin string
}

type MySQLConfig struct {
	User            string
	Password        string
	Host            string
	Port            string
	Database        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN builds a go-sql-driver/mysql data source name.
func (c MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

type RedisConfig struct {
	Addr            string
	ProductCacheTTL time.Duration
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type RabbitMQConfig struct {
	URL      string
	Exchange string
}

func (c RabbitMQConfig) Enabled() bool {
	return c.URL != ""
}

type LifecycleConfig struct {
	TransitDelay  time.Duration
	DeliveryDelay time.Duration
	Scheduler     string
	PollInterval  time.Duration
}

func Load() (*Config, error) {
	// a missing .env is fine, the environment wins either way
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:          getEnv("SERVER_PORT", "3000"),
			ReadTimeout:   getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:  getEnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			AllowedOrigin: getEnv("CORS_ALLOWED_ORIGIN", "http://localhost:3001"),
		},
		MySQL: MySQLConfig{
			User:            getEnv("MYSQL_USER", "root"),
			Password:        os.Getenv("MYSQL_PASSWORD"),
			Host:            getEnv("MYSQL_HOST", "localhost"),
			Port:            getEnv("MYSQL_PORT", "3306"),
			Database:        getEnv("MYSQL_DATABASE", "grocery_delivery"),
			MaxOpenConns:    getEnvInt("MYSQL_MAX_OPEN_CONNS", 50),
			MaxIdleConns:    getEnvInt("MYSQL_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvDuration("MYSQL_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Addr:            os.Getenv("REDIS_ADDR"),
			ProductCacheTTL: getEnvDuration("PRODUCT_CACHE_TTL", 5*time.Minute),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      os.Getenv("RABBITMQ_URL"),
			Exchange: getEnv("RABBITMQ_EXCHANGE", "order.exchange"),
		},
		Lifecycle: LifecycleConfig{
			TransitDelay:  getEnvDuration("LIFECYCLE_TRANSIT_DELAY", 30*time.Second),
			DeliveryDelay: getEnvDuration("LIFECYCLE_DELIVERY_DELAY", 30*time.Second),
			Scheduler:     strings.ToLower(getEnv("LIFECYCLE_SCHEDULER", SchedulerMemory)),
			PollInterval:  getEnvDuration("LIFECYCLE_POLL_INTERVAL", time.Second),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Lifecycle.TransitDelay < 0 || c.Lifecycle.DeliveryDelay < 0 {
		return fmt.Errorf("lifecycle delays must not be negative")
	}
	switch c.Lifecycle.Scheduler {
	case SchedulerMemory:
	case SchedulerRedis:
		if !c.Redis.Enabled() {
			return fmt.Errorf("LIFECYCLE_SCHEDULER=redis requires REDIS_ADDR")
		}
		if c.Lifecycle.PollInterval <= 0 {
			return fmt.Errorf("LIFECYCLE_POLL_INTERVAL must be positive")
		}
	default:
		return fmt.Errorf("unknown LIFECYCLE_SCHEDULER %q", c.Lifecycle.Scheduler)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("config: invalid integer for %s, using default", key)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("config: invalid duration for %s, using default", key)
	}
	return defaultValue
}
