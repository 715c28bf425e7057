package config

import (
	"time"
	_ "time/tzdata" // zone database for minimal images

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/nimasrn/reservation-hub/pkg/logger"
	"github.com/nimasrn/reservation-hub/pkg/pg"
	"github.com/pkg/errors"
)

var config *Config

// Config holds every setting read from the environment. Nothing else in the
// repo reads env vars directly.
type Config struct {
	AppEnv   string `env:"APP_ENV,default=dev"`
	AppName  string `env:"APP_NAME,default=reservation_hub"`
	AppDebug bool   `env:"APP_DEBUG,default=1"`

	// AppTimezone is the zone notification texts are rendered in.
	AppTimezone string `env:"APP_TIMEZONE,default=Asia/Jakarta"`

	HttpListenAddr     string        `env:"HTTP_LISTEN_ADDR,default=:8080"`
	HttpBaseRequestUrl string        `env:"HTTP_BASE_REQUEST_URI,default=/api/v1"`
	HttpRequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT,default=5s"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`
	PostgresReadSSLMode  string `env:"POSTGRES_READ_SSLMODE"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME"`
	PostgresWriteSSLMode  string `env:"POSTGRES_WRITE_SSLMODE"`

	RedisAddr               string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX"`

	PromNamespace  string `env:"PROM_NAMESPACE,default=reservation_hub"`
	PromListenAddr string `env:"PROM_LISTEN_ADDR,default=:9100"`

	QueueName              string        `env:"QUEUE_NAME,default=notifications"`
	QueueConsumerGroup     string        `env:"QUEUE_CONSUMER_GROUP,default=notifiers"`
	QueueConsumerName      string        `env:"QUEUE_CONSUMER_NAME,default=notifier"`
	QueueConsumers         int           `env:"QUEUE_CONSUMERS,default=2"`
	QueueVisibilityTimeout time.Duration `env:"QUEUE_VISIBILITY_TIMEOUT,default=30s"`
	QueuePollInterval      time.Duration `env:"QUEUE_POLL_INTERVAL,default=500ms"`
	QueueBatchSize         int64         `env:"QUEUE_BATCH_SIZE,default=10"`
	QueueMaxLen            int64         `env:"QUEUE_MAX_LEN,default=100000"`

	WorkerCount      int `env:"WORKER_COUNT,default=8"`
	WorkerBufferSize int `env:"WORKER_BUFFER_SIZE,default=256"`

	WhatsAppPrimaryUrl   string        `env:"WHATSAPP_PRIMARY_URL,default=https://api.fonnte.com"`
	WhatsAppSecondaryUrl string        `env:"WHATSAPP_SECONDARY_URL"`
	WhatsAppCountryCode  string        `env:"WHATSAPP_COUNTRY_CODE,default=62"`
	WhatsAppTimeout      time.Duration `env:"WHATSAPP_TIMEOUT,default=10s"`

	ReservationStrictStatus  bool `env:"RESERVATION_STRICT_STATUS"`
	ReservationUpcomingLimit int  `env:"RESERVATION_UPCOMING_LIMIT,default=30"`

	PublicCorsOrigin string `env:"PUBLIC_CORS_ORIGIN,default=*"`
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return errors.Wrapf(err, "failed to load configuration file %s", path)
		}
	}

	if _, err := env.UnmarshalFromEnviron(c); err != nil {
		return errors.Wrap(err, "failed to map env variables to configuration")
	}

	config = c
	return nil
}

// Set installs c as the active configuration. Tests use it instead of Load.
func Set(c *Config) {
	config = c
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}

// Location resolves AppTimezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AppTimezone)
	if err != nil {
		logger.Warn("unknown timezone, using UTC", "timezone", c.AppTimezone, "error", err)
		return time.UTC
	}
	return loc
}

func (c *Config) PostgresRead() pg.Config {
	return pg.Config{
		User:     c.PostgresReadUser,
		Host:     c.PostgresReadHost,
		Port:     c.PostgresReadPort,
		Password: c.PostgresReadPassword,
		Database: c.PostgresReadDatabase,
		SSLMode:  c.PostgresReadSSLMode,
	}
}

func (c *Config) PostgresWrite() pg.Config {
	return pg.Config{
		User:     c.PostgresWriteUser,
		Host:     c.PostgresWriteHost,
		Port:     c.PostgresWritePort,
		Password: c.PostgresWritePassword,
		Database: c.PostgresWriteDatabase,
		SSLMode:  c.PostgresWriteSSLMode,
	}
}
