package app

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config описывает настройки процесса. Имена и адреса внешних ресурсов
// приходят из окружения при старте и дальше не перечитываются.
type Config struct {
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	PostgresDSN  string   `envconfig:"POSTGRES_DSN"`
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`

	OrderEventsTopic   string `envconfig:"ORDER_EVENTS_TOPIC" default:"orders.order.events"`
	ConsumerGroup      string `envconfig:"CONSUMER_GROUP" default:"order-event-writer"`
	ConsumerMaxRetries int    `envconfig:"CONSUMER_MAX_RETRIES" default:"3"`
}

// LoadConfig читает конфигурацию из окружения с префиксом ORDERLOG_.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("orderlog", &cfg); err != nil {
		return Config{}, fmt.Errorf("read config from environment: %w", err)
	}
	return cfg, nil
}

// Validate проверяет присутствие обязательных значений; отсутствие — отказ
// на старте, а не деградация в рантайме.
func (c Config) Validate() error {
	if c.PostgresDSN == "" {
		return fmt.Errorf("ORDERLOG_POSTGRES_DSN is required")
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("ORDERLOG_KAFKA_BROKERS is required")
	}
	if c.OrderEventsTopic == "" {
		return fmt.Errorf("ORDERLOG_ORDER_EVENTS_TOPIC must not be empty")
	}
	return nil
}
