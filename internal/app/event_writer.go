package app

import (
	"context"

	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/orderlog/internal/health"
	"github.com/vladislavdragonenkov/orderlog/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/orderlog/internal/service/events"
	"github.com/vladislavdragonenkov/orderlog/internal/storage/postgres"
	"github.com/vladislavdragonenkov/orderlog/internal/version"
)

// RunEventWriter поднимает подписчика топика событий: consumer group,
// журнал событий и сервер метрик. Завершается по отмене контекста.
func RunEventWriter(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "event-writer")

	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer store.Close()

	eventRepo := postgres.NewEventRepository(store)
	handler := events.NewHandler(eventRepo, logger.WithField("layer", "events"))

	// DLQ producer получает и невалидные по скоупу события: их нельзя ретраить.
	dlqProducer, err := kafka.NewProducer(cfg.KafkaBrokers)
	if err != nil {
		return err
	}
	defer closeKafkaProducer(dlqProducer, logger)

	consumer, err := kafka.NewConsumerWithDLQ(
		cfg.KafkaBrokers,
		cfg.ConsumerGroup,
		[]string{cfg.OrderEventsTopic},
		handler.HandleMessage,
		dlqProducer,
		cfg.ConsumerMaxRetries,
	)
	if err != nil {
		return err
	}

	healthHandler := healthcheck.NewHandler(version.String())
	healthHandler.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", func() error {
		return store.Ping(context.Background())
	}))

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	if err := consumer.Start(ctx); err != nil {
		shutdownHTTP(metricsSrv, logger)
		return err
	}

	<-ctx.Done()
	logger.Info("получен сигнал остановки, останавливаем consumer")

	if err := consumer.Stop(); err != nil {
		logger.WithError(err).Warn("failed to stop kafka consumer")
	}
	shutdownHTTP(metricsSrv, logger)

	return ctx.Err()
}
