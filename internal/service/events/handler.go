package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderlog/internal/domain"
	"github.com/vladislavdragonenkov/orderlog/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/orderlog/internal/metrics"
)

// Handler подписан на топик событий заказов и превращает уведомления
// в записи append-only журнала. Доставка at-least-once и без гарантии
// порядка: обработка идемпотентна и не зависит от очерёдности.
type Handler struct {
	events  domain.EventRepository
	logger  *log.Entry
	metrics *metrics.PipelineMetrics
}

// NewHandler конструирует обработчик уведомлений.
func NewHandler(events domain.EventRepository, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.New().WithField("component", "order-event-handler")
	}
	return &Handler{
		events:  events,
		logger:  logger,
		metrics: metrics.NewPipelineMetrics(),
	}
}

// HandleMessage — адаптер для Kafka consumer: парсит envelope и передаёт
// его в OnNotification.
func (h *Handler) HandleMessage(_ context.Context, message *sarama.ConsumerMessage) error {
	envelope, err := kafka.ParseOrderEventEnvelope(message)
	if err != nil {
		return err
	}
	return h.OnNotification(*envelope)
}

// OnNotification записывает уведомление в журнал событий.
// Partition-ключ выводится только из полей payload — метаданные доставки
// (ключ сообщения, заголовки) на него повлиять не могут, поэтому подделанное
// уведомление не способно нацелиться на чужую партицию.
func (h *Handler) OnNotification(envelope kafka.OrderEventEnvelope) error {
	if envelope.OrderID == "" {
		return domain.ErrOrderIDRequired
	}

	eventType := domain.EventType(envelope.EventType)
	if !eventType.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrEventTypeInvalid, envelope.EventType)
	}

	snapshot, err := json.Marshal(envelope.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal order snapshot: %w", err)
	}

	event := domain.NewOrderEvent(
		envelope.OrderID,
		envelope.CustomerID,
		eventType,
		snapshot,
		envelope.Timestamp,
	)

	if err := h.events.Append(event); err != nil {
		if errors.Is(err, domain.ErrEventScopeUnauthorized) {
			// Фатально для события: повтор даст тот же невалидный ключ.
			h.logger.WithFields(log.Fields{
				"order_id":      envelope.OrderID,
				"partition_key": event.PartitionKey,
			}).Error("event write rejected outside authorized partition scope")
			h.metrics.RecordEventAppend(metrics.ResultUnauthorized)
			return err
		}
		h.metrics.RecordEventAppend(metrics.ResultError)
		return fmt.Errorf("append order event: %w", err)
	}

	h.metrics.RecordEventAppend(metrics.ResultOK)
	h.logger.WithFields(log.Fields{
		"order_id":   envelope.OrderID,
		"event_type": envelope.EventType,
	}).Debug("order event stored")

	return nil
}
