package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/vladislavdragonenkov/orderlog/internal/domain"
)

// Topics для Kafka
const (
	TopicOrderEvents     = "orders.order.events"
	TopicDeadLetterQueue = "orders.dlq" // Dead Letter Queue для failed messages
)

// Kafka headers для retry логики
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
)

// OrderSnapshot — JSON-представление заказа внутри события.
type OrderSnapshot struct {
	CustomerID string              `json:"customer_id"`
	OrderID    string              `json:"order_id"`
	Status     string              `json:"status"`
	Items      []OrderSnapshotItem `json:"items"`
	TotalMinor int64               `json:"total_minor"`
	CreatedAt  time.Time           `json:"created_at"`
}

// OrderSnapshotItem — одна позиция заказа в снапшоте.
type OrderSnapshotItem struct {
	ProductID  string `json:"product_id"`
	Qty        int32  `json:"qty"`
	PriceMinor int64  `json:"price_minor"`
}

// OrderEventEnvelope представляет уведомление о событии заказа в топике.
// Ключ дедупликации потребителя выводится из (order_id, event_type, timestamp).
type OrderEventEnvelope struct {
	EventType  string        `json:"event_type"`
	OrderID    string        `json:"order_id"`
	CustomerID string        `json:"customer_id"`
	Timestamp  time.Time     `json:"timestamp"`
	Snapshot   OrderSnapshot `json:"snapshot"`
}

// NewOrderEventEnvelope собирает уведомление из доменного события.
func NewOrderEventEnvelope(notification domain.OrderNotification) OrderEventEnvelope {
	order := notification.Snapshot
	items := make([]OrderSnapshotItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderSnapshotItem{
			ProductID:  item.ProductID,
			Qty:        item.Qty,
			PriceMinor: item.PriceMinor,
		})
	}

	return OrderEventEnvelope{
		EventType:  string(notification.EventType),
		OrderID:    notification.OrderID,
		CustomerID: notification.CustomerID,
		Timestamp:  notification.Timestamp.UTC(),
		Snapshot: OrderSnapshot{
			CustomerID: order.CustomerID,
			OrderID:    order.ID,
			Status:     string(order.Status),
			Items:      items,
			TotalMinor: order.TotalMinor,
			CreatedAt:  order.CreatedAt,
		},
	}
}

// ParseOrderEventEnvelope парсит уведомление из Kafka-сообщения.
func ParseOrderEventEnvelope(message *sarama.ConsumerMessage) (*OrderEventEnvelope, error) {
	var envelope OrderEventEnvelope
	if err := json.Unmarshal(message.Value, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order event: %w", err)
	}
	return &envelope, nil
}
