package kafka

import (
	"fmt"

	"github.com/vladislavdragonenkov/orderlog/internal/domain"
)

// OrderEventPublisher публикует доменные события заказов в Kafka topic.
// Сообщения ключуются orderID, но потребитель не вправе полагаться на порядок
// доставки: канал объявлен неупорядоченным.
type OrderEventPublisher struct {
	producer *Producer
	topic    string
}

// NewOrderEventPublisher создаёт Kafka-паблишер событий заказов.
func NewOrderEventPublisher(producer *Producer, topic string) domain.EventPublisher {
	if topic == "" {
		topic = TopicOrderEvents
	}
	return &OrderEventPublisher{
		producer: producer,
		topic:    topic,
	}
}

func (p *OrderEventPublisher) PublishOrderEvent(notification domain.OrderNotification) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka order event publisher is not initialized")
	}

	envelope := NewOrderEventEnvelope(notification)
	return p.producer.PublishEvent(p.topic, envelope.OrderID, envelope)
}

var _ domain.EventPublisher = (*OrderEventPublisher)(nil)
