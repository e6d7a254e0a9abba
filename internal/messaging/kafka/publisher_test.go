package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderlog/internal/domain"
)

func makeNotification() domain.OrderNotification {
	now := time.Now().UTC()
	return domain.OrderNotification{
		OrderID:    "order-1",
		CustomerID: "customer-1",
		EventType:  domain.EventTypeOrderCreated,
		Timestamp:  now,
		Snapshot: domain.Order{
			CustomerID: "customer-1",
			ID:         "order-1",
			Status:     domain.OrderStatusCreated,
			TotalMinor: 200,
			Items: []domain.OrderItem{
				{ProductID: "product-1", Qty: 2, PriceMinor: 100},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

func TestOrderEventPublisher_Publish(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		var envelope OrderEventEnvelope
		if err := json.Unmarshal(value, &envelope); err != nil {
			return err
		}
		if envelope.OrderID != "order-1" {
			t.Errorf("unexpected order id %s", envelope.OrderID)
		}
		if envelope.EventType != string(domain.EventTypeOrderCreated) {
			t.Errorf("unexpected event type %s", envelope.EventType)
		}
		if envelope.Snapshot.TotalMinor != 200 {
			t.Errorf("unexpected snapshot total %d", envelope.Snapshot.TotalMinor)
		}
		return nil
	})

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-order-publisher-test"),
	}
	publisher := NewOrderEventPublisher(producer, TopicOrderEvents)

	if err := publisher.PublishOrderEvent(makeNotification()); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOrderEventPublisher_PublishProducerError(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-order-publisher-test"),
	}
	publisher := NewOrderEventPublisher(producer, TopicOrderEvents)

	if err := publisher.PublishOrderEvent(makeNotification()); err == nil {
		t.Fatal("expected publish error")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOrderEventPublisher_NotInitialized(t *testing.T) {
	t.Parallel()

	publisher := &OrderEventPublisher{}
	if err := publisher.PublishOrderEvent(makeNotification()); err == nil {
		t.Fatal("expected error for uninitialized publisher")
	}
}

func TestOrderEventPublisher_DefaultTopic(t *testing.T) {
	t.Parallel()

	publisher := NewOrderEventPublisher(nil, "")
	if topic := publisher.(*OrderEventPublisher).topic; topic != TopicOrderEvents {
		t.Fatalf("expected default topic %s, got %s", TopicOrderEvents, topic)
	}
}
