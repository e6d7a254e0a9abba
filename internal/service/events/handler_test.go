package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderlog/internal/domain"
	"github.com/vladislavdragonenkov/orderlog/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/orderlog/internal/storage/memory"
)

func newEnvelope(orderID string, eventType domain.EventType, at time.Time) kafka.OrderEventEnvelope {
	return kafka.OrderEventEnvelope{
		EventType:  string(eventType),
		OrderID:    orderID,
		CustomerID: "customer-1",
		Timestamp:  at,
		Snapshot: kafka.OrderSnapshot{
			CustomerID: "customer-1",
			OrderID:    orderID,
			Status:     string(domain.OrderStatusCreated),
			Items: []kafka.OrderSnapshotItem{
				{ProductID: "product-1", Qty: 2, PriceMinor: 100},
			},
			TotalMinor: 200,
			CreatedAt:  at,
		},
	}
}

func TestOnNotification_StoresEvent(t *testing.T) {
	repo := memory.NewEventRepository()
	handler := NewHandler(repo, log.NewEntry(log.New()))
	at := time.Now().UTC()

	if err := handler.OnNotification(newEnvelope("order-1", domain.EventTypeOrderCreated, at)); err != nil {
		t.Fatalf("notification failed: %v", err)
	}

	events, err := repo.ListByOrder("order-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	event := events[0]
	if event.PartitionKey != domain.ScopeKeyFor("order-1") {
		t.Fatalf("unexpected partition key %s", event.PartitionKey)
	}
	if event.EventType != domain.EventTypeOrderCreated {
		t.Fatalf("unexpected event type %s", event.EventType)
	}

	var snapshot kafka.OrderSnapshot
	if err := json.Unmarshal(event.Snapshot, &snapshot); err != nil {
		t.Fatalf("snapshot is not valid json: %v", err)
	}
	if snapshot.TotalMinor != 200 {
		t.Fatalf("unexpected snapshot total %d", snapshot.TotalMinor)
	}
}

func TestOnNotification_DuplicateDeliveryStoredOnce(t *testing.T) {
	repo := memory.NewEventRepository()
	handler := NewHandler(repo, log.NewEntry(log.New()))

	// Один и тот же (order_id, event_type, timestamp) даёт один и тот же ключ.
	envelope := newEnvelope("order-1", domain.EventTypeOrderCreated, time.Now().UTC())
	for i := 0; i < 3; i++ {
		if err := handler.OnNotification(envelope); err != nil {
			t.Fatalf("delivery %d failed: %v", i+1, err)
		}
	}

	events, err := repo.ListByOrder("order-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 stored event after redelivery, got %d", len(events))
	}
}

func TestOnNotification_LifecyclePair(t *testing.T) {
	repo := memory.NewEventRepository()
	handler := NewHandler(repo, log.NewEntry(log.New()))
	at := time.Now().UTC()

	// Доставка без гарантии порядка: удаление может прийти раньше создания.
	deleted := newEnvelope("order-1", domain.EventTypeOrderDeleted, at.Add(time.Minute))
	created := newEnvelope("order-1", domain.EventTypeOrderCreated, at)

	if err := handler.OnNotification(deleted); err != nil {
		t.Fatalf("deleted notification failed: %v", err)
	}
	if err := handler.OnNotification(created); err != nil {
		t.Fatalf("created notification failed: %v", err)
	}

	events, err := repo.ListByOrder("order-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
}

func TestOnNotification_InvalidPayload(t *testing.T) {
	repo := memory.NewEventRepository()
	handler := NewHandler(repo, log.NewEntry(log.New()))
	at := time.Now().UTC()

	missingOrder := newEnvelope("", domain.EventTypeOrderCreated, at)
	if err := handler.OnNotification(missingOrder); !errors.Is(err, domain.ErrOrderIDRequired) {
		t.Fatalf("expected ErrOrderIDRequired, got %v", err)
	}

	unknownType := newEnvelope("order-1", "ORDER_EXPLODED", at)
	err := handler.OnNotification(unknownType)
	if !errors.Is(err, domain.ErrEventTypeInvalid) {
		t.Fatalf("expected ErrEventTypeInvalid, got %v", err)
	}
	// Такие ошибки клиентские: consumer отправит сообщение в DLQ без retry.
	if !domain.IsClientError(err) {
		t.Fatalf("invalid payload must be a client error, got %v", err)
	}
}

func TestHandleMessage_ParsesEnvelope(t *testing.T) {
	repo := memory.NewEventRepository()
	handler := NewHandler(repo, log.NewEntry(log.New()))

	payload, err := json.Marshal(newEnvelope("order-1", domain.EventTypeOrderCreated, time.Now().UTC()))
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}

	message := &sarama.ConsumerMessage{
		Topic: kafka.TopicOrderEvents,
		Value: payload,
	}
	if err := handler.HandleMessage(context.Background(), message); err != nil {
		t.Fatalf("handle message failed: %v", err)
	}

	events, err := repo.ListByOrder("order-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	broken := &sarama.ConsumerMessage{Topic: kafka.TopicOrderEvents, Value: []byte("{not json")}
	if err := handler.HandleMessage(context.Background(), broken); err == nil {
		t.Fatal("expected error for malformed message")
	}
}
