package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/orderlog/internal/domain"
)

func makeIntegrationOrder(orderID string) domain.Order {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return domain.Order{
		CustomerID: "customer-1",
		ID:         orderID,
		Status:     domain.OrderStatusCreated,
		TotalMinor: 500,
		Items: []domain.OrderItem{
			{ProductID: "product-1", Qty: 3, PriceMinor: 100},
			{ProductID: "product-2", Qty: 2, PriceMinor: 100},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOrderRepositoryIntegration_CreateGet(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	order := makeIntegrationOrder("order-1")
	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, err := repo.Get(order.CustomerID, order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.TotalMinor != 500 {
		t.Fatalf("unexpected total %d", stored.TotalMinor)
	}
	if len(stored.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(stored.Items))
	}
	// Позиции сохраняют порядок записи.
	if stored.Items[0].ProductID != "product-1" || stored.Items[1].ProductID != "product-2" {
		t.Fatalf("items out of order: %+v", stored.Items)
	}
}

func TestOrderRepositoryIntegration_CreateDuplicate(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	order := makeIntegrationOrder("order-1")
	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(order); !errors.Is(err, domain.ErrOrderExists) {
		t.Fatalf("expected ErrOrderExists, got %v", err)
	}
}

func TestOrderRepositoryIntegration_ScopeIsolation(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	order := makeIntegrationOrder("order-1")
	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := repo.Get("customer-2", order.ID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for foreign customer, got %v", err)
	}

	orders, err := repo.ListByCustomer("customer-2")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("expected empty scope, got %d orders", len(orders))
	}
}

func TestOrderRepositoryIntegration_DeleteReturnsLastState(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	order := makeIntegrationOrder("order-1")
	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	deleted, err := repo.Delete(order.CustomerID, order.ID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if deleted.TotalMinor != order.TotalMinor || len(deleted.Items) != 2 {
		t.Fatalf("delete must return last state with items, got %+v", deleted)
	}

	if _, err := repo.Get(order.CustomerID, order.ID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound after delete, got %v", err)
	}

	// Позиции удаляются каскадом вместе с заказом.
	var count int
	if err := store.DB().QueryRow(
		`SELECT COUNT(*) FROM order_items WHERE customer_id = $1 AND order_id = $2`,
		order.CustomerID, order.ID,
	).Scan(&count); err != nil {
		t.Fatalf("count items: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no items after delete, got %d", count)
	}
}

func TestOrderRepositoryIntegration_DeleteMissing(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	if _, err := repo.Delete("customer-1", "missing"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}
