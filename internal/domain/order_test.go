package domain_test

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/orderlog/internal/domain"
)

// helper для создания базового заказа с одной позицией.
func makeOrder() domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		CustomerID: "customer-1",
		ID:         "order-1",
		Status:     domain.OrderStatusCreated,
		TotalMinor: 500,
		Items: []domain.OrderItem{
			{
				ProductID:  "product-1",
				Qty:        5,
				PriceMinor: 100,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOrderValidateInvariants_Ok(t *testing.T) {
	order := makeOrder()
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestOrderValidateInvariants_Errors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(o *domain.Order)
	}{
		{
			name: "no customer",
			mut: func(o *domain.Order) {
				o.CustomerID = ""
			},
		},
		{
			name: "no items",
			mut: func(o *domain.Order) {
				o.Items = nil
			},
		},
		{
			name: "negative total",
			mut: func(o *domain.Order) {
				o.TotalMinor = -1
			},
		},
		{
			name: "item without product",
			mut: func(o *domain.Order) {
				o.Items[0].ProductID = ""
			},
		},
		{
			name: "qty invalid",
			mut: func(o *domain.Order) {
				o.Items[0].Qty = 0
			},
		},
		{
			name: "price invalid",
			mut: func(o *domain.Order) {
				o.Items[0].PriceMinor = -5
			},
		},
		{
			name: "total mismatch",
			mut: func(o *domain.Order) {
				o.TotalMinor = 999
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := makeOrder()
			// Изменяем состояние согласно сценарию.
			tc.mut(&order)

			if len(order.ValidateInvariants()) == 0 {
				t.Fatalf("expected validation errors for case %s", tc.name)
			}
		})
	}
}

func TestItemsTotalMinor(t *testing.T) {
	items := []domain.OrderItem{
		{ProductID: "p1", Qty: 2, PriceMinor: 150},
		{ProductID: "p2", Qty: 3, PriceMinor: 100},
	}

	if got := domain.ItemsTotalMinor(items); got != 600 {
		t.Fatalf("expected total 600, got %d", got)
	}

	if got := domain.ItemsTotalMinor(nil); got != 0 {
		t.Fatalf("expected total 0 for empty items, got %d", got)
	}
}
