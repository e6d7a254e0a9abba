package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/orderlog/internal/domain"
)

func TestScopeKeyFor(t *testing.T) {
	if got := domain.ScopeKeyFor("order-42"); got != "#order_order-42" {
		t.Fatalf("unexpected scope key: %s", got)
	}
}

func TestSortKeyFor_Deterministic(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 26, 53, 589793238, time.UTC)

	first := domain.SortKeyFor(domain.EventTypeOrderCreated, at)
	second := domain.SortKeyFor(domain.EventTypeOrderCreated, at)
	if first != second {
		t.Fatalf("sort key is not deterministic: %s vs %s", first, second)
	}

	// Локальная таймзона не должна влиять на ключ.
	local := domain.SortKeyFor(domain.EventTypeOrderCreated, at.In(time.FixedZone("MSK", 3*3600)))
	if local != first {
		t.Fatalf("sort key depends on timezone: %s vs %s", local, first)
	}

	if first == domain.SortKeyFor(domain.EventTypeOrderDeleted, at) {
		t.Fatal("sort keys for different event types must differ")
	}
}

func TestNewOrderEvent_DerivesKeysFromPayload(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	event := domain.NewOrderEvent("order-1", "customer-1", domain.EventTypeOrderCreated, []byte(`{}`), at)

	if event.PartitionKey != domain.ScopeKeyFor("order-1") {
		t.Fatalf("unexpected partition key: %s", event.PartitionKey)
	}
	if event.SortKey != domain.SortKeyFor(domain.EventTypeOrderCreated, at) {
		t.Fatalf("unexpected sort key: %s", event.SortKey)
	}
	if err := domain.AuthorizeEventWrite(event); err != nil {
		t.Fatalf("event built by NewOrderEvent must be authorized, got %v", err)
	}
}

func TestAuthorizeEventWrite_Rejects(t *testing.T) {
	at := time.Now().UTC()
	valid := domain.NewOrderEvent("order-1", "customer-1", domain.EventTypeOrderCreated, nil, at)

	cases := []struct {
		name string
		mut  func(e *domain.OrderEvent)
		want error
	}{
		{
			name: "no order id",
			mut: func(e *domain.OrderEvent) {
				e.OrderID = ""
			},
			want: domain.ErrOrderIDRequired,
		},
		{
			name: "unknown event type",
			mut: func(e *domain.OrderEvent) {
				e.EventType = "ORDER_EXPLODED"
			},
			want: domain.ErrEventTypeInvalid,
		},
		{
			name: "key outside reserved prefix",
			mut: func(e *domain.OrderEvent) {
				e.PartitionKey = "customer-1"
			},
			want: domain.ErrEventScopeUnauthorized,
		},
		{
			name: "key of another order",
			mut: func(e *domain.OrderEvent) {
				e.PartitionKey = domain.ScopeKeyFor("order-2")
			},
			want: domain.ErrEventScopeUnauthorized,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			event := valid
			tc.mut(&event)

			err := domain.AuthorizeEventWrite(event)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !domain.IsClientError(err) {
				t.Fatalf("authorization failures must be client errors, got %v", err)
			}
		})
	}
}
