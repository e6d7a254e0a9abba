package postgres

import (
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/orderlog/internal/domain"
)

func TestCatalogRepositoryIntegration_CRUD(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewCatalogRepository(store)

	created, err := repo.Create(domain.Product{
		Name:       "Widget",
		Code:       "WGT-1",
		PriceMinor: 990,
		Model:      "A1",
		URL:        "https://example.com/widget",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated product id")
	}

	got, err := repo.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Code != "WGT-1" || got.PriceMinor != 990 {
		t.Fatalf("unexpected product %+v", got)
	}

	update := got
	update.PriceMinor = 1490
	updated, err := repo.Update(created.ID, update)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.PriceMinor != 1490 {
		t.Fatalf("expected updated price, got %d", updated.PriceMinor)
	}

	all, err := repo.ListAll()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 product, got %d", len(all))
	}

	deleted, err := repo.Delete(created.ID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if deleted.ID != created.ID {
		t.Fatalf("delete must return removed product, got %+v", deleted)
	}
	if _, err := repo.GetByID(created.ID); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound after delete, got %v", err)
	}
}

func TestCatalogRepositoryIntegration_GetByIDs(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewCatalogRepository(store)

	first, err := repo.Create(domain.Product{Name: "Widget", Code: "WGT-1", PriceMinor: 100})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := repo.Create(domain.Product{Name: "Gadget", Code: "GDT-1", PriceMinor: 200})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	products, err := repo.GetByIDs([]string{first.ID, second.ID, "missing"})
	if err != nil {
		t.Fatalf("get by ids failed: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
}

func TestCatalogRepositoryIntegration_UpdateMissing(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewCatalogRepository(store)

	_, err := repo.Update("missing", domain.Product{Name: "Widget", Code: "WGT-1", PriceMinor: 100})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}
