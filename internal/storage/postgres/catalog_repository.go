package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/orderlog/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

type catalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository создаёт PostgreSQL-реализацию CatalogRepository.
func NewCatalogRepository(store *Store) domain.CatalogRepository {
	return &catalogRepository{db: store.DB()}
}

func (r *catalogRepository) ListAll() ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, code, price_minor, model, url
		FROM products
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (r *catalogRepository) GetByID(id string) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var product domain.Product
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, code, price_minor, model, url
		FROM products
		WHERE id = $1
	`, id).Scan(
		&product.ID, &product.Name, &product.Code,
		&product.PriceMinor, &product.Model, &product.URL,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}

	return product, nil
}

func (r *catalogRepository) GetByIDs(ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	// Частичный результат: отсутствующие идентификаторы просто не попадают в выборку.
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, code, price_minor, model, url
		FROM products
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("batch select products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (r *catalogRepository) Create(product domain.Product) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	// ID всегда генерируется сервером; значение из запроса отбрасывается.
	product.ID = uuid.NewString()

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, code, price_minor, model, url)
		VALUES ($1,$2,$3,$4,$5,$6)
	`,
		product.ID, product.Name, product.Code,
		product.PriceMinor, product.Model, product.URL,
	); err != nil {
		return domain.Product{}, fmt.Errorf("insert product: %w", err)
	}

	return product, nil
}

func (r *catalogRepository) Update(id string, product domain.Product) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = $1,
		    code = $2,
		    price_minor = $3,
		    model = $4,
		    url = $5
		WHERE id = $6
	`,
		product.Name, product.Code, product.PriceMinor,
		product.Model, product.URL, id,
	)
	if err != nil {
		return domain.Product{}, fmt.Errorf("update product: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Product{}, fmt.Errorf("rows affected: %w", err)
	}
	// Update условен по существованию записи: путь обновления не создаёт товары.
	if affected == 0 {
		return domain.Product{}, domain.ErrProductNotFound
	}

	product.ID = id
	return product, nil
}

func (r *catalogRepository) Delete(id string) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var product domain.Product
	err := r.db.QueryRowContext(ctx, `
		DELETE FROM products
		WHERE id = $1
		RETURNING id, name, code, price_minor, model, url
	`, id).Scan(
		&product.ID, &product.Name, &product.Code,
		&product.PriceMinor, &product.Model, &product.URL,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("delete product: %w", err)
	}

	return product, nil
}

func scanProducts(rows *sql.Rows) ([]domain.Product, error) {
	products := make([]domain.Product, 0)
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(
			&product.ID, &product.Name, &product.Code,
			&product.PriceMinor, &product.Model, &product.URL,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.CatalogRepository = (*catalogRepository)(nil)
