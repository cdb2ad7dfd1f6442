package postgres

import (
	"context"
	"fmt"

	"github.com/retailpulse/inventory-intel/internal/domain"
)

type catalogRepository struct {
	db *DB
}

func NewCatalogRepository(db *DB) *catalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) GetStores(ctx context.Context) ([]domain.Store, error) {
	query := `
		SELECT id, name, is_warehouse, created_at, updated_at
		FROM stores
		ORDER BY name
	`

	var stores []domain.Store
	if err := r.db.SelectContext(ctx, &stores, query); err != nil {
		return nil, fmt.Errorf("failed to get stores: %w", err)
	}
	return stores, nil
}

// GetProducts loads the catalog keyed by article, with image URLs attached.
// A product with zero images is still returned; the listing scorer is what
// excludes it.
func (r *catalogRepository) GetProducts(ctx context.Context) (map[string]domain.Product, error) {
	query := `
		SELECT id, article, name, category, brand
		FROM products
	`

	var products []domain.Product
	if err := r.db.SelectContext(ctx, &products, query); err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	imageQuery := `
		SELECT p.article, i.url
		FROM product_images i
		JOIN products p ON p.id = i.product_id
		ORDER BY p.article, i.position
	`
	type imageRow struct {
		Article string `db:"article"`
		URL     string `db:"url"`
	}
	var images []imageRow
	if err := r.db.SelectContext(ctx, &images, imageQuery); err != nil {
		return nil, fmt.Errorf("failed to get product images: %w", err)
	}

	imagesByArticle := make(map[string][]string)
	for _, img := range images {
		imagesByArticle[img.Article] = append(imagesByArticle[img.Article], img.URL)
	}

	out := make(map[string]domain.Product, len(products))
	for _, p := range products {
		p.Images = imagesByArticle[p.Article]
		out[p.Article] = p
	}
	return out, nil
}
