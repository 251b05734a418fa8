package backend

import (
	"context"
	"net/http"

	"github.com/utafrali/storefront/internal/domain"
)

// GetProducts returns the whole catalog.
func (c *Client) GetProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := call[[]domain.Product](ctx, c, http.MethodGet, "/products", nil, "products")
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

func (c *Client) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	p, err := call[*domain.Product](ctx, c, http.MethodGet, "/products/"+seg(id), nil, "product")
	return present(p, err, "product", id)
}

func (c *Client) AddProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	created, err := call[*domain.Product](ctx, c, http.MethodPost, "/products", p, "product")
	return returned(created, err, "product")
}

func (c *Client) UpdateProduct(ctx context.Context, id string, p *domain.Product) (*domain.Product, error) {
	updated, err := call[*domain.Product](ctx, c, http.MethodPut, "/products/"+seg(id), p, "product")
	return returned(updated, err, "product")
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/products/"+seg(id), nil, nil)
}
