package catalog

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"order-mesh/internal/meshclient"
)

// Product is the catalog peer's view of a product, read-only on this side.
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type stockUpdate struct {
	Stock int `json:"stock"`
}

// Client is the typed face of the product peer over the mesh client.
type Client struct {
	mesh *meshclient.Client
	peer string
}

func NewClient(mesh *meshclient.Client, peer string) *Client {
	return &Client{mesh: mesh, peer: peer}
}

func (c *Client) GetProduct(ctx context.Context, id string) (Product, error) {
	return meshclient.Invoke[Product](ctx, c.mesh, c.peer, "products/"+id)
}

// SetStock replaces the product's stock with an absolute value. Re-applying
// the same value after an ambiguous failure is a no-op, so the call is safe
// to retry; callers must never pass a relative delta.
func (c *Client) SetStock(ctx context.Context, id string, stock int) error {
	path := fmt.Sprintf("products/%s/stock", id)
	return c.mesh.Send(ctx, c.peer, http.MethodPut, path, stockUpdate{Stock: stock})
}
