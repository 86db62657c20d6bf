package nuvemshop

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"catalogsync/internal/connectors"
	"catalogsync/internal/logger"
)

const apiRoot = "https://api.tiendanube.com/v1"

// productFields keeps listing payloads small: only what normalization reads.
const productFields = "id,name,description,brand,tags,variants,images,categories"

// Client wraps the Nuvemshop (Tiendanube) REST API for one store.
type Client struct {
	transport connectors.Transport
	logger    *logger.Logger
}

// BaseURL builds the store-scoped API root.
func BaseURL(storeID string) string {
	return fmt.Sprintf("%s/%s", apiRoot, storeID)
}

// AuthHeaders returns the auth header set. Nuvemshop uses a lowercase
// "bearer" scheme on an Authentication header and requires a User-Agent.
func AuthHeaders(accessToken string) map[string]string {
	return map[string]string{
		"Authentication": "bearer " + accessToken,
		"User-Agent":     "catalogsync (sync@catalogsync.local)",
	}
}

func NewClient(transport connectors.Transport, logger *logger.Logger) *Client {
	return &Client{
		transport: transport,
		logger:    logger,
	}
}

// GetProducts fetches one page of products. Pages are 1-based.
func (c *Client) GetProducts(ctx context.Context, page, perPage int) ([]Product, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("fields", productFields)

	resp, err := c.transport.Do(ctx, &connectors.Request{
		Method: http.MethodGet,
		Path:   "/products",
		Query:  q,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	// Nuvemshop answers 404 for a page past the end of the catalog.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("product listing failed: %d - %s", resp.StatusCode, string(resp.Body))
	}

	var products []Product
	if err := json.Unmarshal(resp.Body, &products); err != nil {
		return nil, fmt.Errorf("failed to decode product listing: %w", err)
	}
	return products, nil
}

// GetProduct fetches a single product by ID.
func (c *Client) GetProduct(ctx context.Context, productID int64) (*Product, error) {
	resp, err := c.transport.Do(ctx, &connectors.Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/products/%d", productID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %d: %w", productID, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("product fetch failed: %d - %s", resp.StatusCode, string(resp.Body))
	}

	var product Product
	if err := json.Unmarshal(resp.Body, &product); err != nil {
		return nil, fmt.Errorf("failed to decode product response: %w", err)
	}
	return &product, nil
}

// GetStoreInfo fetches store identity, the connectivity probe.
func (c *Client) GetStoreInfo(ctx context.Context) (*StoreInfo, error) {
	resp, err := c.transport.Do(ctx, &connectors.Request{
		Method: http.MethodGet,
		Path:   "/store",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch store info: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("store info request failed: %d - %s", resp.StatusCode, string(resp.Body))
	}

	var info StoreInfo
	if err := json.Unmarshal(resp.Body, &info); err != nil {
		return nil, fmt.Errorf("failed to decode store response: %w", err)
	}
	return &info, nil
}
