package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"catalogsync/internal/connectors"
	"catalogsync/internal/logger"
)

const apiVersion = "2023-10"

// Client wraps the Shopify Admin REST API for one shop.
type Client struct {
	transport connectors.Transport
	logger    *logger.Logger
}

// BaseURL builds the Admin API root for a shop domain, tolerating domains
// given with or without the .myshopify.com suffix.
func BaseURL(shopDomain string) string {
	domain := strings.TrimSuffix(shopDomain, ".myshopify.com")
	return fmt.Sprintf("https://%s.myshopify.com/admin/api/%s", domain, apiVersion)
}

// AuthHeaders returns the access-token header set every Admin API call needs.
func AuthHeaders(accessToken string) map[string]string {
	return map[string]string{"X-Shopify-Access-Token": accessToken}
}

func NewClient(transport connectors.Transport, logger *logger.Logger) *Client {
	return &Client{
		transport: transport,
		logger:    logger,
	}
}

// GetProducts fetches one page of products. sinceID of 0 starts from the
// beginning; pagination advances by passing the last seen product id.
func (c *Client) GetProducts(ctx context.Context, limit int, sinceID int64) ([]Product, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if sinceID > 0 {
		q.Set("since_id", strconv.FormatInt(sinceID, 10))
	}

	resp, err := c.transport.Do(ctx, &connectors.Request{
		Method: http.MethodGet,
		Path:   "/products.json",
		Query:  q,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("product listing failed: %d - %s", resp.StatusCode, string(resp.Body))
	}

	var productsResp ProductsResponse
	if err := json.Unmarshal(resp.Body, &productsResp); err != nil {
		return nil, fmt.Errorf("failed to decode product listing: %w", err)
	}
	return productsResp.Products, nil
}

// GetProduct fetches a single product by ID.
func (c *Client) GetProduct(ctx context.Context, productID int64) (*Product, error) {
	resp, err := c.transport.Do(ctx, &connectors.Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/products/%d.json", productID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %d: %w", productID, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("product fetch failed: %d - %s", resp.StatusCode, string(resp.Body))
	}

	var productResp struct {
		Product Product `json:"product"`
	}
	if err := json.Unmarshal(resp.Body, &productResp); err != nil {
		return nil, fmt.Errorf("failed to decode product response: %w", err)
	}
	return &productResp.Product, nil
}

// GetShopInfo fetches shop identity, the lightweight authenticated probe.
func (c *Client) GetShopInfo(ctx context.Context) (*Shop, error) {
	resp, err := c.transport.Do(ctx, &connectors.Request{
		Method: http.MethodGet,
		Path:   "/shop.json",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shop info: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("shop info request failed: %d - %s", resp.StatusCode, string(resp.Body))
	}

	var shopResp struct {
		Shop Shop `json:"shop"`
	}
	if err := json.Unmarshal(resp.Body, &shopResp); err != nil {
		return nil, fmt.Errorf("failed to decode shop response: %w", err)
	}
	return &shopResp.Shop, nil
}
