package bling

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

const baseURL = "https://bling.com.br/Api/v2"

// Client wraps the Bling v2 REST API. Every call carries the account API key
// as a query parameter, the way Bling expects.
type Client struct {
	transport connectors.Transport
	apiKey    string
	logger    *logger.Logger
}

func NewClient(transport connectors.Transport, apiKey string, logger *logger.Logger) *Client {
	return &Client{
		transport: transport,
		apiKey:    apiKey,
		logger:    logger,
	}
}

func (c *Client) query() url.Values {
	q := url.Values{}
	q.Set("apikey", c.apiKey)
	return q
}

// ListProducts fetches one page of the catalog. Bling pages are 1-based.
func (c *Client) ListProducts(ctx context.Context, page int) ([]Product, error) {
	q := c.query()
	q.Set("pagina", strconv.Itoa(page))
	q.Set("estoque", "S")

	resp, err := c.transport.Do(ctx, &connectors.Request{
		Method: http.MethodGet,
		Path:   "/produtos/json",
		Query:  q,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("product listing failed: %d - %s", resp.StatusCode, string(resp.Body))
	}

	var listResp listResponse
	if err := json.Unmarshal(resp.Body, &listResp); err != nil {
		return nil, fmt.Errorf("failed to decode product listing: %w", err)
	}
	if err := firstError(listResp.Retorno.Erros); err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(listResp.Retorno.Produtos))
	for _, env := range listResp.Retorno.Produtos {
		products = append(products, env.Produto)
	}
	return products, nil
}

// GetProduct fetches a single product by its code.
func (c *Client) GetProduct(ctx context.Context, codigo string) (*Product, error) {
	resp, err := c.transport.Do(ctx, &connectors.Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/produto/%s/json", url.PathEscape(codigo)),
		Query:  c.query(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %s: %w", codigo, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("product fetch failed: %d - %s", resp.StatusCode, string(resp.Body))
	}

	var single singleResponse
	if err := json.Unmarshal(resp.Body, &single); err != nil {
		return nil, fmt.Errorf("failed to decode product response: %w", err)
	}
	if err := firstError(single.Retorno.Erros); err != nil {
		return nil, err
	}
	if len(single.Retorno.Produtos) == 0 {
		return nil, fmt.Errorf("product %s not found", codigo)
	}
	return &single.Retorno.Produtos[0].Produto, nil
}

// CheckStatus probes the account situation endpoint, Bling's cheapest
// authenticated call.
func (c *Client) CheckStatus(ctx context.Context) error {
	resp, err := c.transport.Do(ctx, &connectors.Request{
		Method: http.MethodGet,
		Path:   "/situacao/json",
		Query:  c.query(),
	})
	if err != nil {
		return fmt.Errorf("status probe failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status probe failed: %d", resp.StatusCode)
	}

	var status statusResponse
	if err := json.Unmarshal(resp.Body, &status); err != nil {
		return fmt.Errorf("failed to decode status response: %w", err)
	}
	return firstError(status.Retorno.Erros)
}

func firstError(errs []apiError) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("bling API error %d: %s", errs[0].Erro.Cod, errs[0].Erro.Msg)
}
