package tokens

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Client resolves token mints to symbol/name (Solscan-style metadata API) and
// USD spot price (Jupiter-style price API). The two lookups are independent
// services; either can be down without affecting the other.
type Client struct {
	metaURL  string
	priceURL string
	client   *http.Client
}

func New(metaURL, priceURL string) *Client {
	return &Client{metaURL: metaURL, priceURL: priceURL, client: &http.Client{Timeout: 30 * time.Second}}
}

type Meta struct {
	Symbol string
	Name   string
}

// Meta fetches symbol and name for a mint. Fields the API omits come back as
// "Unknown" rather than empty, matching what callers render.
func (c *Client) Meta(ctx context.Context, mint string) (Meta, error) {
	url := fmt.Sprintf("%s/token/meta?tokenAddress=%s", c.metaURL, mint)
	body, err := c.getJSON(ctx, url)
	if err != nil {
		return Meta{}, err
	}

	var data struct {
		Symbol string `json:"symbol"`
		Name   string `json:"name"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return Meta{}, fmt.Errorf("parse token meta: %w", err)
	}

	meta := Meta{Symbol: data.Symbol, Name: data.Name}
	if meta.Symbol == "" {
		meta.Symbol = "Unknown"
	}
	if meta.Name == "" {
		meta.Name = "Unknown"
	}
	return meta, nil
}

// Price fetches the USD spot price for a mint. The price API encodes the
// price as a decimal string.
func (c *Client) Price(ctx context.Context, mint string) (float64, error) {
	url := fmt.Sprintf("%s/price/v2?ids=%s&showExtraInfo=true", c.priceURL, mint)
	body, err := c.getJSON(ctx, url)
	if err != nil {
		return 0, err
	}

	var result struct {
		Data map[string]struct {
			Price string `json:"price"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, fmt.Errorf("parse price: %w", err)
	}

	entry, ok := result.Data[mint]
	if !ok {
		return 0, fmt.Errorf("no price for %s", mint)
	}
	price, err := strconv.ParseFloat(entry.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", entry.Price, err)
	}
	return price, nil
}

func (c *Client) getJSON(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 10<<20))
}
