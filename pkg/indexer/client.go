package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// transfersQuery fetches the most recent incoming transfers for an address,
// newest first by block timestamp. The shape is fixed; only the variables vary.
const transfersQuery = `
query ($address: String!, $limit: Int!) {
  solana {
    transfers(
      options: {limit: $limit, desc: "block.timestamp.time"}
      receiverAddress: {is: $address}
    ) {
      amount
      currency {
        symbol
        name
        address
      }
      block {
        timestamp {
          time(format: "%Y-%m-%d %H:%M:%S")
        }
      }
      transaction {
        signature
      }
    }
  }
}`

const timestampLayout = "2006-01-02 15:04:05"

// Client issues the transfers query against a Bitquery-compatible GraphQL
// endpoint. The API key goes out as an X-API-KEY header on every request.
type Client struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func New(endpoint, apiKey string) *Client {
	return &Client{endpoint: endpoint, apiKey: apiKey, client: &http.Client{Timeout: 30 * time.Second}}
}

// Transfer is one incoming transfer as the indexer reports it. Symbol and
// Name may be empty or "Unknown"; callers resolve those via token metadata.
type Transfer struct {
	Signature    string
	Amount       float64
	Symbol       string
	Name         string
	TokenAddress string
	Timestamp    time.Time
}

// RecentTransfers returns up to limit incoming transfers, newest first.
func (c *Client) RecentTransfers(ctx context.Context, address string, limit int) ([]Transfer, error) {
	payload, _ := json.Marshal(map[string]interface{}{
		"query": transfersQuery,
		"variables": map[string]interface{}{
			"address": address,
			"limit":   limit,
		},
	})

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("HTTP %d from indexer", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, err
	}

	var result struct {
		Data struct {
			Solana struct {
				Transfers []struct {
					Amount   float64 `json:"amount"`
					Currency struct {
						Symbol  string `json:"symbol"`
						Name    string `json:"name"`
						Address string `json:"address"`
					} `json:"currency"`
					Block struct {
						Timestamp struct {
							Time string `json:"time"`
						} `json:"timestamp"`
					} `json:"block"`
					Transaction struct {
						Signature string `json:"signature"`
					} `json:"transaction"`
				} `json:"transfers"`
			} `json:"solana"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse transfers: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("graphql query failed: %s", result.Errors[0].Message)
	}

	transfers := make([]Transfer, 0, len(result.Data.Solana.Transfers))
	for _, t := range result.Data.Solana.Transfers {
		ts, _ := time.Parse(timestampLayout, t.Block.Timestamp.Time)
		transfers = append(transfers, Transfer{
			Signature:    t.Transaction.Signature,
			Amount:       t.Amount,
			Symbol:       t.Currency.Symbol,
			Name:         t.Currency.Name,
			TokenAddress: t.Currency.Address,
			Timestamp:    ts,
		})
	}
	return transfers, nil
}
