package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TokenProgramID is the standard SPL token program.
const TokenProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

// Client is a minimal Solana JSON-RPC 2.0 client. One POST per call, no
// retries, no caching; every failure is returned to the caller, which decides
// how to degrade.
type Client struct {
	endpoint string
	client   *http.Client
}

func New(endpoint string) *Client {
	return &Client{endpoint: endpoint, client: &http.Client{Timeout: 30 * time.Second}}
}

type rpcRequest struct {
	ID      int           `json:"id"`
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *Client) call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("no RPC endpoint configured")
	}

	reqBody, _ := json.Marshal(rpcRequest{
		ID:      1,
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
	})

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, method)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, err
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, fmt.Errorf("rpc unmarshal: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	return rpcResp.Result, nil
}

// TokenAccount is one SPL token account owned by a wallet. RawAmount is the
// integer amount as the node reports it, before decimal scaling.
type TokenAccount struct {
	Mint      string
	RawAmount string
	Decimals  int
}

// TokenAccountsByOwner enumerates the wallet's token accounts under the
// standard token program, jsonParsed encoding.
func (c *Client) TokenAccountsByOwner(ctx context.Context, owner string) ([]TokenAccount, error) {
	result, err := c.call(ctx, "getTokenAccountsByOwner", []interface{}{
		owner,
		map[string]string{"programId": TokenProgramID},
		map[string]string{"encoding": "jsonParsed"},
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Value []struct {
			Account struct {
				Data struct {
					Parsed struct {
						Info struct {
							Mint        string `json:"mint"`
							TokenAmount struct {
								Amount   string `json:"amount"`
								Decimals int    `json:"decimals"`
							} `json:"tokenAmount"`
						} `json:"info"`
					} `json:"parsed"`
				} `json:"data"`
			} `json:"account"`
		} `json:"value"`
	}
	if err := json.Unmarshal(result, &parsed); err != nil {
		return nil, fmt.Errorf("parse token accounts: %w", err)
	}

	accounts := make([]TokenAccount, 0, len(parsed.Value))
	for _, v := range parsed.Value {
		info := v.Account.Data.Parsed.Info
		accounts = append(accounts, TokenAccount{
			Mint:      info.Mint,
			RawAmount: info.TokenAmount.Amount,
			Decimals:  info.TokenAmount.Decimals,
		})
	}
	return accounts, nil
}

// Balance returns the wallet's native balance in lamports.
func (c *Client) Balance(ctx context.Context, address string) (uint64, error) {
	result, err := c.call(ctx, "getBalance", []interface{}{address})
	if err != nil {
		return 0, err
	}

	var parsed struct {
		Value uint64 `json:"value"`
	}
	if err := json.Unmarshal(result, &parsed); err != nil {
		return 0, fmt.Errorf("parse balance: %w", err)
	}
	return parsed.Value, nil
}

// SignatureInfo is one entry of the wallet's signature history. BlockTime is
// nil when the node has no timestamp for the slot.
type SignatureInfo struct {
	Signature string `json:"signature"`
	BlockTime *int64 `json:"blockTime"`
}

// SignaturesForAddress fetches up to limit recent signatures, newest first.
func (c *Client) SignaturesForAddress(ctx context.Context, address string, limit int) ([]SignatureInfo, error) {
	result, err := c.call(ctx, "getSignaturesForAddress", []interface{}{
		address,
		map[string]interface{}{"limit": limit},
	})
	if err != nil {
		return nil, err
	}

	var sigs []SignatureInfo
	if err := json.Unmarshal(result, &sigs); err != nil {
		return nil, fmt.Errorf("parse signatures: %w", err)
	}
	return sigs, nil
}
