// Package explorer is a minimal REST-backed implementation of the
// UTXOSource and Broadcaster collaborator contracts against a
// rest.bitcoin.com-style API. It is not part of the core engine: every
// method builds one context-bound net/http request, sends it through the
// client's http.Client, and decodes the JSON reply.
package explorer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/bchtrade/bchtrade/internal/ifaces"
)

// RestClient talks to a BCH REST explorer (e.g. rest.bitcoin.com-style
// API) for UTXO lookups and raw transaction broadcast.
type RestClient struct {
	BaseURL string
	HTTP    *http.Client
}

// NewRestClient returns a client against baseURL (no trailing slash),
// e.g. "https://rest.bitcoin.com/v2".
func NewRestClient(baseURL string) *RestClient {
	return &RestClient{BaseURL: baseURL, HTTP: http.DefaultClient}
}

type utxoEntryWire struct {
	TxID     string `json:"txid"`
	Vout     uint32 `json:"vout"`
	Satoshis uint64 `json:"satoshis"`
}

type utxoResultWire struct {
	UTXOs []utxoEntryWire `json:"utxos"`
}

// UTXOs implements ifaces.UTXOSource.
func (c *RestClient) UTXOs(ctx context.Context, cashAddr string) ([]ifaces.UTXOEntry, error) {
	url := fmt.Sprintf("%s/address/utxo/%s", c.BaseURL, cashAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("explorer: building utxo request: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("explorer: fetching utxos for %s: %w", cashAddr, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("explorer: reading utxo response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("explorer: utxo request failed with status %d: %s", resp.StatusCode, body)
	}

	var result utxoResultWire
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("explorer: parsing utxo response: %w", err)
	}

	entries := make([]ifaces.UTXOEntry, len(result.UTXOs))
	for i, u := range result.UTXOs {
		entries[i] = ifaces.UTXOEntry{TxIDHex: u.TxID, Vout: u.Vout, Satoshis: u.Satoshis}
	}
	return entries, nil
}

type broadcastRequestWire struct {
	Hexes []string `json:"hexes"`
}

type broadcastResultWire struct {
	TxID string `json:"txid"`
}

// Broadcast implements ifaces.Broadcaster.
func (c *RestClient) Broadcast(ctx context.Context, rawTxHex string) (string, error) {
	url := fmt.Sprintf("%s/rawtransactions/sendRawTransaction", c.BaseURL)
	reqBody, err := json.Marshal(broadcastRequestWire{Hexes: []string{rawTxHex}})
	if err != nil {
		return "", fmt.Errorf("explorer: marshaling broadcast request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("explorer: building broadcast request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("explorer: broadcasting transaction: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("explorer: reading broadcast response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("explorer: broadcast failed with status %d: %s", resp.StatusCode, body)
	}

	var result broadcastResultWire
	if err := json.Unmarshal(body, &result); err == nil && result.TxID != "" {
		return result.TxID, nil
	}
	// Some explorer deployments respond with a bare JSON string.
	var txID string
	if err := json.Unmarshal(body, &txID); err != nil {
		return "", fmt.Errorf("explorer: parsing broadcast response: %w", err)
	}
	return txID, nil
}
