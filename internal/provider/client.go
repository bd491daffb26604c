// Package provider wraps the external payment provider's REST API.
//
// Without an API key the client runs in dry-run mode: deterministic
// placeholder responses, no network calls. The ledger core never depends on
// this package.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Customer is a provider-side customer record.
type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Wallet is a provider-side wallet summary.
type Wallet struct {
	ID       string `json:"id"`
	Currency string `json:"currency"`
	Balance  string `json:"balance"`
}

// HistoryItem is one provider-side wallet movement.
type HistoryItem struct {
	ID        string    `json:"id"`
	Amount    string    `json:"amount"`
	Direction string    `json:"direction"`
	CreatedAt time.Time `json:"created_at"`
}

// Rate is a provider-side exchange rate quote.
type Rate struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
}

// Client calls the payment provider's REST API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient returns a provider client. An empty apiKey selects dry-run mode.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// DryRun reports whether the client returns placeholder responses.
func (c *Client) DryRun() bool {
	return c.apiKey == ""
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("provider: unexpected status %d", res.StatusCode)
	}

	return json.NewDecoder(res.Body).Decode(out)
}

// CreateCustomer registers a customer with the provider.
func (c *Client) CreateCustomer(ctx context.Context, email string) (Customer, error) {
	if c.DryRun() {
		return Customer{ID: "dry-run-customer", Email: email}, nil
	}

	l := zerolog.Ctx(ctx)

	body, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return Customer{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/customers", bytes.NewReader(body))
	if err != nil {
		return Customer{}, err
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		l.Error().Err(err).Send()
		return Customer{}, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		return Customer{}, fmt.Errorf("provider: unexpected status %d", res.StatusCode)
	}

	var customer Customer
	if err := json.NewDecoder(res.Body).Decode(&customer); err != nil {
		return Customer{}, err
	}

	return customer, nil
}

// Wallets lists the customer's wallets.
func (c *Client) Wallets(ctx context.Context, customerID string) ([]Wallet, error) {
	if c.DryRun() {
		return []Wallet{
			{ID: customerID + "-usd", Currency: "USD", Balance: "0"},
			{ID: customerID + "-eur", Currency: "EUR", Balance: "0"},
		}, nil
	}

	var wallets []Wallet
	if err := c.get(ctx, "/customers/"+customerID+"/wallets", &wallets); err != nil {
		return nil, err
	}

	return wallets, nil
}

// WalletHistory lists the wallet's movements.
func (c *Client) WalletHistory(ctx context.Context, walletID string) ([]HistoryItem, error) {
	if c.DryRun() {
		return []HistoryItem{}, nil
	}

	var items []HistoryItem
	if err := c.get(ctx, "/wallets/"+walletID+"/history", &items); err != nil {
		return nil, err
	}

	return items, nil
}

// ExchangeRate quotes the provider's rate for a currency pair.
func (c *Client) ExchangeRate(ctx context.Context, from, to string) (Rate, error) {
	if c.DryRun() {
		return Rate{From: from, To: to, Value: "0.9"}, nil
	}

	var rate Rate
	if err := c.get(ctx, "/rates/"+from+"/"+to, &rate); err != nil {
		return Rate{}, err
	}

	return rate, nil
}
