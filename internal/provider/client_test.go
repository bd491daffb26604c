package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDryRunDeterministic(t *testing.T) {
	client := NewClient("https://api.provider.example", "")
	require.True(t, client.DryRun())

	ctx := context.Background()

	customer, err := client.CreateCustomer(ctx, "alice@email.com")
	require.NoError(t, err)
	require.Equal(t, "dry-run-customer", customer.ID)
	require.Equal(t, "alice@email.com", customer.Email)

	wallets, err := client.Wallets(ctx, "cust-1")
	require.NoError(t, err)
	require.Len(t, wallets, 2)
	require.Equal(t, "cust-1-usd", wallets[0].ID)

	history, err := client.WalletHistory(ctx, "w-1")
	require.NoError(t, err)
	require.Empty(t, history)

	rate, err := client.ExchangeRate(ctx, "USD", "EUR")
	require.NoError(t, err)
	require.Equal(t, Rate{From: "USD", To: "EUR", Value: "0.9"}, rate)

	// Dry-run responses never vary between calls.
	again, err := client.ExchangeRate(ctx, "USD", "EUR")
	require.NoError(t, err)
	require.Equal(t, rate, again)
}

func TestLiveRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		switch r.URL.Path {
		case "/rates/USD/EUR":
			json.NewEncoder(w).Encode(Rate{From: "USD", To: "EUR", Value: "0.93"})
		case "/customers/cust-1/wallets":
			json.NewEncoder(w).Encode([]Wallet{{ID: "w-1", Currency: "USD", Balance: "10"}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	require.False(t, client.DryRun())

	ctx := context.Background()

	rate, err := client.ExchangeRate(ctx, "USD", "EUR")
	require.NoError(t, err)
	require.Equal(t, "0.93", rate.Value)

	wallets, err := client.Wallets(ctx, "cust-1")
	require.NoError(t, err)
	require.Len(t, wallets, 1)

	_, err = client.WalletHistory(ctx, "missing")
	require.Error(t, err)
}
