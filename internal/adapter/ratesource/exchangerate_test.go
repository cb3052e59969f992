package ratesource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wallet-ledger/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) *Client {
	return NewClient(config.RatesConfig{
		BaseURL: serverURL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	})
}

func TestClient_FetchRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/test-key/latest/TWD", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":"success","conversion_rates":{"TWD":1,"USD":0.0317,"JPY":4.68}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	table, err := client.FetchRates(context.Background(), "TWD")
	require.NoError(t, err)
	require.Len(t, table, 3)
	assert.True(t, table["USD"].Equal(decimal.RequireFromString("0.0317")))
	assert.True(t, table["TWD"].Equal(decimal.NewFromInt(1)))
}

func TestClient_FetchRates_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":"error","error-type":"invalid-key"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchRates(context.Background(), "TWD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid-key")
}

func TestClient_FetchRates_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchRates(context.Background(), "TWD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestClient_FetchRates_EmptyTable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":"success","conversion_rates":{}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchRates(context.Background(), "TWD")
	assert.Error(t, err)
}

func TestClient_FetchRates_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchRates(ctx, "TWD")
	assert.Error(t, err)
}
