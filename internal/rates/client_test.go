package rates

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestFetchCurrenciesSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/currencies" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"NOK": map[string]string{"name": "Norwegian Krone", "symbol": "kr"},
			"EUR": map[string]string{"name": "Euro", "symbol": "€"},
		})
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL, Timeout: time.Second, UserAgent: "test"}, noopLogger())

	currencies, err := client.FetchCurrencies(context.Background())
	if err != nil {
		t.Fatalf("fetch should succeed: %v", err)
	}
	if len(currencies) != 2 {
		t.Fatalf("expected 2 currencies, got %d", len(currencies))
	}
	if currencies["NOK"].Symbol != "kr" {
		t.Fatalf("unexpected NOK metadata: %+v", currencies["NOK"])
	}
}

func TestFetchCurrenciesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	if _, err := client.FetchCurrencies(context.Background()); err == nil {
		t.Fatal("HTTP 503 should return an error")
	}
}

func TestFetchRatesSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rates" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("base") != "NOK" {
			t.Fatalf("base should be NOK, got %q", r.URL.Query().Get("base"))
		}
		if r.URL.Query().Get("date") != "2024-03-01" {
			t.Fatalf("date should be 2024-03-01, got %q", r.URL.Query().Get("date"))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"base": "NOK",
			"date": "2024-03-01",
			"rates": map[string]float64{
				"EUR": 0.0857,
				"USD": 0.0932,
			},
		})
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())

	date := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)
	table, err := client.FetchRates(context.Background(), "NOK", &date)
	if err != nil {
		t.Fatalf("fetch should succeed: %v", err)
	}
	if table.Base != "NOK" || table.Date != "2024-03-01" {
		t.Fatalf("unexpected table metadata: %+v", table)
	}
	if table.Rates["EUR"].Cmp(decimal.RequireFromString("0.0857")) != 0 {
		t.Fatalf("unexpected EUR rate: %s", table.Rates["EUR"])
	}
}

func TestFetchRatesEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"base": "NOK", "date": "2024-03-01", "rates": map[string]string{}})
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	if _, err := client.FetchRates(context.Background(), "NOK", nil); err == nil {
		t.Fatal("empty rates payload should return an error")
	}
}
