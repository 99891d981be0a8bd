package dexscreener

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"mooncap/internal/domain/market"
)

const pairJSON = `{
  "schemaVersion": "1.0.0",
  "pairs": [{
    "chainId": "solana",
    "pairAddress": "PAIRADDR",
    "baseToken": {"address": "MINT", "name": "Moon Token", "symbol": "MOON"},
    "priceUsd": "0.00012345",
    "txns": {"h24": {"buys": 120, "sells": 45}},
    "volume": {"h24": 98765.4, "h6": 12345.6, "h1": 2345.6},
    "priceChange": {"h1": 5.5, "h6": -2.0, "h24": 12.0},
    "liquidity": {"usd": 45678.9},
    "fdv": 500000,
    "marketCap": 450000
  }]
}`

func newTestClient(h http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(h)
	c := NewClient()
	c.BaseURL = srv.URL
	return c, srv
}

func TestClient_正常レスポンスの変換(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(pairJSON))
	}))
	defer srv.Close()

	snap, err := c.Fetch(context.Background(), "solana", "MINT")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if snap.TokenSymbol != "MOON" {
		t.Errorf("TokenSymbol = %q, want MOON", snap.TokenSymbol)
	}
	if !snap.PriceUSD.Equal(decimal.RequireFromString("0.00012345")) {
		t.Errorf("PriceUSD = %s", snap.PriceUSD)
	}
	if !snap.MarketCap.Equal(decimal.NewFromInt(450000)) {
		t.Errorf("MarketCap = %s, want 450000", snap.MarketCap)
	}
	if snap.Buys24h != 120 || snap.Sells24h != 45 {
		t.Errorf("txns = %d/%d, want 120/45", snap.Buys24h, snap.Sells24h)
	}
	if snap.Change1h != 5.5 {
		t.Errorf("Change1h = %v, want 5.5", snap.Change1h)
	}
	if snap.FetchedAt.IsZero() {
		t.Error("FetchedAt が設定されていません")
	}
}

func TestClient_marketCap欠落時はfdvで代用(t *testing.T) {
	body := `{"pairs": [{"baseToken": {"symbol": "X"}, "priceUsd": "1.0", "fdv": 500000}]}`
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	snap, err := c.Fetch(context.Background(), "solana", "MINT")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !snap.MarketCap.Equal(decimal.NewFromInt(500000)) {
		t.Errorf("MarketCap = %s, want 500000 (fdv)", snap.MarketCap)
	}
}

func TestClient_tokensが空ならpairsにフォールバック(t *testing.T) {
	var paths []string
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if len(paths) == 1 {
			// 1回目（/tokens/...）はペアなし
			w.Write([]byte(`{"pairs": null}`))
			return
		}
		w.Write([]byte(pairJSON))
	}))
	defer srv.Close()

	snap, err := c.Fetch(context.Background(), "solana", "PAIRADDR")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if snap.TokenSymbol != "MOON" {
		t.Errorf("TokenSymbol = %q, want MOON", snap.TokenSymbol)
	}

	if len(paths) != 2 {
		t.Fatalf("リクエスト回数 = %d, want 2", len(paths))
	}
	if paths[0] != "/tokens/PAIRADDR" {
		t.Errorf("1回目のパス = %q, want /tokens/PAIRADDR", paths[0])
	}
	if paths[1] != "/pairs/solana/PAIRADDR" {
		t.Errorf("2回目のパス = %q, want /pairs/solana/PAIRADDR", paths[1])
	}
}

func TestClient_エラー分類(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    market.FetchKind
	}{
		{
			name: "HTTPエラーはNotFound",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			want: market.FetchNotFound,
		},
		{
			name: "ペアなしはNotFound",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"pairs": []}`))
			},
			want: market.FetchNotFound,
		},
		{
			name: "壊れたJSONはMalformed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"pairs": [`))
			},
			want: market.FetchMalformed,
		},
		{
			name: "priceUsdが数値でなければMalformed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"pairs": [{"baseToken": {"symbol": "X"}, "priceUsd": "abc"}]}`))
			},
			want: market.FetchMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, srv := newTestClient(tt.handler)
			defer srv.Close()

			_, err := c.Fetch(context.Background(), "solana", "MINT")
			var ferr *market.FetchError
			if !errors.As(err, &ferr) {
				t.Fatalf("err = %v, want *market.FetchError", err)
			}
			if ferr.Kind != tt.want {
				t.Errorf("Kind = %v, want %v", ferr.Kind, tt.want)
			}
		})
	}
}

func TestClient_接続不能はNetwork(t *testing.T) {
	c := NewClient()
	c.BaseURL = "http://127.0.0.1:1" // 誰も聞いていないポート
	c.HTTPClient = &http.Client{Timeout: 200 * time.Millisecond}

	_, err := c.Fetch(context.Background(), "solana", "MINT")
	var ferr *market.FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("err = %v, want *market.FetchError", err)
	}
	if ferr.Kind != market.FetchNetwork {
		t.Errorf("Kind = %v, want Network", ferr.Kind)
	}
}
