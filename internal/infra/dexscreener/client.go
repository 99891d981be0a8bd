// internal/infra/dexscreener/client.go
package dexscreener

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"mooncap/internal/domain/market"
)

const defaultBaseURL = "https://api.dexscreener.com/latest/dex"

// Client はDexScreener APIと通信するためのクライアント構造体です
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient は新しいAPIクライアントを生成するコンストラクタです
func NewClient() *Client {
	return &Client{
		BaseURL: defaultBaseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second, // タイムアウトをデフォルトでDI
		},
	}
}

// Fetch は market.Fetcher の実装です。
// まずトークンアドレス用の /tokens/{address} を試し、見つからなければ
// ペアアドレス用の /pairs/{chain}/{address} にフォールバックします
func (c *Client) Fetch(ctx context.Context, chain, pair string) (*market.PairSnapshot, error) {
	snap, err := c.tryFetch(ctx, fmt.Sprintf("%s/tokens/%s", c.BaseURL, pair))
	if err == nil {
		return snap, nil
	}

	return c.tryFetch(ctx, fmt.Sprintf("%s/pairs/%s/%s", c.BaseURL, chain, pair))
}

func (c *Client) tryFetch(ctx context.Context, url string) (*market.PairSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, market.NewFetchError(market.FetchNetwork, err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, market.NewFetchError(market.FetchNetwork, fmt.Errorf("API通信エラー: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, market.NewFetchError(market.FetchNotFound,
			fmt.Errorf("APIがエラーステータスを返しました: %s", resp.Status))
	}

	var dexResp dexResponse
	if err := json.NewDecoder(resp.Body).Decode(&dexResp); err != nil {
		return nil, market.NewFetchError(market.FetchMalformed, fmt.Errorf("レスポンス解析エラー: %w", err))
	}

	if len(dexResp.Pairs) == 0 {
		return nil, market.NewFetchError(market.FetchNotFound,
			fmt.Errorf("レスポンスに該当ペアが含まれていません"))
	}

	// 複数ペアが返っても先頭を採用する（流動性順で返ってくる仕様）
	return toSnapshot(&dexResp.Pairs[0], time.Now())
}

// toSnapshot はDexScreener専用のレスポンスをシステム共通のスナップショットに翻訳します
func toSnapshot(p *pairData, now time.Time) (*market.PairSnapshot, error) {
	snap := &market.PairSnapshot{
		TokenName:    p.BaseToken.Name,
		TokenSymbol:  p.BaseToken.Symbol,
		Volume24h:    decimal.NewFromFloat(p.Volume.H24),
		Volume6h:     decimal.NewFromFloat(p.Volume.H6),
		Volume1h:     decimal.NewFromFloat(p.Volume.H1),
		Buys24h:      p.Txns.H24.Buys,
		Sells24h:     p.Txns.H24.Sells,
		Change1h:     p.PriceChange.H1,
		Change6h:     p.PriceChange.H6,
		Change24h:    p.PriceChange.H24,
		FetchedAt:    now,
	}

	if p.PriceUsd != "" {
		price, err := decimal.NewFromString(p.PriceUsd)
		if err != nil {
			return nil, market.NewFetchError(market.FetchMalformed,
				fmt.Errorf("priceUsd の形式が不正です (%q): %w", p.PriceUsd, err))
		}
		snap.PriceUSD = price
	}

	// marketCap が無いペアは fdv で代用する
	if p.MarketCap != nil {
		snap.MarketCap = decimal.NewFromFloat(*p.MarketCap)
	} else if p.Fdv != nil {
		snap.MarketCap = decimal.NewFromFloat(*p.Fdv)
	}
	if p.Fdv != nil {
		snap.FDV = decimal.NewFromFloat(*p.Fdv)
	}

	if p.Liquidity != nil {
		snap.LiquidityUSD = decimal.NewFromFloat(p.Liquidity.Usd)
	}

	return snap, nil
}
