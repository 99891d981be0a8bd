package market

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PairSnapshot はシステム共通のペア情報です（DexScreenerの仕様を一切知らない純粋なデータ）。
// 1回のフェッチ成功ごとに丸ごと作り直され、次の成功で置き換えられます。
type PairSnapshot struct {
	TokenName   string
	TokenSymbol string

	PriceUSD  decimal.Decimal
	MarketCap decimal.Decimal
	FDV       decimal.Decimal

	Volume24h    decimal.Decimal
	Volume6h     decimal.Decimal
	Volume1h     decimal.Decimal
	LiquidityUSD decimal.Decimal

	Buys24h  uint64
	Sells24h uint64

	// 価格変化率（%）
	Change1h  float64
	Change6h  float64
	Change24h float64

	FetchedAt time.Time
}

// Fetcher は、市場データプロバイダーからスナップショットを取得するための規格です
type Fetcher interface {
	// Fetch は指定したチェーンとペアの最新スナップショットを返します。
	// 失敗時は *FetchError を返します。リトライは呼び出し側（エンジン）の責務です。
	Fetch(ctx context.Context, chain, pair string) (*PairSnapshot, error)
}

// FetchKind は取得失敗の分類です
type FetchKind int

const (
	FetchNetwork   FetchKind = iota // 通信・タイムアウト系の失敗
	FetchNotFound                   // プロバイダーに該当ペアが存在しない
	FetchMalformed                  // レスポンスの形が想定と違う
)

func (k FetchKind) String() string {
	switch k {
	case FetchNetwork:
		return "network"
	case FetchNotFound:
		return "not_found"
	case FetchMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// FetchError はフェッチ失敗の分類付きエラーです。
// すべて回復可能であり、セッションを止めることはありません（表示して次のTickを待つ）。
type FetchError struct {
	Kind FetchKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("フェッチ失敗 (%s): %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError は分類付きエラーを作るヘルパーです
func NewFetchError(kind FetchKind, err error) *FetchError {
	return &FetchError{Kind: kind, Err: err}
}
