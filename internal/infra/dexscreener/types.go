// internal/infra/dexscreener/types.go
package dexscreener

// DexScreener APIのレスポンス型。このパッケージの外には一切漏らしません

type dexResponse struct {
	SchemaVersion string     `json:"schemaVersion"`
	Pairs         []pairData `json:"pairs"`
}

type pairData struct {
	ChainID     string       `json:"chainId"`
	DexID       string       `json:"dexId"`
	PairAddress string       `json:"pairAddress"`
	BaseToken   token        `json:"baseToken"`
	QuoteToken  token        `json:"quoteToken"`
	PriceNative string       `json:"priceNative"`
	PriceUsd    string       `json:"priceUsd"`
	Txns        pairTxns     `json:"txns"`
	Volume      pairVolume   `json:"volume"`
	PriceChange priceChange  `json:"priceChange"`
	Liquidity   *liquidity   `json:"liquidity"` // nullが来るのでポインタで受ける
	Fdv         *float64     `json:"fdv"`
	MarketCap   *float64     `json:"marketCap"`
}

type token struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type pairTxns struct {
	M5  txnCount `json:"m5"`
	H1  txnCount `json:"h1"`
	H6  txnCount `json:"h6"`
	H24 txnCount `json:"h24"`
}

type txnCount struct {
	Buys  uint64 `json:"buys"`
	Sells uint64 `json:"sells"`
}

type pairVolume struct {
	M5  float64 `json:"m5"`
	H1  float64 `json:"h1"`
	H6  float64 `json:"h6"`
	H24 float64 `json:"h24"`
}

type priceChange struct {
	M5  float64 `json:"m5"`
	H1  float64 `json:"h1"`
	H6  float64 `json:"h6"`
	H24 float64 `json:"h24"`
}

type liquidity struct {
	Usd   float64 `json:"usd"`
	Base  float64 `json:"base"`
	Quote float64 `json:"quote"`
}
