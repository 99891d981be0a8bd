// internal/domain/market/history.go
package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultHistorySize はスパークライン用に保持するサンプル数の既定値です
const DefaultHistorySize = 60

// HistorySample は1回のフェッチ成功で記録される（時刻, 時価総額）のペアです
type HistorySample struct {
	At        time.Time
	MarketCap decimal.Decimal
}

// HistoryBuffer は直近N件の時価総額サンプルを時刻順に保持するリングです。
// 容量を超えたら最古のサンプルから捨てます。フェッチ失敗時は何も積まれません。
type HistoryBuffer struct {
	capacity int
	samples  []HistorySample
}

// NewHistoryBuffer は容量Nのバッファを作ります（N <= 0 のときは既定値を使用）
func NewHistoryBuffer(capacity int) *HistoryBuffer {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &HistoryBuffer{
		capacity: capacity,
		samples:  make([]HistorySample, 0, capacity),
	}
}

// Push はサンプルを末尾に追加し、あふれた分は最古から捨てます
func (h *HistoryBuffer) Push(s HistorySample) {
	h.samples = append(h.samples, s)
	if len(h.samples) > h.capacity {
		h.samples = h.samples[1:]
	}
}

// Samples は古い順のコピーを返します（呼び出し側が描画中に変更される心配をなくすため）
func (h *HistoryBuffer) Samples() []HistorySample {
	out := make([]HistorySample, len(h.samples))
	copy(out, h.samples)
	return out
}

// MarketCaps は古い順の時価総額だけを float64 で返します（スパークライン描画用）
func (h *HistoryBuffer) MarketCaps() []float64 {
	out := make([]float64, len(h.samples))
	for i, s := range h.samples {
		out[i], _ = s.MarketCap.Float64()
	}
	return out
}

// Latest は最新のサンプルを返します。空なら第2戻り値が false になります
func (h *HistoryBuffer) Latest() (HistorySample, bool) {
	if len(h.samples) == 0 {
		return HistorySample{}, false
	}
	return h.samples[len(h.samples)-1], true
}

// Len は現在保持しているサンプル数を返します
func (h *HistoryBuffer) Len() int {
	return len(h.samples)
}

// Capacity は保持できる最大サンプル数を返します
func (h *HistoryBuffer) Capacity() int {
	return h.capacity
}

// Progress は最新サンプルの時価総額を目標で割った進捗率 [0, 1] を返します。
// 目標超過は 1.0 に切り上げ、バッファが空または目標が非正のときは 0 を返します
func (h *HistoryBuffer) Progress(target decimal.Decimal) float64 {
	latest, ok := h.Latest()
	if !ok || target.Sign() <= 0 {
		return 0
	}
	if latest.MarketCap.Cmp(target) >= 0 {
		return 1.0
	}
	ratio, _ := latest.MarketCap.Div(target).Float64()
	if ratio < 0 {
		return 0
	}
	return ratio
}
