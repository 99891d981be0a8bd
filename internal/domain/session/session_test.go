package session

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"mooncap/internal/domain/market"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func snapAt(sec int, mcap int64) *market.PairSnapshot {
	return &market.PairSnapshot{
		TokenSymbol: "MOON",
		MarketCap:   decimal.NewFromInt(mcap),
		FetchedAt:   t0.Add(time.Duration(sec) * time.Second),
	}
}

func TestSession_成功フェッチの反映(t *testing.T) {
	s := New("PAIR", "solana", 10, t0)

	s.ApplyFetchError(market.NewFetchError(market.FetchNetwork, errors.New("timeout")))
	s.ApplySnapshot(snapAt(1, 50000))

	if s.LastErr != nil {
		t.Error("成功フェッチでエラーがクリアされていません")
	}
	if s.FetchCount != 1 {
		t.Errorf("FetchCount = %d, want 1", s.FetchCount)
	}
	if s.History.Len() != 1 {
		t.Errorf("History.Len() = %d, want 1", s.History.Len())
	}
}

func TestSession_失敗フェッチは履歴に触らない(t *testing.T) {
	s := New("PAIR", "solana", 10, t0)
	s.ApplySnapshot(snapAt(1, 50000))

	s.ApplyFetchError(market.NewFetchError(market.FetchNotFound, errors.New("no pairs")))

	if s.History.Len() != 1 {
		t.Errorf("失敗フェッチ後の History.Len() = %d, want 1", s.History.Len())
	}
	if s.Snapshot == nil {
		t.Error("失敗フェッチで直近スナップショットが消えています")
	}
	if s.LastErr == nil || s.LastErr.Kind != market.FetchNotFound {
		t.Errorf("LastErr = %v, want NotFound", s.LastErr)
	}
	if s.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", s.ErrorCount)
	}
}

func TestSession_ログリングの上限(t *testing.T) {
	s := New("PAIR", "solana", 10, t0)

	for i := 0; i < MaxLog+20; i++ {
		s.Log(t0, "行 %d", i)
	}

	logs := s.Logs()
	if len(logs) != MaxLog {
		t.Fatalf("len(Logs()) = %d, want %d", len(logs), MaxLog)
	}
	// 最古の20行が捨てられ、最後の行が残っているはず
	if !strings.Contains(logs[0], "行 20") {
		t.Errorf("先頭行 = %q, want 行 20 を含む", logs[0])
	}
	if !strings.Contains(logs[len(logs)-1], fmt.Sprintf("行 %d", MaxLog+19)) {
		t.Errorf("末尾行 = %q", logs[len(logs)-1])
	}
}
