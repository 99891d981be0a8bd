// internal/domain/session/session.go
package session

import (
	"fmt"
	"time"

	"mooncap/internal/domain/alarm"
	"mooncap/internal/domain/market"
)

// MaxLog は画面のログパネルに保持する行数の上限です
const MaxLog = 100

// Session は描画に必要なすべての状態を束ねた器です。
// 書き換えるのはエンジンのメインループだけで、レンダラーは読むだけです（ロック不要）。
type Session struct {
	Pair  string
	Chain string

	// 直近の成功フェッチ結果（最初の成功まで nil）
	Snapshot *market.PairSnapshot
	History  *market.HistoryBuffer

	// 直近のフェッチ失敗（次の成功でクリア）
	LastErr *market.FetchError

	AlarmState     alarm.State
	AlarmStartedAt time.Time

	Ticks       uint64 // 描画サイクルの通し番号
	FetchCount  uint64
	ErrorCount  uint64
	LastFetchAt time.Time
	StartedAt   time.Time

	logs []string
}

// New は空のセッションを作ります
func New(pair, chain string, historySize int, now time.Time) *Session {
	return &Session{
		Pair:      pair,
		Chain:     chain,
		History:   market.NewHistoryBuffer(historySize),
		StartedAt: now,
	}
}

// Log は時刻付きの1行をログリングに積みます。上限を超えたら最古の行から捨てます
func (s *Session) Log(now time.Time, format string, args ...interface{}) {
	line := fmt.Sprintf("[%s] %s", now.Format("15:04:05"), fmt.Sprintf(format, args...))
	s.logs = append(s.logs, line)
	if len(s.logs) > MaxLog {
		s.logs = s.logs[1:]
	}
}

// Logs は新しい順ではなく積まれた順のログ行を返します
func (s *Session) Logs() []string {
	return s.logs
}

// ApplySnapshot はフェッチ成功をセッションに反映します（履歴追加とエラークリア）
func (s *Session) ApplySnapshot(snap *market.PairSnapshot) {
	s.Snapshot = snap
	s.LastErr = nil
	s.FetchCount++
	s.LastFetchAt = snap.FetchedAt
	s.History.Push(market.HistorySample{At: snap.FetchedAt, MarketCap: snap.MarketCap})
}

// ApplyFetchError はフェッチ失敗を記録します。履歴とアラームには一切触りません
func (s *Session) ApplyFetchError(ferr *market.FetchError) {
	s.LastErr = ferr
	s.ErrorCount++
}

// Elapsed はセッション開始からの経過時間を返します
func (s *Session) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.StartedAt)
}
