// internal/engine/engine.go
package engine

import (
	"context"
	"errors"
	"time"

	"mooncap/internal/config"
	"mooncap/internal/domain/alarm"
	"mooncap/internal/domain/market"
	"mooncap/internal/domain/session"
	"mooncap/internal/infra/terminal"
	"mooncap/pkg/logger"
)

// 経過時間表示・アラームの時間切れ確認・点滅のための速い方のタイマー
const defaultUITick = 500 * time.Millisecond

// Renderer は現在のセッション状態から1フレームを描く規格です。
// 描画は常に安く即座に終わること（ここが詰まると入力も止まります）
type Renderer interface {
	Draw(s *session.Session, now time.Time)
}

// fetchResult はフェッチゴルーチンからメインループへ届く結果です
type fetchResult struct {
	snap *market.PairSnapshot
	err  error
}

// Engine はセッション全体のライフサイクルを管理する司令部です。
// ポーリングタイマー・キー入力・フェッチ結果を1つのselectで統括し、
// 可変状態（Session）を書き換えるのはこのループだけです（ロック不要の根拠）
type Engine struct {
	cfg      *config.Config
	fetcher  market.Fetcher
	machine  *alarm.Machine
	renderer Renderer
	events   <-chan terminal.Event
	session  *session.Session

	uiTick   time.Duration
	inFlight bool            // 実行中のフェッチは常に高々1つ
	results  chan fetchResult // バッファ1。終了後に届いた結果は誰にも読まれず捨てられる
}

func New(cfg *config.Config, fetcher market.Fetcher, machine *alarm.Machine, renderer Renderer, events <-chan terminal.Event) *Engine {
	return &Engine{
		cfg:      cfg,
		fetcher:  fetcher,
		machine:  machine,
		renderer: renderer,
		events:   events,
		session:  session.New(cfg.Pair, cfg.Chain, cfg.HistorySize, time.Now()),
		uiTick:   defaultUITick,
		results:  make(chan fetchResult, 1),
	}
}

// Session は現在のセッション状態を返します。
// Run が動いている間はメインループ以外から触らないでください
func (e *Engine) Session() *session.Session {
	return e.session
}

// Run はメインループを回します。終了操作かctxのキャンセルで抜け、
// 抜ける前に必ずアラーム音を止めます（端末の復旧は呼び出し側のdeferの仕事）
func (e *Engine) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer e.machine.Shutdown() // どの経路で抜けても音は止める

	log := logger.Module("engine")
	log.WithField("pair", e.cfg.Pair).WithField("chain", e.cfg.Chain).Info("監視を開始します")

	poll := time.NewTicker(e.cfg.Interval)
	defer poll.Stop()
	ui := time.NewTicker(e.uiTick)
	defer ui.Stop()

	now := time.Now()
	e.session.Log(now, "🚀 監視を開始します（%s / %s, 間隔 %s）", e.cfg.Pair, e.cfg.Chain, e.cfg.Interval)
	e.startFetch(ctx) // 初回は次のTickを待たずに即フェッチ
	e.draw(now)

	for {
		select {
		case <-ctx.Done():
			// 外からの終了指示（シグナルなど）。処理中のフェッチ結果は捨てられます
			log.Info("コンテキストのキャンセルで監視を終了します")
			return nil

		case ev, ok := <-e.events:
			if !ok {
				return nil
			}
			now := time.Now()
			switch ev.Kind {
			case terminal.EventQuit:
				log.Info("終了操作を受け付けました")
				return nil
			case terminal.EventRefresh:
				// タイマーの位相もここでリセットする（次の定期フェッチは今からinterval後）
				poll.Reset(e.cfg.Interval)
				e.session.Log(now, "🔄 手動更新を実行します")
				e.startFetch(ctx)
			case terminal.EventSilence:
				e.machine.Silence(now)
				e.syncAlarm()
				e.session.Log(now, "🔇 アラームを停止しました")
			case terminal.EventResize:
				// 同期済み。このあとの再描画だけで十分
			}

		case <-poll.C:
			e.startFetch(ctx)

		case now := <-ui.C:
			if e.machine.OnTick(now) {
				e.session.Log(now, "🔇 アラームが時間切れで自動停止しました")
			}
			e.syncAlarm()

		case res := <-e.results:
			e.inFlight = false
			e.apply(res, time.Now())
		}

		e.session.Ticks++
		e.draw(time.Now())
	}
}

// startFetch はフェッチを裏側のゴルーチンで開始します。実行中ならなにもしません
func (e *Engine) startFetch(ctx context.Context) {
	if e.inFlight {
		return
	}
	e.inFlight = true

	go func() {
		fctx, cancel := context.WithTimeout(ctx, e.cfg.FetchTimeout)
		defer cancel()

		snap, err := e.fetcher.Fetch(fctx, e.cfg.Chain, e.cfg.Pair)

		// ループがすでに終了していたら、結果はどこにも届かずそのまま破棄されます
		select {
		case e.results <- fetchResult{snap: snap, err: err}:
		case <-ctx.Done():
		}
	}()
}

// apply はフェッチ結果をセッションとアラーム状態機械に反映します
func (e *Engine) apply(res fetchResult, now time.Time) {
	log := logger.Module("engine")

	if res.err != nil {
		// 失敗は表示するだけ。履歴とアラームには一切触らない
		var ferr *market.FetchError
		if !errors.As(res.err, &ferr) {
			ferr = market.NewFetchError(market.FetchNetwork, res.err)
		}
		e.session.ApplyFetchError(ferr)
		e.session.Log(now, "❌ %v", ferr)
		log.WithField("kind", ferr.Kind.String()).Warnf("フェッチに失敗しました: %v", ferr.Err)
		return
	}

	e.session.ApplySnapshot(res.snap)
	e.session.Log(now, "MCap: %s | 価格: $%s | 1h: %+.2f%%",
		res.snap.MarketCap.StringFixed(0), res.snap.PriceUSD.StringFixed(8), res.snap.Change1h)

	if e.machine.OnSample(res.snap.MarketCap, now) {
		e.session.Log(now, "🔥 目標到達！時価総額が %s に達しました 🔥", res.snap.MarketCap.StringFixed(0))
		log.WithField("market_cap", res.snap.MarketCap.String()).Info("目標時価総額に到達しました")
	}
	e.syncAlarm()
}

// syncAlarm は状態機械の現在値を描画用のセッションに写します
func (e *Engine) syncAlarm() {
	e.session.AlarmState = e.machine.State()
	e.session.AlarmStartedAt = e.machine.StartedAt()
}

func (e *Engine) draw(now time.Time) {
	e.renderer.Draw(e.session, now)
}
