// internal/ui/render.go
package ui

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"

	"mooncap/internal/domain/alarm"
	"mooncap/internal/domain/session"
)

// Dashboard はセッション状態を端末のフレームに写す描画係です。
// 読むだけで何も変更せず、ネットワークにも触りません（描画は常に即座に終わること）
type Dashboard struct {
	screen tcell.Screen
	target decimal.Decimal
}

func NewDashboard(screen tcell.Screen, target decimal.Decimal) *Dashboard {
	return &Dashboard{screen: screen, target: target}
}

// Draw は現在のセッション状態から1フレームを丸ごと描き直します
func (d *Dashboard) Draw(s *session.Session, now time.Time) {
	d.screen.Clear()
	w, h := d.screen.Size()

	y := 0
	d.drawHeader(s, now, w, y)
	y += 2

	if s.LastErr != nil {
		// 直近の取得エラーは画面を消さずに注釈として重ねる
		d.drawText(2, y, w-4, fmt.Sprintf("⚠ %v", s.LastErr),
			tcell.StyleDefault.Foreground(tcell.ColorYellow))
		y++
	}

	if s.Snapshot == nil {
		d.drawText(2, y+1, w-4, "データ待機中... 最初のフェッチが完了するまでお待ちください",
			tcell.StyleDefault.Foreground(tcell.ColorGray))
		d.drawFooter(w, h)
		d.screen.Show()
		return
	}

	leftW := w / 2
	statsBottom := d.drawStats(s, 2, y, leftW-3)
	d.drawTarget(s, now, leftW, y, w-leftW-2)
	y = statsBottom + 1

	y = d.drawSparkline(s, 2, y, w-4)
	d.drawLogs(s, 2, y+1, w-4, h-y-3)
	d.drawFooter(w, h)

	d.screen.Show()
}

func (d *Dashboard) drawHeader(s *session.Session, now time.Time, w, y int) {
	style := tcell.StyleDefault.Background(tcell.ColorBlue).Foreground(tcell.ColorWhite).Bold(true)
	for x := 0; x < w; x++ {
		d.screen.SetContent(x, y, ' ', nil, style)
	}

	title := fmt.Sprintf("🚀 mooncap | %s/%s", s.Pair, s.Chain)
	if s.Snapshot != nil && s.Snapshot.TokenName != "" {
		title = fmt.Sprintf("🚀 mooncap | %s (%s) @ %s", s.Snapshot.TokenName, s.Snapshot.TokenSymbol, s.Chain)
	}
	d.drawText(1, y, w-2, title, style)

	elapsed := s.Elapsed(now).Truncate(time.Second)
	right := fmt.Sprintf("取得 %d回 / 失敗 %d回 / 稼働 %s", s.FetchCount, s.ErrorCount, elapsed)
	d.drawText(w-runewidth.StringWidth(right)-1, y, w, right, style)
}

// drawStats は統計パネルを描き、次に使える行番号を返します
func (d *Dashboard) drawStats(s *session.Session, x, y, w int) int {
	snap := s.Snapshot
	label := tcell.StyleDefault.Foreground(tcell.ColorGray)
	value := tcell.StyleDefault

	rows := []struct {
		name string
		text string
		st   tcell.Style
	}{
		{"価格", "$" + snap.PriceUSD.StringFixed(8), value},
		{"時価総額", fmtUSD(snap.MarketCap), value.Bold(true)},
		{"FDV", fmtUSD(snap.FDV), value},
		{"出来高 24h", fmtUSD(snap.Volume24h), value},
		{"出来高 6h", fmtUSD(snap.Volume6h), value},
		{"出来高 1h", fmtUSD(snap.Volume1h), value},
		{"流動性", fmtUSD(snap.LiquidityUSD), value},
		{"買い/売り 24h", fmt.Sprintf("%d / %d", snap.Buys24h, snap.Sells24h), value},
		{"変化 1h", fmtChange(snap.Change1h), changeStyle(snap.Change1h)},
		{"変化 6h", fmtChange(snap.Change6h), changeStyle(snap.Change6h)},
		{"変化 24h", fmtChange(snap.Change24h), changeStyle(snap.Change24h)},
	}

	for i, row := range rows {
		d.drawText(x, y+i, 16, row.name, label)
		d.drawText(x+16, y+i, w-16, row.text, row.st)
	}
	return y + len(rows)
}

func (d *Dashboard) drawTarget(s *session.Session, now time.Time, x, y, w int) {
	label := tcell.StyleDefault.Foreground(tcell.ColorGray)

	d.drawText(x, y, w, fmt.Sprintf("🎯 目標時価総額: %s", fmtUSD(d.target)), label)

	progress := s.History.Progress(d.target)
	d.drawGauge(x, y+1, w, progress)

	switch s.AlarmState {
	case alarm.StateTriggered:
		st := tcell.StyleDefault.Background(tcell.ColorRed).Foreground(tcell.ColorWhite).Bold(true)
		if s.Ticks%2 == 0 {
			st = st.Reverse(true) // 点滅っぽく見せる
		}
		d.drawText(x, y+3, w, " 🔥 目標到達！アラーム作動中 [s]で停止 ", st)
	case alarm.StateSilenced:
		d.drawText(x, y+3, w, "🔇 アラーム停止済み（下抜けで再武装）", label)
	default:
		d.drawText(x, y+3, w, "監視中...", label)
	}

	if !s.LastFetchAt.IsZero() {
		d.drawText(x, y+5, w, fmt.Sprintf("最終取得: %s", s.LastFetchAt.Format("15:04:05")), label)
	}
}

// drawGauge は進捗バーを描きます（progress は [0,1]）
func (d *Dashboard) drawGauge(x, y, w int, progress float64) {
	barW := w - 8
	if barW < 4 {
		barW = 4
	}
	filled := int(progress * float64(barW))
	if filled > barW {
		filled = barW
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	if progress >= 1.0 {
		style = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	}
	for i := 0; i < barW; i++ {
		r := '░'
		if i < filled {
			r = '█'
		}
		d.screen.SetContent(x+i, y, r, nil, style)
	}
	d.drawText(x+barW+1, y, 7, fmt.Sprintf("%3.0f%%", progress*100), tcell.StyleDefault)
}

// drawSparkline は時価総額の履歴を描き、次に使える行番号を返します
func (d *Dashboard) drawSparkline(s *session.Session, x, y, w int) int {
	d.drawText(x, y, w, fmt.Sprintf("時価総額の推移（直近%d件）", s.History.Capacity()),
		tcell.StyleDefault.Foreground(tcell.ColorGray))

	line := Sparkline(s.History.MarketCaps(), w)
	d.drawText(x, y+1, w, line, tcell.StyleDefault.Foreground(tcell.ColorAqua))
	return y + 2
}

func (d *Dashboard) drawLogs(s *session.Session, x, y, w, h int) {
	if h < 1 {
		return
	}
	d.drawText(x, y, w, "ログ", tcell.StyleDefault.Foreground(tcell.ColorGray))

	logs := s.Logs()
	// 末尾（新しい行）から表示できる分だけ
	avail := h - 1
	if len(logs) > avail {
		logs = logs[len(logs)-avail:]
	}
	for i, line := range logs {
		d.drawText(x, y+1+i, w, line, tcell.StyleDefault)
	}
}

func (d *Dashboard) drawFooter(w, h int) {
	hints := " [q]終了  [r]即時更新  [s]アラーム停止 "
	style := tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorGray)
	for x := 0; x < w; x++ {
		d.screen.SetContent(x, h-1, ' ', nil, style)
	}
	d.drawText(1, h-1, w-2, hints, style)
}

// drawText は文字列を1行描きます。全角文字のセル幅を考慮し、maxW を超えた分は捨てます
func (d *Dashboard) drawText(x, y, maxW int, text string, style tcell.Style) {
	cx := x
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if cx+rw > x+maxW {
			break
		}
		d.screen.SetContent(cx, y, r, nil, style)
		cx += rw
	}
}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline は数値列を幅 width 以内のブロック文字列に変換します。
// 空なら空文字、全要素が同じ値なら真ん中の高さで平らに描きます
func Sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	out := make([]rune, len(values))
	for i, v := range values {
		idx := len(sparkBlocks) / 2
		if max > min {
			idx = int((v - min) / (max - min) * float64(len(sparkBlocks)-1))
		}
		out[i] = sparkBlocks[idx]
	}
	return string(out)
}

func fmtUSD(v decimal.Decimal) string {
	f, _ := v.Float64()
	switch {
	case f >= 1_000_000_000:
		return fmt.Sprintf("$%.2fB", f/1_000_000_000)
	case f >= 1_000_000:
		return fmt.Sprintf("$%.2fM", f/1_000_000)
	case f >= 1_000:
		return fmt.Sprintf("$%.1fK", f/1_000)
	default:
		return fmt.Sprintf("$%.2f", f)
	}
}

func fmtChange(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

func changeStyle(pct float64) tcell.Style {
	if pct >= 0 {
		return tcell.StyleDefault.Foreground(tcell.ColorGreen)
	}
	return tcell.StyleDefault.Foreground(tcell.ColorRed)
}
