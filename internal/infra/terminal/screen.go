// internal/infra/terminal/screen.go
package terminal

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// EventKind はキー入力やリサイズを、エンジンが扱う操作の種類に正規化したものです
type EventKind int

const (
	EventQuit    EventKind = iota // q / Esc / Ctrl+C
	EventRefresh                  // r （即時フェッチ）
	EventSilence                  // s （アラーム停止）
	EventResize                   // 端末サイズ変更（再描画が必要）
)

// Event はエンジンのメインループに届く端末イベント1件です
type Event struct {
	Kind EventKind
}

// Screen は tcell の画面を包み、rawモードの出入りとイベントチャネル化を担います
type Screen struct {
	tcell.Screen
	stop chan struct{}
}

// New は端末をrawモードに切り替えて画面を初期化します。
// 失敗した場合、端末の状態は変更されません
func New() (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("画面の生成に失敗しました: %w", err)
	}
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("画面の初期化に失敗しました: %w", err)
	}
	s.SetStyle(tcell.StyleDefault)
	s.HideCursor()
	s.Clear()

	return &Screen{Screen: s, stop: make(chan struct{})}, nil
}

// Events はキー入力とリサイズを正規化して流すチャネルを返します。
// 興味のないキーはここで捨てるので、エンジンには意味のある操作だけが届きます
func (s *Screen) Events() <-chan Event {
	raw := make(chan tcell.Event, 32)
	out := make(chan Event, 8)
	go s.ChannelEvents(raw, s.stop)

	go func() {
		defer close(out)
		for ev := range raw {
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if kind, ok := translateKey(ev); ok {
					out <- Event{Kind: kind}
				}
			case *tcell.EventResize:
				s.Sync()
				out <- Event{Kind: EventResize}
			}
		}
	}()

	return out
}

func translateKey(ev *tcell.EventKey) (EventKind, bool) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return EventQuit, true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return EventQuit, true
		case 'r', 'R':
			return EventRefresh, true
		case 's', 'S':
			return EventSilence, true
		}
	}
	return 0, false
}

// Restore は端末を元のモードに戻します。複数回呼んでも安全です
func (s *Screen) Restore() {
	select {
	case <-s.stop:
		return // すでに閉じている
	default:
		close(s.stop)
	}
	s.Fini()
}
