// internal/domain/alarm/alarm.go
package alarm

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sounder はアラーム音を鳴らす・止めるための規格です。
// どちらも非ブロッキングかつ冪等であること（鳴っていない時の Stop は何もしない）。
type Sounder interface {
	Play()
	Stop()
}

// State はアラームの状態です
type State int

const (
	StateIdle      State = iota // まだ目標未達（または下抜けで再武装済み）
	StateTriggered              // 目標到達、アラーム作動中
	StateSilenced               // 停止済み。再度下抜けするまで再発火しない
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTriggered:
		return "triggered"
	case StateSilenced:
		return "silenced"
	default:
		return "unknown"
	}
}

// Machine は目標到達アラームの状態機械です。
// 発火はエッジ検知（Idle→Triggered の遷移時に1回だけ Play）で、
// 目標を下抜けしてからの再到達でのみ再発火します。目標付近で値が揺れても連打しません。
type Machine struct {
	target    decimal.Decimal
	duration  time.Duration // Triggered のまま放置したときの自動停止までの時間
	sounder   Sounder
	state     State
	startedAt time.Time // Triggered に入った時刻
}

// NewMachine は目標値・自動停止時間・音の出口を受け取って状態機械を作ります
func NewMachine(target decimal.Decimal, duration time.Duration, sounder Sounder) *Machine {
	return &Machine{
		target:   target,
		duration: duration,
		sounder:  sounder,
		state:    StateIdle,
	}
}

// State は現在の状態を返します
func (m *Machine) State() State {
	return m.state
}

// StartedAt は直近で Triggered に入った時刻を返します（Idle のときはゼロ値）
func (m *Machine) StartedAt() time.Time {
	return m.startedAt
}

// OnSample は新しい時価総額サンプルを受け取り、必要なら状態を遷移させます。
// 戻り値は「この呼び出しでアラームが発火したか」です
func (m *Machine) OnSample(marketCap decimal.Decimal, now time.Time) bool {
	switch m.state {
	case StateIdle:
		if marketCap.Cmp(m.target) >= 0 {
			// 🔥 目標到達！ここでだけ音を鳴らす（エッジ検知）
			m.state = StateTriggered
			m.startedAt = now
			m.sounder.Play()
			return true
		}

	case StateTriggered:
		// 鳴っている間は上にいても下に落ちても何もしない。
		// 停止は Silence（手動）か OnTick（時間切れ）の仕事です

	case StateSilenced:
		if marketCap.Cmp(m.target) < 0 {
			// 下抜けを確認してはじめて再武装する
			m.state = StateIdle
		}
	}
	return false
}

// Silence は利用者の停止操作です。Triggered のときだけ意味を持ち、それ以外では何もしません
func (m *Machine) Silence(now time.Time) {
	if m.state != StateTriggered {
		return
	}
	m.state = StateSilenced
	m.sounder.Stop()
}

// Shutdown は終了時の後始末です。状態に関係なく音だけを確実に止めます
func (m *Machine) Shutdown() {
	m.sounder.Stop()
}

// OnTick は時間経過の確認です。Triggered が設定時間を超えていたら自動で停止します。
// 戻り値は「この呼び出しで自動停止したか」です
func (m *Machine) OnTick(now time.Time) bool {
	if m.state != StateTriggered {
		return false
	}
	if now.Sub(m.startedAt) >= m.duration {
		m.state = StateSilenced
		m.sounder.Stop()
		return true
	}
	return false
}
