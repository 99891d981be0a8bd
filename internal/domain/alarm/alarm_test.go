package alarm

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// fakeSounder は Play/Stop の呼び出し回数だけを記録します
type fakeSounder struct {
	plays int
	stops int
}

func (f *fakeSounder) Play() { f.plays++ }
func (f *fakeSounder) Stop() { f.stops++ }

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func at(sec int) time.Time { return t0.Add(time.Duration(sec) * time.Second) }

func TestMachine_エッジ検知で1回だけ発火(t *testing.T) {
	s := &fakeSounder{}
	m := NewMachine(d(100000), 5*time.Minute, s)

	// 下 → 上への遷移は1回だけ。その後どれだけ上に居続けても鳴らさない
	samples := []int64{80000, 95000, 101000, 105000, 110000}
	for i, mc := range samples {
		m.OnSample(d(mc), at(i))
	}

	if s.plays != 1 {
		t.Errorf("Play の呼び出し回数 = %d, want 1", s.plays)
	}
	if m.State() != StateTriggered {
		t.Errorf("State() = %v, want Triggered", m.State())
	}
}

func TestMachine_下抜けで再武装して再発火(t *testing.T) {
	s := &fakeSounder{}
	m := NewMachine(d(100000), 5*time.Minute, s)

	m.OnSample(d(80000), at(0))
	m.OnSample(d(101000), at(1)) // 1回目の発火
	m.Silence(at(2))
	m.OnSample(d(90000), at(3))  // 下抜け → 再武装
	m.OnSample(d(102000), at(4)) // 2回目の発火

	if s.plays != 2 {
		t.Errorf("Play の呼び出し回数 = %d, want 2", s.plays)
	}
	if s.stops != 1 {
		t.Errorf("Stop の呼び出し回数 = %d, want 1", s.stops)
	}
}

func TestMachine_停止後に上に居続けても再発火しない(t *testing.T) {
	s := &fakeSounder{}
	m := NewMachine(d(100000), 5*time.Minute, s)

	// 一度も目標を下抜けしないまま上で揺れるケース
	m.OnSample(d(80000), at(0))
	m.OnSample(d(95000), at(1))
	m.OnSample(d(101000), at(2)) // 発火（エピソード1）
	m.Silence(at(3))
	m.OnSample(d(100500), at(4)) // まだ目標以上 → Silenced のまま
	m.OnSample(d(102000), at(5)) // 下抜けしていないので発火しない

	if s.plays != 1 {
		t.Errorf("Play の呼び出し回数 = %d, want 1", s.plays)
	}
	if m.State() != StateSilenced {
		t.Errorf("State() = %v, want Silenced", m.State())
	}
}

func TestMachine_時間切れで自動停止(t *testing.T) {
	s := &fakeSounder{}
	m := NewMachine(d(100000), 5*time.Minute, s)

	m.OnSample(d(101000), at(0))

	// 設定時間の手前では止まらない
	if m.OnTick(at(0).Add(4 * time.Minute)) {
		t.Error("設定時間前に自動停止しました")
	}
	// ちょうど設定時間で停止する
	if !m.OnTick(at(0).Add(5 * time.Minute)) {
		t.Error("設定時間を超えても自動停止しませんでした")
	}

	if m.State() != StateSilenced {
		t.Errorf("State() = %v, want Silenced", m.State())
	}
	if s.stops != 1 {
		t.Errorf("Stop の呼び出し回数 = %d, want 1", s.stops)
	}
}

func TestMachine_Idle中のSilenceは何もしない(t *testing.T) {
	s := &fakeSounder{}
	m := NewMachine(d(100000), 5*time.Minute, s)

	m.Silence(at(0))

	if m.State() != StateIdle {
		t.Errorf("State() = %v, want Idle", m.State())
	}
	if s.stops != 0 {
		t.Errorf("Stop の呼び出し回数 = %d, want 0", s.stops)
	}
}

// 目標100000に対して [80000, 95000, 101000, 99000, 102000] を流し、
// 3件目の後に停止操作をするシナリオ。4件目(99000)で下抜けしているため
// 再武装が成立し、5件目(102000)で2回目の発火となる
func TestMachine_下抜けを挟むシナリオ(t *testing.T) {
	s := &fakeSounder{}
	m := NewMachine(d(100000), 5*time.Minute, s)

	m.OnSample(d(80000), at(0))
	m.OnSample(d(95000), at(1))
	if fired := m.OnSample(d(101000), at(2)); !fired {
		t.Fatal("3件目で発火するはず")
	}
	m.Silence(at(3))
	if fired := m.OnSample(d(99000), at(4)); fired {
		t.Fatal("下抜けサンプルで発火してはいけない")
	}
	if fired := m.OnSample(d(102000), at(5)); !fired {
		t.Fatal("下抜け後の再到達で発火するはず")
	}

	if s.plays != 2 {
		t.Errorf("Play の呼び出し回数 = %d, want 2", s.plays)
	}
}
