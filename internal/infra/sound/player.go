// internal/infra/sound/player.go
package sound

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"

	"mooncap/pkg/logger"
)

const sampleRate = 44100

var log = logger.Module("sound")

// Beeper は端末ベルを鳴らせるものの規格です（tcellのScreenがそのまま満たします）
type Beeper interface {
	Beep() error
}

// audioContext はプロセスにつき1つしか作れないため、パッケージで共有します
var (
	audioContext     *audio.Context
	audioContextOnce sync.Once
)

func sharedContext() *audio.Context {
	audioContextOnce.Do(func() {
		audioContext = audio.NewContext(sampleRate)
	})
	return audioContext
}

// Player はアラーム音の再生係です。alarm.Sounder を満たします。
// 音声ファイルが指定されていればループ再生し、無ければ（または読めなければ）
// 端末ベルを2秒おきに鳴らします。Play/Stop はどちらも非ブロッキングで冪等です
type Player struct {
	player *audio.Player // 音声ファイルを読めたときだけ非nil
	beeper Beeper

	mu       sync.Mutex
	bellStop chan struct{} // ベルループの停止用（鳴っていなければ nil）
}

// NewPlayer はアラーム音源を準備します。path が空なら最初から端末ベルを使います。
// 音声ファイルの読み込みに失敗してもエラーにはせず、ベルにフォールバックします
func NewPlayer(path string, beeper Beeper) *Player {
	p := &Player{beeper: beeper}

	if path == "" {
		return p
	}

	player, err := loadAudio(path)
	if err != nil {
		log.WithField("path", path).Warnf("音声ファイルを読めないため端末ベルで代用します: %v", err)
		return p
	}
	p.player = player
	return p
}

func loadAudio(path string) (*audio.Player, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var stream interface {
		Read([]byte) (int, error)
		Seek(int64, int) (int64, error)
		Length() int64
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		s, err := mp3.DecodeWithSampleRate(sampleRate, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("mp3デコードエラー: %w", err)
		}
		stream = s
	case ".wav":
		s, err := wav.DecodeWithSampleRate(sampleRate, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("wavデコードエラー: %w", err)
		}
		stream = s
	default:
		return nil, fmt.Errorf("未対応の音声形式です: %s", filepath.Ext(path))
	}

	loop := audio.NewInfiniteLoop(stream, stream.Length())
	player, err := sharedContext().NewPlayer(loop)
	if err != nil {
		return nil, fmt.Errorf("プレイヤー生成エラー: %w", err)
	}
	return player, nil
}

// Play は再生を開始します。すでに鳴っている場合は最初から鳴らし直します
func (p *Player) Play() {
	if p.player != nil {
		if p.player.IsPlaying() {
			p.player.Pause()
		}
		if err := p.player.Rewind(); err != nil {
			log.Warnf("巻き戻しに失敗しました: %v", err)
		}
		p.player.Play()
		return
	}

	// ベルの場合：既存のループを止めてから新しく始める
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bellStop != nil {
		close(p.bellStop)
	}
	stop := make(chan struct{})
	p.bellStop = stop
	go p.bellLoop(stop)
}

// Stop は再生を止めます。鳴っていないときは何もしません
func (p *Player) Stop() {
	if p.player != nil {
		p.player.Pause()
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bellStop != nil {
		close(p.bellStop)
		p.bellStop = nil
	}
}

// bellLoop は停止されるまで2秒おきに端末ベルを鳴らし続けます
func (p *Player) bellLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	if p.beeper != nil {
		_ = p.beeper.Beep()
	}
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if p.beeper != nil {
				_ = p.beeper.Beep()
			}
		}
	}
}
