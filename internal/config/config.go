// internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// Config はシステム全体の設定です。起動後は読み取り専用で、持ち主はエンジンだけです
type Config struct {
	Pair          string
	Chain         string
	Target        decimal.Decimal
	Interval      time.Duration
	AlarmFile     string
	AlarmDuration time.Duration
	HistorySize   int
	FetchTimeout  time.Duration
	APIURL        string // 空なら本物のDexScreenerを使う（モック用の差し替え口）
	LogFile       string
	LogLevel      string
}

// envSpec は環境変数からの読み込み用の中間形です（タグに従って自動でマッピングされます）
type envSpec struct {
	Pair          string  `envconfig:"MOONCAP_PAIR"`
	Chain         string  `envconfig:"MOONCAP_CHAIN" default:"solana"`
	Target        float64 `envconfig:"MOONCAP_TARGET" default:"100000"`
	Interval      int     `envconfig:"MOONCAP_INTERVAL" default:"180"`
	AlarmFile     string  `envconfig:"MOONCAP_ALARM"`
	AlarmDuration int     `envconfig:"MOONCAP_ALARM_DURATION" default:"300"`
	HistorySize   int     `envconfig:"MOONCAP_HISTORY_SIZE" default:"60"`
	FetchTimeout  int     `envconfig:"MOONCAP_FETCH_TIMEOUT" default:"15"`
	APIURL        string  `envconfig:"MOONCAP_API_URL"`
	LogFile       string  `envconfig:"MOONCAP_LOG_FILE" default:"logs/mooncap.log"`
	LogLevel      string  `envconfig:"MOONCAP_LOG_LEVEL" default:"info"`
}

// Load は環境変数から設定を自動でマッピングして返します。
// フラグでの上書きは呼び出し側（cmd）の仕事で、最後に必ず Validate を呼んでください
func Load() (*Config, error) {
	// .envファイルがあれば読み込み、OSの環境変数にセットする
	// ※ 本番環境など .env が存在しない場合もあるため、エラーは無視（_）します
	_ = godotenv.Load()

	var spec envSpec
	if err := envconfig.Process("", &spec); err != nil {
		return nil, err
	}

	return &Config{
		Pair:          spec.Pair,
		Chain:         spec.Chain,
		Target:        decimal.NewFromFloat(spec.Target),
		Interval:      time.Duration(spec.Interval) * time.Second,
		AlarmFile:     spec.AlarmFile,
		AlarmDuration: time.Duration(spec.AlarmDuration) * time.Second,
		HistorySize:   spec.HistorySize,
		FetchTimeout:  time.Duration(spec.FetchTimeout) * time.Second,
		APIURL:        spec.APIURL,
		LogFile:       spec.LogFile,
		LogLevel:      spec.LogLevel,
	}, nil
}

// StartupError は起動できない設定ミスを表します（回復不能。ループに入る前に終了します）
type StartupError struct {
	Reason string
}

func (e *StartupError) Error() string {
	return "設定エラー: " + e.Reason
}

// Validate は起動前の最終チェックです。ここを通った設定だけがエンジンに渡ります
func (c *Config) Validate() error {
	if c.Pair == "" {
		return &StartupError{Reason: "ペアアドレスが指定されていません（--pair または MOONCAP_PAIR）"}
	}
	if c.Chain == "" {
		return &StartupError{Reason: "チェーンが指定されていません"}
	}
	if c.Target.Sign() <= 0 {
		return &StartupError{Reason: fmt.Sprintf("目標時価総額は正の値にしてください: %s", c.Target)}
	}
	if c.Interval <= 0 {
		return &StartupError{Reason: "ポーリング間隔は正の値にしてください"}
	}
	if c.AlarmDuration <= 0 {
		return &StartupError{Reason: "アラーム時間は正の値にしてください"}
	}
	if c.HistorySize <= 0 {
		return &StartupError{Reason: "履歴サイズは正の値にしてください"}
	}
	if c.FetchTimeout <= 0 {
		return &StartupError{Reason: "フェッチタイムアウトは正の値にしてください"}
	}
	return nil
}
