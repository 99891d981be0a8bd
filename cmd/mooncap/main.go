// cmd/mooncap/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"mooncap/internal/config"
	"mooncap/internal/domain/alarm"
	"mooncap/internal/engine"
	"mooncap/internal/infra/dexscreener"
	"mooncap/internal/infra/sound"
	"mooncap/internal/infra/terminal"
	"mooncap/internal/ui"
	"mooncap/pkg/logger"
)

var flags struct {
	pair          string
	chain         string
	target        float64
	interval      int
	alarmFile     string
	alarmDuration int
}

var rootCmd = &cobra.Command{
	Use:   "mooncap",
	Short: "🚀 DexScreenerでトークンの時価総額を監視する端末ダッシュボード",
	Long: `🚀 mooncap: 指定したペアの時価総額をポーリングし、スパークライン付きの
ダッシュボードを描画します。目標時価総額に到達するとアラームが鳴ります。

キー操作: [q]終了  [r]即時更新  [s]アラーム停止`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&flags.pair, "pair", "p", "", "監視するDEXペア（またはトークン）のアドレス")
	f.StringVarP(&flags.chain, "chain", "c", "solana", "ブロックチェーン（solana, ethereum, bsc など）")
	f.Float64VarP(&flags.target, "target", "t", 100000, "アラームを鳴らす目標時価総額（USD）")
	f.IntVarP(&flags.interval, "interval", "i", 180, "APIをチェックする間隔（秒）")
	f.StringVarP(&flags.alarmFile, "alarm", "a", "", "アラーム音のファイル（mp3/wav）。未指定なら端末ベル")
	f.IntVar(&flags.alarmDuration, "alarm-duration", 300, "目標到達後にアラームを鳴らし続ける時間（秒）")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// 1. 設定の組み立て（環境変数 → フラグの順で上書き）
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.LogFile, cfg.LogLevel); err != nil {
		return err
	}

	// 2. 端末をrawモードへ。以降どの経路で抜けても必ず元に戻します
	//    （エラーメッセージの表示は復旧後。rawモードのまま刺さない）
	screen, err := terminal.New()
	if err != nil {
		return err
	}
	defer screen.Restore()

	// 3. 部品の配線
	player := sound.NewPlayer(cfg.AlarmFile, screen)
	machine := alarm.NewMachine(cfg.Target, cfg.AlarmDuration, player)
	dashboard := ui.NewDashboard(screen, cfg.Target)
	fetcher := dexscreener.NewClient()
	if cfg.APIURL != "" {
		fetcher.BaseURL = cfg.APIURL // モックサーバーへの差し替え口
	}

	eng := engine.New(cfg, fetcher, machine, dashboard, screen.Events())

	// 4. OSの終了シグナル（Ctrl+C など）でも安全に畳めるようにする
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return eng.Run(ctx)
}

// buildConfig は環境変数の設定を読み、明示されたフラグで上書きして検証します
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if flags.pair != "" {
		cfg.Pair = flags.pair
	}
	if cmd.Flags().Changed("chain") {
		cfg.Chain = flags.chain
	}
	if cmd.Flags().Changed("target") {
		cfg.Target = decimal.NewFromFloat(flags.target)
	}
	if cmd.Flags().Changed("interval") {
		cfg.Interval = time.Duration(flags.interval) * time.Second
	}
	if cmd.Flags().Changed("alarm") {
		cfg.AlarmFile = flags.alarmFile
	}
	if cmd.Flags().Changed("alarm-duration") {
		cfg.AlarmDuration = time.Duration(flags.alarmDuration) * time.Second
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
