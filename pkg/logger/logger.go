// pkg/logger/logger.go
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// TUI起動中は標準出力が画面描画に占有されるため、ログはすべてファイルへ書き出します

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	// Init 前に stderr へ書くと画面が崩れるため、初期状態では捨てる
	l.SetOutput(io.Discard)
	return l
}

// Init はログ出力先ファイルを開き、全体のロガーをセットアップします。
// TUIが画面を占有する前（main の最初期）に一度だけ呼んでください。
func Init(path string, level string) error {
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}
	log.SetOutput(file)

	switch level {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	return nil
}

// Module は機能ごとのエントリ（module フィールド付き）を返します
func Module(name string) *logrus.Entry {
	return log.WithField("module", name)
}

// SetOutput はテスト用にログの出力先を差し替えます
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}
