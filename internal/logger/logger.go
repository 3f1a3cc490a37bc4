// Package logger は zerolog.Logger の薄いラッパーと、リクエスト単位のロガーを
// コンテキスト経由で受け渡すためのヘルパーを提供します。
package logger

import (
	"context"
	"io"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger は zerolog.Logger を埋め込んだ型です。
type Logger struct {
	zerolog.Logger
}

// NewLogger は role フィールド付きの JSON ロガーを標準出力向けに作成します。
func NewLogger(role string, level string) *Logger {
	return newLogger(os.Stdout, role, level)
}

func newLogger(w io.Writer, role string, level string) *Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.DebugLevel
	}
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return runtime.FuncForPC(pc).Name()
	}
	zerolog.CallerFieldName = "func"

	logger := zerolog.New(w).Level(lvl).With().
		Str("role", role).
		Timestamp().
		Caller().
		Logger()

	return &Logger{logger}
}

// Nop は何も出力しないロガーを返します（テスト用）。
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// GetChildLogger は親のフィールドを引き継いだ子ロガーを返します。
func (l *Logger) GetChildLogger() *Logger {
	return &Logger{l.With().Logger()}
}

// FromContext は ctx に格納されたロガーを返します。
// 格納されていない場合は zerolog のデフォルトロガーが返るため nil にはなりません。
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}
