package logger

import "github.com/robfig/cron/v3"

// Cron adapts the package logger to cron.Logger. Routine scheduling chatter
// goes to debug.
func Cron() cron.Logger { return cronLogger{} }

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	sugar.Debugw("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	sugar.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
