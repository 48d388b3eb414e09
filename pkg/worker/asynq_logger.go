package worker

import (
	"fmt"

	"github.com/feichai0017/document-analyzer/pkg/logger"
)

// asynqLogger 把 asynq 内部日志转到服务日志
type asynqLogger struct {
	l logger.Logger
}

func newAsynqLogger(l logger.Logger) *asynqLogger {
	return &asynqLogger{l: l.Named("asynq")}
}

func (a *asynqLogger) Debug(args ...interface{}) { a.l.Debug(fmt.Sprint(args...)) }
func (a *asynqLogger) Info(args ...interface{})  { a.l.Info(fmt.Sprint(args...)) }
func (a *asynqLogger) Warn(args ...interface{})  { a.l.Warn(fmt.Sprint(args...)) }
func (a *asynqLogger) Error(args ...interface{}) { a.l.Error(fmt.Sprint(args...)) }
func (a *asynqLogger) Fatal(args ...interface{}) { a.l.Fatal(fmt.Sprint(args...)) }
