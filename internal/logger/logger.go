// Package logger provides the process-wide structured logger.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Init builds the logger once. "production" logs JSON; anything else uses the
// development console encoder.
func Init(env string) {
	once.Do(func() {
		var base *zap.Logger
		var err error

		if env == "production" {
			base, err = zap.NewProduction()
		} else {
			base, err = zap.NewDevelopment()
		}
		if err != nil {
			base = zap.NewNop()
		}

		sugar = base.Sugar()
	})
}

// Get returns the logger, initializing a development one if needed.
func Get() *zap.SugaredLogger {
	Init("development")
	return sugar
}

func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
