// Package groutine starts named goroutines that show up in pprof profiles and
// never take the process down on a panic.
package groutine

import (
	"context"
	"runtime/debug"
	"runtime/pprof"

	"github.com/sirupsen/logrus"
)

type ctxKey string

const goroutineNameKey ctxKey = "goroutine_name"

// Go starts fn in a goroutine labelled with name.
// A panic inside fn is recovered and logged to logger with its stack.
// If parentCtx is nil, context.Background() is used; a nil logger falls back to logrus' standard logger.
func Go(parentCtx context.Context, name string, logger logrus.FieldLogger, fn func(ctx context.Context)) {
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	labels := pprof.Labels("goroutine_name", name)

	go pprof.Do(parentCtx, labels, func(ctx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithFields(logrus.Fields{
					"goroutine": name,
					"panic":     r,
					"stack":     string(debug.Stack()),
				}).Error("Recovered from goroutine panic")
			}
		}()

		ctx = context.WithValue(ctx, goroutineNameKey, name)
		fn(ctx)
	})
}

// GetName retrieves the goroutine name from the context.
func GetName(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(goroutineNameKey).(string); ok {
		return v
	}
	return ""
}
