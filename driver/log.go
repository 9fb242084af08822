// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package driver

import (
	"io"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var logger atomic.Pointer[logrus.Logger]

func init() {
	logger.Store(discardLogger())
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}

// SetLogger sets the logger used by driver implementations
// and by packages built on top of them.
// Passing nil restores the default, which discards
// everything.
// It is safe for concurrent use.
func SetLogger(l *logrus.Logger) {
	if l == nil {
		l = discardLogger()
	}
	logger.Store(l)
}

// Logger returns the current logger.
// It is never nil.
func Logger() *logrus.Logger { return logger.Load() }
