// Package badgerdb holds what the badger databases of the process share.
package badgerdb

import (
	"fmt"

	badger "github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"
)

// loggerAdapter adapts zap.Logger to badger.Logger interface
type loggerAdapter struct {
	logger *zap.Logger
}

var _ badger.Logger = (*loggerAdapter)(nil)

// NewLogger returns a badger logger writing to logger. Other badger
// databases of the process use it too.
func NewLogger(logger *zap.Logger) badger.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &loggerAdapter{logger: logger}
}

func (l *loggerAdapter) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *loggerAdapter) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *loggerAdapter) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *loggerAdapter) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
