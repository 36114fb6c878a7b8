package storage

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// gormWriter 把 GORM 的日誌轉寫到 zerolog
type gormWriter struct {
	logger *zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.logger.Warn().
		Str("source", "gorm").
		Msgf(strings.ReplaceAll(format, "\n", " "), args...)
}

// newGormLogger 查無資料屬於正常流程，不寫日誌
func newGormLogger(l *zerolog.Logger, level logger.LogLevel) logger.Interface {
	return logger.New(gormWriter{logger: l}, logger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
