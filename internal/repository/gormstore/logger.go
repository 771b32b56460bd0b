package gormstore

import (
	"time"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"
)

// zerologWriter направляет вывод логгера GORM в zerolog
type zerologWriter struct {
	log   zerolog.Logger
	level zerolog.Level
}

func (w zerologWriter) Printf(format string, args ...interface{}) {
	w.log.WithLevel(w.level).Msgf(format, args...)
}

// newGormLogger в режиме debug трассирует все SQL-запросы, иначе только
// медленные запросы и ошибки. ErrRecordNotFound не логируется: это штатный исход.
func newGormLogger(log zerolog.Logger, debug bool) gormlogger.Interface {
	level := gormlogger.Warn
	writer := zerologWriter{log: log.With().Str("component", "gorm").Logger(), level: zerolog.WarnLevel}
	if debug {
		level = gormlogger.Info
		writer.level = zerolog.DebugLevel
	}

	return gormlogger.New(writer, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      true,
		Colorful:                  false,
	})
}
