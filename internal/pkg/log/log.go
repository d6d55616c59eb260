package log

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

type Fields = logrus.Fields

var logger = logrus.New()

// FromString converts a textual level to a logrus level.
// Unknown values fall back to info.
func FromString(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return logrus.TraceLevel
	case DebugLevel:
		return logrus.DebugLevel
	case WarnLevel, "warning":
		return logrus.WarnLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

func SetLogLevel(level logrus.Level) {
	logger.SetLevel(level)
}

func SetLogFormatter(formatter logrus.Formatter) {
	logger.SetFormatter(formatter)
}

func SetOutput(out io.Writer) {
	logger.SetOutput(out)
}

func IsDebug() bool {
	return logger.IsLevelEnabled(logrus.DebugLevel)
}

func Debug(args ...interface{}) {
	logger.Debug(args...)
}

func Info(args ...interface{}) {
	logger.Info(args...)
}

func Warn(args ...interface{}) {
	logger.Warn(args...)
}

func Error(args ...interface{}) {
	logger.Error(args...)
}

func DebugWithFields(msg string, fields Fields) {
	logger.WithFields(fields).Debug(msg)
}

func InfoWithFields(msg string, fields Fields) {
	logger.WithFields(fields).Info(msg)
}

func WarnWithFields(msg string, fields Fields) {
	logger.WithFields(fields).Warn(msg)
}

func ErrorWithFields(msg string, fields Fields) {
	logger.WithFields(fields).Error(msg)
}
