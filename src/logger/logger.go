// Package logger is a thin printf-style facade over logrus shared by the
// service and command layers.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
}

// InitLog routes output to the given file in addition to stdout and applies
// the level named in ASSISTANT_LOG_LEVEL. An empty path keeps stdout only.
func InitLog(path string) error {
	if level, err := logrus.ParseLevel(strings.ToLower(os.Getenv("ASSISTANT_LOG_LEVEL"))); err == nil {
		log.SetLevel(level)
	}
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	log.SetOutput(io.MultiWriter(os.Stdout, f))
	return nil
}

// SetOutput redirects all log output. Tests use this to silence the logger.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

func Debug(format string, args ...any) { log.Debugf(format, args...) }
func Info(format string, args ...any)  { log.Infof(format, args...) }
func Warn(format string, args ...any)  { log.Warnf(format, args...) }
func Error(format string, args ...any) { log.Errorf(format, args...) }

// WithFields returns a structured entry for call sites that want key/value
// context instead of printf interpolation.
func WithFields(fields map[string]any) *logrus.Entry {
	return log.WithFields(logrus.Fields(fields))
}
