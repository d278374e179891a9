package log

import (
	"io"
	"log"
	"strings"
)

var (
	logger Logger
)

// Logger is satisfied by *zap.SugaredLogger.
type Logger interface {
	Infof(format string, v ...interface{})
	Debugf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

func SetLogger(l Logger) {
	logger = l
}

func Infof(format string, v ...interface{}) {
	if logger != nil {
		logger.Infof(format, v...)
	} else {
		log.Printf("[INFO] "+format, v...)
	}
}

func Debugf(format string, v ...interface{}) {
	if logger != nil {
		logger.Debugf(format, v...)
	} else {
		log.Printf("[DEBUG] "+format, v...)
	}
}

func Errorf(format string, v ...interface{}) {
	if logger != nil {
		logger.Errorf(format, v...)
	} else {
		log.Printf("[ERROR] "+format, v...)
	}
}

type debugWriter struct{}

func (debugWriter) Write(p []byte) (int, error) {
	Debugf("%s", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// NewDebugLogger returns a writer that forwards every write to Debugf. It is
// used to plug std loggers of third party packages into the global logger.
func NewDebugLogger() io.Writer {
	return debugWriter{}
}
