// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Setup configures logrus. format: text|json; level: debug|info|warn|error.
// If file is set, output goes to a rotating file instead of stderr.
func Setup(level, format, file string) error {
	var w io.Writer = os.Stderr
	if strings.TrimSpace(file) != "" {
		w = &lumberjack.Logger{Filename: file, MaxSize: 100, MaxBackups: 5, MaxAge: 28, Compress: true}
	}
	logrus.SetOutput(w)

	if strings.EqualFold(format, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
	return nil
}
