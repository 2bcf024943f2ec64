package utils

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

func NewLog(dir, name string) *logrus.Logger {
	if err := os.MkdirAll(dir, 0755); err != nil {
		panic(err)
	}
	fileName := fmt.Sprintf("%s%s.log", dir, name)
	file, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		panic(err)
	}
	log := logrus.New()
	log.SetOutput(file)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000000",
		DisableColors:   true,
	})
	return log
}

// SetLevel applies a textual level to every logger, keeping the current
// level when the text does not parse.
func SetLevel(level string, loggers ...*logrus.Logger) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return
	}
	for _, l := range loggers {
		l.SetLevel(lvl)
	}
}
