package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New создает JSON логгер с указанным уровнем. Неизвестный уровень считаем info
func New(level string) *logrus.Logger {
	return NewWithOutput(level, os.Stdout)
}

func NewWithOutput(level string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	log.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return log
}

// Логгер, который ничего не пишет. Нужен в тестах
func Discard() *logrus.Logger {
	return NewWithOutput("panic", io.Discard)
}
