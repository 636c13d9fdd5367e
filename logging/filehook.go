package logging

import (
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// https://github.com/Sirupsen/logrus/issues/230#issuecomment-323387380

// LogrusFileHook writes every entry as a JSON line to a file
type LogrusFileHook struct {
	sync.Mutex
	file      *os.File
	levels    []logrus.Level
	formatter *logrus.JSONFormatter
}

// NewLogrusFileHook opens $file and fires on $level and everything more severe
func NewLogrusFileHook(file string, level logrus.Level) (*LogrusFileHook, error) {
	logFile, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	levels := make([]logrus.Level, 0)
	for _, l := range logrus.AllLevels {
		if l <= level {
			levels = append(levels, l)
		}
	}

	return &LogrusFileHook{
		file:      logFile,
		levels:    levels,
		formatter: &logrus.JSONFormatter{},
	}, nil
}

// Fire event
func (hook *LogrusFileHook) Fire(entry *logrus.Entry) error {
	line, err := hook.formatter.Format(entry)
	if err != nil {
		return err
	}

	hook.Lock()
	defer hook.Unlock()
	_, err = hook.file.Write(line)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to write file on filehook %v\n", err)
		return err
	}
	return nil
}

func (hook *LogrusFileHook) Levels() []logrus.Level {
	return hook.levels
}

func (hook *LogrusFileHook) Close() error {
	hook.Lock()
	defer hook.Unlock()
	return hook.file.Close()
}
