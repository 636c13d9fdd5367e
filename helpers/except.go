// Except.go: Contains functions to make handling panics less PITA

package helpers

import (
	"fmt"
	"runtime"

	"github.com/Seklfreak/starlight/cache"
	"github.com/getsentry/raven-go"
	"github.com/sirupsen/logrus"
)

// Recover recover()s, logs the panic and sends it to sentry.io
func Recover() {
	err := recover()
	if err != nil {
		ReportPanic(cache.GetLogger().WithField("module", "recover"), err, nil)
	}
}

// ReportPanic logs a recovered value with its stack and sends it to sentry.io
func ReportPanic(log *logrus.Entry, recovered interface{}, tags map[string]string) {
	buf := make([]byte, 1<<16)
	stackSize := runtime.Stack(buf, false)

	err, ok := recovered.(error)
	if !ok {
		err = fmt.Errorf("%#v", recovered)
	}

	log.WithField("stack", string(buf[0:stackSize])).Error("recovered from panic: ", err.Error())
	raven.CaptureError(err, tags)
}
