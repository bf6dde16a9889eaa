package logger

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

type stringer interface {
	String() string
}

type logPair struct {
	logFn func(...any)
	obj   string
	msg   string
}

const (
	logSize = 1000
	objSize = 24
)

var (
	logCh   = make(chan logPair, logSize)
	started atomic.Bool
)

func objToString(obj any) (objStr string) {
	if obj == nil {
		objStr = "NIL"
	} else if stringerObj, ok := obj.(stringer); ok {
		objStr = stringerObj.String()
	} else if objStr, ok = obj.(string); ok {
	} else {
		objStr = reflect.TypeOf(obj).Name()
	}
	if len(objStr) > objSize {
		objStr = objStr[:objSize]
	}
	return
}

func format(p logPair) string {
	return fmt.Sprintf("|%*s|%s", objSize, p.obj, p.msg)
}

// Init sets the level, installs the text formatter and starts the
// asynchronous writer. Lines logged before Init are written synchronously.
func Init(lvl logrus.Level) {
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		PadLevelText:    true,
		TimestampFormat: "2006/01/02 15:04:05",
	})

	if !started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		for p := range logCh {
			p.logFn(format(p))
		}
	}()
}

func send(lvl logrus.Level, logFn func(...any), object any, msg string) {
	if logrus.GetLevel() < lvl {
		return
	}
	p := logPair{logFn: logFn, obj: objToString(object), msg: msg}
	if !started.Load() {
		logFn(format(p))
		return
	}
	logCh <- p
}

func Debug(object any, message string) {
	send(logrus.DebugLevel, logrus.Debug, object, message)
}

func Debugf(object any, message string, args ...any) {
	if logrus.GetLevel() < logrus.DebugLevel {
		return
	}
	send(logrus.DebugLevel, logrus.Debug, object, fmt.Sprintf(message, args...))
}

func Info(object any, message string) {
	send(logrus.InfoLevel, logrus.Info, object, message)
}

func Infof(object any, message string, args ...any) {
	send(logrus.InfoLevel, logrus.Info, object, fmt.Sprintf(message, args...))
}

func Warning(object any, message string) {
	send(logrus.WarnLevel, logrus.Warning, object, message)
}

func Warningf(object any, message string, args ...any) {
	send(logrus.WarnLevel, logrus.Warning, object, fmt.Sprintf(message, args...))
}

func Error(object any, message string) {
	send(logrus.ErrorLevel, logrus.Error, object, message)
}

func Errorf(object any, message string, args ...any) {
	send(logrus.ErrorLevel, logrus.Error, object, fmt.Sprintf(message, args...))
}
