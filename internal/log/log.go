// Package log is a thin leveled wrapper over the standard library logger.
package log

import (
	"fmt"
	"log"
	"os"
)

var std = log.New(os.Stderr, "", log.LstdFlags)

func Info(args ...interface{}) {
	std.Output(2, "INFO "+fmt.Sprint(args...))
}

func Infof(format string, args ...interface{}) {
	std.Output(2, "INFO "+fmt.Sprintf(format, args...))
}

func Error(args ...interface{}) {
	std.Output(2, "ERROR "+fmt.Sprint(args...))
}

func Errorf(format string, args ...interface{}) {
	std.Output(2, "ERROR "+fmt.Sprintf(format, args...))
}

func Fatalf(format string, args ...interface{}) {
	std.Output(2, "FATAL "+fmt.Sprintf(format, args...))
	os.Exit(1)
}
