package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

var (
	mu       sync.Mutex
	debugOut io.Writer = os.Stdout
	errorOut io.Writer = os.Stderr
)

// DebugEnabled returns true if debug mode is enabled via UT_DEBUG environment variable
func DebugEnabled() bool {
	return os.Getenv("UT_DEBUG") != ""
}

// SetOutput redirects debug and error output. A nil writer leaves that stream unchanged.
// It returns a function restoring the previous writers.
func SetOutput(debug, errs io.Writer) (restore func()) {
	mu.Lock()
	defer mu.Unlock()
	prevDebug, prevErr := debugOut, errorOut
	if debug != nil {
		debugOut = debug
	}
	if errs != nil {
		errorOut = errs
	}
	return func() {
		mu.Lock()
		defer mu.Unlock()
		debugOut, errorOut = prevDebug, prevErr
	}
}

// Debugf prints a formatted debug message only if debug mode is enabled
func Debugf(format string, args ...interface{}) {
	if DebugEnabled() {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(debugOut, ensureNewline(format), args...)
	}
}

// Debugln prints a debug message followed by a newline only if debug mode is enabled
func Debugln(args ...interface{}) {
	if DebugEnabled() {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(debugOut, args...)
	}
}

// Errorf always prints a formatted error message to the error stream
func Errorf(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(errorOut, "error: "+ensureNewline(format), args...)
}

func ensureNewline(format string) string {
	if strings.HasSuffix(format, "\n") {
		return format
	}
	return format + "\n"
}
