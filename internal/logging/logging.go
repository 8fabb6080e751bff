// Package logging routes the standard logger to a file.
//
// Until Init is called with a path, log output is discarded so library code
// can log freely without cluttering CLI output.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

var (
	mu      sync.Mutex
	logFile *os.File
)

func init() {
	log.SetOutput(io.Discard)
}

// Init opens logPath in append mode and sends log output there. An empty
// path discards log output.
func Init(logPath string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	if logPath == "" {
		log.SetOutput(io.Discard)
		return nil
	}
	if dir := filepath.Dir(logPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	logFile = file
	log.SetOutput(logFile)
	return nil
}

// Close flushes and closes the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	log.SetOutput(io.Discard)
	err := logFile.Close()
	logFile = nil
	return err
}

// LogEvent records an informational line.
func LogEvent(format string, args ...any) {
	log.Println(fmt.Sprintf(format, args...))
}

// LogWarn records a recoverable problem.
func LogWarn(format string, args ...any) {
	log.Println("WARN " + fmt.Sprintf(format, args...))
}
