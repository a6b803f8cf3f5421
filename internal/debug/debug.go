// Package debug appends diagnostic records to log files under a run's log
// directory. Logging never fails a run: write errors are dropped.
package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Log appends an entry to logDir/logName. data, when non-nil, is written
// as indented JSON below the message.
func Log(logDir, logName, message string, data any) {
	_ = os.MkdirAll(logDir, 0o755)

	f, err := os.OpenFile(filepath.Join(logDir, logName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	ts := time.Now().Format("2006-01-02T15:04:05")
	fmt.Fprintf(f, "\n%s\n", strings.Repeat("=", 60))
	fmt.Fprintf(f, "[%s] %s\n", ts, message)

	if data != nil {
		b, err := json.MarshalIndent(data, "", "  ")
		if err == nil {
			fmt.Fprintf(f, "%s\n", b)
		}
	}
}

// Logger binds Log to one directory and file. A nil Logger discards.
type Logger struct {
	Dir  string
	Name string
}

func New(dir, name string) *Logger {
	return &Logger{Dir: dir, Name: name}
}

func (l *Logger) Log(message string, data any) {
	if l == nil {
		return
	}
	Log(l.Dir, l.Name, message, data)
}
