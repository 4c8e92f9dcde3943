// logger/logger.go
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

var levelTags = map[LogLevel]string{
	DEBUG: "[DEBUG]",
	INFO:  "[INFO] ",
	WARN:  "[WARN] ",
	ERROR: "[ERROR]",
}

var levelColors = map[LogLevel]string{
	DEBUG: colorGray,
	INFO:  "",
	WARN:  colorYellow,
	ERROR: colorRed,
}

type sink struct {
	mu       sync.Mutex
	console  *os.File // colored unless color is off, nil disables
	file     *os.File // always plain
	color    bool
	minLevel LogLevel
}

var std = &sink{
	console:  os.Stdout,
	color:    true,
	minLevel: INFO,
}

// Init points the logger at a file in addition to (or instead of) the
// console. An empty filename keeps console-only logging.
func Init(filename string, console bool) error {
	std.mu.Lock()
	defer std.mu.Unlock()

	if std.file != nil {
		std.file.Close()
		std.file = nil
	}
	if filename != "" {
		f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		std.file = f
	}
	if console {
		std.console = os.Stdout
	} else {
		std.console = nil
	}
	if std.console == nil && std.file == nil {
		return fmt.Errorf("no output destination specified")
	}
	return nil
}

// SetLevel sets the minimum level; messages below it are dropped.
func SetLevel(level LogLevel) {
	std.mu.Lock()
	std.minLevel = level
	std.mu.Unlock()
}

// SetColor toggles ANSI colors on the console sink. The log file never
// receives escape codes either way.
func SetColor(enabled bool) {
	std.mu.Lock()
	std.color = enabled
	std.mu.Unlock()
}

// Close closes the log file if one is open.
func Close() {
	std.mu.Lock()
	defer std.mu.Unlock()
	if std.file != nil {
		std.file.Close()
		std.file = nil
	}
}

func (s *sink) log(level LogLevel, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if level < s.minLevel {
		return
	}
	msg = strings.TrimRight(msg, "\n")
	ts := time.Now().Format("2006/01/02 15:04:05")
	if s.console != nil {
		tag := levelTags[level]
		if s.color {
			if c := levelColors[level]; c != "" {
				tag = c + tag + colorReset
			}
		}
		fmt.Fprintf(s.console, "%s %s %s\n", tag, ts, msg)
	}
	if s.file != nil {
		fmt.Fprintf(s.file, "%s %s %s\n", levelTags[level], ts, msg)
	}
}

func Debug(v ...any) {
	std.log(DEBUG, fmt.Sprint(v...))
}

func Debugf(format string, v ...any) {
	std.log(DEBUG, fmt.Sprintf(format, v...))
}

func Info(v ...any) {
	std.log(INFO, fmt.Sprint(v...))
}

func Infof(format string, v ...any) {
	std.log(INFO, fmt.Sprintf(format, v...))
}

func Warn(v ...any) {
	std.log(WARN, fmt.Sprint(v...))
}

func Warnf(format string, v ...any) {
	std.log(WARN, fmt.Sprintf(format, v...))
}

func Error(v ...any) {
	std.log(ERROR, fmt.Sprint(v...))
}

func Errorf(format string, v ...any) {
	std.log(ERROR, fmt.Sprintf(format, v...))
}

// Fatal logs at ERROR and exits the program.
func Fatal(v ...any) {
	std.log(ERROR, fmt.Sprint(v...))
	os.Exit(1)
}

func Fatalf(format string, v ...any) {
	std.log(ERROR, fmt.Sprintf(format, v...))
	os.Exit(1)
}
