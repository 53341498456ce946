// logger/logger.go
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
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

var levelNames = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

var levelColors = map[LogLevel]string{
	DEBUG: colorGray,
	INFO:  colorReset,
	WARN:  colorYellow,
	ERROR: colorRed,
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel maps a level name (case-insensitive) to a LogLevel.
// "warning" is accepted as an alias of WARN.
func ParseLevel(name string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return DEBUG, nil
	case "info":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	}
	return DEBUG, fmt.Errorf("unknown log level %q", name)
}

type Logger struct {
	console  map[LogLevel]*log.Logger
	plain    map[LogLevel]*log.Logger
	file     *os.File
	minLevel LogLevel
}

var (
	defaultLogger *Logger
	once          sync.Once
	mu            sync.RWMutex
)

// ensureInitialized creates a console-only debug logger if Init was never called
func ensureInitialized() {
	once.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		if defaultLogger == nil {
			defaultLogger = newLogger(os.Stdout, nil, DEBUG)
		}
	})
}

func newLogger(console, plain io.Writer, level LogLevel) *Logger {
	flags := log.Ldate | log.Ltime | log.Lshortfile
	l := &Logger{minLevel: level}

	if console != nil {
		l.console = make(map[LogLevel]*log.Logger, len(levelNames))
		for lvl, name := range levelNames {
			prefix := fmt.Sprintf("%s[%s]%s ", levelColors[lvl], name, colorReset)
			l.console[lvl] = log.New(console, prefix, flags)
		}
	}

	if plain != nil {
		l.plain = make(map[LogLevel]*log.Logger, len(levelNames))
		for lvl, name := range levelNames {
			l.plain[lvl] = log.New(plain, fmt.Sprintf("[%-5s] ", name), flags|log.Lmsgprefix)
		}
	}
	return l
}

// Init initializes the logger with optional file and console output
// If filename is empty, logs only to console
// If console is false, logs only to file
func Init(filename string, console bool) error {
	return InitWithLevel(filename, console, DEBUG)
}

// InitWithLevel is Init with an explicit minimum level
func InitWithLevel(filename string, console bool, level LogLevel) error {
	var consoleOut io.Writer
	if console {
		consoleOut = os.Stdout
	}
	return initOutputs(filename, consoleOut, level)
}

func initOutputs(filename string, consoleOut io.Writer, level LogLevel) error {
	var file *os.File
	var fileOut io.Writer
	if filename != "" {
		f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		file, fileOut = f, f
	}

	if consoleOut == nil && fileOut == nil {
		return fmt.Errorf("no output destination specified")
	}

	ensureInitialized()
	mu.Lock()
	defer mu.Unlock()

	if defaultLogger != nil && defaultLogger.file != nil {
		defaultLogger.file.Close()
	}
	defaultLogger = newLogger(consoleOut, fileOut, level)
	defaultLogger.file = file
	return nil
}

// SetLevel sets the minimum log level (DEBUG, INFO, WARN, ERROR)
// Messages below this level will not be logged
func SetLevel(level LogLevel) {
	ensureInitialized()
	mu.Lock()
	defer mu.Unlock()
	defaultLogger.minLevel = level
}

// GetLevel returns the current minimum log level
func GetLevel() LogLevel {
	ensureInitialized()
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger.minLevel
}

// Close closes the log file if one is open
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if defaultLogger != nil && defaultLogger.file != nil {
		defaultLogger.file.Close()
		defaultLogger.file = nil
		defaultLogger.plain = nil
	}
}

func (l *Logger) output(level LogLevel, msg string) {
	if level < l.minLevel {
		return
	}
	// depth 4: Output <- output <- emit <- Infof <- caller
	if lg := l.console[level]; lg != nil {
		lg.Output(4, msg)
	}
	if lg := l.plain[level]; lg != nil {
		lg.Output(4, msg)
	}
}

func emit(level LogLevel, msg string) {
	ensureInitialized()
	mu.RLock()
	defer mu.RUnlock()
	defaultLogger.output(level, msg)
}

// Debug logs a debug message
func Debug(v ...interface{}) { emit(DEBUG, fmt.Sprint(v...)) }

// Debugf logs a formatted debug message
func Debugf(format string, v ...interface{}) { emit(DEBUG, fmt.Sprintf(format, v...)) }

// Info logs an info message
func Info(v ...interface{}) { emit(INFO, fmt.Sprint(v...)) }

// Infof logs a formatted info message
func Infof(format string, v ...interface{}) { emit(INFO, fmt.Sprintf(format, v...)) }

// Warn logs a warning message
func Warn(v ...interface{}) { emit(WARN, fmt.Sprint(v...)) }

// Warnf logs a formatted warning message
func Warnf(format string, v ...interface{}) { emit(WARN, fmt.Sprintf(format, v...)) }

// Error logs an error message
func Error(v ...interface{}) { emit(ERROR, fmt.Sprint(v...)) }

// Errorf logs a formatted error message
func Errorf(format string, v ...interface{}) { emit(ERROR, fmt.Sprintf(format, v...)) }

// Fatal logs an error message and exits the program
func Fatal(v ...interface{}) {
	emit(ERROR, fmt.Sprint(v...))
	os.Exit(1)
}

// Fatalf logs a formatted error message and exits the program
func Fatalf(format string, v ...interface{}) {
	emit(ERROR, fmt.Sprintf(format, v...))
	os.Exit(1)
}
