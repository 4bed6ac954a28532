// Package logging provides the leveled, component-tagged console logger used
// throughout scoutqueue. It mirrors the textual log format other teams at
// this shop have standardized on: a timestamp, a bracketed level, a
// bracketed component name, and the message.
package logging

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

// LogLevel is the severity of a log line.
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is the logging surface consumed by the rest of the module. It is
// defined as an interface so call sites (queue, store, runner) never
// depend on the concrete color/format implementation.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// ComponentLoggerConfig configures a ComponentLogger.
type ComponentLoggerConfig struct {
	ComponentName string
	Color         color.Attribute
	EnabledLevels []LogLevel
	// MinLevel, when EnabledLevels is empty, enables everything at or
	// above this level. Defaults to DEBUG (i.e. everything).
	MinLevel LogLevel
}

// ComponentLogger writes leveled, colorized, component-tagged lines to the
// standard library logger (so callers can still redirect output with
// log.SetOutput in tests).
type ComponentLogger struct {
	name    string
	color   *color.Color
	enabled map[LogLevel]bool
	mu      sync.Mutex
}

// NewComponentLogger builds a ComponentLogger from config. An empty
// EnabledLevels enables every level at or above MinLevel (DEBUG by
// default), matching the "verbose unless told otherwise" default other
// components in this codebase use.
func NewComponentLogger(cfg ComponentLoggerConfig) *ComponentLogger {
	enabled := make(map[LogLevel]bool, 4)
	if len(cfg.EnabledLevels) > 0 {
		for _, lvl := range cfg.EnabledLevels {
			enabled[lvl] = true
		}
	} else {
		for lvl := cfg.MinLevel; lvl <= ERROR; lvl++ {
			enabled[lvl] = true
		}
	}

	c := color.New(cfg.Color)
	c.EnableColor()

	return &ComponentLogger{
		name:    cfg.ComponentName,
		color:   c,
		enabled: enabled,
	}
}

func (l *ComponentLogger) log(level LogLevel, format string, args ...interface{}) {
	if !l.enabled[level] {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	line := fmt.Sprintf("%s [%s] [%s] %s",
		time.Now().Format("2006-01-02 15:04:05"), level, l.name, msg)
	log.Println(l.color.Sprint(line))
}

func (l *ComponentLogger) Debug(format string, args ...interface{}) { l.log(DEBUG, format, args...) }
func (l *ComponentLogger) Info(format string, args ...interface{})  { l.log(INFO, format, args...) }
func (l *ComponentLogger) Warn(format string, args ...interface{})  { l.log(WARN, format, args...) }
func (l *ComponentLogger) Error(format string, args ...interface{}) { l.log(ERROR, format, args...) }

// SetMinLevel adjusts the active level floor at runtime, used by the CLI
// to honor --log-level.
func (l *ComponentLogger) SetMinLevel(min LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for lvl := DEBUG; lvl <= ERROR; lvl++ {
		l.enabled[lvl] = lvl >= min
	}
}

// Well-known component loggers, analogous to the per-subsystem loggers
// other binaries in this repo expose (ReactLogger, ToolLogger, ...).
var (
	QueueLogger  = NewComponentLogger(ComponentLoggerConfig{ComponentName: "QUEUE", Color: color.FgCyan})
	RunnerLogger = NewComponentLogger(ComponentLoggerConfig{ComponentName: "RUNNER", Color: color.FgGreen})
	StoreLogger  = NewComponentLogger(ComponentLoggerConfig{ComponentName: "STORE", Color: color.FgYellow})
	TaskLogger   = NewComponentLogger(ComponentLoggerConfig{ComponentName: "TASK", Color: color.FgBlue})
)

// LoggerFactory resolves a ComponentLogger by name, falling back to a
// freshly-minted one for unrecognized components so callers never get nil.
type LoggerFactory struct{}

func (LoggerFactory) GetLogger(component string) *ComponentLogger {
	switch component {
	case "QUEUE":
		return QueueLogger
	case "RUNNER":
		return RunnerLogger
	case "STORE":
		return StoreLogger
	case "TASK":
		return TaskLogger
	default:
		return NewComponentLogger(ComponentLoggerConfig{ComponentName: component})
	}
}

// ApplyGlobalMinLevel sets the active floor on every well-known
// component logger, the way the CLI's --log-level flag takes effect
// across the whole process.
func ApplyGlobalMinLevel(min LogLevel) {
	QueueLogger.SetMinLevel(min)
	RunnerLogger.SetMinLevel(min)
	StoreLogger.SetMinLevel(min)
	TaskLogger.SetMinLevel(min)
}

// ParseLevel parses the --log-level flag value, defaulting to INFO for
// anything it doesn't recognize.
func ParseLevel(s string) LogLevel {
	switch s {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

func init() {
	log.SetOutput(os.Stderr)
	log.SetFlags(0)
}
