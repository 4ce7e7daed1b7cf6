// Package debug provides conditional diagnostics for aidscope.
//
// Debug logging is enabled by setting AIDSCOPE_DEBUG:
//
//	AIDSCOPE_DEBUG=1 aidscope programs --sector sector-4
//
// Output goes to stderr, or to the file named by AIDSCOPE_DEBUG_FILE (useful
// while the TUI owns the terminal). When disabled every helper is a no-op and
// Logger returns a no-op *zap.Logger.
//
//	func load() {
//	    defer debug.Trace("load")()
//	    debug.Log("fetched %d programs", n)
//	}
package debug

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.RWMutex
	enabled bool
	logger  = zap.NewNop()
	sugar   = logger.Sugar()
)

func init() {
	if os.Getenv("AIDSCOPE_DEBUG") != "" {
		SetEnabled(true)
	}
}

func build() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000000")
	cfg.DisableStacktrace = true
	if path := os.Getenv("AIDSCOPE_DEBUG_FILE"); path != "" {
		cfg.OutputPaths = []string{path}
		cfg.ErrorOutputPaths = []string{path}
	} else {
		cfg.OutputPaths = []string{"stderr"}
	}
	l, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: debug logger: %v\n", err)
		return zap.NewNop()
	}
	return l.Named("aidscope")
}

// Enabled reports whether debug logging is on.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// SetEnabled switches debug logging on or off.
func SetEnabled(e bool) {
	mu.Lock()
	defer mu.Unlock()
	if e == enabled {
		return
	}
	enabled = e
	if e {
		logger = build()
	} else {
		_ = logger.Sync()
		logger = zap.NewNop()
	}
	sugar = logger.Sugar()
}

// SetLogger installs l as the debug logger and enables logging. Tests use it
// with zaptest/observer cores.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	enabled = l != nil
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
	sugar = l.Sugar()
}

// Logger returns the structured logger. It is a no-op logger when disabled.
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Named returns a child logger for one component.
func Named(name string) *zap.Logger {
	return Logger().Named(name)
}

// Sync flushes buffered output.
func Sync() {
	_ = Logger().Sync()
}

func sugared() (*zap.SugaredLogger, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return sugar, enabled
}

// Log writes a printf-style debug message.
func Log(format string, args ...any) {
	if s, on := sugared(); on {
		s.Debugf(format, args...)
	}
}

// LogTiming logs how long name took.
func LogTiming(name string, d time.Duration) {
	if !Enabled() {
		return
	}
	Logger().Debug("timing", zap.String("op", name), zap.Duration("took", d))
}

// LogIf logs only when cond holds.
func LogIf(cond bool, format string, args ...any) {
	if cond {
		Log(format, args...)
	}
}

// LogEnterExit logs entry now and exit with elapsed time when the returned
// func runs:
//
//	defer debug.LogEnterExit("compose")()
func LogEnterExit(name string) func() {
	if !Enabled() {
		return func() {}
	}
	Log("-> %s", name)
	start := time.Now()
	return func() {
		Log("<- %s (%v)", name, time.Since(start))
	}
}

// Trace is an alias for LogEnterExit.
var Trace = LogEnterExit

// Dump logs a value with its type.
func Dump(name string, v any) {
	if !Enabled() {
		return
	}
	Logger().Debug("dump", zap.String("name", name), zap.String("type", fmt.Sprintf("%T", v)), zap.Any("value", v))
}

// Section logs a header line to group related output.
func Section(name string) {
	Log("=== %s ===", name)
}
