// Package logging provides categorised loggers for the ERP subsystems.
//
// Each category is a named child of one zap logger. Categories can be
// switched off individually from config; a disabled category (or a process
// that never called Initialize) gets a logger whose methods do nothing.
package logging

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // Boot/initialization, wiring
	CategoryRouting Category = "routing" // Classification and dispatch decisions
	CategoryAgents  Category = "agents"  // Domain agent activity
	CategoryStore   Category = "store"   // Query execution, schema, seed
	CategoryReports Category = "reports" // Analytics report builds
	CategoryAPI     Category = "api"     // LLM API calls
	CategoryServer  Category = "server"  // HTTP API
	CategoryEvents  Category = "events"  // Domain event publishing
)

// Categories returns every known category.
func Categories() []Category {
	return []Category{
		CategoryBoot, CategoryRouting, CategoryAgents, CategoryStore,
		CategoryReports, CategoryAPI, CategoryServer, CategoryEvents,
	}
}

// Logger is a category logger with printf-style methods.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu       sync.RWMutex
	base     *zap.Logger
	disabled map[Category]bool
	loggers  = make(map[Category]*Logger)
)

// New builds a zap logger for the given level and format ("json" or "console").
func New(level, format string) (*zap.Logger, error) {
	var cfg zap.Config
	if strings.EqualFold(format, "json") {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return l, nil
}

// Initialize installs the base logger and the per-category toggles.
// A nil base turns every category into a no-op.
func Initialize(l *zap.Logger, categories map[string]bool) {
	mu.Lock()
	defer mu.Unlock()

	base = l
	disabled = make(map[Category]bool)
	for name, on := range categories {
		if !on {
			disabled[Category(name)] = true
		}
	}
	loggers = make(map[Category]*Logger)
}

// IsCategoryEnabled reports whether a category produces output.
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return base != nil && !disabled[category]
}

// Get returns (or creates) a logger for the given category.
func Get(category Category) *Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()

	if l, ok := loggers[category]; ok {
		return l
	}

	l := &Logger{category: category}
	if base != nil && !disabled[category] {
		l.sugar = base.Named(string(category)).Sugar()
	}
	loggers[category] = l
	return l
}

// Sync flushes the base logger.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if base != nil {
		_ = base.Sync()
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Debugf(format, args...)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Infof(format, args...)
}

// Warn logs a warning.
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Warnf(format, args...)
}

// Error logs an error.
func (l *Logger) Error(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Errorf(format, args...)
}

// With returns a child logger that attaches the given key/value pairs to every entry.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	if l.sugar == nil {
		return l
	}
	return &Logger{category: l.category, sugar: l.sugar.With(keysAndValues...)}
}

// StructuredLog logs msg at level with fields attached.
func (l *Logger) StructuredLog(level string, msg string, fields map[string]interface{}) {
	if l.sugar == nil {
		return
	}
	kv := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	switch level {
	case "debug":
		l.sugar.Debugw(msg, kv...)
	case "warn":
		l.sugar.Warnw(msg, kv...)
	case "error":
		l.sugar.Errorw(msg, kv...)
	default:
		l.sugar.Infow(msg, kv...)
	}
}

// =============================================================================
// CONVENIENCE FUNCTIONS
// =============================================================================

func Boot(format string, args ...interface{})      { Get(CategoryBoot).Info(format, args...) }
func BootDebug(format string, args ...interface{}) { Get(CategoryBoot).Debug(format, args...) }
func BootWarn(format string, args ...interface{})  { Get(CategoryBoot).Warn(format, args...) }
func BootError(format string, args ...interface{}) { Get(CategoryBoot).Error(format, args...) }

func Routing(format string, args ...interface{})      { Get(CategoryRouting).Info(format, args...) }
func RoutingDebug(format string, args ...interface{}) { Get(CategoryRouting).Debug(format, args...) }
func RoutingWarn(format string, args ...interface{})  { Get(CategoryRouting).Warn(format, args...) }
func RoutingError(format string, args ...interface{}) { Get(CategoryRouting).Error(format, args...) }

func Agents(format string, args ...interface{})      { Get(CategoryAgents).Info(format, args...) }
func AgentsDebug(format string, args ...interface{}) { Get(CategoryAgents).Debug(format, args...) }
func AgentsWarn(format string, args ...interface{})  { Get(CategoryAgents).Warn(format, args...) }
func AgentsError(format string, args ...interface{}) { Get(CategoryAgents).Error(format, args...) }

func Store(format string, args ...interface{})      { Get(CategoryStore).Info(format, args...) }
func StoreDebug(format string, args ...interface{}) { Get(CategoryStore).Debug(format, args...) }
func StoreWarn(format string, args ...interface{})  { Get(CategoryStore).Warn(format, args...) }
func StoreError(format string, args ...interface{}) { Get(CategoryStore).Error(format, args...) }

func Reports(format string, args ...interface{})      { Get(CategoryReports).Info(format, args...) }
func ReportsDebug(format string, args ...interface{}) { Get(CategoryReports).Debug(format, args...) }
func ReportsWarn(format string, args ...interface{})  { Get(CategoryReports).Warn(format, args...) }
func ReportsError(format string, args ...interface{}) { Get(CategoryReports).Error(format, args...) }

func API(format string, args ...interface{})      { Get(CategoryAPI).Info(format, args...) }
func APIDebug(format string, args ...interface{}) { Get(CategoryAPI).Debug(format, args...) }
func APIWarn(format string, args ...interface{})  { Get(CategoryAPI).Warn(format, args...) }
func APIError(format string, args ...interface{}) { Get(CategoryAPI).Error(format, args...) }

func Server(format string, args ...interface{})      { Get(CategoryServer).Info(format, args...) }
func ServerDebug(format string, args ...interface{}) { Get(CategoryServer).Debug(format, args...) }
func ServerWarn(format string, args ...interface{})  { Get(CategoryServer).Warn(format, args...) }
func ServerError(format string, args ...interface{}) { Get(CategoryServer).Error(format, args...) }

func Events(format string, args ...interface{})      { Get(CategoryEvents).Info(format, args...) }
func EventsDebug(format string, args ...interface{}) { Get(CategoryEvents).Debug(format, args...) }
func EventsWarn(format string, args ...interface{})  { Get(CategoryEvents).Warn(format, args...) }
func EventsError(format string, args ...interface{}) { Get(CategoryEvents).Error(format, args...) }

// =============================================================================
// TIMING
// =============================================================================

// Timer measures one operation and logs its duration on Stop.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithInfo ends the timer and logs at info level
func (t *Timer) StopWithInfo() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Info("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs a warning if the duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
