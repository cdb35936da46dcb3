// Package logging is a leveled logging facade: a package-level Level enum
// with per-call enablement checks and Debuga/Infoa/Errora-style helpers,
// backed by go.uber.org/zap. Callers go through the package-level
// functions and never touch zap directly, so the backend can change
// without touching call sites.
package logging

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level int

const (
	NONE Level = iota
	FATAL
	SEVERE
	ERROR
	WARN
	INFO
	REQUEST
	DEBUG
	TRACE
)

var levelNames = [...]string{
	NONE: "NONE", FATAL: "FATAL", SEVERE: "SEVERE", ERROR: "ERROR",
	WARN: "WARN", INFO: "INFO", REQUEST: "REQUEST", DEBUG: "DEBUG", TRACE: "TRACE",
}

func (l Level) String() string {
	if int(l) < 0 || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

var levelByName = map[string]Level{
	"none": NONE, "fatal": FATAL, "severe": SEVERE, "error": ERROR,
	"warn": WARN, "info": INFO, "request": REQUEST, "debug": DEBUG, "trace": TRACE,
}

// ParseLevel parses a level name case-insensitively.
func ParseLevel(name string) (Level, bool) {
	l, ok := levelByName[strings.ToLower(name)]
	return l, ok
}

var (
	mu      sync.RWMutex
	zlogger *zap.Logger
	curLvl  Level = INFO
)

func init() {
	zlogger, _ = newProductionLogger()
}

func newProductionLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// SetLevel changes the package's current logging threshold; messages at a
// higher (less severe) level than curLvl are dropped before formatting.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	curLvl = l
}

func CurLevel() Level {
	mu.RLock()
	defer mu.RUnlock()
	return curLvl
}

func enabled(l Level) bool {
	return l <= CurLevel()
}

func log(l Level, f func() string) {
	if zlogger == nil || !enabled(l) {
		return
	}
	msg := f()
	switch l {
	case FATAL, SEVERE, ERROR:
		zlogger.Error(msg, zap.String("level", l.String()))
	case WARN:
		zlogger.Warn(msg)
	case INFO, REQUEST:
		zlogger.Info(msg)
	default:
		zlogger.Debug(msg)
	}
}

func Debuga(f func() string)   { log(DEBUG, f) }
func Tracea(f func() string)   { log(TRACE, f) }
func Infoa(f func() string)    { log(INFO, f) }
func Warna(f func() string)    { log(WARN, f) }
func Errora(f func() string)   { log(ERROR, f) }
func Severea(f func() string)  { log(SEVERE, f) }
func Fatala(f func() string)   { log(FATAL, f) }
func Requesta(f func() string) { log(REQUEST, f) }
