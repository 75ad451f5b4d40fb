package monitoring

import "log"

// Logf is the package-level diagnostic logger used by the scene runner and
// the point store. It defaults to log.Printf but may be replaced by
// SetLogger so tests can capture or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Debugf logs through Logf only when debug output is enabled.
func Debugf(format string, v ...interface{}) {
	if debugEnabled {
		Logf("[debug] "+format, v...)
	}
}

var debugEnabled bool

// SetDebug toggles Debugf output.
func SetDebug(on bool) { debugEnabled = on }
