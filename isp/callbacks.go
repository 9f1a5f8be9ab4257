package isp

import "time"

// Phase names the stage of the provisioning sequence a progress report
// belongs to.
const (
	PhaseHandshake = "handshake"
	PhaseIdentify  = "identify"
	PhaseConfigure = "configure"
	PhaseErase     = "erase"
	PhaseWrite     = "write"
	PhaseComplete  = "complete"
)

// Progress is a snapshot of the provisioning sequence, passed to the
// progress callback after each stage and after every written chunk.
type Progress struct {
	// Phase is the current stage
	Phase string

	// BytesWritten is the cumulative payload written so far
	BytesWritten int

	// TotalBytes is the full image length
	TotalBytes int

	// ElapsedTime is the time since Flash started
	ElapsedTime time.Duration
}

// ProgressCallback receives progress snapshots. Implementations should
// return quickly; the write loop blocks on them.
type ProgressCallback func(Progress)

// Logger is an optional logging interface so the session can report into
// any logging framework.
//
// Example with logrus:
//
//	type logrusAdapter struct{ l *logrus.Logger }
//	func (a logrusAdapter) Debug(msg string, kv ...interface{}) { a.l.Debug(append([]interface{}{msg}, kv...)...) }
//	func (a logrusAdapter) Info(msg string, kv ...interface{})  { a.l.Info(append([]interface{}{msg}, kv...)...) }
//	func (a logrusAdapter) Error(msg string, kv ...interface{}) { a.l.Error(append([]interface{}{msg}, kv...)...) }
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
