// Package logging decouples the extraction engine from a concrete logging framework.
// Components receive a Logger through their constructors; the CLI wires a logrus-backed
// adapter and tests use MockLogger.
package logging

// Logger is the structured logging contract used across the repository.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithError returns a child logger carrying err.
	WithError(err error) Logger
	// WithField returns a child logger carrying one field.
	WithField(key string, value interface{}) Logger
	// WithFields returns a child logger carrying all given fields.
	WithFields(fields ...Field) Logger

	// Fatal logs and terminates the process.
	Fatal(msg string, fields ...Field)
	// Fatalf logs a formatted message and terminates the process.
	Fatalf(msg string, args ...interface{})
}

// Field is a single key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// F is shorthand for building a Field inline.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
