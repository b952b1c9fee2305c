package core

// Logger is any service that can log operational messages.
// args may carry an error and/or extra context values forwarded to the
// error reporter.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
