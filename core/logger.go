package core

// Logger is any leveled application logger.
// Extra args may carry errors, key/value maps or an echoapi.Claims for
// error-reporting context; implementations decide what to do with them.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
