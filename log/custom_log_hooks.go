package log

// CustomLogHook is a function type for external log handling. It should return
// true if the internal logging system should be bypassed for the line.
type CustomLogHook func(header, subLoggerName, message string) (bypassLibraryLogSystem bool)

var customLogHook CustomLogHook

// SetCustomLogHook sets a custom log hook function. Passing nil removes it.
func SetCustomLogHook(h CustomLogHook) {
	mu.Lock()
	customLogHook = h
	mu.Unlock()
}
