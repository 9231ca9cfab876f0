package log

import "io"

// Global vars related to the logger package
var (
	subLoggers = map[string]*SubLogger{}

	Global     *SubLogger
	BackTester *SubLogger
	ConfigSys  *SubLogger
	Data       *SubLogger
	Database   *SubLogger
	Exchange   *SubLogger
	Portfolio  *SubLogger
	Strategy   *SubLogger
	Statistics *SubLogger
	Optimiser  *SubLogger
	Report     *SubLogger
)

// SubLogger defines a named logging system with its own levels and output
type SubLogger struct {
	name   string
	levels Levels
	output io.Writer
}

// logFields is a snapshot of a sub logger taken under lock so a log line
// cannot observe a configuration change half way through
type logFields struct {
	info   bool
	warn   bool
	debug  bool
	error  bool
	name   string
	output io.Writer
	logger Logger
}
