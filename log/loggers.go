package log

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// Info takes a pointer subLogger struct and string and writes it out
func Info(sl *SubLogger, data string) {
	fields := sl.getFields()
	fields.stage(levelInfo, func() string { return data })
}

// Infoln takes a pointer subLogger struct and interface and writes it out
func Infoln(sl *SubLogger, v ...interface{}) {
	fields := sl.getFields()
	fields.stage(levelInfo, func() string { return fmt.Sprint(v...) })
}

// Infof takes a pointer subLogger struct, string and interface formats and writes it out
func Infof(sl *SubLogger, data string, v ...interface{}) {
	fields := sl.getFields()
	fields.stage(levelInfo, func() string { return fmt.Sprintf(data, v...) })
}

// Debug takes a pointer subLogger struct and string and writes it out
func Debug(sl *SubLogger, data string) {
	fields := sl.getFields()
	fields.stage(levelDebug, func() string { return data })
}

// Debugf takes a pointer subLogger struct, string and interface formats and writes it out
func Debugf(sl *SubLogger, data string, v ...interface{}) {
	fields := sl.getFields()
	fields.stage(levelDebug, func() string { return fmt.Sprintf(data, v...) })
}

// Warn takes a pointer subLogger struct & string and writes it out
func Warn(sl *SubLogger, data string) {
	fields := sl.getFields()
	fields.stage(levelWarn, func() string { return data })
}

// Warnf takes a pointer subLogger struct, string and interface formats and writes it out
func Warnf(sl *SubLogger, data string, v ...interface{}) {
	fields := sl.getFields()
	fields.stage(levelWarn, func() string { return fmt.Sprintf(data, v...) })
}

// Error takes a pointer subLogger struct & string and writes it out
func Error(sl *SubLogger, data string) {
	fields := sl.getFields()
	fields.stage(levelError, func() string { return data })
}

// Errorln takes a pointer subLogger struct, string & interface formats and writes it out
func Errorln(sl *SubLogger, v ...interface{}) {
	fields := sl.getFields()
	fields.stage(levelError, func() string { return fmt.Sprint(v...) })
}

// Errorf takes a pointer subLogger struct, string and interface formats and writes it out
func Errorf(sl *SubLogger, data string, v ...interface{}) {
	fields := sl.getFields()
	fields.stage(levelError, func() string { return fmt.Sprintf(data, v...) })
}

func displayError(err error) {
	if err != nil {
		log.Printf("Logger write error: %v\n", err)
	}
}

func (sl *SubLogger) getFields() *logFields {
	if sl == nil {
		return nil
	}
	mu.RLock()
	defer mu.RUnlock()
	return &logFields{
		info:   sl.levels.Info,
		warn:   sl.levels.Warn,
		debug:  sl.levels.Debug,
		error:  sl.levels.Error,
		name:   sl.name,
		output: sl.output,
		logger: logger,
	}
}

type level uint8

const (
	levelInfo level = iota
	levelWarn
	levelError
	levelDebug
)

// enabled returns the header for the level and whether the level is enabled
func (l *logFields) enabled(lvl level) (string, bool) {
	switch lvl {
	case levelInfo:
		return l.logger.InfoHeader, l.info
	case levelWarn:
		return l.logger.WarnHeader, l.warn
	case levelError:
		return l.logger.ErrorHeader, l.error
	case levelDebug:
		return l.logger.DebugHeader, l.debug
	}
	return "", false
}

// stage formats and writes a log line when the level is enabled. The message
// is only rendered once the level check has passed.
func (l *logFields) stage(lvl level, msg func() string) {
	if l == nil || l.output == nil {
		return
	}
	header, ok := l.enabled(lvl)
	if !ok {
		return
	}
	data := msg()
	mu.RLock()
	hook := customLogHook
	mu.RUnlock()
	if hook != nil && hook(header, l.name, data) {
		return
	}

	var sb strings.Builder
	sb.WriteString(header)
	if l.logger.TimestampFormat != "" {
		sb.WriteString(time.Now().Format(l.logger.TimestampFormat))
	}
	if l.logger.ShowLogSystemName {
		sb.WriteString(l.logger.Spacer)
		sb.WriteString(l.name)
	}
	sb.WriteString(l.logger.Spacer)
	sb.WriteString(data)
	if !strings.HasSuffix(data, "\n") {
		sb.WriteByte('\n')
	}
	_, err := l.output.Write([]byte(sb.String()))
	displayError(err)
}
