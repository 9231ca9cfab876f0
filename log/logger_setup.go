package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	errSubloggerConfigIsNil  = errors.New("sublogger config is nil")
	errUnhandledOutputWriter = errors.New("unhandled output writer")
	errSubLoggerNotFound     = errors.New("sub logger not found")
	errFileNameNotSet        = errors.New("file output requested without a file name")
)

func boolPtr(b bool) *bool {
	return &b
}

func getWriters(s *SubLoggerConfig, file io.Writer) (io.Writer, error) {
	if s == nil {
		return nil, errSubloggerConfigIsNil
	}
	mw, err := MultiWriter()
	if err != nil {
		return nil, err
	}
	if s.Output == "" {
		return mw, nil
	}
	outputWriters := strings.Split(s.Output, "|")
	for x := range outputWriters {
		var writer io.Writer
		switch strings.ToLower(strings.TrimSpace(outputWriters[x])) {
		case "stdout", "console":
			writer = os.Stdout
		case "stderr":
			writer = os.Stderr
		case "file":
			if file == nil {
				return nil, errFileNameNotSet
			}
			writer = file
		default:
			return nil, fmt.Errorf("%w: %s", errUnhandledOutputWriter, outputWriters[x])
		}
		err = mw.Add(writer)
		if err != nil {
			return nil, err
		}
	}
	return mw, nil
}

// GenDefaultSettings return struct with known sane/working logger settings
func GenDefaultSettings() Config {
	return Config{
		Enabled: boolPtr(true),
		SubLoggerConfig: SubLoggerConfig{
			Level:  "INFO|WARN|ERROR",
			Output: "console",
		},
		AdvancedSettings: AdvancedSettings{
			ShowLogSystemName: boolPtr(true),
			Spacer:            spacer,
			TimeStampFormat:   timestampFormat,
			Headers: Headers{
				Info:  "[INFO]",
				Warn:  "[WARN]",
				Debug: "[DEBUG]",
				Error: "[ERROR]",
			},
		},
	}
}

func newLogger(c *Config) Logger {
	if c == nil {
		d := GenDefaultSettings()
		c = &d
	}
	l := Logger{
		TimestampFormat: c.AdvancedSettings.TimeStampFormat,
		Spacer:          c.AdvancedSettings.Spacer,
		InfoHeader:      c.AdvancedSettings.Headers.Info,
		WarnHeader:      c.AdvancedSettings.Headers.Warn,
		DebugHeader:     c.AdvancedSettings.Headers.Debug,
		ErrorHeader:     c.AdvancedSettings.Headers.Error,
	}
	if c.AdvancedSettings.ShowLogSystemName != nil {
		l.ShowLogSystemName = *c.AdvancedSettings.ShowLogSystemName
	}
	return l
}

// SetupGlobalLogger applies the configuration to every registered sub logger,
// then applies per sub logger overrides
func SetupGlobalLogger(c *Config) error {
	if c == nil {
		return errSubloggerConfigIsNil
	}
	var file io.Writer
	if c.LoggerFileConfig != nil && c.LoggerFileConfig.FileName != "" {
		flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
		if c.LoggerFileConfig.Append != nil && *c.LoggerFileConfig.Append {
			flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
		}
		f, err := os.OpenFile(c.LoggerFileConfig.FileName, flags, 0o644)
		if err != nil {
			return err
		}
		file = f
	}

	enabled := c.Enabled == nil || *c.Enabled
	mu.Lock()
	defer mu.Unlock()
	for _, sl := range subLoggers {
		if !enabled {
			sl.levels = Levels{}
			continue
		}
		output, err := getWriters(&c.SubLoggerConfig, file)
		if err != nil {
			return err
		}
		sl.levels = splitLevel(c.Level)
		sl.output = output
	}
	if enabled {
		for x := range c.SubLoggers {
			output, err := getWriters(&c.SubLoggers[x], file)
			if err != nil {
				return err
			}
			err = configureSubLogger(strings.ToUpper(c.SubLoggers[x].Name), c.SubLoggers[x].Level, output)
			if err != nil {
				return err
			}
		}
	}
	globalLogConfig = *c
	logger = newLogger(c)
	return nil
}

func configureSubLogger(subLogger, levels string, output io.Writer) error {
	logPtr, found := subLoggers[subLogger]
	if !found {
		return fmt.Errorf("%w: %v", errSubLoggerNotFound, subLogger)
	}
	logPtr.output = output
	logPtr.levels = splitLevel(levels)
	return nil
}

// SetOutput redirects every sub logger to the supplied writer. Used by the
// CLI quiet mode and by tests capturing output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	for _, sl := range subLoggers {
		sl.output = w
	}
}

// SetLevel sets the enabled levels on a single sub logger
func SetLevel(sl *SubLogger, level string) error {
	if sl == nil {
		return errSubloggerConfigIsNil
	}
	mu.Lock()
	defer mu.Unlock()
	sl.levels = splitLevel(level)
	return nil
}

func splitLevel(level string) (l Levels) {
	enabledLevels := strings.Split(level, "|")
	for x := range enabledLevels {
		switch strings.ToUpper(strings.TrimSpace(enabledLevels[x])) {
		case "DEBUG":
			l.Debug = true
		case "INFO":
			l.Info = true
		case "WARN":
			l.Warn = true
		case "ERROR":
			l.Error = true
		}
	}
	return
}

func registerNewSubLogger(subLogger string) *SubLogger {
	temp := &SubLogger{
		name:   strings.ToUpper(subLogger),
		output: os.Stdout,
		levels: splitLevel(globalLogConfig.Level),
	}
	subLoggers[temp.name] = temp
	return temp
}

// register all loggers at package init()
func init() {
	Global = registerNewSubLogger("LOG")
	BackTester = registerNewSubLogger("BACKTESTER")
	ConfigSys = registerNewSubLogger("CONFIG")
	Data = registerNewSubLogger("DATA")
	Database = registerNewSubLogger("DATABASE")
	Exchange = registerNewSubLogger("EXCHANGE")
	Portfolio = registerNewSubLogger("PORTFOLIO")
	Strategy = registerNewSubLogger("STRATEGY")
	Statistics = registerNewSubLogger("STATISTICS")
	Optimiser = registerNewSubLogger("OPTIMISER")
	Report = registerNewSubLogger("REPORT")
}
