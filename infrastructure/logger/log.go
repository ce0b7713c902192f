package logger

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Loggers per subsystem. A single backend logger is created and all subsystem
// loggers created from it will write to the backend. When adding new
// subsystems, register them with RegisterSubSystem from a package-level
// variable so the subsystem exists before any log level is configured.
//
// Loggers can not be used before the log rotator has been initialized with a
// log file. This must be performed early during application startup by
// calling InitLog.
var (
	// BackendLog is the logging backend used to create all subsystem loggers.
	BackendLog = NewBackend()

	// subsystemLoggers maps each subsystem identifier to its associated logger.
	subsystemLoggers      = make(map[string]*Logger)
	subsystemLoggersMutex sync.Mutex
)

// RegisterSubSystem registers a new subsystem logger, should be called in a
// package-level variable. Returns the existing logger if the subsystem is
// already registered.
func RegisterSubSystem(subsystem string) *Logger {
	subsystemLoggersMutex.Lock()
	defer subsystemLoggersMutex.Unlock()
	log, exists := subsystemLoggers[subsystem]
	if !exists {
		log = BackendLog.Logger(subsystem)
		subsystemLoggers[subsystem] = log
	}
	return log
}

// InitLog attaches log file and error log file to the backend log.
func InitLog(logFile, errLogFile string) {
	err := BackendLog.AddLogFile(logFile, LevelTrace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding log file %s as log rotator for level %s: %s", logFile, LevelTrace, err)
		os.Exit(1)
	}
	err = BackendLog.AddLogFile(errLogFile, LevelWarn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding log file %s as log rotator for level %s: %s", errLogFile, LevelWarn, err)
		os.Exit(1)
	}
	err = BackendLog.AddLogWriter(os.Stdout, LevelInfo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding stdout to the logger for level %s: %s", LevelInfo, err)
		os.Exit(1)
	}
	err = BackendLog.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting the logger: %s ", err)
		os.Exit(1)
	}
}

// SetLogLevel sets the logging level for provided subsystem. An appropriate
// error is returned if the subsystem is invalid.
func SetLogLevel(subsystemID string, logLevel string) error {
	// Validate subsystem.
	subsystemLoggersMutex.Lock()
	defer subsystemLoggersMutex.Unlock()
	log, exists := subsystemLoggers[subsystemID]
	if !exists {
		return errors.Errorf("unknown subsystem %s", subsystemID)
	}

	// Validate log level.
	level, ok := LevelFromString(logLevel)
	if !ok {
		return errors.Errorf("invalid log level %s", logLevel)
	}

	log.SetLevel(level)
	return nil
}

// SetLogLevels sets the log level for all subsystem loggers to the passed
// level.
func SetLogLevels(logLevel string) error {
	// Validate log level.
	level, ok := LevelFromString(logLevel)
	if !ok {
		return errors.Errorf("invalid log level %s", logLevel)
	}

	// Change the logging level for all subsystems.
	subsystemLoggersMutex.Lock()
	defer subsystemLoggersMutex.Unlock()
	for _, log := range subsystemLoggers {
		log.SetLevel(level)
	}
	return nil
}

// ParseAndSetDebugLevels attempts to parse the specified debug level
// specification and set the subsystem levels accordingly. The specification
// is either one level applied to every subsystem, or a comma-separated list
// of subsystem=level pairs. An appropriate error is returned if anything is
// invalid.
func ParseAndSetDebugLevels(debugLevel string) error {
	// A specification without delimiters is one level for all subsystems.
	if !strings.Contains(debugLevel, ",") && !strings.Contains(debugLevel, "=") {
		return SetLogLevels(debugLevel)
	}

	for _, logLevelPair := range strings.Split(debugLevel, ",") {
		if !strings.Contains(logLevelPair, "=") {
			return errors.Errorf("the debug level specification contains an "+
				"invalid subsystem/level pair %s", logLevelPair)
		}
		fields := strings.Split(logLevelPair, "=")
		err := SetLogLevel(fields[0], fields[1])
		if err != nil {
			return err
		}
	}
	return nil
}

// SupportedSubsystems returns a sorted slice of the supported subsystems for
// logging purposes.
func SupportedSubsystems() []string {
	subsystemLoggersMutex.Lock()
	defer subsystemLoggersMutex.Unlock()

	// Convert the subsystemLoggers map keys to a slice.
	subsystems := make([]string, 0, len(subsystemLoggers))
	for subsysID := range subsystemLoggers {
		subsystems = append(subsystems, subsysID)
	}

	// Sort the subsystems for stable display.
	sort.Strings(subsystems)
	return subsystems
}
