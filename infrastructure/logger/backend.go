package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jrick/logrotate/rotator"
	"github.com/pkg/errors"
)

// Rotation defaults for log files added with AddLogFile.
const (
	defaultThresholdKB = 100 * 1000
	defaultMaxRolls    = 8
)

// Flags modifying a Backend's message header format.
const (
	// LogFlagLongFile includes the full path and line number of the logging
	// callsite in every message, e.g. /a/b/c/main.go:123.
	LogFlagLongFile uint32 = 1 << iota

	// LogFlagShortFile includes only the file name and line number, e.g.
	// main.go:123. It takes precedence over LogFlagLongFile.
	LogFlagShortFile
)

// defaultFlags holds the flags read from the LOGFLAGS environment variable.
// It is a package variable rather than an init function because BackendLog is
// built from it, and variable initialization runs before init functions do.
var defaultFlags = parseLogFlags(os.Getenv("LOGFLAGS"))

// parseLogFlags parses a comma-separated flag list of the form carried by the
// LOGFLAGS environment variable. Unknown entries are ignored.
func parseLogFlags(flagsString string) (flags uint32) {
	for _, flag := range strings.Split(flagsString, ",") {
		switch flag {
		case "longfile":
			flags |= LogFlagLongFile
		case "shortfile":
			flags |= LogFlagShortFile
		}
	}
	return flags
}

// Backend fans log entries out to a set of leveled writers. Subsystem loggers
// created from the backend all funnel into its write channel, and the single
// goroutine started by Run performs the writes, so writers never see two
// messages interleaved.
type Backend struct {
	flag      uint32
	isRunning uint32
	writers   []leveledWriter
	writeChan chan logEntry
	syncClose sync.Mutex // held by the write loop for its whole run; Close takes it to wait for the drain
}

// NewBackend returns a Backend with the flags carried by the LOGFLAGS
// environment variable.
func NewBackend() *Backend {
	return NewBackendWithFlags(defaultFlags)
}

// NewBackendWithFlags returns a Backend with the given flags instead of the
// LOGFLAGS defaults.
func NewBackendWithFlags(flags uint32) *Backend {
	return &Backend{flag: flags, writeChan: make(chan logEntry)}
}

// leveledWriter is a log destination that only receives entries at or above
// its level.
type leveledWriter struct {
	io.WriteCloser
	level Level
}

// AddLogFile adds a rotated log file receiving every entry at or above the
// given level, with the default rotation settings. The file is created if it
// does not exist. Writers must be added before the backend is started.
func (b *Backend) AddLogFile(logFile string, logLevel Level) error {
	return b.AddLogFileWithCustomRotator(logFile, logLevel, defaultThresholdKB, defaultMaxRolls)
}

// AddLogFileWithCustomRotator is AddLogFile with explicit rotation settings:
// the file rolls over once it passes thresholdKB, and the maxRolls most
// recent rolls are kept.
func (b *Backend) AddLogFileWithCustomRotator(logFile string, logLevel Level, thresholdKB int64, maxRolls int) error {
	if b.IsRunning() {
		return errors.New("cannot add a log file to a running logger backend")
	}
	logDir, _ := filepath.Split(logFile)
	// An empty directory means the log file lives in the cwd.
	if logDir != "" {
		err := os.MkdirAll(logDir, 0700)
		if err != nil {
			return errors.Wrapf(err, "failed to create log directory %s", logDir)
		}
	}
	fileRotator, err := rotator.New(logFile, thresholdKB, false, maxRolls)
	if err != nil {
		return errors.Wrap(err, "failed to create the file rotator")
	}
	b.writers = append(b.writers, leveledWriter{WriteCloser: fileRotator, level: logLevel})
	return nil
}

// AddLogWriter adds a writer receiving every entry at or above the given
// level. Writers must be added before the backend is started.
func (b *Backend) AddLogWriter(writer io.WriteCloser, logLevel Level) error {
	if b.IsRunning() {
		return errors.New("cannot add a writer to a running logger backend")
	}
	b.writers = append(b.writers, leveledWriter{WriteCloser: writer, level: logLevel})
	return nil
}

// Run starts the goroutine that drains the write channel into the writers.
// It may only be called once per backend.
func (b *Backend) Run() error {
	if !atomic.CompareAndSwapUint32(&b.isRunning, 0, 1) {
		return errors.New("the logger backend is already running")
	}
	go func() {
		defer func() {
			if err := recover(); err != nil {
				// The util/panics handlers log through this backend, so
				// this goroutine reports its own panics straight to stderr.
				_, _ = fmt.Fprintf(os.Stderr, "Fatal error in logger.Backend goroutine: %+v\n", err)
				_, _ = fmt.Fprintf(os.Stderr, "Goroutine stacktrace: %s\n", debug.Stack())
			}
		}()
		b.drainWriteChan()
	}()
	return nil
}

func (b *Backend) drainWriteChan() {
	defer atomic.StoreUint32(&b.isRunning, 0)
	b.syncClose.Lock()
	defer b.syncClose.Unlock()

	for entry := range b.writeChan {
		for _, writer := range b.writers {
			if entry.level >= writer.level {
				_, _ = writer.Write(entry.log)
			}
		}
	}
}

// IsRunning reports whether Run has been called and the write loop is still
// alive.
func (b *Backend) IsRunning() bool {
	return atomic.LoadUint32(&b.isRunning) != 0
}

// Close stops the write loop, waits for pending entries to drain and closes
// every writer.
func (b *Backend) Close() {
	close(b.writeChan)
	b.syncClose.Lock()
	defer b.syncClose.Unlock()
	for _, writer := range b.writers {
		_ = writer.Close()
	}
}

// Logger returns the subsystem logger writing to the backend under the given
// tag. New loggers start at LevelOff and stay silent until a level is
// configured, so package-level loggers in binaries that never start the
// backend, test binaries included, never write to the unstarted channel.
func (b *Backend) Logger(subsystemTag string) *Logger {
	return &Logger{LevelOff, subsystemTag, b, b.writeChan}
}
