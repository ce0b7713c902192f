package panics

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/tari-project/tari-sub014/infrastructure/logger"
)

// flushTimeout bounds how long a crashing process waits for the log backend
// to drain before exiting anyway.
const flushTimeout = 5 * time.Second

// HandlePanic recovers a panic, logs it with stack traces, and terminates
// the process. Defer it at the top of main and of every goroutine started
// through Spawn. spawnStackTrace may be nil when there is no spawn site to
// report.
func HandlePanic(log *logger.Logger, spawnStackTrace []byte) {
	recovered := recover()
	if recovered == nil {
		return
	}
	crash(log, fmt.Sprintf("Fatal error: %+v", recovered), debug.Stack(), spawnStackTrace)
}

// Spawn runs f on a new goroutine with HandlePanic installed. The stack
// trace of the caller is captured up front, so a crash reports the spawn
// site alongside the crash site.
func Spawn(log *logger.Logger, f func()) {
	spawnStackTrace := debug.Stack()
	go func() {
		defer HandlePanic(log, spawnStackTrace)
		f()
	}()
}

// crash logs the reason and the given stack traces, waits up to flushTimeout
// for the backend to flush, and exits with a nonzero status.
func crash(log *logger.Logger, reason string, stackTrace, spawnStackTrace []byte) {
	flushed := make(chan struct{})
	go func() {
		log.Criticalf("Exiting: %s", reason)
		if spawnStackTrace != nil {
			log.Criticalf("Goroutine stack trace: %s", spawnStackTrace)
		}
		if stackTrace != nil {
			log.Criticalf("Stack trace: %s", stackTrace)
		}
		log.Backend().Close()
		close(flushed)
	}()

	select {
	case <-flushed:
	case <-time.After(flushTimeout):
		fmt.Fprintln(os.Stderr, "Couldn't exit gracefully.")
	}
	os.Exit(1)
}
