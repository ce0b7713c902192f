package logger

import (
	"time"
)

// LogAndMeasureExecutionTime logs the start of functionName at debug level
// and returns a function logging its end along with the elapsed time. Use it
// at the top of the measured function:
//
//	onEnd := logger.LogAndMeasureExecutionTime(log, "ValidateBody")
//	defer onEnd()
func LogAndMeasureExecutionTime(log *Logger, functionName string) (onEnd func()) {
	start := time.Now()
	log.Debugf("%s start", functionName)
	return func() {
		log.Debugf("%s end. Took: %s", functionName, time.Since(start))
	}
}
