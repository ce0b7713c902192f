package aggregatebodyvalidator

import (
	"github.com/tari-project/tari-sub014/infrastructure/logger"
)

var log = logger.RegisterSubSystem("ABDY")
