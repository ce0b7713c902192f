package keymanager

import (
	"github.com/tari-project/tari-sub014/infrastructure/logger"
)

var log = logger.RegisterSubSystem("KMGR")
