package ldb

import (
	"github.com/tari-project/tari-sub014/infrastructure/logger"
)

var log = logger.RegisterSubSystem("LVDB")
