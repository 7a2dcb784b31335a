package libpoolcreator

import (
	"github.com/poolforge/poolcreator/infrastructure/logger"
)

var log = logger.RegisterSubSystem("LIBP")
