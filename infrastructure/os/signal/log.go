package signal

import (
	"github.com/poolforge/poolcreator/infrastructure/logger"
)

var log = logger.RegisterSubSystem("SGNL")
