package main

import (
	"github.com/pkg/errors"
	"github.com/poolforge/poolcreator/infrastructure/logger"
)

func main() {
	subCmd, conf, cfg := parseCommandLine()

	err := initLog(cfg)
	if err != nil {
		printErrorAndExit(err)
	}
	defer logger.BackendLog.Close()

	switch subCmd {
	case createPoolSubCmd:
		err = createPool(conf.(*createPoolConfig))
	case coinsSubCmd:
		err = coins(conf.(*coinsConfig))
	case txStatusSubCmd:
		err = txStatus(conf.(*txStatusConfig))
	case importKeySubCmd:
		err = importKey(conf.(*importKeyConfig))
	case newKeySubCmd:
		err = newKey(conf.(*newKeyConfig))
	case showAddressesSubCmd:
		err = showAddresses(conf.(*showAddressesConfig))
	default:
		err = errors.Errorf("Unknown sub-command '%s'\n", subCmd)
	}

	if err != nil {
		logger.BackendLog.Close()
		printErrorAndExit(err)
	}
}
