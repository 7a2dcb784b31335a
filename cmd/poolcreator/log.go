package main

import (
	"path/filepath"
	"strings"

	"github.com/poolforge/poolcreator/infrastructure/logger"
	"github.com/poolforge/poolcreator/util/panics"
)

var (
	log   = logger.RegisterSubSystem("POOL")
	spawn = panics.GoroutineWrapperFunc(log)

	printStackTraces bool
)

func initLog(cfg *configFlags) error {
	dir := logDir(cfg)
	logger.InitLog(filepath.Join(dir, defaultLogFilename), filepath.Join(dir, defaultErrLogFilename))
	err := logger.ParseAndSetLogLevels(cfg.LogLevel)
	if err != nil {
		return err
	}
	printStackTraces = strings.Contains(cfg.LogLevel, "trace") || strings.Contains(cfg.LogLevel, "debug")
	return nil
}
