package cmd

import (
	"go.uber.org/zap"

	"github.com/skillwire/skillwire/internal/core"
)

type deps struct {
	config *core.ConfigManager
	log    *zap.SugaredLogger
}

// newDeps creates shared dependencies. Called lazily by commands that need them.
func newDeps(verbose bool) *deps {
	return &deps{
		config: core.NewConfigManager(),
		log:    newLogger(verbose),
	}
}

// newLogger builds a console logger. Default level is warn so normal command
// output stays clean; --verbose drops it to debug.
func newLogger(verbose bool) *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}
