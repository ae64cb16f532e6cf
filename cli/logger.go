package cli

import (
	"github.com/grovetools/cyclenext/config"
	"github.com/grovetools/cyclenext/logging"
	"github.com/sirupsen/logrus"
)

// ConfigureLogging applies the logging section of cfg, raised to debug
// level by --debug or --verbose, and returns the logger of component.
func ConfigureLogging(cfg config.Config, opts CommandOptions, component string) (*logrus.Entry, error) {
	logCfg, err := logging.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	if opts.Debug || opts.Verbose || cfg.Debug {
		logCfg.Level = logrus.DebugLevel.String()
	}

	logging.Configure(logCfg)
	return logging.NewLogger(component), nil
}
