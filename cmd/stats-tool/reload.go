package main

import (
	stderrors "errors"

	"stats-tool/internal/models"
	"stats-tool/pkg/config"
	"stats-tool/pkg/logging"
	"stats-tool/pkg/monitor"
)

var errConfigRemoved = stderrors.New("config file removed, keeping current settings")

// watchConfigFile reloads the log level whenever the config file changes.
// The log output is fixed for the lifetime of the process.
func watchConfigFile(cfg config.Config, loggingManager *logging.LoggingManager) (func() error, error) {
	fileMonitor, err := monitor.NewFileSystemMonitor(loggingManager.GetLogger("monitor"), monitor.DefaultDebounceDelay)
	if err != nil {
		return nil, err
	}

	err = fileMonitor.WatchFile(cfg.ConfigFile, func(event models.FileEvent) {
		reloadLogLevel(cfg, loggingManager, event)
	})
	if err != nil {
		fileMonitor.StopWatching()
		return nil, err
	}

	return fileMonitor.StopWatching, nil
}

// reloadLogLevel applies the log level of a changed config file unless the
// level was pinned by a flag
func reloadLogLevel(cfg config.Config, loggingManager *logging.LoggingManager, event models.FileEvent) {
	if event.Type == models.FileEventDelete {
		loggingManager.LogConfigReload(event.Path, nil, errConfigRemoved)
		return
	}

	file, err := config.LoadFile(event.Path)
	if err != nil {
		loggingManager.LogConfigReload(event.Path, nil, err)
		return
	}

	previous := loggingManager.GetLogLevel()
	if cfg.LogLevelFlagSet || file.LogLevel == "" {
		loggingManager.LogConfigReload(event.Path, map[string]interface{}{
			"log_level":         previous.String(),
			"log_level_changed": false,
		}, nil)
		return
	}

	loggingManager.SetLogLevel(file.LogLevel)
	loggingManager.LogConfigReload(event.Path, map[string]interface{}{
		"previous_log_level": previous.String(),
		"log_level":          loggingManager.GetLogLevel().String(),
		"log_level_changed":  previous != loggingManager.GetLogLevel(),
	}, nil)
}
