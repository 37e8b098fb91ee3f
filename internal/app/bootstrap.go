package app

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/ibeckermayer/sentiview/internal/config"
	"github.com/ibeckermayer/sentiview/internal/logging"
	"github.com/ibeckermayer/sentiview/internal/store"
)

// Bootstrap loads the config at configPath (the default path when empty),
// opens the logger and database, and builds an App. The returned close
// func releases both.
func Bootstrap(configPath string) (*App, *log.Logger, func() error, error) {
	var (
		cfg     *config.Config
		created bool
		err     error
	)
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, created, err = config.LoadOrDefault()
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, closeLog, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, nil, err
	}
	if created {
		path, _ := config.ConfigPath()
		logger.Info("Created default config", "path", path)
	}

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		closeLog()
		return nil, nil, nil, err
	}
	st, err := store.New(dbPath)
	if err != nil {
		closeLog()
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}

	a, err := New(cfg, Deps{
		Store:      st,
		Logger:     logger,
		ConfigPath: configPath,
	})
	if err != nil {
		st.Close()
		closeLog()
		return nil, nil, nil, err
	}

	closeAll := func() error {
		return errors.Join(st.Close(), closeLog())
	}
	return a, logger, closeAll, nil
}
