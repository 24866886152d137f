package main

import (
	"context"
	"strings"
	"sync"

	"medialist/internal/database"
	"medialist/internal/startup"
)

type commandContext struct {
	dbDirFlag *string

	configOnce sync.Once
	config     *startup.Config
	configErr  error
}

func newCommandContext(dbDirFlag *string) *commandContext {
	return &commandContext{dbDirFlag: dbDirFlag}
}

func (c *commandContext) ensureConfig() (*startup.Config, error) {
	c.configOnce.Do(func() {
		var overrides []startup.Override
		if c.dbDirFlag != nil {
			if dir := strings.TrimSpace(*c.dbDirFlag); dir != "" {
				overrides = append(overrides, func(cfg *startup.Config) { cfg.DatabaseDir = dir })
			}
		}
		c.config, c.configErr = startup.LoadEnvConfig(overrides...)
	})
	return c.config, c.configErr
}

// withDatabase opens the configured catalog for the duration of fn.
func (c *commandContext) withDatabase(ctx context.Context, fn func(*startup.Config, *database.Database) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	db, err := database.New(ctx, cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(cfg, db)
}
