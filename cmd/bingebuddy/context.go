package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bingebuddy/bingebuddy/internal/alerts"
	"github.com/bingebuddy/bingebuddy/internal/batch"
	"github.com/bingebuddy/bingebuddy/internal/config"
	"github.com/bingebuddy/bingebuddy/internal/database"
	"github.com/bingebuddy/bingebuddy/internal/history"
	"github.com/bingebuddy/bingebuddy/internal/library/tv"
	"github.com/bingebuddy/bingebuddy/internal/logger"
	"github.com/bingebuddy/bingebuddy/internal/metadata/tmdb"
	"github.com/bingebuddy/bingebuddy/internal/notification"
	"github.com/bingebuddy/bingebuddy/internal/notification/email"
	"github.com/bingebuddy/bingebuddy/internal/users"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	log *logger.Logger
	db  *database.DB
}

func newCommandContext() *commandContext {
	return &commandContext{
		configFlag:   new(string),
		logLevelFlag: new(string),
	}
}

// ensureConfig loads configuration once. With full set, every required key
// must be present; otherwise only the database path is needed.
func (c *commandContext) ensureConfig(full bool) (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && *c.logLevelFlag != "" {
			cfg.Logging.Level = *c.logLevelFlag
		}
		c.config = cfg
	})
	if c.configErr != nil {
		return nil, c.configErr
	}
	if full {
		if err := c.config.Validate(); err != nil {
			return nil, err
		}
	} else if strings.TrimSpace(c.config.Database.Path) == "" {
		return nil, fmt.Errorf("%w: database.path", config.ErrMissingConfig)
	}
	return c.config, nil
}

func (c *commandContext) logger() zerolog.Logger {
	if c.log == nil {
		cfg := c.config.Logging
		c.log = logger.New(logger.Config{
			Level:      cfg.Level,
			Format:     cfg.Format,
			Path:       cfg.Path,
			MaxSizeMB:  cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAgeDays: cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		})
	}
	return c.log.Logger
}

// database opens and migrates the store on first use.
func (c *commandContext) database(ctx context.Context) (*database.DB, error) {
	if c.db != nil {
		return c.db, nil
	}
	db, err := database.New(ctx, c.config.Database.Path)
	if err != nil {
		return nil, err
	}
	if n, err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	} else if n > 0 {
		log := c.logger()
		log.Info().Int("applied", n).Msg("Database migrations applied")
	}
	c.db = db
	return db, nil
}

func (c *commandContext) close() error {
	var errs []error
	if c.db != nil {
		errs = append(errs, c.db.Close())
		c.db = nil
	}
	if c.log != nil {
		errs = append(errs, c.log.Close())
		c.log = nil
	}
	return errors.Join(errs...)
}

// app bundles the services a command works with.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	tv       *tv.Service
	users    *users.Service
	history  *history.Service
	catalog  *tmdb.Client
	mailer   *email.Notifier
	alerts   *alerts.Service
	runner   *batch.Runner
	runLock  *batch.Lock
	defaults users.Defaults
}

func (c *commandContext) app(ctx context.Context) (*app, error) {
	db, err := c.database(ctx)
	if err != nil {
		return nil, err
	}
	log := c.logger()
	cfg := c.config

	window, err := alerts.WindowFromConfig(cfg.Alerts)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  log,
		tv:      tv.NewService(db.Conn(), log),
		users:   users.NewService(db.Conn(), log),
		history: history.NewService(db.Conn(), log),
		catalog: tmdb.NewClient(cfg.Catalog, log),
		mailer:  email.New(cfg.SMTP, log),
		runLock: batch.NewLock(cfg.Batch.LockPath),
		defaults: users.Defaults{
			Email:   cfg.Alerts.DefaultEmail,
			SMSTo:   cfg.Alerts.DefaultSMSTo,
			Carrier: cfg.Alerts.DefaultCarrier,
		},
	}
	dispatcher := notification.NewDispatcher(a.mailer, log)
	a.alerts = alerts.NewService(db.Conn(), a.users, dispatcher, alerts.Options{
		Window:      window,
		HorizonDays: cfg.Alerts.HorizonDays,
		Defaults:    a.defaults,
	}, log)
	a.runner = batch.NewRunner(a.tv, a.catalog, a.alerts, log)
	return a, nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
