package main

import (
	"log/slog"
	"strings"
	"sync"

	"fieldaudit/internal/auditdb"
	"fieldaudit/internal/catalog"
	"fieldaudit/internal/config"
	"fieldaudit/internal/faults"
	"fieldaudit/internal/lifecycle"
	"fieldaudit/internal/logging"
	"fieldaudit/internal/session"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) loadSession() (*session.Session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return session.Load(cfg.SessionPath())
}

// engine bundles the opened local stores and session for one command run.
type engine struct {
	cfg     *config.Config
	logger  *slog.Logger
	sess    *session.Session
	catalog *catalog.Catalog
	db      *auditdb.DB
}

func (e *engine) manager() *lifecycle.Manager {
	return lifecycle.NewManager(e.db, e.catalog, e.sess, e.logger)
}

func (e *engine) requireAuth() error {
	if !e.sess.Authenticated() {
		return faults.State("not logged in; run `fieldaudit login` first")
	}
	return nil
}

// withEngine opens the catalog and audit databases for the duration of fn.
func (c *commandContext) withEngine(fn func(*engine) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	sess, err := c.loadSession()
	if err != nil {
		return err
	}

	cat, err := catalog.Open(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = cat.Close() }()

	db, err := auditdb.Open(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return fn(&engine{cfg: cfg, logger: logger, sess: sess, catalog: cat, db: db})
}
