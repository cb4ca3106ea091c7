package main

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"transmute/internal/command"
	"transmute/internal/config"
	"transmute/internal/convert"
	"transmute/internal/execute"
	"transmute/internal/format"
	"transmute/internal/history"
	"transmute/internal/logging"
	"transmute/internal/notifications"
	"transmute/internal/plan"
	"transmute/internal/rules"
)

// engine bundles the wired conversion stack for one CLI invocation.
type engine struct {
	cfg      *config.Config
	log      *slog.Logger
	src      *rules.Source
	graph    *format.Graph
	runner   *convert.Runner
	history  *history.Store
	notifier notifications.Service

	closeLog func() error
}

func (e *engine) close() {
	if e == nil {
		return
	}
	if e.history != nil {
		_ = e.history.Close()
	}
	if e.closeLog != nil {
		_ = e.closeLog()
	}
}

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	engineOnce sync.Once
	engine     *engine
	engineErr  error
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

// ensureEngine builds the conversion stack once: logger, rule source,
// format graph, planner, compiler, executor, runner, and the optional
// history store and notifier.
func (c *commandContext) ensureEngine() (*engine, error) {
	c.engineOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.engineErr = err
			return
		}

		logPath := filepath.Join(cfg.Paths.LogDir, "transmute.log")
		logger, closeLog, err := logging.NewWithFile(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		}, logPath)
		if err != nil {
			c.engineErr = err
			return
		}

		src, err := rules.Load(cfg.Paths.RulesPath)
		if err != nil {
			_ = closeLog()
			c.engineErr = err
			return
		}
		graph := format.NewGraph(src, cfg.Conversion.UseCanonicalFormats)

		planner := plan.NewPlanner(graph, src, logger)
		compiler := command.NewCompiler(command.TempOptions{
			Directory: cfg.Temporary.Directory,
			Prefix:    cfg.Temporary.FilePrefix,
			Suffix:    cfg.Temporary.FileSuffix,
		}, logger)
		executor := execute.New(logger,
			execute.WithPollInterval(time.Duration(cfg.Conversion.PollIntervalMS)*time.Millisecond))

		notifier := notifications.NewService(cfg)
		runnerOpts := []convert.Option{convert.WithNotifier(notifier)}

		var store *history.Store
		if cfg.History.Enabled {
			store, err = history.Open(cfg.HistoryPath())
			if err != nil {
				logger.Warn("history store unavailable", logging.Error(err))
				store = nil
			} else {
				runnerOpts = append(runnerOpts, convert.WithHistory(store))
			}
		}

		c.engine = &engine{
			cfg:      cfg,
			log:      logger,
			src:      src,
			graph:    graph,
			runner:   convert.NewRunner(planner, compiler, executor, logger, runnerOpts...),
			history:  store,
			notifier: notifier,
			closeLog: closeLog,
		}
	})
	return c.engine, c.engineErr
}

func (c *commandContext) close() {
	c.engine.close()
}
