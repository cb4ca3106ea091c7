package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeConversion()
	if err := c.normalizeTemporary(); err != nil {
		return err
	}
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.RulesPath) == "" {
		c.Paths.RulesPath = defaultRulesPath
	}
	if c.Paths.RulesPath, err = expandPath(c.Paths.RulesPath); err != nil {
		return fmt.Errorf("paths.rules_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeConversion() {
	if c.Conversion.BatchOutputThreshold <= 0 {
		c.Conversion.BatchOutputThreshold = defaultBatchOutputThreshold
	}
	if c.Conversion.PollIntervalMS <= 0 {
		c.Conversion.PollIntervalMS = defaultPollIntervalMS
	}
	if c.Conversion.CancelGraceTicks <= 0 {
		c.Conversion.CancelGraceTicks = defaultCancelGraceTicks
	}
}

func (c *Config) normalizeTemporary() error {
	var err error
	if strings.TrimSpace(c.Temporary.Directory) == "" {
		c.Temporary.Directory = defaultTempDirectory
	}
	if c.Temporary.Directory, err = expandPath(c.Temporary.Directory); err != nil {
		return fmt.Errorf("temporary.directory: %w", err)
	}
	if strings.TrimSpace(c.Temporary.FilePrefix) == "" {
		c.Temporary.FilePrefix = defaultTempFilePrefix
	}
	c.Temporary.FileSuffix = strings.TrimSpace(c.Temporary.FileSuffix)
	if c.Temporary.FileSuffix == "" {
		c.Temporary.FileSuffix = defaultTempFileSuffix
	}
	if !strings.HasPrefix(c.Temporary.FileSuffix, ".") {
		c.Temporary.FileSuffix = "." + c.Temporary.FileSuffix
	}
	return nil
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		return nil
	}
	var err error
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
