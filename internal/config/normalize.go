package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAligner()
	if err := c.normalizeDictionary(); err != nil {
		return err
	}
	c.normalizeFiles()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.Workspace, err = expandPath(strings.TrimSpace(c.Paths.Workspace)); err != nil {
		return fmt.Errorf("paths.workspace: %w", err)
	}
	c.Paths.LogDir = strings.TrimSpace(c.Paths.LogDir)
	if c.Paths.LogDir == "" && c.Paths.Workspace != "" {
		c.Paths.LogDir = filepath.Join(c.Paths.Workspace, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

// The LOOM_ALIGNER and LOOM_DICTIONARY environment variables take precedence
// over the file so shared lab machines can point at per-user installs
// without editing config.
func (c *Config) normalizeAligner() {
	c.Aligner.Binary = strings.TrimSpace(c.Aligner.Binary)
	if env, ok := os.LookupEnv("LOOM_ALIGNER"); ok && strings.TrimSpace(env) != "" {
		c.Aligner.Binary = strings.TrimSpace(env)
	}
	if c.Aligner.Binary == "" {
		c.Aligner.Binary = defaultAlignerBinary
	}
	c.Aligner.OutputEncoding = strings.TrimSpace(c.Aligner.OutputEncoding)
}

func (c *Config) normalizeDictionary() error {
	c.Dictionary.MainPath = strings.TrimSpace(c.Dictionary.MainPath)
	if env, ok := os.LookupEnv("LOOM_DICTIONARY"); ok && strings.TrimSpace(env) != "" {
		c.Dictionary.MainPath = strings.TrimSpace(env)
	}
	if c.Dictionary.MainPath != "" {
		expanded, err := expandPath(c.Dictionary.MainPath)
		if err != nil {
			return fmt.Errorf("dictionary.main_path: %w", err)
		}
		c.Dictionary.MainPath = expanded
	}
	c.Dictionary.LocalName = strings.TrimSpace(c.Dictionary.LocalName)
	c.Dictionary.Encoding = strings.TrimSpace(c.Dictionary.Encoding)
	return nil
}

func (c *Config) normalizeFiles() {
	c.Files.InputEncoding = strings.TrimSpace(c.Files.InputEncoding)
	c.Files.OutputEncoding = strings.TrimSpace(c.Files.OutputEncoding)
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
