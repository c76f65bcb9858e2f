package config

import (
	"errors"
	"fmt"
	"strings"

	"loom/internal/textenc"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateAligner(); err != nil {
		return err
	}
	if err := c.validateDictionary(); err != nil {
		return err
	}
	if err := c.validateFiles(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.Workspace == "" {
		return errors.New("paths.workspace must be set")
	}
	return nil
}

func (c *Config) validateAligner() error {
	if c.Aligner.Binary == "" {
		return errors.New("aligner.binary must be set (or set LOOM_ALIGNER)")
	}
	if c.Aligner.Timeout < 0 {
		return errors.New("aligner.timeout must be >= 0 (seconds, 0 disables)")
	}
	if err := validateEncoding("aligner.output_encoding", c.Aligner.OutputEncoding); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDictionary() error {
	if c.Dictionary.MainPath == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/loom/config.toml"
		}
		return fmt.Errorf("dictionary.main_path is required. Set LOOM_DICTIONARY env var or edit %s (create with 'loom config init')", defaultPath)
	}
	if c.Dictionary.LocalName != "" && strings.ContainsAny(c.Dictionary.LocalName, `/\`) {
		return errors.New("dictionary.local_name must be a bare file name, not a path")
	}
	if err := validateEncoding("dictionary.encoding", c.Dictionary.Encoding); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateFiles() error {
	if err := validateEncoding("files.input_encoding", c.Files.InputEncoding); err != nil {
		return err
	}
	if err := validateEncoding("files.output_encoding", c.Files.OutputEncoding); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}

func validateEncoding(key, name string) error {
	if name == "" {
		return nil
	}
	if _, err := textenc.Lookup(name); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}
