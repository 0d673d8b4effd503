package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var supportedOutputFormats = map[string]struct{}{
	"csv":  {},
	"xlsx": {},
	"json": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateConversion(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if strings.TrimSpace(c.Server.URL) == "" {
		return errors.New("server.url must be set")
	}
	parsed, err := url.Parse(c.Server.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("server.url %q is not a valid URL", c.Server.URL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("server.url scheme %q is not supported", parsed.Scheme)
	}
	return ensurePositiveMap(map[string]int{
		"server.request_timeout": c.Server.RequestTimeout,
		"server.upload_timeout":  c.Server.UploadTimeout,
	})
}

func (c *Config) validatePaths() error {
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	if c.Paths.DownloadDir == "" {
		return errors.New("paths.download_dir must be set")
	}
	return nil
}

func (c *Config) validateConversion() error {
	if _, ok := supportedOutputFormats[c.Conversion.OutputFormat]; !ok {
		return fmt.Errorf("conversion.output_format %q is not supported (csv, xlsx, json)", c.Conversion.OutputFormat)
	}
	if c.Conversion.PreviewRows <= 0 {
		return errors.New("conversion.preview_rows must be positive")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.MaxQueued <= 0 {
		return errors.New("notifications.max_queued must be positive")
	}
	return ensurePositiveMap(map[string]int{
		"notifications.request_timeout": c.Notifications.RequestTimeout,
		"notifications.ttl_seconds":     c.Notifications.TTLSeconds,
	})
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q is not supported (console, json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not supported (debug, info, warn, error)", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
