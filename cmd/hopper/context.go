package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"hopper/internal/api"
	"hopper/internal/auth"
	"hopper/internal/config"
	"hopper/internal/history"
	"hopper/internal/logging"
	"hopper/internal/notify"
	"hopper/internal/session"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
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

// services bundles the wired application components for one command
// invocation. The state directory lock is held for the lifetime of the
// bundle so two hopper processes cannot mutate the same persisted state.
type services struct {
	cfg     *config.Config
	logger  *slog.Logger
	client  *api.Client
	auth    *auth.Manager
	sink    *notify.Sink
	history *history.Store
	session *session.Session
}

func (c *commandContext) withServices(fn func(*services) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	lock := flock.New(filepath.Join(cfg.Paths.StateDir, "hopper.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock state directory: %w", err)
	}
	if !locked {
		return fmt.Errorf("another hopper process is using %s", cfg.Paths.StateDir)
	}
	defer func() { _ = lock.Unlock() }()

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}

	jar, err := auth.NewJar(cfg.Paths.StateDir, cfg.Server.URL)
	if err != nil {
		return fmt.Errorf("initialize cookie jar: %w", err)
	}
	httpClient := &http.Client{Jar: jar}

	client, err := api.New(cfg.Server.URL,
		api.WithHTTPClient(httpClient),
		api.WithTimeouts(cfg.RequestTimeout(), cfg.UploadTimeout()),
		api.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("initialize backend client: %w", err)
	}

	sink := notify.NewSink(cfg, notify.WithLogger(logger))

	manager, err := auth.NewManager(client, cfg.Paths.StateDir,
		auth.WithNotifier(sink),
		auth.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("initialize auth: %w", err)
	}
	client.SetTokenSource(manager)

	hist, err := history.Open(cfg)
	if err != nil {
		return fmt.Errorf("open history ledger: %w", err)
	}
	defer func() { _ = hist.Close() }()

	sess, err := session.New(client, cfg.Paths.StateDir,
		session.WithNotifier(sink),
		session.WithRecorder(hist),
		session.WithLogger(logger),
		session.WithDownloadDir(cfg.Paths.DownloadDir),
		session.WithOutputFormat(cfg.Conversion.OutputFormat),
		session.WithPreviewRows(cfg.Conversion.PreviewRows))
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	return fn(&services{
		cfg:     cfg,
		logger:  logger,
		client:  client,
		auth:    manager,
		sink:    sink,
		history: hist,
		session: sess,
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
