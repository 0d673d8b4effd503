package config

const (
	defaultServerURL            = "http://127.0.0.1:8000"
	defaultRequestTimeout       = 30
	defaultUploadTimeout        = 300
	defaultStateDir             = "~/.local/share/hopper/state"
	defaultDownloadDir          = "~/Downloads"
	defaultLogDir               = "~/.local/share/hopper/logs"
	defaultOutputFormat         = "csv"
	defaultPreviewRows          = 100
	defaultNotifyRequestTimeout = 10
	defaultNotifyTTLSeconds     = 8
	defaultNotifyMaxQueued      = 32
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			URL:            defaultServerURL,
			RequestTimeout: defaultRequestTimeout,
			UploadTimeout:  defaultUploadTimeout,
		},
		Paths: Paths{
			StateDir:    defaultStateDir,
			DownloadDir: defaultDownloadDir,
			LogDir:      defaultLogDir,
		},
		Conversion: Conversion{
			OutputFormat: defaultOutputFormat,
			PreviewRows:  defaultPreviewRows,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			TTLSeconds:     defaultNotifyTTLSeconds,
			MaxQueued:      defaultNotifyMaxQueued,
			Errors:         true,
			Workflow:       true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
