package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"hopper/internal/config"
	"hopper/internal/history"
	"hopper/internal/session"
)

var titleCaser = cases.Title(language.English)

// writeJSON renders v as indented JSON for the --json output mode.
func writeJSON(cmd *cobra.Command, v any) error {
	return encodeJSON(cmd.OutOrStdout(), v)
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func stageLabel(stage session.Stage) string {
	return titleCaser.String(strings.ReplaceAll(string(stage), "_", " "))
}

func statusLabel(status history.Status) string {
	return titleCaser.String(string(status))
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

// sessionWithFormat rebuilds the stage machine with a per-invocation output
// format override, leaving the configured default untouched.
func sessionWithFormat(svc *services, format string) (*session.Session, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "csv", "xlsx", "json":
	default:
		return nil, fmt.Errorf("unsupported output format %q (expected csv, xlsx, or json)", format)
	}
	return rebuildSession(svc, session.WithOutputFormat(format))
}

// downloadSession returns the stage machine, rebuilt with a destination
// override when --dir was passed.
func downloadSession(svc *services, dir string) (*session.Session, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return svc.session, nil
	}
	expanded, err := config.ExpandPath(dir)
	if err != nil {
		return nil, err
	}
	return rebuildSession(svc, session.WithDownloadDir(expanded))
}

func rebuildSession(svc *services, override session.Option) (*session.Session, error) {
	return session.New(svc.client, svc.cfg.Paths.StateDir,
		session.WithNotifier(svc.sink),
		session.WithRecorder(svc.history),
		session.WithLogger(svc.logger),
		session.WithDownloadDir(svc.cfg.Paths.DownloadDir),
		session.WithOutputFormat(svc.cfg.Conversion.OutputFormat),
		session.WithPreviewRows(svc.cfg.Conversion.PreviewRows),
		override)
}
