package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"hopper/internal/api"
	"hopper/internal/fileutil"
	"hopper/internal/history"
	"hopper/internal/logging"
)

// ConversionAPI is the slice of the backend client the stage machine needs.
type ConversionAPI interface {
	Scan(ctx context.Context, archivePath string) (*api.ScanResponse, error)
	Convert(ctx context.Context, sessionID, outputFormat string, groups []string) (*api.ConvertResponse, error)
	ListFiles(ctx context.Context, sessionID string) (*api.FileListing, error)
	Preview(ctx context.Context, sessionID, filename string, maxRows int) (*api.PreviewPayload, error)
	DownloadAll(ctx context.Context, sessionID string, w io.Writer) (int64, error)
	DownloadModified(ctx context.Context, sessionID string, w io.Writer) (int64, error)
	DownloadFile(ctx context.Context, sessionID, filename string, w io.Writer) (int64, error)
	DownloadGroup(ctx context.Context, sessionID, group string, w io.Writer) (int64, error)
	Cleanup(ctx context.Context, sessionID string) error
}

// Notifier is the slice of the notification sink the stage machine needs.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Recorder persists run rows in the history ledger.
type Recorder interface {
	RecordScan(ctx context.Context, run history.Run) (int64, error)
	UpdateRun(ctx context.Context, sessionID string, status history.Status, fileCount int, errorMessage string) error
}

// Option customises Session construction.
type Option func(*Session)

// WithNotifier routes workflow outcomes to a notification sink.
func WithNotifier(notifier Notifier) Option {
	return func(s *Session) { s.notifier = notifier }
}

// WithRecorder attaches the run history ledger.
func WithRecorder(recorder Recorder) Option {
	return func(s *Session) { s.recorder = recorder }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logging.NewComponentLogger(logger, "session") }
}

// WithSnapshotStore injects a custom persistence layer.
func WithSnapshotStore(store SnapshotStore) Option {
	return func(s *Session) { s.store = store }
}

// WithDownloadDir overrides where downloads are written.
func WithDownloadDir(dir string) Option {
	return func(s *Session) { s.downloadDir = dir }
}

// WithOutputFormat sets the conversion output format.
func WithOutputFormat(format string) Option {
	return func(s *Session) { s.outputFormat = format }
}

// WithPreviewRows caps preview fetches at rows.
func WithPreviewRows(rows int) Option {
	return func(s *Session) { s.previewRows = rows }
}

// Session is the conversion workflow stage machine. All exported methods are
// safe for concurrent use; overlapping workflow operations are rejected with
// ErrBusy rather than queued.
type Session struct {
	api          ConversionAPI
	store        SnapshotStore
	notifier     Notifier
	recorder     Recorder
	logger       *slog.Logger
	downloadDir  string
	outputFormat string
	previewRows  int

	mu           sync.Mutex
	epoch        uint64
	stage        Stage
	sessionID    string
	archive      string
	pendingFiles []string
	groups       []api.Group
	summary      *api.ScanSummary
	xmlCount     int
	files        []api.ConvertedFile
	totalFiles   int
	converted    bool
	activeGroup  string
	activeFile   string
	preview      *api.PreviewPayload
	selected     map[string]struct{}
	search       string
	editMode     bool
	lastError    string
}

// New constructs a Session, restoring any snapshot persisted under stateDir.
func New(client ConversionAPI, stateDir string, opts ...Option) (*Session, error) {
	s := &Session{
		api:          client,
		store:        NewFileSnapshotStore(stateDir),
		logger:       logging.NewNop(),
		downloadDir:  ".",
		outputFormat: "csv",
		previewRows:  100,
		stage:        StageIdle,
		selected:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	snap, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	if snap != nil {
		s.restore(snap)
	}
	return s, nil
}

func (s *Session) restore(snap *Snapshot) {
	s.epoch = snap.Epoch
	s.stage = snap.Stage
	// A snapshot never records an in-flight stage while the process that
	// wrote it is alive, so one found on disk means a crash mid-operation.
	switch s.stage {
	case StageScanning:
		s.stage = StageIdle
	case StageConverting:
		s.stage = StageScanned
	case StageCleaning:
		s.stage = StageConverted
	}
	s.sessionID = snap.SessionID
	s.archive = snap.Archive
	s.pendingFiles = append([]string(nil), snap.PendingFiles...)
	s.groups = append([]api.Group(nil), snap.Groups...)
	s.summary = snap.Summary
	s.xmlCount = snap.XMLCount
	s.files = append([]api.ConvertedFile(nil), snap.Files...)
	s.totalFiles = snap.TotalFiles
	s.converted = snap.Converted
	s.activeGroup = snap.ActiveGroup
	s.activeFile = snap.ActiveFile
	s.selected = make(map[string]struct{}, len(snap.Selected))
	for _, name := range snap.Selected {
		s.selected[name] = struct{}{}
	}
	s.search = snap.Search
	s.editMode = snap.EditMode
	s.lastError = snap.LastError
}

func (s *Session) snapshotLocked() *Snapshot {
	selected := make([]string, 0, len(s.selected))
	for name := range s.selected {
		selected = append(selected, name)
	}
	sort.Strings(selected)

	return &Snapshot{
		Epoch:        s.epoch,
		Stage:        s.stage,
		SessionID:    s.sessionID,
		Archive:      s.archive,
		PendingFiles: append([]string(nil), s.pendingFiles...),
		Groups:       append([]api.Group(nil), s.groups...),
		Summary:      s.summary,
		XMLCount:     s.xmlCount,
		Files:        append([]api.ConvertedFile(nil), s.files...),
		TotalFiles:   s.totalFiles,
		Converted:    s.converted,
		ActiveGroup:  s.activeGroup,
		ActiveFile:   s.activeFile,
		Selected:     selected,
		Search:       s.search,
		EditMode:     s.editMode,
		LastError:    s.lastError,
		SavedAt:      time.Now().UTC(),
	}
}

func (s *Session) persistLocked() {
	if err := s.store.Save(s.snapshotLocked()); err != nil {
		s.logger.Warn("failed to persist session snapshot", logging.Error(err))
	}
}

// AddFiles appends paths to the pending upload queue. Purely local.
func (s *Session) AddFiles(paths ...string) {
	if len(paths) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingFiles = append(s.pendingFiles, paths...)
	s.persistLocked()
}

// PendingFiles returns the queued upload paths.
func (s *Session) PendingFiles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.pendingFiles...)
}

// Scan uploads the first queued file and populates the group list. On
// failure no session state is retained.
func (s *Session) Scan(ctx context.Context) error {
	s.mu.Lock()
	if s.stage.InFlight() {
		s.mu.Unlock()
		return fmt.Errorf("%w: stage %s", ErrBusy, s.stage)
	}
	if len(s.pendingFiles) == 0 {
		s.mu.Unlock()
		return ErrNoFiles
	}
	archive := s.pendingFiles[0]
	prev := s.stage
	s.stage = StageScanning
	epoch := s.epoch
	s.mu.Unlock()

	resp, err := s.api.Scan(ctx, archive)

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return ErrStale
	}
	if err != nil {
		s.stage = prev
		s.lastError = api.ErrorMessage(err)
		s.persistLocked()
		if s.notifier != nil {
			s.notifier.Error("Scan failed: " + s.lastError)
		}
		return err
	}

	s.sessionID = resp.SessionID
	s.archive = filepath.Base(archive)
	s.pendingFiles = s.pendingFiles[1:]
	s.groups = append([]api.Group(nil), resp.Groups...)
	s.summary = resp.Summary
	if s.summary == nil {
		s.summary = &api.ScanSummary{TotalGroups: len(resp.Groups), TotalFiles: resp.XMLCount}
	}
	s.xmlCount = resp.XMLCount
	s.files = nil
	s.totalFiles = 0
	s.converted = false
	s.activeGroup = ""
	s.activeFile = ""
	s.preview = nil
	s.selected = make(map[string]struct{})
	s.lastError = ""
	s.stage = StageScanned
	s.persistLocked()

	s.recordScanLocked(ctx)
	if s.notifier != nil {
		s.notifier.Success(fmt.Sprintf("Scanned %s: %d groups", s.archive, len(s.groups)))
	}
	s.logger.Info("scan complete",
		logging.String(logging.FieldSession, s.sessionID),
		logging.Int("groups", len(s.groups)))
	return nil
}

func (s *Session) recordScanLocked(ctx context.Context) {
	if s.recorder == nil {
		return
	}
	run := history.Run{
		SessionID:    s.sessionID,
		Archive:      s.archive,
		OutputFormat: s.outputFormat,
		GroupCount:   len(s.groups),
		FileCount:    s.summary.TotalFiles,
	}
	if _, err := s.recorder.RecordScan(ctx, run); err != nil {
		s.logger.Warn("failed to record scan in history", logging.Error(err))
	}
}

func (s *Session) recordStatusLocked(ctx context.Context, status history.Status, fileCount int, message string) {
	if s.recorder == nil || s.sessionID == "" {
		return
	}
	if err := s.recorder.UpdateRun(ctx, s.sessionID, status, fileCount, message); err != nil {
		s.logger.Warn("failed to update run history", logging.Error(err))
	}
}

// Convert submits the conversion for every scanned group and, on success,
// cascades into loading the converted file listing.
func (s *Session) Convert(ctx context.Context) error {
	s.mu.Lock()
	if s.stage.InFlight() {
		s.mu.Unlock()
		return fmt.Errorf("%w: stage %s", ErrBusy, s.stage)
	}
	if s.sessionID == "" {
		s.mu.Unlock()
		return ErrNoSession
	}
	sessionID := s.sessionID
	format := s.outputFormat
	names := make([]string, 0, len(s.groups))
	for _, group := range s.groups {
		names = append(names, group.Name)
	}
	prev := s.stage
	s.stage = StageConverting
	epoch := s.epoch
	s.mu.Unlock()

	resp, err := s.api.Convert(ctx, sessionID, format, names)

	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return ErrStale
	}
	if err == nil && !resp.Success {
		err = fmt.Errorf("%w: backend reported %d errors", ErrConversionFailed, resp.Stats.Errors)
	}
	if err != nil {
		s.stage = prev
		s.lastError = api.ErrorMessage(err)
		s.persistLocked()
		s.recordStatusLocked(ctx, history.StatusFailed, 0, s.lastError)
		if s.notifier != nil {
			s.notifier.Error("Conversion failed: " + s.lastError)
		}
		s.mu.Unlock()
		return err
	}

	s.converted = true
	s.stage = StageConverted
	s.lastError = ""
	s.persistLocked()
	s.recordStatusLocked(ctx, history.StatusConverted, resp.Stats.Converted, "")
	if s.notifier != nil {
		s.notifier.Success(fmt.Sprintf("Converted %d files", resp.Stats.Converted))
	}
	s.logger.Info("conversion complete",
		logging.String(logging.FieldSession, sessionID),
		logging.Int("converted", resp.Stats.Converted),
		logging.Int("skipped", resp.Stats.Skipped))
	s.mu.Unlock()

	s.loadConvertedFiles(ctx, epoch)
	return nil
}

// LoadConvertedFiles refreshes the converted file listing. Best-effort:
// failures are logged and the last successfully loaded listing stays.
func (s *Session) LoadConvertedFiles(ctx context.Context) {
	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()
	s.loadConvertedFiles(ctx, epoch)
}

func (s *Session) loadConvertedFiles(ctx context.Context, epoch uint64) {
	s.mu.Lock()
	sessionID := s.sessionID
	s.mu.Unlock()
	if sessionID == "" {
		return
	}

	listing, err := s.api.ListFiles(ctx, sessionID)
	if err != nil {
		s.logger.Warn("failed to load converted files",
			logging.String(logging.FieldSession, sessionID),
			logging.Error(err))
		return
	}

	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return
	}
	if len(listing.Groups) > 0 {
		s.groups = append([]api.Group(nil), listing.Groups...)
		s.pruneSelectionLocked()
	}
	s.files = append([]api.ConvertedFile(nil), listing.Files...)
	s.totalFiles = listing.TotalFiles
	if len(listing.Groups) > 0 {
		s.activeGroup = listing.Groups[0].Name
	}
	s.persistLocked()
	s.mu.Unlock()

	s.loadGroupFiles(ctx, epoch)
}

// loadGroupFiles filters the loaded listing by the active group. Purely
// local; cascades into a preview fetch when the group has files.
func (s *Session) loadGroupFiles(ctx context.Context, epoch uint64) {
	s.mu.Lock()
	if epoch != s.epoch || s.activeGroup == "" {
		s.mu.Unlock()
		return
	}
	var first string
	for _, file := range s.files {
		if file.Group == s.activeGroup {
			first = file.Filename
			break
		}
	}
	if first == "" {
		s.mu.Unlock()
		return
	}
	s.activeFile = first
	s.persistLocked()
	s.mu.Unlock()

	s.loadFilePreview(ctx, epoch)
}

// loadFilePreview fetches the row-capped preview for the active file. A
// failed load clears the preview so stale content never shows under the
// wrong file's label.
func (s *Session) loadFilePreview(ctx context.Context, epoch uint64) {
	s.mu.Lock()
	sessionID := s.sessionID
	filename := s.activeFile
	s.mu.Unlock()
	if sessionID == "" || filename == "" {
		return
	}

	preview, err := s.api.Preview(ctx, sessionID, filename, s.previewRows)

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return
	}
	if err != nil {
		s.logger.Warn("failed to load preview",
			logging.String(logging.FieldFile, filename),
			logging.Error(err))
		s.preview = nil
		return
	}
	s.preview = preview
}

// SelectGroup makes name the active group and reloads its first file's
// preview.
func (s *Session) SelectGroup(ctx context.Context, name string) error {
	s.mu.Lock()
	if !s.hasGroupLocked(name) {
		s.mu.Unlock()
		return fmt.Errorf("unknown group %q", name)
	}
	s.activeGroup = name
	s.activeFile = ""
	s.preview = nil
	epoch := s.epoch
	s.persistLocked()
	s.mu.Unlock()

	s.loadGroupFiles(ctx, epoch)
	return nil
}

// SelectFile makes name the active file and fetches its preview.
func (s *Session) SelectFile(ctx context.Context, name string) error {
	s.mu.Lock()
	var found *api.ConvertedFile
	for i := range s.files {
		if s.files[i].Filename == name {
			found = &s.files[i]
			break
		}
	}
	if found == nil {
		s.mu.Unlock()
		return fmt.Errorf("unknown file %q", name)
	}
	s.activeFile = found.Filename
	s.activeGroup = found.Group
	epoch := s.epoch
	s.persistLocked()
	s.mu.Unlock()

	s.loadFilePreview(ctx, epoch)
	return nil
}

// PreviewFile fetches the row-capped preview for filename without changing
// the active selection.
func (s *Session) PreviewFile(ctx context.Context, filename string, maxRows int) (*api.PreviewPayload, error) {
	s.mu.Lock()
	sessionID := s.sessionID
	s.mu.Unlock()
	if sessionID == "" {
		return nil, ErrNoSession
	}
	if maxRows <= 0 {
		maxRows = s.previewRows
	}
	return s.api.Preview(ctx, sessionID, filename, maxRows)
}

// DownloadAll saves the archive of every converted file as
// converted_output.zip in the download directory.
func (s *Session) DownloadAll(ctx context.Context) (string, int64, error) {
	return s.download(ctx, "converted_output.zip", s.api.DownloadAll)
}

// DownloadModified saves the archive of edited files as
// modified_output.zip. Requires edit mode.
func (s *Session) DownloadModified(ctx context.Context) (string, int64, error) {
	s.mu.Lock()
	editing := s.editMode
	s.mu.Unlock()
	if !editing {
		return "", 0, ErrEditMode
	}
	return s.download(ctx, "modified_output.zip", s.api.DownloadModified)
}

// DownloadFile saves one converted file under its own name.
func (s *Session) DownloadFile(ctx context.Context, filename string) (string, int64, error) {
	return s.download(ctx, filename, func(ctx context.Context, sessionID string, w io.Writer) (int64, error) {
		return s.api.DownloadFile(ctx, sessionID, filename, w)
	})
}

// DownloadGroup saves the archive of one group as {group}_group.zip.
func (s *Session) DownloadGroup(ctx context.Context, group string) (string, int64, error) {
	return s.download(ctx, group+"_group.zip", func(ctx context.Context, sessionID string, w io.Writer) (int64, error) {
		return s.api.DownloadGroup(ctx, sessionID, group, w)
	})
}

func (s *Session) download(ctx context.Context, filename string, fetch func(context.Context, string, io.Writer) (int64, error)) (string, int64, error) {
	s.mu.Lock()
	sessionID := s.sessionID
	s.mu.Unlock()
	if sessionID == "" {
		return "", 0, ErrNoSession
	}

	if err := fileutil.EnsureDir(s.downloadDir); err != nil {
		return "", 0, err
	}
	target, err := fileutil.UniquePath(filepath.Join(s.downloadDir, fileutil.SanitizeFilename(filename)))
	if err != nil {
		return "", 0, err
	}

	out, err := os.Create(target)
	if err != nil {
		return "", 0, fmt.Errorf("create download %q: %w", target, err)
	}
	written, err := fetch(ctx, sessionID, out)
	closeErr := out.Close()
	if err != nil {
		_ = os.Remove(target)
		return "", 0, err
	}
	if closeErr != nil {
		_ = os.Remove(target)
		return "", 0, fmt.Errorf("finalize download %q: %w", target, closeErr)
	}

	s.mu.Lock()
	s.recordStatusLocked(ctx, history.StatusDownloaded, 0, "")
	s.mu.Unlock()
	s.logger.Info("download complete",
		logging.String(logging.FieldFile, filepath.Base(target)),
		logging.Int64("bytes", written))
	return target, written, nil
}

// Cleanup requests upstream teardown of session-scoped resources and, only
// when that succeeds, resets local state. A failed teardown leaves local
// state intact so the caller can retry or Reset explicitly.
func (s *Session) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	if s.sessionID == "" {
		s.mu.Unlock()
		return nil
	}
	if s.stage.InFlight() {
		s.mu.Unlock()
		return fmt.Errorf("%w: stage %s", ErrBusy, s.stage)
	}
	sessionID := s.sessionID
	prev := s.stage
	s.stage = StageCleaning
	epoch := s.epoch
	s.mu.Unlock()

	err := s.api.Cleanup(ctx, sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return ErrStale
	}
	if err != nil {
		s.stage = prev
		s.lastError = api.ErrorMessage(err)
		s.persistLocked()
		return err
	}

	s.recordStatusLocked(ctx, history.StatusCleaned, 0, "")
	s.resetLocked()
	s.logger.Info("cleanup complete", logging.String(logging.FieldSession, sessionID))
	return nil
}

// Reset unconditionally tears every field down to its initial value and
// discards in-flight results.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.epoch++
	s.stage = StageIdle
	s.sessionID = ""
	s.archive = ""
	s.pendingFiles = nil
	s.groups = nil
	s.summary = nil
	s.xmlCount = 0
	s.files = nil
	s.totalFiles = 0
	s.converted = false
	s.activeGroup = ""
	s.activeFile = ""
	s.preview = nil
	s.selected = make(map[string]struct{})
	s.search = ""
	s.editMode = false
	s.lastError = ""
	if err := s.store.Clear(); err != nil {
		s.logger.Warn("failed to clear session snapshot", logging.Error(err))
	}
}

// SelectAllGroups marks every scanned group as selected.
func (s *Session) SelectAllGroups() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[string]struct{}, len(s.groups))
	for _, group := range s.groups {
		s.selected[group.Name] = struct{}{}
	}
	s.persistLocked()
}

// ClearGroupSelection empties the selection set.
func (s *Session) ClearGroupSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[string]struct{})
	s.persistLocked()
}

// ToggleGroup flips name's membership in the selection set. Names that
// are not in the loaded group set are ignored.
func (s *Session) ToggleGroup(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.selected[name]; ok {
		delete(s.selected, name)
	} else if s.hasGroupLocked(name) {
		s.selected[name] = struct{}{}
	} else {
		return
	}
	s.persistLocked()
}

// pruneSelectionLocked drops selected names that no longer exist in the
// loaded group set. Called whenever s.groups is replaced.
func (s *Session) pruneSelectionLocked() {
	for name := range s.selected {
		if !s.hasGroupLocked(name) {
			delete(s.selected, name)
		}
	}
}

// SelectedGroups returns the selection set in sorted order.
func (s *Session) SelectedGroups() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.selected))
	for name := range s.selected {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetSearch updates the group search term.
func (s *Session) SetSearch(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = term
	s.persistLocked()
}

// FilteredGroups returns groups whose names contain the search term
// case-insensitively, or every group when the term is empty.
func (s *Session) FilteredGroups() []api.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.search == "" {
		return append([]api.Group(nil), s.groups...)
	}
	needle := strings.ToLower(s.search)
	var filtered []api.Group
	for _, group := range s.groups {
		if strings.Contains(strings.ToLower(group.Name), needle) {
			filtered = append(filtered, group)
		}
	}
	return filtered
}

// SetEditMode toggles the edit-mode flag gating DownloadModified.
func (s *Session) SetEditMode(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editMode = enabled
	s.persistLocked()
}

// EditMode reports whether edit mode is enabled.
func (s *Session) EditMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editMode
}

func (s *Session) hasGroupLocked(name string) bool {
	for _, group := range s.groups {
		if group.Name == name {
			return true
		}
	}
	return false
}

// Stage returns the current workflow stage.
func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// HasSession reports whether a backend session is active.
func (s *Session) HasSession() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID != ""
}

// SessionID returns the backend session identity, empty when none.
func (s *Session) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// Archive returns the name of the last scanned archive.
func (s *Session) Archive() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.archive
}

// IsScanned reports whether a scan produced at least one group.
func (s *Session) IsScanned() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.groups) > 0
}

// IsConverted reports whether conversion succeeded and produced files.
func (s *Session) IsConverted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.converted && len(s.files) > 0
}

// Groups returns the scanned groups.
func (s *Session) Groups() []api.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Group(nil), s.groups...)
}

// Summary returns the scan summary, nil before any scan.
func (s *Session) Summary() *api.ScanSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

// Files returns the converted file listing.
func (s *Session) Files() []api.ConvertedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.ConvertedFile(nil), s.files...)
}

// TotalFiles returns the backend-reported converted file count.
func (s *Session) TotalFiles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalFiles
}

// ActiveGroup returns the group currently being browsed, empty when none.
func (s *Session) ActiveGroup() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeGroup
}

// ActiveFile returns the file currently being browsed, empty when none.
func (s *Session) ActiveFile() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeFile
}

// Preview returns the cached preview for the active file, nil when absent.
func (s *Session) Preview() *api.PreviewPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

// Search returns the current group search term.
func (s *Session) Search() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.search
}

// LastError returns the message recorded by the most recent failed
// operation, empty after a success or reset.
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}
