// Package session tracks UI-facing state: the configured game directory,
// the scanned inventory, the current selection and the loading / exporting
// / error flags. Every mutating operation acts on the filesystem and then
// rescans; nothing is patched incrementally.
//
// State changes are published as Event values on a channel the UI drains.
// The session holds no UI callbacks.
package session

import (
	"os"
	"sync"

	"github.com/handiism/l4d2-addon-manager/internal/archive"
	"github.com/handiism/l4d2-addon-manager/internal/config"
	"github.com/handiism/l4d2-addon-manager/internal/logging"
	"github.com/handiism/l4d2-addon-manager/internal/model"
	"github.com/handiism/l4d2-addon-manager/internal/scan"
)

// EventKind classifies a state change.
type EventKind int

const (
	// EventInventory fires after a rescan replaced the addon lists.
	EventInventory EventKind = iota

	// EventSelection fires when the selection sets changed.
	EventSelection

	// EventBusy fires when the loading or exporting flag flipped.
	EventBusy

	// EventError fires when the error message changed.
	EventError
)

// Event is one state-change notification.
type Event struct {
	Kind    EventKind
	Message string
}

// Session owns the inventory, selection and operation flags.
type Session struct {
	mu sync.RWMutex

	settings     *config.Settings
	settingsPath string
	outputDir    string

	scanner  *scan.Scanner
	local    []model.Addon
	workshop []model.Addon

	selectedLocal    map[string]struct{}
	selectedWorkshop map[string]struct{}

	loading   bool
	exporting bool
	errMsg    string

	events chan Event
}

// New creates a session with the given persisted settings. If the settings
// already carry a game directory it is restored but not scanned; call
// Rescan (or SetDirectory) to load the inventory.
func New(settings *config.Settings, settingsPath string) *Session {
	s := &Session{
		settings:         settings,
		settingsPath:     settingsPath,
		outputDir:        config.DownloadsDir(),
		selectedLocal:    make(map[string]struct{}),
		selectedWorkshop: make(map[string]struct{}),
		events:           make(chan Event, 32),
	}
	if settings.GameDir != "" {
		s.scanner = scan.New(settings.GameDir)
	}
	return s
}

// Events returns the channel state-change notifications are published on.
// Events are dropped, not blocked on, when the consumer lags.
func (s *Session) Events() <-chan Event {
	return s.events
}

func (s *Session) emit(e Event) {
	select {
	case s.events <- e:
	default:
	}
}

// SetOutputDir overrides where export archives are written. Defaults to
// the Downloads folder.
func (s *Session) SetOutputDir(dir string) {
	s.mu.Lock()
	s.outputDir = dir
	s.mu.Unlock()
}

// GameDir returns the configured game directory.
func (s *Session) GameDir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.GameDir
}

// Local returns the local addon records from the last scan.
func (s *Session) Local() []model.Addon {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.local
}

// Workshop returns the workshop addon records from the last scan.
func (s *Session) Workshop() []model.Addon {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workshop
}

// Loading reports whether a scan is in flight.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Exporting reports whether an export or batch delete is in flight.
func (s *Session) Exporting() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exporting
}

// Err returns the current error message; empty means no error.
func (s *Session) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// SetDirectory persists the game directory, clears any error and rescans.
func (s *Session) SetDirectory(dir string) error {
	s.mu.Lock()
	s.settings.GameDir = dir
	s.scanner = scan.New(dir)
	s.errMsg = ""
	settings, path := s.settings, s.settingsPath
	s.mu.Unlock()
	s.emit(Event{Kind: EventError})

	if err := settings.Save(path); err != nil {
		logging.Warn("saving preferences failed",
			logging.String("path", path), logging.Err(err))
	}

	return s.Rescan()
}

// Rescan rebuilds the inventory from disk, replacing both lists. The
// loading flag is raised for the duration; selections referring to files
// that vanished are pruned.
func (s *Session) Rescan() error {
	s.mu.Lock()
	if s.scanner == nil {
		s.mu.Unlock()
		return archive.ErrDirectoryNotFound
	}
	scanner := s.scanner
	s.loading = true
	s.mu.Unlock()
	s.emit(Event{Kind: EventBusy})

	local, workshop, err := scanner.Scan()

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.errMsg = err.Error()
	} else {
		s.local = local
		s.workshop = workshop
		s.errMsg = ""
		s.pruneSelection()
	}
	s.mu.Unlock()

	s.emit(Event{Kind: EventBusy})
	if err != nil {
		s.emit(Event{Kind: EventError, Message: err.Error()})
		return err
	}
	s.emit(Event{Kind: EventInventory})
	return nil
}

// pruneSelection drops selected paths that no longer exist in the
// inventory. Caller holds the lock.
func (s *Session) pruneSelection() {
	known := make(map[string]struct{}, len(s.local)+len(s.workshop))
	for _, a := range s.local {
		known[a.Path] = struct{}{}
	}
	for _, a := range s.workshop {
		known[a.Path] = struct{}{}
	}
	for p := range s.selectedLocal {
		if _, ok := known[p]; !ok {
			delete(s.selectedLocal, p)
		}
	}
	for p := range s.selectedWorkshop {
		if _, ok := known[p]; !ok {
			delete(s.selectedWorkshop, p)
		}
	}
}

// ToggleLocal adds or removes a local addon path from the selection.
// Selecting a local addon clears the workshop selection entirely: the two
// domains are mutually exclusive.
func (s *Session) ToggleLocal(path string) {
	s.mu.Lock()
	if _, ok := s.selectedLocal[path]; ok {
		delete(s.selectedLocal, path)
	} else {
		s.selectedLocal[path] = struct{}{}
		s.selectedWorkshop = make(map[string]struct{})
	}
	s.mu.Unlock()
	s.emit(Event{Kind: EventSelection})
}

// ToggleWorkshop adds or removes a workshop addon path from the selection,
// clearing the local selection on select.
func (s *Session) ToggleWorkshop(path string) {
	s.mu.Lock()
	if _, ok := s.selectedWorkshop[path]; ok {
		delete(s.selectedWorkshop, path)
	} else {
		s.selectedWorkshop[path] = struct{}{}
		s.selectedLocal = make(map[string]struct{})
	}
	s.mu.Unlock()
	s.emit(Event{Kind: EventSelection})
}

// IsSelected reports whether the given path is in either selection set.
func (s *Session) IsSelected(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.selectedLocal[path]; ok {
		return true
	}
	_, ok := s.selectedWorkshop[path]
	return ok
}

// SelectionCount returns the total number of selected addons.
func (s *Session) SelectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.selectedLocal) + len(s.selectedWorkshop)
}

// SelectedAddons resolves the selection to records, inventory order.
func (s *Session) SelectedAddons() []model.Addon {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Addon
	for _, a := range s.local {
		if _, ok := s.selectedLocal[a.Path]; ok {
			out = append(out, a)
		}
	}
	for _, a := range s.workshop {
		if _, ok := s.selectedWorkshop[a.Path]; ok {
			out = append(out, a)
		}
	}
	return out
}

// ClearSelection empties both selection sets.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	s.selectedLocal = make(map[string]struct{})
	s.selectedWorkshop = make(map[string]struct{})
	s.mu.Unlock()
	s.emit(Event{Kind: EventSelection})
}

// beginExclusive raises the exporting flag, failing when another
// export/delete is already running.
func (s *Session) beginExclusive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exporting {
		return false
	}
	s.exporting = true
	return true
}

func (s *Session) endExclusive() {
	s.mu.Lock()
	s.exporting = false
	s.mu.Unlock()
	s.emit(Event{Kind: EventBusy})
}

// ExportSelected bundles the current selection into a compressed archive
// under the output directory. On success the selection is cleared. The
// call is ignored (returns nil, nil) when an export is already running.
func (s *Session) ExportSelected() (*archive.ExportResult, error) {
	if !s.beginExclusive() {
		return nil, nil
	}
	defer s.endExclusive()
	s.emit(Event{Kind: EventBusy})

	addons := s.SelectedAddons()
	s.mu.RLock()
	outputDir := s.outputDir
	s.mu.RUnlock()

	res, err := archive.NewExporter(outputDir).Export(addons)
	if err != nil {
		s.setError(err.Error())
		return nil, err
	}

	s.ClearSelection()
	s.setError("")
	return res, nil
}

// DeleteSelected removes the selected addons from disk (best-effort) and
// rescans. Ignored when an export or delete is already running.
func (s *Session) DeleteSelected() (*archive.DeleteResult, error) {
	if !s.beginExclusive() {
		return nil, nil
	}
	defer s.endExclusive()
	s.emit(Event{Kind: EventBusy})

	addons := s.SelectedAddons()
	res, err := archive.DeleteAddons(addons)
	if err != nil {
		s.setError(err.Error())
	} else {
		s.setError("")
	}

	if rescanErr := s.Rescan(); rescanErr != nil && err == nil {
		err = rescanErr
	}
	return res, err
}

// ImportArchive extracts an uploaded archive into the addons directory and
// rescans.
func (s *Session) ImportArchive(path string) error {
	s.mu.RLock()
	gameDir := s.settings.GameDir
	s.mu.RUnlock()
	if gameDir == "" {
		s.setError(archive.ErrDirectoryNotFound.Error())
		return archive.ErrDirectoryNotFound
	}

	if err := archive.NewImporter(scan.AddonsDir(gameDir)).Import(path); err != nil {
		s.setError(err.Error())
		return err
	}

	s.setError("")
	return s.Rescan()
}

// Enable renames a disabled addon back to its plain .vpk name and rescans.
func (s *Session) Enable(addon model.Addon) error {
	if !addon.Disabled {
		return nil
	}
	return s.rename(addon.Path, addon.EnabledPath())
}

// Disable renames an addon to its .disabled variant, hiding it from the
// game, and rescans.
func (s *Session) Disable(addon model.Addon) error {
	if addon.Disabled {
		return nil
	}
	return s.rename(addon.Path, addon.DisabledPath())
}

func (s *Session) rename(from, to string) error {
	if err := os.Rename(from, to); err != nil {
		s.setError(err.Error())
		return err
	}
	s.setError("")
	return s.Rescan()
}

// DeleteOne removes a single addon (and thumbnail) and rescans.
func (s *Session) DeleteOne(addon model.Addon) error {
	_, err := archive.DeleteAddons([]model.Addon{addon})
	if err != nil {
		s.setError(err.Error())
		return err
	}
	s.setError("")
	return s.Rescan()
}

func (s *Session) setError(msg string) {
	s.mu.Lock()
	changed := s.errMsg != msg
	s.errMsg = msg
	s.mu.Unlock()
	if changed {
		s.emit(Event{Kind: EventError, Message: msg})
	}
}
