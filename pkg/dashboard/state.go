package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Persistent state for task-dashboard.
// Records which dashboards are currently applied, in a JSON file under the
// user's config dir:
//
//	~/.config/task-dashboard/state.json
//
// On systems honoring XDG, $XDG_CONFIG_HOME is used instead of ~/.config.
//
// The refresh path runs in a separate process (the taskwarrior on-exit
// hook), so the pane ids recorded at start time are the only link between a
// compiled command plan and the live tmux panes. Position i of PaneIDs is
// pane id i of the plan.

const defaultStateFilename = "state.json"

// State represents the on-disk JSON structure.
// Keep fields stable for backward compatibility.
type State struct {
	// Version allows future migrations.
	Version int `json:"version,omitempty"`

	// Active lists dashboards that have been started and not stopped.
	Active []ActiveDashboard `json:"active,omitempty"`

	// Updated tracks the last update time in RFC3339.
	Updated string `json:"updated,omitempty"`
}

// ActiveDashboard records one applied dashboard.
type ActiveDashboard struct {
	Name    string `json:"name"`
	Session string `json:"session"`
	Window  string `json:"window"`

	// PaneIDs holds tmux pane ids (%N) in plan order: PaneIDs[i] is the
	// pane that received Commands[i].
	PaneIDs []string `json:"pane_ids"`

	Started string `json:"started,omitempty"`
}

// DefaultStatePath returns the full path to the state.json file.
func DefaultStatePath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, defaultStateFilename), nil
}

// LoadState reads the state JSON from path. If path is empty, the default
// path is used. If the file does not exist, it returns an empty state and
// nil error.
func LoadState(path string) (*State, error) {
	if strings.TrimSpace(path) == "" {
		var err error
		path, err = DefaultStatePath()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &State{Version: 1}, nil
		}
		return nil, fmt.Errorf("read state %s: %w", path, err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse state %s: %w", path, err)
	}
	if st.Version == 0 {
		st.Version = 1
	}
	return &st, nil
}

// SaveState writes the state JSON to path atomically.
// If path is empty, the default path is used.
// The parent directory is created with 0700 permissions if missing.
func SaveState(path string, st *State) error {
	if st == nil {
		return errors.New("nil state")
	}
	if strings.TrimSpace(path) == "" {
		var err error
		path, err = DefaultStatePath()
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create state dir %s: %w", dir, err)
	}

	st2 := *st
	st2.Updated = time.Now().UTC().Format(time.RFC3339)
	payload, err := json.MarshalIndent(st2, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	payload = append(payload, '\n')

	tmp := path + fmt.Sprintf(".tmp-%d-%d", os.Getpid(), time.Now().UnixNano())
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return fmt.Errorf("write temp state %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomic rename to %s: %w", path, err)
	}
	return nil
}

// FindActive returns the active record for the named dashboard, or nil.
func (s *State) FindActive(name string) *ActiveDashboard {
	name = strings.TrimSpace(name)
	for i := range s.Active {
		if s.Active[i].Name == name {
			return &s.Active[i]
		}
	}
	return nil
}

// UpsertActive records a started dashboard, replacing any previous record
// with the same name. Returns true if the state was modified.
func (s *State) UpsertActive(ad ActiveDashboard) bool {
	ad.Name = strings.TrimSpace(ad.Name)
	if ad.Name == "" || len(ad.PaneIDs) == 0 {
		return false
	}
	if ad.Started == "" {
		ad.Started = time.Now().UTC().Format(time.RFC3339)
	}
	for i := range s.Active {
		if s.Active[i].Name == ad.Name {
			s.Active[i] = ad
			return true
		}
	}
	s.Active = append(s.Active, ad)
	return true
}

// RemoveActive drops the record for the named dashboard.
// Returns true if the state was modified.
func (s *State) RemoveActive(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || len(s.Active) == 0 {
		return false
	}
	out := s.Active[:0]
	removed := false
	for _, ad := range s.Active {
		if ad.Name == name {
			removed = true
			continue
		}
		out = append(out, ad)
	}
	s.Active = out
	return removed
}

// PruneInactive drops active records whose tmux session is gone (server
// restarted, session killed by hand). Returns true if anything was removed.
func (s *State) PruneInactive(sessionAlive func(string) bool) bool {
	if len(s.Active) == 0 {
		return false
	}
	out := s.Active[:0]
	removed := false
	for _, ad := range s.Active {
		if !sessionAlive(ad.Session) {
			removed = true
			continue
		}
		out = append(out, ad)
	}
	s.Active = out
	return removed
}
