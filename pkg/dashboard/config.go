// Package dashboard turns declarative pane layouts for taskwarrior reports
// into live tmux windows, and keeps them current via the taskwarrior on-exit
// hook.
package dashboard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the full YAML configuration for task-dashboard.
//
// Example YAML:
//
// dashboards:
//   - name: default
//     session: task-dashboard
//     layout:
//       split: horizontal
//       parts: ["30%", "~"]
//       children:
//         - "task next"
//         - split: vertical
//           parts: ["~", "12"]
//           children:
//             - "*task list"
//             - "!task calendar"
type Config struct {
	Dashboards []Dashboard `yaml:"dashboards"`
}

// Dashboard is one named pane arrangement.
type Dashboard struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	// Session is the tmux session hosting the dashboard window.
	// Defaults to "task-dashboard".
	Session string `yaml:"session,omitempty"`

	// Window is the tmux window name. Defaults to the dashboard name.
	Window string `yaml:"window,omitempty"`

	Layout LayoutNode `yaml:"layout"`
}

const (
	defaultConfigDirName  = "task-dashboard"
	defaultConfigFilename = "dashboards.yaml"

	// DefaultSessionName hosts dashboard windows when a dashboard does
	// not name its own session.
	DefaultSessionName = "task-dashboard"
)

// ErrConfigNotFound is returned when no configuration file can be located.
var ErrConfigNotFound = errors.New("config not found")

// LoadConfig discovers and loads the YAML configuration.
// If explicitPath is empty, it searches common locations in order:
// 1. $TASK_DASHBOARD_CONFIG
// 2. $XDG_CONFIG_HOME/task-dashboard/dashboards.yaml
// 3. ~/.config/task-dashboard/dashboards.yaml
//
// Returns the parsed Config and the path that was used.
func LoadConfig(explicitPath string) (*Config, string, error) {
	candidates := ConfigPathCandidates(explicitPath)
	var lastErr error
	for _, p := range candidates {
		p = expandPath(p)
		if p == "" {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			lastErr = err
			continue
		}
		var cfg Config
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, p, fmt.Errorf("parse yaml %s: %w", p, err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, p, fmt.Errorf("invalid config %s: %w", p, err)
		}
		return &cfg, p, nil
	}
	if lastErr == nil {
		lastErr = ErrConfigNotFound
	}
	return nil, "", lastErr
}

// ConfigPathCandidates returns possible configuration file paths, in
// priority order. If explicitPath is provided, it is returned first.
func ConfigPathCandidates(explicitPath string) []string {
	var out []string
	if explicitPath != "" {
		out = append(out, explicitPath)
	}
	if env := os.Getenv("TASK_DASHBOARD_CONFIG"); env != "" {
		out = append(out, env)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		out = append(out, filepath.Join(xdg, defaultConfigDirName, defaultConfigFilename))
	}
	home, _ := os.UserHomeDir()
	if home != "" {
		out = append(out, filepath.Join(home, ".config", defaultConfigDirName, defaultConfigFilename))
	}
	return out
}

// DefaultConfigDir returns the directory path for this application's config.
// Precedence:
//  1. $XDG_CONFIG_HOME/task-dashboard
//  2. ~/.config/task-dashboard
func DefaultConfigDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, defaultConfigDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".config", defaultConfigDirName), nil
}

// Validate performs sanity checks on the configuration.
//
// - At least one dashboard must be defined.
// - Dashboard names must be unique and non-empty.
// - Layouts must be present; their structural invariants (parts/children
//   lengths, single pivot, marker syntax) are enforced during YAML decoding.
func (c *Config) Validate() error {
	if len(c.Dashboards) == 0 {
		return errors.New("at least one dashboard is required")
	}
	seen := map[string]struct{}{}
	for i, d := range c.Dashboards {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			return fmt.Errorf("dashboards[%d]: name is required", i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("dashboards[%d]: duplicate dashboard name %q", i, name)
		}
		seen[name] = struct{}{}

		if d.Layout.Leaf == nil && d.Layout.Split == nil {
			return fmt.Errorf("dashboards[%d](%s): layout is required", i, name)
		}
	}
	return nil
}

// FindDashboard returns a pointer to the dashboard by name, or nil if not
// found.
func (c *Config) FindDashboard(name string) *Dashboard {
	name = strings.TrimSpace(name)
	for i := range c.Dashboards {
		if c.Dashboards[i].Name == name {
			return &c.Dashboards[i]
		}
	}
	return nil
}

// DefaultDashboard picks the dashboard to use when none is named:
// the only one if exactly one is defined, else the one named "default",
// else nil (the caller should offer a picker).
func (c *Config) DefaultDashboard() *Dashboard {
	if len(c.Dashboards) == 1 {
		return &c.Dashboards[0]
	}
	return c.FindDashboard("default")
}

// EffectiveSession returns the tmux session name for this dashboard.
func (d *Dashboard) EffectiveSession() string {
	if s := strings.TrimSpace(d.Session); s != "" {
		return s
	}
	return DefaultSessionName
}

// EffectiveWindow returns the tmux window name for this dashboard.
func (d *Dashboard) EffectiveWindow() string {
	if w := strings.TrimSpace(d.Window); w != "" {
		return w
	}
	return strings.TrimSpace(d.Name)
}

// expandPath expands leading "~" and environment variables in a path.
// If the input is empty, returns "".
func expandPath(p string) string {
	if p == "" {
		return ""
	}
	p = os.ExpandEnv(p)
	if strings.HasPrefix(p, "~") {
		home, _ := os.UserHomeDir()
		if home != "" {
			if p == "~" {
				p = home
			} else if strings.HasPrefix(p, "~/") {
				p = filepath.Join(home, p[2:])
			}
		}
	}
	return p
}
