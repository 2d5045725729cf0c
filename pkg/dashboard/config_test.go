package dashboard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleConfig = `
dashboards:
  - name: default
    description: "Everyday overview"
    layout:
      split: horizontal
      parts: ["30%", "~"]
      children:
        - "task next"
        - split: vertical
          parts: ["~", "12"]
          children:
            - "*task list"
            - "!task calendar"
  - name: reviews
    session: task-reviews
    window: review
    layout: "task +review list"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dashboards.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_ExplicitPath(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	cfg, used, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if used != path {
		t.Fatalf("expected path %q, got %q", path, used)
	}
	if len(cfg.Dashboards) != 2 {
		t.Fatalf("expected 2 dashboards, got %d", len(cfg.Dashboards))
	}

	d := cfg.FindDashboard("default")
	if d == nil {
		t.Fatalf("default dashboard not found")
	}
	if d.Layout.CountLeaves() != 3 {
		t.Fatalf("expected 3 panes, got %d", d.Layout.CountLeaves())
	}
	if d.EffectiveSession() != DefaultSessionName {
		t.Fatalf("expected default session, got %q", d.EffectiveSession())
	}
	if d.EffectiveWindow() != "default" {
		t.Fatalf("expected window named after dashboard, got %q", d.EffectiveWindow())
	}

	r := cfg.FindDashboard("reviews")
	if r == nil || r.Layout.Leaf == nil {
		t.Fatalf("expected single-pane reviews dashboard, got %+v", r)
	}
	if r.EffectiveSession() != "task-reviews" || r.EffectiveWindow() != "review" {
		t.Fatalf("unexpected session/window: %q/%q", r.EffectiveSession(), r.EffectiveWindow())
	}
}

func TestLoadConfig_RejectsBadLayout(t *testing.T) {
	path := writeConfig(t, `
dashboards:
  - name: broken
    layout:
      split: horizontal
      parts: ["30%", "50%"]
      children: ["a", "b"]
`)
	_, _, err := LoadConfig(path)
	if err == nil {
		t.Fatalf("expected error for pivot-less layout")
	}
	if !strings.Contains(err.Error(), "pivot") {
		t.Fatalf("expected pivot error, got: %v", err)
	}
}

func TestValidate_DuplicateNames(t *testing.T) {
	cfg := &Config{Dashboards: []Dashboard{
		{Name: "a", Layout: tLeaf("task next")},
		{Name: "a", Layout: tLeaf("task list")},
	}}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate name error, got: %v", err)
	}
}

func TestValidate_MissingLayout(t *testing.T) {
	cfg := &Config{Dashboards: []Dashboard{{Name: "a"}}}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "layout") {
		t.Fatalf("expected layout error, got: %v", err)
	}
}

func TestDefaultDashboard(t *testing.T) {
	one := &Config{Dashboards: []Dashboard{{Name: "solo", Layout: tLeaf("task next")}}}
	if d := one.DefaultDashboard(); d == nil || d.Name != "solo" {
		t.Fatalf("expected solo, got %+v", d)
	}

	named := &Config{Dashboards: []Dashboard{
		{Name: "other", Layout: tLeaf("task next")},
		{Name: "default", Layout: tLeaf("task list")},
	}}
	if d := named.DefaultDashboard(); d == nil || d.Name != "default" {
		t.Fatalf("expected default, got %+v", d)
	}

	none := &Config{Dashboards: []Dashboard{
		{Name: "a", Layout: tLeaf("task next")},
		{Name: "b", Layout: tLeaf("task list")},
	}}
	if d := none.DefaultDashboard(); d != nil {
		t.Fatalf("expected nil, got %+v", d)
	}
}

func TestConfigPathCandidates_Order(t *testing.T) {
	t.Setenv("TASK_DASHBOARD_CONFIG", "/env/dashboards.yaml")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	got := ConfigPathCandidates("/explicit.yaml")
	if len(got) < 3 {
		t.Fatalf("expected at least 3 candidates, got %v", got)
	}
	if got[0] != "/explicit.yaml" {
		t.Fatalf("explicit path must come first, got %v", got)
	}
	if got[1] != "/env/dashboards.yaml" {
		t.Fatalf("env path must come second, got %v", got)
	}
	if got[2] != filepath.Join("/xdg", "task-dashboard", "dashboards.yaml") {
		t.Fatalf("xdg path must come third, got %v", got)
	}
}
