package dashboard

import (
	"reflect"
	"testing"
)

func TestTmuxSocketPathFromEnv(t *testing.T) {
	t.Setenv("TMUX", "/private/tmp/tmux-502/default,35218,0")
	if got := TmuxSocketPathFromEnv(); got != "/private/tmp/tmux-502/default" {
		t.Fatalf("expected socket path, got %q", got)
	}

	t.Setenv("TMUX", "/tmp/tmux-1000/default")
	if got := TmuxSocketPathFromEnv(); got != "/tmp/tmux-1000/default" {
		t.Fatalf("expected bare socket path, got %q", got)
	}

	t.Setenv("TMUX", "")
	if got := TmuxSocketPathFromEnv(); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestSplitArgs(t *testing.T) {
	op := SplitOp{TargetPane: 0, Direction: DirHorizontal, Size: "30%", InsertBefore: true}
	want := []string{"split-window", "-d", "-h", "-b", "-l", "30%", "-t", "%0", "-P", "-F", "#{pane_id}"}
	if got := SplitArgs(op, "%0"); !reflect.DeepEqual(got, want) {
		t.Fatalf("args mismatch:\n got %v\nwant %v", got, want)
	}

	op = SplitOp{TargetPane: 2, Direction: DirVertical, Size: "12"}
	want = []string{"split-window", "-d", "-v", "-l", "12", "-t", "%5", "-P", "-F", "#{pane_id}"}
	if got := SplitArgs(op, "%5"); !reflect.DeepEqual(got, want) {
		t.Fatalf("args mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestApplyPlan_RejectsForwardReference(t *testing.T) {
	// A plan whose op targets a pane that has not been created yet must
	// fail before any tmux call is attempted.
	plan := Plan{Splits: []SplitOp{{TargetPane: 3, Direction: DirHorizontal, Size: "10"}}}
	if _, err := ApplyPlan("%0", plan); err == nil {
		t.Fatalf("expected error for forward pane reference")
	}
}

func TestApplyPlan_EmptyBasePane(t *testing.T) {
	if _, err := ApplyPlan("  ", Plan{}); err == nil {
		t.Fatalf("expected error for empty base pane id")
	}
}

func TestSendCommands_TooFewPanes(t *testing.T) {
	plan := Plan{Commands: []CommandEntry{{Command: "a"}, {Command: "b"}}}
	if err := SendCommands([]string{"%0"}, plan); err == nil {
		t.Fatalf("expected error when plan has more commands than panes")
	}
}
