package dashboard

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// tmux.go
//
// Socket-aware tmux command runner plus the two executors that consume a
// compiled Plan:
//
//   - ApplyPlan: runs each SplitOp as one split-window call and records the
//     tmux pane id (%N) of every created pane, so plan position i maps to a
//     concrete pane regardless of how tmux numbers pane indexes spatially.
//   - SendCommands / ResendCommands: deliver the command plan (or a filtered
//     refresh subset) as send-keys to the recorded panes.
//
// Why socket-awareness: the refresh path runs inside a taskwarrior hook
// process whose environment may differ from the client that started the
// dashboard. The TMUX environment variable carries the server socket path
// before the first comma; `tmux -S <socket>` forces commands to the correct
// server.

// ErrNotInTmux is returned when no tmux server can be reached.
var ErrNotInTmux = errors.New("not in tmux")

// TmuxSocketPathFromEnv parses $TMUX and returns the socket path portion.
// If TMUX is empty or malformed, returns "".
func TmuxSocketPathFromEnv() string {
	t := strings.TrimSpace(os.Getenv("TMUX"))
	if t == "" {
		return ""
	}
	// TMUX format: <socket_path>,<server_pid>,<client_id>
	if i := strings.IndexByte(t, ','); i >= 0 {
		return t[:i]
	}
	return t
}

// HaveTmuxServer returns true if we can plausibly talk to tmux.
func HaveTmuxServer() bool {
	if TmuxSocketPathFromEnv() != "" {
		return true
	}
	cmd := exec.Command("tmux", "-V")
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}

// TmuxCmd creates an exec.Cmd to run tmux with socket-awareness when
// possible.
func TmuxCmd(args ...string) (*exec.Cmd, error) {
	if len(args) == 0 {
		return nil, errors.New("tmux: empty args")
	}
	socket := TmuxSocketPathFromEnv()
	full := make([]string, 0, len(args)+2)
	if socket != "" {
		full = append(full, "-S", socket)
	}
	full = append(full, args...)
	cmd := exec.Command("tmux", full...)
	cmd.Stdin = nil
	return cmd, nil
}

// TmuxOutput runs a tmux command and returns stdout (trimmed) or an error
// containing stderr.
func TmuxOutput(args ...string) (string, error) {
	cmd, err := TmuxCmd(args...)
	if err != nil {
		return "", err
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if runErr := cmd.Run(); runErr != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = runErr.Error()
		}
		return "", fmt.Errorf("tmux %s: %s", strings.Join(args, " "), msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// TmuxRun runs a tmux command and returns a rich error message on failure.
func TmuxRun(args ...string) error {
	_, err := TmuxOutput(args...)
	return err
}

// SessionActive reports whether the named tmux session exists.
func SessionActive(session string) bool {
	session = strings.TrimSpace(session)
	if session == "" {
		return false
	}
	cmd, err := TmuxCmd("has-session", "-t", "="+session)
	if err != nil {
		return false
	}
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}

// EnsureWindow creates the dashboard window and returns the tmux pane id of
// its first (and only) pane. If the session does not exist it is created
// detached. An existing window with the same name is replaced: a dashboard
// start is declarative, stale panes must not survive it.
func EnsureWindow(session, window string) (string, error) {
	session = strings.TrimSpace(session)
	window = strings.TrimSpace(window)
	if session == "" {
		return "", errors.New("tmux: empty session name")
	}
	if window == "" {
		return "", errors.New("tmux: empty window name")
	}

	if !SessionActive(session) {
		return TmuxOutput("new-session", "-d", "-s", session, "-n", window,
			"-P", "-F", "#{pane_id}")
	}

	// Replace a leftover window from an earlier start, best-effort.
	_ = TmuxRun("kill-window", "-t", session+":"+window)

	return TmuxOutput("new-window", "-d", "-t", session+":", "-n", window,
		"-P", "-F", "#{pane_id}")
}

// KillWindow removes the dashboard window (best-effort; the window may
// already be gone).
func KillWindow(session, window string) error {
	return TmuxRun("kill-window", "-t", strings.TrimSpace(session)+":"+strings.TrimSpace(window))
}

// SplitArgs builds the split-window argv for one operation, targeting the
// tmux pane id that holds the plan pane op.TargetPane. Exposed for tests.
func SplitArgs(op SplitOp, targetID string) []string {
	args := []string{"split-window", "-d"}
	if op.Direction == DirHorizontal {
		args = append(args, "-h")
	} else {
		args = append(args, "-v")
	}
	if op.InsertBefore {
		args = append(args, "-b")
	}
	if op.Size != "" {
		args = append(args, "-l", op.Size)
	}
	args = append(args, "-t", targetID, "-P", "-F", "#{pane_id}")
	return args
}

// ApplyPlan executes the split plan against a freshly created window whose
// sole pane is basePaneID. It returns the tmux pane ids in plan order:
// ids[0] is the base pane, ids[n] the pane created by the nth SplitOp.
func ApplyPlan(basePaneID string, plan Plan) ([]string, error) {
	basePaneID = strings.TrimSpace(basePaneID)
	if basePaneID == "" {
		return nil, errors.New("tmux: empty base pane id")
	}

	ids := make([]string, 1, len(plan.Splits)+1)
	ids[0] = basePaneID

	for n, op := range plan.Splits {
		if op.TargetPane < 0 || op.TargetPane >= len(ids) {
			return nil, fmt.Errorf("split %d targets pane %d, only %d exist", n, op.TargetPane, len(ids))
		}
		out, err := TmuxOutput(SplitArgs(op, ids[op.TargetPane])...)
		if err != nil {
			return nil, err
		}
		if out == "" {
			return nil, fmt.Errorf("split %d: tmux returned empty pane_id", n)
		}
		ids = append(ids, out)
	}
	return ids, nil
}

// SendCommands delivers the full command plan: Commands[i] is sent as
// keystrokes to ids[i], and the first pane flagged SelectAfterCreate is
// selected afterwards.
func SendCommands(ids []string, plan Plan) error {
	if len(plan.Commands) > len(ids) {
		return fmt.Errorf("plan has %d commands but only %d panes", len(plan.Commands), len(ids))
	}
	selectID := ""
	for i, c := range plan.Commands {
		if err := TmuxRun("send-keys", "-t", ids[i], c.Command, "Enter"); err != nil {
			return err
		}
		if c.SelectAfterCreate && selectID == "" {
			selectID = ids[i]
		}
	}
	if selectID != "" {
		return TmuxRun("select-pane", "-t", selectID)
	}
	return nil
}

// ResendCommands delivers a refresh subset. Entries whose pane no longer
// exists (the user closed it by hand) are skipped rather than failing the
// whole refresh.
func ResendCommands(ids []string, entries []RefreshEntry) error {
	for _, e := range entries {
		if e.Pane < 0 || e.Pane >= len(ids) {
			continue
		}
		if err := TmuxRun("send-keys", "-t", ids[e.Pane], e.Command, "Enter"); err != nil {
			// Pane may have been closed since the dashboard started.
			continue
		}
	}
	return nil
}
