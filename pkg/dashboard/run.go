package dashboard

import (
	"fmt"
	"strings"
)

// High-level flows tying the compiler to tmux and to the persisted state.
// Each is a thin sequence over the other files here; no flow owns hidden
// state, so the hook process and the CLI can share them.

// Start compiles the dashboard's layout, materializes it in tmux and records
// the created panes in state so later refreshes can find them.
func Start(d *Dashboard, statePath string) error {
	if d == nil {
		return fmt.Errorf("nil dashboard")
	}
	plan, err := Compile(d.Layout)
	if err != nil {
		return fmt.Errorf("dashboard %q: %w", d.Name, err)
	}
	if !HaveTmuxServer() {
		return ErrNotInTmux
	}

	session := d.EffectiveSession()
	window := d.EffectiveWindow()

	base, err := EnsureWindow(session, window)
	if err != nil {
		return fmt.Errorf("dashboard %q: %w", d.Name, err)
	}
	ids, err := ApplyPlan(base, plan)
	if err != nil {
		return fmt.Errorf("dashboard %q: %w", d.Name, err)
	}
	if err := SendCommands(ids, plan); err != nil {
		return fmt.Errorf("dashboard %q: %w", d.Name, err)
	}

	st, err := LoadState(statePath)
	if err != nil {
		return err
	}
	st.UpsertActive(ActiveDashboard{
		Name:    d.Name,
		Session: session,
		Window:  window,
		PaneIDs: ids,
	})
	return SaveState(statePath, st)
}

// Stop kills the dashboard window and clears its state record. Missing
// windows are tolerated: stopping twice is not an error.
func Stop(d *Dashboard, statePath string) error {
	if d == nil {
		return fmt.Errorf("nil dashboard")
	}
	_ = KillWindow(d.EffectiveSession(), d.EffectiveWindow())

	st, err := LoadState(statePath)
	if err != nil {
		return err
	}
	if st.RemoveActive(d.Name) {
		return SaveState(statePath, st)
	}
	return nil
}

// RefreshAll re-sends the non-suppressed commands of every active dashboard.
// action is the triggering task sub-command; anything outside the write
// allow-list is ignored. Dashboards whose session has gone away are pruned
// from state instead of refreshed.
func RefreshAll(cfg *Config, statePath, action string) error {
	if !IsWriteAction(action) {
		return nil
	}
	st, err := LoadState(statePath)
	if err != nil {
		return err
	}
	pruned := st.PruneInactive(SessionActive)

	var firstErr error
	for _, ad := range st.Active {
		d := cfg.FindDashboard(ad.Name)
		if d == nil {
			// Dashboard was removed from config after starting; leave
			// the panes alone.
			continue
		}
		plan, err := Compile(d.Layout)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("dashboard %q: %w", ad.Name, err)
			}
			continue
		}
		if err := ResendCommands(ad.PaneIDs, plan.RefreshCommands()); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("dashboard %q: %w", ad.Name, err)
		}
	}

	if pruned {
		if err := SaveState(statePath, st); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// FormatPlan renders a compiled plan for --dry-run output.
func FormatPlan(plan Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "splits (%d):\n", len(plan.Splits))
	for i, op := range plan.Splits {
		place := "after"
		if op.InsertBefore {
			place = "before"
		}
		fmt.Fprintf(&b, "  %2d: split pane %d %s, %s, size %s -> pane %d\n",
			i, op.TargetPane, string(op.Direction), place, op.Size, i+1)
	}
	fmt.Fprintf(&b, "commands (%d):\n", len(plan.Commands))
	for i, c := range plan.Commands {
		flags := ""
		if c.SelectAfterCreate {
			flags += " [select]"
		}
		if c.SuppressOnRefresh {
			flags += " [no-refresh]"
		}
		fmt.Fprintf(&b, "  pane %d: %s%s\n", i, c.Command, flags)
	}
	return b.String()
}
