package dashboard

import "strings"

// Refresh: when a tracked task command mutates task data, every pane that
// has not opted out (the "!" marker) gets its command sent again so the
// displayed reports stay current.

// RefreshEntry pairs a surviving command with its original pane id. The pane
// id is the position in the full command plan, never renumbered: filtering
// must not shift commands onto other panes.
type RefreshEntry struct {
	Pane    int
	Command string
}

// RefreshCommands returns the subsequence of the plan to resend on a
// refresh trigger.
func (p Plan) RefreshCommands() []RefreshEntry {
	out := make([]RefreshEntry, 0, len(p.Commands))
	for i, c := range p.Commands {
		if c.SuppressOnRefresh {
			continue
		}
		out = append(out, RefreshEntry{Pane: i, Command: c.Command})
	}
	return out
}

// writeActions is the fixed allow-list of task sub-commands that modify
// task data and therefore warrant a dashboard refresh. Read-only reports
// are deliberately absent: refreshing on them would loop (the dashboard
// panes themselves run reports).
var writeActions = map[string]struct{}{
	"add":      {},
	"annotate": {},
	"append":   {},
	"delete":   {},
	"denotate": {},
	"done":     {},
	"edit":     {},
	"modify":   {},
	"prepend":  {},
	"purge":    {},
	"start":    {},
	"stop":     {},
	"undo":     {},
}

// IsWriteAction reports whether the named task sub-command belongs to the
// refresh allow-list.
func IsWriteAction(name string) bool {
	_, ok := writeActions[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// CommandFromHookArgs extracts the executed sub-command from taskwarrior
// hook arguments. on-exit hooks are invoked with colon-separated key:value
// tokens, e.g.:
//
//	api:2 args:"task add Buy milk" command:add rc:/home/u/.taskrc ...
//
// Returns "" when no command token is present.
func CommandFromHookArgs(args []string) string {
	for _, a := range args {
		if v, ok := strings.CutPrefix(a, "command:"); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
