package dashboard

import "fmt"

// The layout compiler turns a layout tree into the flat form tmux needs:
// an ordered list of split operations plus a command list whose position is
// the pane id the commands belong to.
//
// Pane ids follow creation order: id 0 is the pane that exists before any
// split runs, and the Nth executed SplitOp creates pane id N. The executor
// (tmux.go) records the tmux pane id printed by each split-window, so plan
// position i always addresses the right pane regardless of how tmux numbers
// pane indexes spatially.
//
// The compiler is pure: it performs no I/O and never talks to tmux.

// SplitOp instructs the executor to split one existing pane.
type SplitOp struct {
	// TargetPane is the creation-order id of the pane to split.
	TargetPane int
	Direction  Direction
	// Size is the new pane's size ("20" cells or "30%").
	Size string
	// InsertBefore places the new pane before/above the target instead of
	// after/below.
	InsertBefore bool
}

// CommandEntry is the command for one pane. Its position in the command plan
// is the pane's creation-order id.
type CommandEntry struct {
	Command           string
	SelectAfterCreate bool
	SuppressOnRefresh bool
}

// Plan is a compiled layout: execute Splits in order, then send Commands[i]
// to pane id i.
type Plan struct {
	Splits   []SplitOp
	Commands []CommandEntry
}

// Compile flattens a layout tree rooted at the dashboard window's first pane
// (id 0). On any shape error it returns a zero Plan: a partially-built plan
// would misroute every later command.
func Compile(root LayoutNode) (Plan, error) {
	if root.Leaf != nil {
		return Plan{Commands: []CommandEntry{entryFor(root.Leaf)}}, nil
	}
	if root.Split == nil {
		return Plan{}, fmt.Errorf("%w: empty layout", ErrBadLayout)
	}

	var ops []SplitOp
	cmds, err := compileSplit(root.Split, 0, &ops)
	if err != nil {
		return Plan{}, err
	}
	return Plan{Splits: ops, Commands: cmds}, nil
}

// compileSplit emits the split operations for one Split node into the shared
// accumulator and returns its command entries in pane-id order: entry 0 is
// for pivotPane, entry j (j>=1) for the pane id len(*ops)-at-entry + j.
func compileSplit(s *Split, pivotPane int, ops *[]SplitOp) ([]CommandEntry, error) {
	if err := s.CheckShape(); err != nil {
		return nil, err
	}
	pivot := s.pivotIndex()

	// Count of splits queued by ancestors and earlier siblings. Pane ids
	// are creation-ordered, so the next split made anywhere creates pane
	// id idOffset+1.
	idOffset := len(*ops)

	// Parts before the pivot, ascending. Each split targets the still
	// unique pivot pane and inserts before it, so ascending source order
	// lands in ascending screen order. The order is load-bearing: swap it
	// and the panes come out mirrored.
	for i := 0; i < pivot; i++ {
		*ops = append(*ops, SplitOp{
			TargetPane:   pivotPane,
			Direction:    s.Direction,
			Size:         s.Parts[i].Size,
			InsertBefore: true,
		})
	}
	// Parts after the pivot, descending. Every split lands immediately
	// after the pivot, pushing earlier insertions further away, so the
	// highest index must go first to end up furthest out.
	for i := len(s.Parts) - 1; i > pivot; i-- {
		*ops = append(*ops, SplitOp{
			TargetPane: pivotPane,
			Direction:  s.Direction,
			Size:       s.Parts[i].Size,
		})
	}

	// Source positions in pane-id order: the pivot keeps the existing
	// pane, then the panes created above, in creation order.
	order := make([]int, 0, len(s.Children))
	order = append(order, pivot)
	for i := 0; i < pivot; i++ {
		order = append(order, i)
	}
	for i := len(s.Children) - 1; i > pivot; i-- {
		order = append(order, i)
	}

	out := make([]CommandEntry, len(order))
	var nested []CommandEntry
	for g, ci := range order {
		child := s.Children[ci]
		switch {
		case child.Leaf != nil:
			out[g] = entryFor(child.Leaf)

		case child.Split != nil:
			// The child split is rooted at this group's pane g:
			// the pivot child reuses our pivot pane, anyone else
			// lives in the pane created by our (g-1)th op.
			childPivot := pivotPane
			if g > 0 {
				childPivot = idOffset + g
			}
			sub, err := compileSplit(child.Split, childPivot, ops)
			if err != nil {
				return nil, err
			}
			out[g] = sub[0]
			nested = append(nested, sub[1:]...)

		default:
			return nil, fmt.Errorf("%w: empty layout node", ErrBadLayout)
		}
	}
	return append(out, nested...), nil
}

func entryFor(l *Leaf) CommandEntry {
	return CommandEntry{
		Command:           l.Command,
		SelectAfterCreate: l.SelectAfterCreate,
		SuppressOnRefresh: l.SuppressOnRefresh,
	}
}
