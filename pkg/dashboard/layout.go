package dashboard

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Layout trees describe how a dashboard window is carved into panes and what
// each pane runs.
//
// YAML shape:
//
// layout:
//   split: horizontal
//   parts: ["30%", "~", "25%"]
//   children:
//     - "task next"
//     - split: vertical
//       parts: ["~", "50%"]
//       children:
//         - "*task calendar"
//         - "!task burndown.daily"
//     - "task projects"
//
// A scalar child is a Leaf: the command the pane runs. Two optional leading
// markers may prefix it, in either order:
//
//   "*"  select this pane once the dashboard is built
//   "!"  do not resend this command on a refresh trigger
//
// A mapping child is a nested Split. Its parts list holds one entry per
// child: a size ("20" cells or "30%") or the pivot marker "~". The child at
// the pivot position reuses the pane that already exists when the split is
// processed; every other child is split off from it.

const (
	// PivotMarker occupies the parts slot of the child that keeps the
	// pre-existing pane.
	PivotMarker = "~"

	selectMarker    = "*"
	noRefreshMarker = "!"
)

// ErrBadLayout is wrapped by every layout shape error (mismatched
// parts/children, missing or duplicate pivot, malformed sizes). A layout
// failing these checks cannot be partially applied, so callers should treat
// it as fatal.
var ErrBadLayout = errors.New("invalid layout")

// Direction is a split axis.
type Direction string

const (
	// DirHorizontal places the new pane beside the target (tmux -h).
	DirHorizontal Direction = "horizontal"
	// DirVertical places the new pane above/below the target (tmux -v).
	DirVertical Direction = "vertical"
)

// ParseDirection normalizes a direction string from configuration.
// Accepted: horizontal|h, vertical|v (case-insensitive).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizontal", "h":
		return DirHorizontal, nil
	case "vertical", "v":
		return DirVertical, nil
	default:
		return "", fmt.Errorf("%w: unknown split direction %q (expected: horizontal|vertical)", ErrBadLayout, s)
	}
}

// Part is one slot of a Split's parts list: either a pane size or the pivot
// marker. Exactly one part per Split must be the pivot.
type Part struct {
	// Size is a tmux-compatible size: integer cells ("20") or a
	// percentage ("30%"). Empty when Pivot is true.
	Size string
	// Pivot marks the slot whose child keeps the pre-existing pane.
	Pivot bool
}

// ParsePart interprets one entry of a parts list.
func ParsePart(s string) (Part, error) {
	s = strings.TrimSpace(s)
	if s == PivotMarker {
		return Part{Pivot: true}, nil
	}
	if err := validateSize(s); err != nil {
		return Part{}, err
	}
	return Part{Size: s}, nil
}

func validateSize(s string) error {
	digits := strings.TrimSuffix(s, "%")
	if digits == "" {
		return fmt.Errorf("%w: empty size", ErrBadLayout)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: bad size %q (expected cells like \"20\" or a percentage like \"30%%\")", ErrBadLayout, s)
		}
	}
	if strings.TrimLeft(digits, "0") == "" {
		return fmt.Errorf("%w: size %q must be positive", ErrBadLayout, s)
	}
	return nil
}

// Leaf is a terminal pane: the command it runs plus the two marker flags,
// already stripped from the command text.
type Leaf struct {
	Command           string
	SelectAfterCreate bool
	SuppressOnRefresh bool
}

// ParseLeaf strips the optional leading markers from a command string.
// Both markers together are legal; repeating a marker is not.
func ParseLeaf(s string) (Leaf, error) {
	raw := strings.TrimSpace(s)
	var l Leaf
	for {
		switch {
		case strings.HasPrefix(raw, selectMarker):
			if l.SelectAfterCreate {
				return Leaf{}, fmt.Errorf("%w: duplicate %q marker in %q", ErrBadLayout, selectMarker, s)
			}
			l.SelectAfterCreate = true
			raw = raw[len(selectMarker):]
			continue
		case strings.HasPrefix(raw, noRefreshMarker):
			if l.SuppressOnRefresh {
				return Leaf{}, fmt.Errorf("%w: duplicate %q marker in %q", ErrBadLayout, noRefreshMarker, s)
			}
			l.SuppressOnRefresh = true
			raw = raw[len(noRefreshMarker):]
			continue
		}
		break
	}
	l.Command = strings.TrimSpace(raw)
	if l.Command == "" {
		return Leaf{}, fmt.Errorf("%w: empty pane command in %q", ErrBadLayout, s)
	}
	return l, nil
}

// Split is an interior node: a direction plus parallel parts/children lists.
type Split struct {
	Direction Direction
	Parts     []Part
	Children  []LayoutNode
}

// LayoutNode is one node of a layout tree: exactly one of Leaf or Split is
// set.
type LayoutNode struct {
	Leaf  *Leaf
	Split *Split
}

// splitYAML is the on-disk mapping form of a Split.
type splitYAML struct {
	Split    string       `yaml:"split"`
	Parts    []string     `yaml:"parts"`
	Children []LayoutNode `yaml:"children"`
}

// UnmarshalYAML decodes a layout node: a scalar becomes a Leaf, a mapping
// becomes a Split. Marker and part parsing happens here, once, so nothing
// downstream re-inspects command text.
func (n *LayoutNode) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		leaf, err := ParseLeaf(s)
		if err != nil {
			return err
		}
		n.Leaf = &leaf
		return nil

	case yaml.MappingNode:
		var raw splitYAML
		if err := value.Decode(&raw); err != nil {
			return err
		}
		dir, err := ParseDirection(raw.Split)
		if err != nil {
			return err
		}
		sp := &Split{
			Direction: dir,
			Parts:     make([]Part, 0, len(raw.Parts)),
			Children:  raw.Children,
		}
		for _, p := range raw.Parts {
			part, err := ParsePart(p)
			if err != nil {
				return err
			}
			sp.Parts = append(sp.Parts, part)
		}
		if err := sp.CheckShape(); err != nil {
			return err
		}
		n.Split = sp
		return nil

	default:
		return fmt.Errorf("%w: layout node must be a command string or a split mapping (line %d)", ErrBadLayout, value.Line)
	}
}

// CheckShape enforces the structural invariants of a single Split:
// parts and children must be the same length, and exactly one part must be
// the pivot marker. The compiler rechecks these for trees built in code.
func (s *Split) CheckShape() error {
	if len(s.Parts) != len(s.Children) {
		return fmt.Errorf("%w: %d parts but %d children", ErrBadLayout, len(s.Parts), len(s.Children))
	}
	if len(s.Parts) == 0 {
		return fmt.Errorf("%w: split has no parts", ErrBadLayout)
	}
	pivots := 0
	for _, p := range s.Parts {
		if p.Pivot {
			pivots++
		}
	}
	switch {
	case pivots == 0:
		return fmt.Errorf("%w: no pivot marker %q in parts", ErrBadLayout, PivotMarker)
	case pivots > 1:
		return fmt.Errorf("%w: %d pivot markers in parts, want exactly one", ErrBadLayout, pivots)
	}
	return nil
}

// pivotIndex returns the position of the pivot part. CheckShape must have
// passed.
func (s *Split) pivotIndex() int {
	for i, p := range s.Parts {
		if p.Pivot {
			return i
		}
	}
	return -1
}

// CountLeaves returns the number of panes this subtree produces.
func (n LayoutNode) CountLeaves() int {
	if n.Leaf != nil {
		return 1
	}
	if n.Split == nil {
		return 0
	}
	total := 0
	for _, c := range n.Split.Children {
		total += c.CountLeaves()
	}
	return total
}
