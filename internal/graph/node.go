// Package graph builds the mixed hypergraph of cards, templates, features
// and combos from a snapshot, and carries the per-node scratch state used
// by the pruning pass.
package graph

import "github.com/commanderspellbook/variantengine/internal/model"

// state tracks where a node is in the depth-first downward pass. It is a
// three-state machine, not a boolean, so that a feature currently on the
// call stack ("visiting") is distinguished from one already resolved
// ("visited"): that distinction is what breaks feature<->combo cycles.
type state int

const (
	notVisited state = iota
	visiting
	visited
)

// Node is the common scratch-state interface every node kind satisfies.
// The pruning pass dispatches on the concrete type with a type switch
// rather than virtual methods, keeping the hot path's per-kind logic out
// of this interface.
type Node interface {
	State() state
	Depth() int
	Down() bool
	SetState(state)
	SetDepth(int)
	SetDown(bool)
}

// header is embedded in every node kind and carries the mutable scratch
// fields the pruning pass uses. It is reset between root combos via
// Graph.Reset.
type header struct {
	state state
	depth int
	down  bool
}

// CardNode wraps a Card with pruning scratch state.
type CardNode struct {
	header
	Card *model.Card
}

// TemplateNode wraps a Template with pruning scratch state.
type TemplateNode struct {
	header
	Template *model.Template
}

// FeatureNode wraps a Feature together with its graph edges: cards that
// grant it directly, and the combos that produce/need it (built as reverse
// indices while the graph is constructed).
type FeatureNode struct {
	header
	Feature        *model.Feature
	Cards          []*CardNode
	ProducedByCombos []*ComboNode
	NeededByCombos   []*ComboNode
}

// ComboNode wraps a Combo together with its resolved ingredient and
// feature-edge node pointers.
type ComboNode struct {
	header
	Combo           *model.Combo
	Cards           []*CardNode
	Templates       []*TemplateNode
	FeaturesNeeded  []*FeatureNode
	FeaturesProduced []*FeatureNode
}

// State, Depth and Down expose the embedded scratch header. They are
// accessed through methods (rather than promoted fields) so every node
// kind presents the same small interface to the pruning pass regardless of
// which concrete type is behind it.
func (h *header) State() state  { return h.state }
func (h *header) Depth() int    { return h.depth }
func (h *header) Down() bool    { return h.down }
func (h *header) SetState(s state) { h.state = s }
func (h *header) SetDepth(d int)    { h.depth = d }
func (h *header) SetDown(d bool)    { h.down = d }

const (
	NotVisited = notVisited
	Visiting   = visiting
	Visited    = visited
)

// State re-exports the internal three-state enum under its own type name
// so callers outside the package can compare against NotVisited/Visiting/
// Visited without reaching into an unexported type.
type State = state

