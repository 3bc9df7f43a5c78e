// Package prune computes, for one target generator combo, the subgraph of
// nodes that could possibly contribute to a valid variant under the
// card+template budget.
package prune

import (
	"github.com/commanderspellbook/variantengine/internal/graph"
	"github.com/commanderspellbook/variantengine/internal/model"
)

// Subgraph is the set of nodes reachable from a target combo, in both the
// downward (consumption) and upward (production) directions, that the
// solver should build its model over.
type Subgraph struct {
	Nodes map[graph.Node]bool
}

// For computes the subgraph for target under the given card+template
// budget max. It mutates the graph's per-node scratch state (state, depth,
// down); callers must call g.Reset() before reusing g for another target.
func For(g *graph.Graph, target model.ComboID, max int) *Subgraph {
	targetNode, ok := g.Combos[target]
	if !ok {
		return &Subgraph{Nodes: map[graph.Node]bool{}}
	}

	down := comboNodesDown(targetNode, 0, 0, max)
	if len(down) == 0 {
		return &Subgraph{Nodes: map[graph.Node]bool{}}
	}
	for n := range down {
		n.SetDown(true)
	}

	all := make(map[graph.Node]bool, len(down))
	for n := range down {
		all[n] = true
	}
	for n := range copyNodeSet(down) {
		var ups map[graph.Node]bool
		switch typed := n.(type) {
		case *graph.FeatureNode:
			ups = featureNodesUp(typed)
		case *graph.ComboNode:
			ups = comboNodesUp(typed)
		}
		for u := range ups {
			all[u] = true
		}
	}
	return &Subgraph{Nodes: all}
}

func copyNodeSet(in map[graph.Node]bool) map[graph.Node]bool {
	out := make(map[graph.Node]bool, len(in))
	for k := range in {
		out[k] = true
	}
	return out
}

// comboNodesDown implements spec §4.D's downward pass for one combo: it
// resolves the combo's direct card/template ingredients, then recurses
// into every needed feature. baseCardsAmount is the ingredient count
// already committed along the path that reached this combo; depth is
// recorded on newly settled nodes for later deterministic card ordering.
func comboNodesDown(combo *graph.ComboNode, baseCardsAmount, depth, max int) map[graph.Node]bool {
	combo.SetState(graph.Visiting)

	cards := map[*graph.CardNode]bool{}
	for _, c := range combo.Cards {
		if c.State() == graph.NotVisited {
			cards[c] = true
		}
	}
	templates := map[*graph.TemplateNode]bool{}
	for _, t := range combo.Templates {
		if t.State() == graph.NotVisited {
			templates[t] = true
		}
	}
	cardsAmount := len(cards) + len(templates) + baseCardsAmount
	if cardsAmount > max {
		return map[graph.Node]bool{}
	}

	result := map[graph.Node]bool{combo: true}

	if len(combo.FeaturesNeeded) == 0 {
		for c := range cards {
			c.SetState(graph.Visited)
			c.SetDepth(depth)
			result[c] = true
		}
		for t := range templates {
			t.SetState(graph.Visited)
			t.SetDepth(depth)
			result[t] = true
		}
		return result
	}

	neededFeatures := map[*graph.FeatureNode]bool{}
	fromFeatures := map[graph.Node]bool{}
	for _, f := range combo.FeaturesNeeded {
		if f.State() == graph.Visiting {
			// A feature currently on this call stack cannot satisfy
			// itself: break the feature<->combo cycle by failing the
			// whole combo.
			return map[graph.Node]bool{}
		}
		nodesF := featureNodesDown(f, cardsAmount, depth+1, max)
		if len(nodesF) == 0 {
			return map[graph.Node]bool{}
		}
		neededFeatures[f] = true
		for n := range nodesF {
			fromFeatures[n] = true
		}
	}

	for c := range cards {
		c.SetState(graph.Visited)
		c.SetDepth(depth)
		result[c] = true
	}
	for t := range templates {
		t.SetState(graph.Visited)
		t.SetDepth(depth)
		result[t] = true
	}
	for f := range neededFeatures {
		f.SetState(graph.Visited)
		f.SetDepth(depth)
		result[f] = true
	}
	for n := range fromFeatures {
		result[n] = true
	}
	return result
}

// featureNodesDown resolves one needed feature: the cards that grant it
// directly, plus every combo that could produce it (recursively).
// A feature with no successful producer and no direct card cannot be
// satisfied, so the calling combo must be dropped entirely (signalled by
// returning an empty set).
func featureNodesDown(feature *graph.FeatureNode, baseCardsAmount, depth, max int) map[graph.Node]bool {
	feature.SetState(graph.Visiting)

	cards := map[*graph.CardNode]bool{}
	for _, c := range feature.Cards {
		if c.State() == graph.NotVisited {
			cards[c] = true
		}
	}
	combos := map[*graph.ComboNode]bool{}
	other := map[graph.Node]bool{}
	for _, c := range feature.ProducedByCombos {
		if c.State() == graph.NotVisited {
			newOther := comboNodesDown(c, baseCardsAmount, depth+1, max)
			if len(newOther) > 0 {
				combos[c] = true
				for n := range newOther {
					other[n] = true
				}
			}
		}
	}
	if len(cards) == 0 && len(combos) == 0 {
		return map[graph.Node]bool{}
	}
	for c := range cards {
		c.SetDepth(depth)
	}
	for c := range combos {
		c.SetDepth(depth)
	}
	result := map[graph.Node]bool{}
	for c := range cards {
		result[c] = true
	}
	for c := range combos {
		result[c] = true
	}
	for n := range other {
		result[n] = true
	}
	return result
}

// comboNodesUp follows a combo's produced features upward, collecting
// every combo that could fire as a byproduct once the root fires. These
// never add ingredient cost; they only feed the solver's secondary
// objective.
func comboNodesUp(combo *graph.ComboNode) map[graph.Node]bool {
	combo.SetState(graph.Visiting)
	result := map[graph.Node]bool{}
	for _, f := range combo.FeaturesProduced {
		if f.State() == graph.NotVisited {
			result[f] = true
			for n := range featureNodesUp(f) {
				result[n] = true
			}
			f.SetState(graph.Visited)
		}
	}
	return result
}

func featureNodesUp(feature *graph.FeatureNode) map[graph.Node]bool {
	feature.SetState(graph.Visiting)
	result := map[graph.Node]bool{}
	for _, c := range feature.NeededByCombos {
		if c.State() == graph.NotVisited {
			result[c] = true
			for n := range comboNodesUp(c) {
				result[n] = true
			}
			c.SetState(graph.Visited)
		}
	}
	return result
}
