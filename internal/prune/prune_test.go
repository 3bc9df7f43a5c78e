package prune_test

import (
	"testing"

	"github.com/commanderspellbook/variantengine/internal/graph"
	"github.com/commanderspellbook/variantengine/internal/model"
	"github.com/commanderspellbook/variantengine/internal/prune"
	"github.com/commanderspellbook/variantengine/internal/snapshot"
)

// chainedCombosSnapshot is spec.md S3: generator G needs feature F; combo H
// uses cards {1,2} and produces F; G additionally uses card 3.
func chainedCombosSnapshot() *snapshot.Snapshot {
	cardA := &model.Card{ID: 1, Name: "Card A"}
	cardB := &model.Card{ID: 2, Name: "Card B"}
	cardC := &model.Card{ID: 3, Name: "Card C"}
	feature := model.FeatureID(100)
	h := model.ComboID(11)
	g := model.ComboID(10)

	return &snapshot.Snapshot{
		Cards: map[model.CardID]*model.Card{
			cardA.ID: cardA,
			cardB.ID: cardB,
			cardC.ID: cardC,
		},
		Templates: map[model.TemplateID]*model.Template{},
		Features: map[model.FeatureID]*model.Feature{
			feature: {ID: feature, Name: "F"},
		},
		Combos: map[model.ComboID]*model.Combo{
			h: {ID: h, Uses: []model.CardID{cardA.ID, cardB.ID}, Produces: []model.FeatureID{feature}},
			g: {ID: g, Generator: true, Uses: []model.CardID{cardC.ID}, Needs: []model.FeatureID{feature}},
		},
		GeneratorComboIDs: []model.ComboID{g},
	}
}

func TestForIncludesChainedProducerCombo(t *testing.T) {
	snap := chainedCombosSnapshot()
	g := graph.Build(snap)
	sub := prune.For(g, 10, 8)

	want := []graph.Node{
		g.Combos[10], g.Combos[11],
		g.Cards[1], g.Cards[2], g.Cards[3],
		g.Features[100],
	}
	for _, n := range want {
		if !sub.Nodes[n] {
			t.Fatalf("subgraph missing expected node %#v", n)
		}
	}
	if len(sub.Nodes) != len(want) {
		t.Fatalf("subgraph has %d nodes, want exactly %d: %v", len(sub.Nodes), len(want), sub.Nodes)
	}
}

// twoGeneratorsSameCardsSnapshot is spec.md S4 at the pruning level: two
// independent generator combos, both directly derivable from the identical
// card set {1,2}. prune.For must succeed independently for each target
// (the cross-generator merge itself happens later, in compose.Compose).
func twoGeneratorsSameCardsSnapshot() *snapshot.Snapshot {
	cardA := &model.Card{ID: 1, Name: "Card A"}
	cardB := &model.Card{ID: 2, Name: "Card B"}
	g1, g2 := model.ComboID(10), model.ComboID(20)
	return &snapshot.Snapshot{
		Cards: map[model.CardID]*model.Card{
			cardA.ID: cardA,
			cardB.ID: cardB,
		},
		Templates: map[model.TemplateID]*model.Template{},
		Features:  map[model.FeatureID]*model.Feature{},
		Combos: map[model.ComboID]*model.Combo{
			g1: {ID: g1, Generator: true, Uses: []model.CardID{cardA.ID, cardB.ID}},
			g2: {ID: g2, Generator: true, Uses: []model.CardID{cardA.ID, cardB.ID}},
		},
		GeneratorComboIDs: []model.ComboID{g1, g2},
	}
}

func TestForSucceedsIndependentlyForEachGenerator(t *testing.T) {
	snap := twoGeneratorsSameCardsSnapshot()
	for _, target := range snap.GeneratorComboIDs {
		g := graph.Build(snap)
		sub := prune.For(g, target, 8)
		if !sub.Nodes[g.Combos[target]] {
			t.Fatalf("target %d missing from its own subgraph", target)
		}
		if !sub.Nodes[g.Cards[1]] || !sub.Nodes[g.Cards[2]] {
			t.Fatalf("target %d subgraph missing cards {1,2}: %v", target, sub.Nodes)
		}
	}
}

// featureCycleSnapshot is the spec's cycle boundary behaviour: feature A
// needs a combo that itself needs feature A, so the cycle can never close.
func featureCycleSnapshot() *snapshot.Snapshot {
	featureA := model.FeatureID(1)
	g := model.ComboID(10)
	return &snapshot.Snapshot{
		Cards:     map[model.CardID]*model.Card{},
		Templates: map[model.TemplateID]*model.Template{},
		Features: map[model.FeatureID]*model.Feature{
			featureA: {ID: featureA, Name: "A"},
		},
		Combos: map[model.ComboID]*model.Combo{
			g: {ID: g, Generator: true, Needs: []model.FeatureID{featureA}, Produces: []model.FeatureID{featureA}},
		},
		GeneratorComboIDs: []model.ComboID{g},
	}
}

func TestForReturnsEmptyOnUnbreakableFeatureCycle(t *testing.T) {
	snap := featureCycleSnapshot()
	g := graph.Build(snap)
	sub := prune.For(g, 10, 8)
	if len(sub.Nodes) != 0 {
		t.Fatalf("expected empty subgraph for an unbreakable cycle, got %v", sub.Nodes)
	}
}

func TestForReturnsEmptyWhenIngredientsExceedBudget(t *testing.T) {
	cardA := &model.Card{ID: 1}
	cardB := &model.Card{ID: 2}
	cardC := &model.Card{ID: 3}
	cardD := &model.Card{ID: 4}
	g := model.ComboID(10)
	snap := &snapshot.Snapshot{
		Cards: map[model.CardID]*model.Card{
			cardA.ID: cardA, cardB.ID: cardB, cardC.ID: cardC, cardD.ID: cardD,
		},
		Templates: map[model.TemplateID]*model.Template{},
		Features:  map[model.FeatureID]*model.Feature{},
		Combos: map[model.ComboID]*model.Combo{
			g: {ID: g, Generator: true, Uses: []model.CardID{1, 2, 3, 4}},
		},
		GeneratorComboIDs: []model.ComboID{g},
	}

	graphBuilt := graph.Build(snap)
	sub := prune.For(graphBuilt, 10, 3)
	if len(sub.Nodes) != 0 {
		t.Fatalf("expected empty subgraph when ingredients (4) exceed budget (3), got %v", sub.Nodes)
	}
}

func TestForUnknownTargetReturnsEmptySubgraph(t *testing.T) {
	snap := chainedCombosSnapshot()
	g := graph.Build(snap)
	sub := prune.For(g, 999, 8)
	if len(sub.Nodes) != 0 {
		t.Fatalf("expected empty subgraph for an unknown target, got %v", sub.Nodes)
	}
}
