package graph

import (
	"testing"

	"github.com/commanderspellbook/variantengine/internal/model"
	"github.com/commanderspellbook/variantengine/internal/snapshot"
)

func chainedCombosSnapshot() *snapshot.Snapshot {
	cardA := &model.Card{ID: 1, Name: "Card A", Identity: "U"}
	cardB := &model.Card{ID: 2, Name: "Card B", Identity: "B"}
	cardC := &model.Card{ID: 3, Name: "Card C", Identity: "W"}
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

func TestBuildWiresCardFeatureAndComboEdges(t *testing.T) {
	snap := chainedCombosSnapshot()
	g := Build(snap)

	if len(g.Cards) != 3 || len(g.Combos) != 2 || len(g.Features) != 1 {
		t.Fatalf("Build produced %d cards, %d combos, %d features; want 3, 2, 1", len(g.Cards), len(g.Combos), len(g.Features))
	}

	target := g.Combos[10]
	if len(target.Cards) != 1 || target.Cards[0].Card.ID != 3 {
		t.Fatalf("target combo Cards = %v, want [card 3]", target.Cards)
	}
	if len(target.FeaturesNeeded) != 1 || target.FeaturesNeeded[0].Feature.ID != 100 {
		t.Fatalf("target combo FeaturesNeeded = %v, want [feature 100]", target.FeaturesNeeded)
	}

	feature := g.Features[100]
	if len(feature.ProducedByCombos) != 1 || feature.ProducedByCombos[0].Combo.ID != 11 {
		t.Fatalf("feature.ProducedByCombos = %v, want [combo 11]", feature.ProducedByCombos)
	}
	if len(feature.NeededByCombos) != 1 || feature.NeededByCombos[0].Combo.ID != 10 {
		t.Fatalf("feature.NeededByCombos = %v, want [combo 10]", feature.NeededByCombos)
	}

	producer := g.Combos[11]
	if len(producer.Cards) != 2 {
		t.Fatalf("producer combo Cards = %v, want 2 cards", producer.Cards)
	}
}

func TestResetClearsScratchState(t *testing.T) {
	snap := chainedCombosSnapshot()
	g := Build(snap)

	cn := g.Combos[10]
	cn.SetState(Visiting)
	cn.SetDepth(3)
	cn.SetDown(true)

	g.Reset()

	if cn.State() != NotVisited || cn.Depth() != 0 || cn.Down() {
		t.Fatalf("after Reset: state=%v depth=%d down=%v, want NotVisited/0/false", cn.State(), cn.Depth(), cn.Down())
	}
}
