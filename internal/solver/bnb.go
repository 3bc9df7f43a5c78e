package solver

import (
	"context"
	"sort"
)

// BranchAndBound is the built-in Solver. It exploits a property of the
// AND/OR-lowering constraints in spec §4.E: once a card+template
// assignment is fixed, every combo's "fires" variable and every feature's
// "present" variable is forced (not merely bounded) by the constraints,
// so both are obtained by forward-chaining closure instead of treating
// them as free 0/1 variables. That reduces the search to choosing a
// card+template subset, which this solver explores by increasing size
// with branch-and-bound pruning on the budget.
//
// No ILP library appears anywhere in the example corpus this engine was
// grounded on; this solver is intentionally built on the standard library
// alone (see DESIGN.md) rather than reaching for an out-of-corpus
// dependency.
type BranchAndBound struct{}

// NewBranchAndBound constructs the default solver.
func NewBranchAndBound() *BranchAndBound { return &BranchAndBound{} }

func (b *BranchAndBound) SolveCombo(ctx context.Context, m *Model) (Result, error) {
	targetIdx, ok := m.TargetIndex()
	if !ok {
		return Result{Termination: Infeasible}, nil
	}

	candidates := buildCandidates(m)
	best := search(ctx, m, candidates, targetIdx)
	if best == nil {
		return Result{Termination: Infeasible}, nil
	}
	return Result{Termination: Optimal, Assignment: best}, nil
}

type candidate struct {
	k   kind
	idx int
}

func buildCandidates(m *Model) []candidate {
	cands := make([]candidate, 0, len(m.Cards)+len(m.Templates))
	for i := range m.Cards {
		cands = append(cands, candidate{kindCard, i})
	}
	for i := range m.Templates {
		cands = append(cands, candidate{kindTemplate, i})
	}
	return cands
}

// search enumerates every card+template subset within the budget,
// computes its forward-chaining closure, and keeps the lexicographically
// best (fewest cards, then fewest templates) feasible one; ties are
// broken by the phase-2 objective (most fired combos, then most present
// features). Subsets whose card set exactly matches a previously excluded
// set (spec §4.E's exclusion cut) are skipped.
func search(ctx context.Context, m *Model, candidates []candidate, targetIdx int) *Outcome {
	var best *Outcome
	var bestCards, bestTemplates int
	var bestCombos, bestFeatures int
	found := false

	n := len(candidates)
	chosen := make([]int, 0, m.maxBudget)

	var recurse func(start int)
	recurse = func(start int) {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if len(chosen) > 0 {
			cardIdx, templateIdx := splitChosen(candidates, chosen)
			if !excluded(m, cardIdx) {
				fired, present := closure(m, cardIdx, templateIdx)
				if fired[targetIdx] {
					cardCount, templateCount := len(cardIdx), len(templateIdx)
					comboCount, featureCount := len(fired), len(present)
					better := false
					switch {
					case !found:
						better = true
					case cardCount < bestCards:
						better = true
					case cardCount == bestCards && templateCount < bestTemplates:
						better = true
					case cardCount == bestCards && templateCount == bestTemplates:
						if comboCount > bestCombos ||
							(comboCount == bestCombos && featureCount > bestFeatures) {
							better = true
						}
					}
					if better {
						found = true
						bestCards, bestTemplates = cardCount, templateCount
						bestCombos, bestFeatures = comboCount, featureCount
						best = &Outcome{
							Feasible:    true,
							CardIdx:     cardIdx,
							TemplateIdx: templateIdx,
							FeatureIdx:  mapKeys(present),
							ComboIdx:    mapKeys(fired),
						}
					}
				}
			}
		}
		if len(chosen) >= m.maxBudget {
			return
		}
		for i := start; i < n; i++ {
			// Once we already have a strictly-better card count locked in
			// at a smaller size, adding more cards can't improve on it.
			if found && bestTemplates == 0 {
				cardIdx, _ := splitChosen(candidates, chosen)
				if len(cardIdx) >= bestCards && candidates[i].k == kindCard {
					continue
				}
			}
			chosen = append(chosen, i)
			recurse(i + 1)
			chosen = chosen[:len(chosen)-1]
		}
	}
	recurse(0)
	return best
}

func splitChosen(candidates []candidate, chosen []int) (cards []int, templates []int) {
	for _, c := range chosen {
		cand := candidates[c]
		if cand.k == kindCard {
			cards = append(cards, cand.idx)
		} else {
			templates = append(templates, cand.idx)
		}
	}
	return cards, templates
}

func excluded(m *Model, cardIdx []int) bool {
	if len(cardIdx) == 0 {
		return false
	}
	cp := append([]int(nil), cardIdx...)
	sort.Ints(cp)
	for _, ex := range m.excludedCardSets {
		if sameInts(cp, ex) {
			return true
		}
	}
	return false
}

func sameInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// closure forward-chains from a fixed card+template choice to the set of
// fired combos and present features, matching constraints 2-4 of spec
// §4.E exactly (a combo fires iff every ingredient is present; a feature
// is present iff some producer is present).
func closure(m *Model, cardIdx, templateIdx []int) (fired map[int]bool, present map[int]bool) {
	cardSet := toSet(cardIdx)
	templateSet := toSet(templateIdx)
	fired = map[int]bool{}
	present = map[int]bool{}

	for {
		changed := false
		for i, refs := range m.comboIngredients {
			if fired[i] {
				continue
			}
			if allSatisfied(refs, cardSet, templateSet, present) {
				fired[i] = true
				changed = true
			}
		}
		for k, refs := range m.featureProducers {
			if present[k] {
				continue
			}
			if anySatisfied(refs, cardSet, fired) {
				present[k] = true
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return fired, present
}

func allSatisfied(refs []ref, cardSet, templateSet, present map[int]bool) bool {
	for _, r := range refs {
		switch r.kind {
		case kindCard:
			if !cardSet[r.idx] {
				return false
			}
		case kindTemplate:
			if !templateSet[r.idx] {
				return false
			}
		case kindFeature:
			if !present[r.idx] {
				return false
			}
		}
	}
	return true
}

func anySatisfied(refs []ref, cardSet, fired map[int]bool) bool {
	for _, r := range refs {
		switch r.kind {
		case kindCard:
			if cardSet[r.idx] {
				return true
			}
		case kindCombo:
			if fired[r.idx] {
				return true
			}
		}
	}
	return false
}

func toSet(idx []int) map[int]bool {
	s := make(map[int]bool, len(idx))
	for _, i := range idx {
		s[i] = true
	}
	return s
}

func mapKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
