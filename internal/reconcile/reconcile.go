// Package reconcile diffs a freshly computed set of variant definitions
// against the persisted catalog and applies the minimal set of
// insert/update/restore/delete mutations needed to bring the store in
// line, without ever touching a frozen variant's user-editable fields.
package reconcile

import (
	"sort"
	"strings"

	"github.com/commanderspellbook/variantengine/internal/compose"
	"github.com/commanderspellbook/variantengine/internal/model"
)

// Counters reports how many variants were added, restored and deleted by
// one reconciliation pass.
type Counters struct {
	Added    int
	Restored int
	Deleted  int
}

// Run reconciles computed against existing without modifying either map,
// returning a new fingerprint-keyed catalog and the (added, restored, deleted) counters
// spec §4.G requires. combosByID and utilityFeatures come from the same
// snapshot the definitions were computed against.
func Run(
	computed map[string]*compose.Definition,
	existing map[string]*model.Variant,
	combosByID map[model.ComboID]*model.Combo,
	utilityFeatures map[model.FeatureID]bool,
	notWorkingCardSets []map[model.CardID]bool,
) (map[string]*model.Variant, Counters) {
	result := make(map[string]*model.Variant, len(computed))
	var counters Counters

	for fingerprint, def := range computed {
		cur, wasExisting := existing[fingerprint]
		switch {
		case !wasExisting:
			result[fingerprint] = newVariant(fingerprint, def, combosByID, utilityFeatures, notWorkingCardSets)
			counters.Added++
		case cur.IsFrozen():
			result[fingerprint] = refreshLinksOnly(cur, def, combosByID, utilityFeatures)
		case cur.Status == model.StatusRestore:
			result[fingerprint] = restoreVariant(cur, def, combosByID, utilityFeatures, notWorkingCardSets)
			counters.Restored++
		default:
			result[fingerprint] = refreshAndRetaint(cur, def, combosByID, utilityFeatures, notWorkingCardSets)
		}
	}

	for fingerprint, cur := range existing {
		if _, kept := computed[fingerprint]; kept {
			continue
		}
		if cur.IsFrozen() {
			result[fingerprint] = cur
			continue
		}
		counters.Deleted++
	}

	return result, counters
}

func producedFeatures(def *compose.Definition, combosByID map[model.ComboID]*model.Combo, utility map[model.FeatureID]bool) map[model.FeatureID]bool {
	removed := map[model.FeatureID]bool{}
	for comboID := range def.Includes {
		if c, ok := combosByID[comboID]; ok {
			for _, f := range c.Removes {
				removed[f] = true
			}
		}
	}
	produces := model.SubtractRemoved(def.Produces, removed)
	out := make(map[model.FeatureID]bool, len(produces))
	for f := range produces {
		if !utility[f] {
			out[f] = true
		}
	}
	return out
}

func taintedByNotWorking(cards []model.CardID, notWorkingCardSets []map[model.CardID]bool) bool {
	cardSet := make(map[model.CardID]bool, len(cards))
	for _, c := range cards {
		cardSet[c] = true
	}
	for _, broken := range notWorkingCardSets {
		if len(broken) == 0 || len(broken) > len(cardSet) {
			continue
		}
		superset := true
		for c := range broken {
			if !cardSet[c] {
				superset = false
				break
			}
		}
		if superset {
			return true
		}
	}
	return false
}

func newVariant(
	fingerprint string,
	def *compose.Definition,
	combosByID map[model.ComboID]*model.Combo,
	utility map[model.FeatureID]bool,
	notWorkingCardSets []map[model.CardID]bool,
) *model.Variant {
	v := &model.Variant{
		UniqueID:  fingerprint,
		Cards:     def.Cards,
		Templates: def.Templates,
		Produces:  producedFeatures(def, combosByID, utility),
		Of:        def.Of,
		Includes:  def.Includes,
		Identity:  def.Identity,
		Legal:     def.Legal,
		Status:    model.StatusNew,
	}
	setTextFields(v, def, combosByID)
	if taintedByNotWorking(def.Cards, notWorkingCardSets) {
		v.Status = model.StatusNotWorking
	}
	return v
}

// refreshLinksOnly updates only graph membership, identity and legality on a frozen
// variant; text fields and status are left byte-identical (spec §8
// invariant 9).
func refreshLinksOnly(
	cur *model.Variant,
	def *compose.Definition,
	combosByID map[model.ComboID]*model.Combo,
	utility map[model.FeatureID]bool,
) *model.Variant {
	next := *cur
	next.Of = def.Of
	next.Includes = def.Includes
	next.Produces = producedFeatures(def, combosByID, utility)
	next.Identity = def.Identity
	next.Legal = def.Legal
	return &next
}

func restoreVariant(
	cur *model.Variant,
	def *compose.Definition,
	combosByID map[model.ComboID]*model.Combo,
	utility map[model.FeatureID]bool,
	notWorkingCardSets []map[model.CardID]bool,
) *model.Variant {
	next := refreshLinksOnly(cur, def, combosByID, utility)
	setTextFields(next, def, combosByID)
	next.Status = model.StatusNew
	if taintedByNotWorking(def.Cards, notWorkingCardSets) {
		next.Status = model.StatusNotWorking
	}
	return next
}

// refreshAndRetaint handles every other existing status (NEW, OK,
// NOT_WORKING): graph links and identity refresh, text fields and current
// status are left alone, except that a newly discovered not-working
// superset relationship forces NOT_WORKING. An already-OK variant is
// never re-tainted: a human has confirmed it works, per
// original_source/backend/spellbook/variants.py::update_variant.
func refreshAndRetaint(
	cur *model.Variant,
	def *compose.Definition,
	combosByID map[model.ComboID]*model.Combo,
	utility map[model.FeatureID]bool,
	notWorkingCardSets []map[model.CardID]bool,
) *model.Variant {
	next := refreshLinksOnly(cur, def, combosByID, utility)
	if cur.Status == model.StatusOK {
		return next
	}
	if taintedByNotWorking(def.Cards, notWorkingCardSets) {
		next.Status = model.StatusNotWorking
	}
	return next
}

func setTextFields(v *model.Variant, def *compose.Definition, combosByID map[model.ComboID]*model.Combo) {
	var combos []*model.Combo
	for comboID := range def.Includes {
		if c, ok := combosByID[comboID]; ok {
			combos = append(combos, c)
		}
	}
	sort.Slice(combos, func(i, j int) bool { return combos[i].ID < combos[j].ID })

	v.ZoneLocations = joinNonEmpty(combos, "\n", func(c *model.Combo) string { return c.ZoneLocations })
	v.CardsState = joinNonEmpty(combos, "\n", func(c *model.Combo) string { return c.CardsState })
	v.OtherPrerequisites = joinNonEmpty(combos, "\n", func(c *model.Combo) string { return c.OtherPrerequisites })
	v.ManaNeeded = joinNonEmpty(combos, " ", func(c *model.Combo) string { return c.ManaNeeded })
	v.Description = joinNonEmpty(combos, "\n", func(c *model.Combo) string { return c.Description })
}

func joinNonEmpty(combos []*model.Combo, sep string, field func(*model.Combo) string) string {
	var parts []string
	for _, c := range combos {
		if s := field(c); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep)
}
