package model

// Status is the lifecycle state of a computed Variant.
type Status string

const (
	StatusNew        Status = "NEW"
	StatusOK         Status = "OK"
	StatusRestore    Status = "RESTORE"
	StatusNotWorking Status = "NOT_WORKING"
	// StatusFrozen is the human override: once set, the reconciler never
	// rewrites this variant's text fields or deletes the row, though it
	// still refreshes Of/Includes/Produces (spec §4.G).
	StatusFrozen Status = "FROZEN"
)

// Variant is a minimal, Pareto-optimal realisation of one or more generator
// combos as a concrete card+template multiset, together with its transitive
// byproducts. Identity is UniqueID, derived from Cards and Templates alone.
type Variant struct {
	UniqueID string

	Cards     []CardID // ordered: pruned-pass depth ascending, then id ascending
	Templates []TemplateID
	Produces  map[FeatureID]bool
	Of        map[ComboID]bool // generator combos rooting this variant
	Includes  map[ComboID]bool // every combo fired along the way

	Identity string // merged WUBRG color identity of Cards
	Legal    bool   // AND of card.Legal over Cards
	Status   Status

	ZoneLocations      string
	CardsState         string
	OtherPrerequisites string
	ManaNeeded         string
	Description        string
}

// IsFrozen reports whether a human has locked this variant against engine
// mutation.
func (v *Variant) IsFrozen() bool { return v.Status == StatusFrozen }

// CardCount returns the ingredient budget this variant consumes.
func (v *Variant) CardCount() int {
	return len(v.Cards) + len(v.Templates)
}
