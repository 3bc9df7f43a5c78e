package model

// ComboID identifies an authored combo.
type ComboID int64

// Combo is a hyperedge: it needs features and uses cards/templates on the
// input side, and produces/removes features on the output side. Generator
// combos are eligible to root a variant.
type Combo struct {
	ID        ComboID
	Generator bool

	Uses     []CardID
	Requires []TemplateID
	Needs    []FeatureID
	Produces []FeatureID
	Removes  []FeatureID

	// Free-form text fields concatenated into a Variant's corresponding
	// fields during the RESTORE reconciliation path.
	ZoneLocations      string
	CardsState         string
	OtherPrerequisites string
	ManaNeeded         string
	Description        string
}
