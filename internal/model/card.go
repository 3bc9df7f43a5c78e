// Package model defines the value types of the combo catalog: cards,
// templates, features, authored combos, and computed variants.
package model

// CardID identifies a card by its opaque oracle id.
type CardID int64

// Card is a concrete Magic card participating in the combo graph.
// Cards are immutable within a single generation run.
type Card struct {
	ID       CardID
	Name     string
	Identity string // canonical WUBRG-ordered color identity, or "C"
	Legal    bool
	// Features lists the effects this card grants directly, independent of
	// any authored combo.
	Features []FeatureID
}
