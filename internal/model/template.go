package model

// TemplateID identifies a named abstract ingredient.
type TemplateID int64

// Template stands in for an open-ended set of cards satisfying a query.
// For the engine it is an atom, interchangeable with a Card for counting
// purposes.
type Template struct {
	ID    TemplateID
	Name  string
	Query string // free-form description shown to users, not evaluated here
}
