package models

import "strings"

// AllTypesLabel is the label used for the type-blind selection.
const AllTypesLabel = "ALL"

// ArchetypeKey selects an archetype, either one specific type or all of them.
type ArchetypeKey struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	AllTypes bool   `json:"all_types"`
}

// AllTypesOf returns the type-blind key for an archetype.
func AllTypesOf(name string) ArchetypeKey {
	return ArchetypeKey{Name: name, AllTypes: true}
}

// TypedKey returns the key for one specific type of an archetype.
// An empty type is a concrete value, not the ALL sentinel.
func TypedKey(name, typ string) ArchetypeKey {
	return ArchetypeKey{Name: name, Type: typ}
}

// ParseArchetypeKey builds a key from a name and a type selection, treating an
// empty selection or AllTypesLabel as ALL.
func ParseArchetypeKey(name, typ string) ArchetypeKey {
	if typ == "" || typ == AllTypesLabel {
		return AllTypesOf(name)
	}
	return TypedKey(name, typ)
}

// Matches reports whether a deck/type pair falls under the key.
func (k ArchetypeKey) Matches(deck, deckType string) bool {
	if deck != k.Name {
		return false
	}
	return k.AllTypes || deckType == k.Type
}

// TypeLabel returns the type for display, AllTypesLabel for the sentinel.
func (k ArchetypeKey) TypeLabel() string {
	if k.AllTypes {
		return AllTypesLabel
	}
	return k.Type
}

// String renders "Name" for ALL keys and "Name (Type)" otherwise.
func (k ArchetypeKey) String() string {
	if k.AllTypes || strings.TrimSpace(k.Type) == "" {
		return k.Name
	}
	return k.Name + " (" + k.Type + ")"
}
