package domain

import "strings"

// Genre is one entry of the upstream genre catalog.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreTable maps upstream genre ids to display names. Tables are scoped
// per (language, content type). Lookups never fail: a missing entry
// reports !ok instead of propagating a resolution failure into record
// construction.
type GenreTable []Genre

// NameOf returns the display name for a genre id.
func (t GenreTable) NameOf(id int) (string, bool) {
	for _, g := range t {
		if g.ID == id {
			return g.Name, true
		}
	}
	return "", false
}

// IDOf returns the upstream id for an exact genre name match.
func (t GenreTable) IDOf(name string) (int, bool) {
	for _, g := range t {
		if g.Name == name {
			return g.ID, true
		}
	}
	return 0, false
}

// Names resolves a set of genre ids to display names, dropping unknown
// ids silently.
func (t GenreTable) Names(ids []int) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := t.NameOf(id); ok {
			names = append(names, name)
		}
	}
	return names
}

// Language is one entry of the upstream language catalog.
type Language struct {
	ISO639 string `json:"iso_639_1"`
	Name   string `json:"name"`
}

// LanguageCode resolves a display name ("French") to its primary language
// code ("fr"). Used when a catalog's genre slot selects a language.
func LanguageCode(name string, languages []Language) (string, bool) {
	for _, l := range languages {
		if l.Name == name {
			code, _, _ := strings.Cut(l.ISO639, "-")
			return code, true
		}
	}
	return "", false
}
