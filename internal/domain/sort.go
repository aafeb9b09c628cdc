package domain

import (
	"math/rand"
	"sort"
	"strings"
)

// SortField represents a semantic sort key a catalog can be ordered by.
type SortField string

const (
	SortFieldAddedDate   SortField = "added_date"
	SortFieldPopularity  SortField = "popularity"
	SortFieldReleaseDate SortField = "release_date"
)

// SortOrder represents the sort direction.
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// SortDirective is a decoded sort instruction carried in a request's
// genre slot.
type SortDirective struct {
	Field   SortField
	Order   SortOrder
	Shuffle bool
}

// APIParam returns the upstream sort_by parameter for the directive, or
// "" when the directive has no server-side equivalent.
func (d SortDirective) APIParam() string {
	if d.Shuffle || d.Field == "" || d.Order == "" {
		return ""
	}
	field := string(d.Field)
	if d.Field == SortFieldAddedDate {
		field = "created_at"
	}
	return field + "." + string(d.Order)
}

// sortTokens holds one language's spellings of the sort vocabulary. The
// downstream client renders these in the genre picker, so a user-chosen
// "genre" can alternately encode a sort directive.
type sortTokens struct {
	Random      string
	Asc         string
	Desc        string
	AddedDate   string
	Popularity  string
	ReleaseDate string
}

var translations = map[string]sortTokens{
	"en-US": {"Random", "Ascending", "Descending", "Date Added", "Popularity", "Release Date"},
	"es-ES": {"Aleatorio", "Ascendente", "Descendente", "Fecha de adición", "Popularidad", "Fecha de estreno"},
	"fr-FR": {"Aléatoire", "Croissant", "Décroissant", "Date d'ajout", "Popularité", "Date de sortie"},
	"de-DE": {"Zufällig", "Aufsteigend", "Absteigend", "Hinzugefügt am", "Beliebtheit", "Erscheinungsdatum"},
	"it-IT": {"Casuale", "Crescente", "Decrescente", "Data di aggiunta", "Popolarità", "Data di uscita"},
	"pt-BR": {"Aleatório", "Crescente", "Decrescente", "Data de Adição", "Popularidade", "Data de Lançamento"},
	"tr-TR": {"Rastgele", "Artan", "Azalan", "Eklenme Tarihi", "Popülerlik", "Yayın Tarihi"},
}

func allTokens(pick func(sortTokens) string) []string {
	tokens := make([]string, 0, len(translations))
	for _, t := range translations {
		if v := pick(t); v != "" {
			tokens = append(tokens, v)
		}
	}
	return tokens
}

// ResolveSortDirective decodes the sort directive carried in a genre
// slot, matching any language's token set. It returns nil when the value
// does not look like a sort directive.
//
// Callers must try a literal genre match against the GenreTable before
// calling this: when a genre name collides with a sort token across
// languages, the genre strictly takes precedence.
func ResolveSortDirective(genre string) *SortDirective {
	if genre == "" {
		return nil
	}

	fields := map[SortField][]string{
		SortFieldAddedDate:   allTokens(func(t sortTokens) string { return t.AddedDate }),
		SortFieldPopularity:  allTokens(func(t sortTokens) string { return t.Popularity }),
		SortFieldReleaseDate: allTokens(func(t sortTokens) string { return t.ReleaseDate }),
	}

	var field SortField
	for name, tokens := range fields {
		if containsAny(genre, tokens) {
			field = name
			break
		}
	}

	if field != "" {
		// Descending first: some locales spell "ascending" as a
		// substring of "descending" (Croissant / Décroissant).
		switch {
		case containsAny(genre, allTokens(func(t sortTokens) string { return t.Desc })):
			return &SortDirective{Field: field, Order: SortOrderDesc}
		case containsAny(genre, allTokens(func(t sortTokens) string { return t.Asc })):
			return &SortDirective{Field: field, Order: SortOrderAsc}
		}
		return nil
	}

	for _, token := range allTokens(func(t sortTokens) string { return t.Random }) {
		if genre == token {
			return &SortDirective{Shuffle: true}
		}
	}
	return nil
}

func containsAny(s string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(s, token) {
			return true
		}
	}
	return false
}

// SortItems orders raw items in place according to the directive.
// Shuffle applies a uniform random permutation; added_date has no
// client-side representation, so the upstream order is kept.
func SortItems(items []RawItem, d SortDirective) {
	if d.Shuffle {
		rand.Shuffle(len(items), func(i, j int) {
			items[i], items[j] = items[j], items[i]
		})
		return
	}

	less := func(a, b RawItem) bool { return false }
	switch d.Field {
	case SortFieldPopularity:
		less = func(a, b RawItem) bool { return a.Popularity < b.Popularity }
	case SortFieldReleaseDate:
		less = func(a, b RawItem) bool { return releaseDate(a) < releaseDate(b) }
	default:
		return
	}

	sort.SliceStable(items, func(i, j int) bool {
		if d.Order == SortOrderAsc {
			return less(items[i], items[j])
		}
		return less(items[j], items[i])
	})
}

func releaseDate(item RawItem) string {
	if item.ReleaseDate != "" {
		return item.ReleaseDate
	}
	return item.FirstAirDate
}
