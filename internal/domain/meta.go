package domain

import (
	"fmt"
	"regexp"
)

const (
	posterBaseURL     = "https://image.tmdb.org/t/p/w500"
	backgroundBaseURL = "https://image.tmdb.org/t/p/original"
)

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// ParseMeta derives the normalized display record from one raw upstream
// item and a genre table. The mapping is deterministic and total: a raw
// item that fails shape checks produces a minimal fallback record (id and
// name preserved, other fields defaulted) instead of being dropped.
func ParseMeta(raw RawItem, typ ContentType, genres GenreTable) MetaRecord {
	// Trending pages mix media types; the item's own tag wins.
	if raw.MediaType != "" {
		if t, ok := CanonicalType(raw.MediaType); ok {
			typ = t
		} else {
			return FallbackMeta(raw, typ)
		}
	}

	name := raw.DisplayName()
	if name == "" {
		name = "Unknown Title"
	}

	var year string
	switch typ {
	case ContentTypeMovie:
		year = releaseYear(raw.ReleaseDate)
	case ContentTypeSeries:
		year = releaseYear(raw.FirstAirDate)
	}

	rating := "N/A"
	if raw.VoteAverage > 0 {
		rating = fmt.Sprintf("%.1f", raw.VoteAverage)
	}

	meta := MetaRecord{
		ID:          fmt.Sprintf("tmdb:%d", raw.ID),
		Name:        name,
		Genres:      genres.Names(raw.GenreIDs),
		PosterShape: "regular",
		IMDBRating:  rating,
		Year:        year,
		Type:        typ,
		Description: raw.Overview,
	}
	if raw.PosterPath != "" {
		meta.Poster = posterBaseURL + raw.PosterPath
	}
	if raw.BackdropPath != "" {
		meta.Background = backgroundBaseURL + raw.BackdropPath
	}
	return meta
}

// FallbackMeta is the degraded-but-valid record substituted when a raw
// item cannot be parsed into a full MetaRecord.
func FallbackMeta(raw RawItem, typ ContentType) MetaRecord {
	name := raw.DisplayName()
	if name == "" {
		name = "Unknown Title"
	}
	return MetaRecord{
		ID:          fmt.Sprintf("tmdb:%d", raw.ID),
		Name:        name,
		Genres:      []string{},
		PosterShape: "regular",
		IMDBRating:  "N/A",
		Type:        typ,
	}
}

// releaseYear extracts a four-digit year from an upstream date string,
// returning "" for anything malformed.
func releaseYear(date string) string {
	if len(date) < 4 {
		return ""
	}
	year := date[:4]
	if !yearPattern.MatchString(year) {
		return ""
	}
	return year
}
