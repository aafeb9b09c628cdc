package tmdb

import "catalog-metadata-service/internal/domain"

// Static tables used when the upstream genre or language endpoints are
// unavailable. They mirror the English catalog and are only consulted as a
// last resort after cache and live fetch both fail.

var fallbackMovieGenres = []domain.Genre{
	{ID: 28, Name: "Action"},
	{ID: 12, Name: "Adventure"},
	{ID: 16, Name: "Animation"},
	{ID: 35, Name: "Comedy"},
	{ID: 80, Name: "Crime"},
	{ID: 99, Name: "Documentary"},
	{ID: 18, Name: "Drama"},
	{ID: 10751, Name: "Family"},
	{ID: 14, Name: "Fantasy"},
	{ID: 36, Name: "History"},
	{ID: 27, Name: "Horror"},
	{ID: 10402, Name: "Music"},
	{ID: 9648, Name: "Mystery"},
	{ID: 10749, Name: "Romance"},
	{ID: 878, Name: "Science Fiction"},
	{ID: 10770, Name: "TV Movie"},
	{ID: 53, Name: "Thriller"},
	{ID: 10752, Name: "War"},
	{ID: 37, Name: "Western"},
}

var fallbackSeriesGenres = []domain.Genre{
	{ID: 10759, Name: "Action & Adventure"},
	{ID: 16, Name: "Animation"},
	{ID: 35, Name: "Comedy"},
	{ID: 80, Name: "Crime"},
	{ID: 99, Name: "Documentary"},
	{ID: 18, Name: "Drama"},
	{ID: 10751, Name: "Family"},
	{ID: 10762, Name: "Kids"},
	{ID: 9648, Name: "Mystery"},
	{ID: 10763, Name: "News"},
	{ID: 10764, Name: "Reality"},
	{ID: 10765, Name: "Sci-Fi & Fantasy"},
	{ID: 10766, Name: "Soap"},
	{ID: 10767, Name: "Talk"},
	{ID: 10768, Name: "War & Politics"},
	{ID: 37, Name: "Western"},
}

// FallbackGenres returns the built-in genre table for the given content type.
func FallbackGenres(typ domain.ContentType) []domain.Genre {
	if typ == domain.ContentTypeSeries {
		return fallbackSeriesGenres
	}
	return fallbackMovieGenres
}

// FallbackLanguages returns the built-in language list covering the locales
// the upstream API publishes official translations for.
func FallbackLanguages() []domain.Language {
	return []domain.Language{
		{ISO639: "en-US", Name: "English"},
		{ISO639: "es-ES", Name: "Español"},
		{ISO639: "es-MX", Name: "Español (México)"},
		{ISO639: "fr-FR", Name: "Français"},
		{ISO639: "de-DE", Name: "Deutsch"},
		{ISO639: "it-IT", Name: "Italiano"},
		{ISO639: "pt-BR", Name: "Português (Brasil)"},
		{ISO639: "pt-PT", Name: "Português"},
		{ISO639: "tr-TR", Name: "Türkçe"},
		{ISO639: "ru-RU", Name: "Русский"},
		{ISO639: "ja-JP", Name: "日本語"},
		{ISO639: "ko-KR", Name: "한국어"},
		{ISO639: "zh-CN", Name: "普通话"},
		{ISO639: "hi-IN", Name: "हिन्दी"},
		{ISO639: "ar-SA", Name: "العربية"},
		{ISO639: "nl-NL", Name: "Nederlands"},
		{ISO639: "pl-PL", Name: "Polski"},
		{ISO639: "sv-SE", Name: "Svenska"},
		{ISO639: "da-DK", Name: "Dansk"},
		{ISO639: "cs-CZ", Name: "Čeština"},
		{ISO639: "el-GR", Name: "Ελληνικά"},
		{ISO639: "he-IL", Name: "עברית"},
		{ISO639: "hu-HU", Name: "Magyar"},
		{ISO639: "id-ID", Name: "Bahasa Indonesia"},
		{ISO639: "th-TH", Name: "ภาษาไทย"},
		{ISO639: "uk-UA", Name: "Українська"},
		{ISO639: "vi-VN", Name: "Tiếng Việt"},
	}
}
