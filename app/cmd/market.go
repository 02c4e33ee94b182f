package cmd

import "strings"

const defaultMarket = "es-ES"

// marketCodes maps bare language codes to the market Bing serves them in.
var marketCodes = map[string]string{
	"es": "es-ES",
	"en": "en-US",
	"fr": "fr-FR",
	"de": "de-DE",
	"pt": "pt-BR",
	"it": "it-IT",
}

// normalizeMarket expands a bare language code into a full market code,
// anything else is passed through as is.
func normalizeMarket(m string) string {
	m = strings.TrimSpace(m)
	if m == "" {
		return defaultMarket
	}
	if full, ok := marketCodes[strings.ToLower(m)]; ok {
		return full
	}
	return m
}
