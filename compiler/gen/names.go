package gen

import (
	"strings"

	"github.com/go-openapi/inflect"
)

// acronyms are kept upper case in Go identifiers.
var acronyms = map[string]bool{
	"api":  true,
	"html": true,
	"http": true,
	"id":   true,
	"ip":   true,
	"json": true,
	"sql":  true,
	"uri":  true,
	"url":  true,
	"uuid": true,
	"xml":  true,
}

func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' })
}

// pascal converts a column name to an exported Go identifier.
//
//	pascal("user_id")  // UserID
//	pascal("api_url")  // APIURL
func pascal(s string) string {
	var b strings.Builder
	for _, w := range words(s) {
		if acronyms[strings.ToLower(w)] {
			b.WriteString(strings.ToUpper(w))
		} else {
			b.WriteString(inflect.Capitalize(w))
		}
	}
	return b.String()
}

// fileName returns the name of the file generated for a record type.
func fileName(typeName string) string {
	return inflect.Underscore(typeName) + ".go"
}
