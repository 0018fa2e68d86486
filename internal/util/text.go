package util

import "strings"

var cellSanitizer = strings.NewReplacer(
	"\r\n", " ",
	"\r", " ",
	"\n", " ",
	"\t", " ",
)

// SanitizeCell collapses embedded line breaks and tabs to single spaces so
// a value can be emitted as one cell of a line-oriented TSV table.
func SanitizeCell(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return cellSanitizer.Replace(sanitized)
}
