package questionbank

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Lines turns extracted text into trimmed, non-empty lines in NFC form.
func Lines(text string) []string {
	text = norm.NFC.String(lineEndings.Replace(text))
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}
