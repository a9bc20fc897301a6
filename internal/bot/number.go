package bot

import "strings"

const minNumberDigits = 10

// stripNumber removes the country prefix and common separators so a
// pasted "+91 97984-23774" and a bare "9798423774" search the same.
func stripNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "+91", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// normalizeNumber reports whether text is a searchable number and
// returns its canonical digits-only form.
func normalizeNumber(text string) (string, bool) {
	s := stripNumber(text)
	if !isDigits(s) || len(s) < minNumberDigits {
		return "", false
	}
	return s, true
}
