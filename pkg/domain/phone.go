package domain

import "strings"

// NormalizePhone canonicalizes a phone number for comparison and lookups.
// Persian and Arabic-Indic digits become ASCII, separators are dropped and the
// +98/0098 country prefix is rewritten to the local leading zero.
func NormalizePhone(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= '۰' && r <= '۹':
			b.WriteRune('0' + (r - '۰'))
		case r >= '٠' && r <= '٩':
			b.WriteRune('0' + (r - '٠'))
		case r == '+':
			if b.Len() == 0 {
				b.WriteRune(r)
			}
		}
	}
	out := b.String()
	switch {
	case strings.HasPrefix(out, "+98"):
		out = "0" + out[3:]
	case strings.HasPrefix(out, "0098"):
		out = "0" + out[4:]
	}
	return out
}
