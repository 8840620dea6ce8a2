// Package util contiene helpers chicos sin dependencias del dominio.
package util

import "strings"

// MaskEmail deja visible la primera letra del usuario y del dominio y el TLD:
// "ann.lee@example.com" -> "a…@e….com". Sin "@" enmascara el string entero.
func MaskEmail(s string) string {
	s = strings.TrimSpace(s)
	user, domain, ok := strings.Cut(s, "@")
	if !ok || user == "" {
		return maskWord(s)
	}
	labels := strings.Split(domain, ".")
	labels[0] = maskWord(labels[0])
	return maskWord(user) + "@" + strings.Join(labels, ".")
}

func maskWord(s string) string {
	r := []rune(s)
	switch {
	case len(r) == 0:
		return ""
	case len(r) == 1:
		return "*"
	default:
		return string(r[0]) + "…"
	}
}
