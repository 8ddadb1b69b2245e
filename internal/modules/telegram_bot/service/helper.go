package service

import (
	"strings"
)

// shortID сокращает длинные id токенов (у CLOB это 70+ цифр).
func shortID(s string) string {
	r := []rune(s)
	if len(r) <= 16 {
		return s
	}
	return string(r[:6]) + "…" + string(r[len(r)-4:])
}

func side(size string) string {
	if strings.HasPrefix(size, "-") {
		return "SHORT"
	}
	return "LONG"
}

// splitIDs: "a, b c" -> [a b c]
func splitIDs(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
}
