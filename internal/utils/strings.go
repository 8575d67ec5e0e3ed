// Package utils holds small string helpers.
package utils

import "strings"

// ParseSymbols turns a comma-separated ticker list into upper-case symbols,
// first occurrence wins. Blank entries are skipped; nil means no symbols.
func ParseSymbols(s string) []string {
	var symbols []string
	seen := make(map[string]bool)
	for _, field := range strings.Split(s, ",") {
		sym := strings.ToUpper(strings.TrimSpace(field))
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		symbols = append(symbols, sym)
	}
	return symbols
}
