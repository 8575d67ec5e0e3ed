package scheduler

import (
	"sort"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// window returns [today-back, today+ahead] as YYYY-MM-DD strings in UTC.
func window(now time.Time, back, ahead int) (string, string) {
	today := now.UTC()
	return today.AddDate(0, 0, -back).Format(dateLayout), today.AddDate(0, 0, ahead).Format(dateLayout)
}

// mergeSymbols uppercases, dedupes and sorts the given symbol lists.
func mergeSymbols(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, s := range list {
			s = strings.ToUpper(strings.TrimSpace(s))
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
