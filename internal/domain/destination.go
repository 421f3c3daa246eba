package domain

import (
	"sort"
	"strings"
	"unicode"
)

// Destination is a canonical place name and the free-text aliases that refer to it.
type Destination struct {
	Name    string
	Aliases []string
}

// Destinations is the static lookup table used by ResolveLocation. Earlier
// entries win when several destinations match.
var Destinations = []Destination{
	{Name: "New York", Aliases: []string{"new york", "ny", "nyc", "manhattan"}},
	{Name: "Los Angeles", Aliases: []string{"los angeles", "la", "hollywood"}},
	{Name: "London", Aliases: []string{"london", "uk", "england"}},
	{Name: "Paris", Aliases: []string{"paris", "france"}},
	{Name: "Tokyo", Aliases: []string{"tokyo", "japan"}},
	{Name: "Rome", Aliases: []string{"rome", "italy"}},
	{Name: "Barcelona", Aliases: []string{"barcelona", "spain"}},
	{Name: "Amsterdam", Aliases: []string{"amsterdam", "netherlands"}},
	{Name: "Sydney", Aliases: []string{"sydney", "australia"}},
	{Name: "Dubai", Aliases: []string{"dubai", "uae"}},
}

// ResolveLocation finds the first destination mentioned in the message or in
// any of the given history turns.
func ResolveLocation(message string, history []Turn) (Destination, bool) {
	return resolveIn(Destinations, message, history)
}

func resolveIn(table []Destination, message string, history []Turn) (Destination, bool) {
	parts := make([]string, 0, len(history)+1)
	parts = append(parts, message)
	for _, t := range history {
		parts = append(parts, t.Content)
	}

	words := tokenize(strings.Join(parts, " "))
	if len(words) == 0 {
		return Destination{}, false
	}
	text := strings.Join(words, " ")
	wordSet := make(map[string]struct{}, len(words))
	for _, w := range words {
		wordSet[w] = struct{}{}
	}

	for _, dest := range table {
		for _, alias := range aliasesByLength(dest.Aliases) {
			if strings.Contains(alias, " ") {
				if strings.Contains(text, alias) {
					return dest, true
				}
				continue
			}
			if _, ok := wordSet[alias]; ok {
				return dest, true
			}
		}
	}
	return Destination{}, false
}

// tokenize lower-cases s and splits it into runs of letters and digits.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// aliasesByLength returns a copy of aliases ordered longest first.
func aliasesByLength(aliases []string) []string {
	sorted := make([]string, len(aliases))
	copy(sorted, aliases)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})
	return sorted
}
