package search

import (
	"strings"
	"unicode/utf8"
)

// substringScore is 0 when q occurs in field, 1 otherwise.
func substringScore(q, field string) float64 {
	if strings.Contains(field, q) {
		return 0
	}
	return 1
}

// subsequenceScore scores a subsequence hit by how tightly the query's runes
// cluster: 1 - len(q)/span, where span is the rune distance from the first
// to the last matched rune inclusive. idx holds byte offsets into field.
func subsequenceScore(q, field string, idx []int) float64 {
	if len(idx) == 0 {
		return 1
	}
	first, last := idx[0], idx[len(idx)-1]
	_, width := utf8.DecodeRuneInString(field[last:])
	span := utf8.RuneCountInString(field[first : last+width])
	n := utf8.RuneCountInString(q)
	if span <= 0 || n > span {
		return 1
	}
	return 1 - float64(n)/float64(span)
}

// bigrams returns the set of adjacent rune pairs in s. Strings of a single
// rune yield that rune alone so they can still match.
func bigrams(s string) map[string]struct{} {
	r := []rune(s)
	set := make(map[string]struct{}, len(r))
	if len(r) == 1 {
		set[s] = struct{}{}
		return set
	}
	for i := 0; i+1 < len(r); i++ {
		set[string(r[i:i+2])] = struct{}{}
	}
	return set
}

// jaccardDistance is 1 - |a∩b| / |a∪b| over bigram sets.
func jaccardDistance(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 1
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return 1 - float64(inter)/float64(union)
}

// typoScore compares q with every run of len(words(q)) consecutive words of
// field and keeps the closest, so "widget" still finds "Widge" and a
// one-word query is not diluted by a long description.
func typoScore(q string, qgrams map[string]struct{}, field string) float64 {
	words := strings.Fields(field)
	if len(words) == 0 {
		return 1
	}
	k := len(strings.Fields(q))
	if k == 0 {
		return 1
	}
	if k >= len(words) {
		return jaccardDistance(qgrams, bigrams(strings.Join(words, " ")))
	}

	best := 1.0
	for i := 0; i+k <= len(words); i++ {
		d := jaccardDistance(qgrams, bigrams(strings.Join(words[i:i+k], " ")))
		if d < best {
			best = d
			if best == 0 {
				break
			}
		}
	}
	return best
}
