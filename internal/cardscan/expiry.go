package cardscan

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const candidateLength = 5

// dateCandidates returns the expiry candidates found on a single trimmed line.
// A five character line containing a slash is taken whole; longer lines are
// split on spaces and every five character token with a slash is kept.
func dateCandidates(line string) []string {
	if !strings.Contains(line, "/") {
		return nil
	}
	n := utf8.RuneCountInString(line)
	if n == candidateLength {
		return []string{line}
	}
	if n < candidateLength {
		return nil
	}

	var candidates []string
	for _, token := range strings.Split(line, " ") {
		if utf8.RuneCountInString(token) == candidateLength && strings.Contains(token, "/") {
			candidates = append(candidates, token)
		}
	}
	return candidates
}

// yearOf parses the last two characters of a candidate. Anything that is not
// a number counts as year 0.
func yearOf(candidate string) int {
	r := []rune(candidate)
	if len(r) < 2 {
		return 0
	}
	year, err := strconv.Atoi(string(r[len(r)-2:]))
	if err != nil {
		return 0
	}
	return year
}

// GetExpiryDate picks the candidate with the highest two-digit year, keeping
// the first one in scan order when several share that year. It returns ""
// when there are no candidates or the highest year is 00.
func GetExpiryDate(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}

	maxYear := yearOf(candidates[0])
	for _, c := range candidates[1:] {
		if y := yearOf(c); y > maxYear {
			maxYear = y
		}
	}
	if maxYear == 0 {
		return ""
	}

	for _, c := range candidates {
		if yearOf(c) == maxYear {
			return c
		}
	}
	return ""
}
