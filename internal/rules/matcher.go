package rules

import (
	"regexp"
	"strings"
)

// MatchKeywords reports whether any keyword appears in text as a
// case-insensitive substring. False for empty text or an empty keyword list.
func MatchKeywords(text string, keywords []string) bool {
	if text == "" || len(keywords) == 0 {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// MatchPatterns reports whether any pattern matches text. Each pattern is a
// regular expression evaluated case-insensitively. Invalid patterns are
// skipped rather than failing the match.
func MatchPatterns(text string, patterns []*regexp.Regexp) bool {
	if text == "" {
		return false
	}
	for _, re := range patterns {
		if re == nil {
			continue
		}
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// CompilePatterns compiles pattern sources with case-insensitive matching.
// Invalid sources compile to nil entries so a single bad rule does not take
// down the session; the count of skipped patterns is returned.
func CompilePatterns(sources []string) ([]*regexp.Regexp, int) {
	if len(sources) == 0 {
		return nil, 0
	}
	compiled := make([]*regexp.Regexp, 0, len(sources))
	skipped := 0
	for _, src := range sources {
		re, err := regexp.Compile("(?i)" + src)
		if err != nil {
			skipped++
			continue
		}
		compiled = append(compiled, re)
	}
	return compiled, skipped
}

// DefaultRepeatThreshold is the run length that counts as character spam.
const DefaultRepeatThreshold = 5

// HasRepeatedChars reports whether text contains a run of the same character
// repeated at least threshold times consecutively. Runs are counted per rune.
func HasRepeatedChars(text string, threshold int) bool {
	if text == "" || threshold <= 0 {
		return false
	}
	if threshold == 1 {
		return len(text) > 0
	}

	var prev rune
	run := 0
	for _, r := range text {
		if r == prev && run > 0 {
			run++
		} else {
			prev = r
			run = 1
		}
		if run >= threshold {
			return true
		}
	}
	return false
}
