// Package sentiment scores chat text against a fixed lexicon.
//
// Scoring runs two passes: a word pass over lowercased whitespace tokens,
// then a containment pass that checks every lexicon entry as a raw
// substring. The second pass exists so emoji land even when not
// space-separated; it also re-counts word entries that appear as
// substrings. That double counting matches the behavior this engine
// replicates and is kept deliberately.
package sentiment

import (
	"fmt"
	"math"
	"strings"
)

// Weights holds the per-class score contribution. Positive is expected to
// be > 0 and Negative < 0.
type Weights struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
}

// Lexicon is the session-immutable token table. Entries may be words or
// emoji; word-pass comparison is exact against lowercased tokens, so word
// entries should be configured lowercase.
type Lexicon struct {
	Positive []string `json:"positive"`
	Negative []string `json:"negative"`
	Weights  Weights  `json:"weights"`
}

// Validate checks the lexicon is usable for a session.
func (l *Lexicon) Validate() error {
	if len(l.Positive) == 0 && len(l.Negative) == 0 {
		return fmt.Errorf("sentiment: lexicon has no entries")
	}
	if l.Weights.Positive == 0 && l.Weights.Negative == 0 {
		return fmt.Errorf("sentiment: lexicon has zero weights")
	}
	return nil
}

// Scorer scores text against one lexicon. Stateless and safe for
// concurrent use.
type Scorer struct {
	lexicon  Lexicon
	positive map[string]struct{}
	negative map[string]struct{}
}

// NewScorer builds a Scorer. The lexicon is copied and must not change
// for the session.
func NewScorer(lexicon Lexicon) (*Scorer, error) {
	if err := lexicon.Validate(); err != nil {
		return nil, err
	}

	s := &Scorer{
		lexicon:  lexicon,
		positive: make(map[string]struct{}, len(lexicon.Positive)),
		negative: make(map[string]struct{}, len(lexicon.Negative)),
	}
	for _, e := range lexicon.Positive {
		s.positive[e] = struct{}{}
	}
	for _, e := range lexicon.Negative {
		s.negative[e] = struct{}{}
	}
	return s, nil
}

// Score maps text to a sentiment value in [-1, 1]. Returns exactly 0 for
// empty text or when no lexicon entry matches. Otherwise the raw sum is
// normalized by sqrt(matched+1) and clamped; the +1 damps low match
// counts and is part of the reproducible formula.
func (s *Scorer) Score(text string) float64 {
	if text == "" {
		return 0
	}

	var raw float64
	matched := 0

	for _, word := range strings.Fields(strings.ToLower(text)) {
		if _, ok := s.positive[word]; ok {
			raw += s.lexicon.Weights.Positive
			matched++
		} else if _, ok := s.negative[word]; ok {
			raw += s.lexicon.Weights.Negative
			matched++
		}
	}

	// Containment pass over the raw text, every entry.
	for _, e := range s.lexicon.Positive {
		if e != "" && strings.Contains(text, e) {
			raw += s.lexicon.Weights.Positive
			matched++
		}
	}
	for _, e := range s.lexicon.Negative {
		if e != "" && strings.Contains(text, e) {
			raw += s.lexicon.Weights.Negative
			matched++
		}
	}

	if matched == 0 {
		return 0
	}

	return clamp(raw/math.Sqrt(float64(matched)+1), -1, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
