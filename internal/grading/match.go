package grading

import "math"

// Match tier labels, in priority order.
const (
	MatchExact = "exact"
	MatchAlias = "alias"
	MatchFuzzy = "fuzzy"
	MatchNone  = "none"
)

const (
	// fuzzyMaxDistance is the largest edit distance accepted as a fuzzy match.
	fuzzyMaxDistance = 2
	// partialMaxDistance is the largest edit distance eligible for the
	// partial-credit fallback.
	partialMaxDistance = 4
	// fuzzyMinLength mirrors the answer-canvas preview guard: answers shorter
	// than this never fuzzy-match, so short near-misses cannot auto-grade as
	// correct where the preview rejected them.
	fuzzyMinLength = 3
)

// Candidate is the accepted-name set for one structure.
type Candidate struct {
	Name      string
	LatinName string
	Aliases   []string
}

// Match classifies one answer against one structure's accepted names.
type Match struct {
	Type     string
	Distance int  // minimum edit distance to any accepted name; 0 for exact/alias
	Partial  bool // the partial-credit fallback applies
}

// MatchAnswer classifies a raw answer in strict tier order, short-circuiting
// on the first success: exact against the primary or latin name, then the
// rubric aliases, then fuzzy within distance 2 (when enabled), then the
// partial-credit fallback within distance 4 (when enabled).
func MatchAnswer(rawAnswer string, candidate Candidate, rubric Rubric) Match {
	answer := Normalize(rawAnswer)
	primary := Normalize(candidate.Name)
	latin := Normalize(candidate.LatinName)

	if answer != "" && (answer == primary || (latin != "" && answer == latin)) {
		return Match{Type: MatchExact}
	}

	aliases := make([]string, 0, len(candidate.Aliases))
	for _, alias := range candidate.Aliases {
		if normalized := Normalize(alias); normalized != "" {
			aliases = append(aliases, normalized)
		}
	}
	if answer != "" {
		for _, alias := range aliases {
			if answer == alias {
				return Match{Type: MatchAlias}
			}
		}
	}

	accepted := make([]string, 0, len(aliases)+2)
	if primary != "" {
		accepted = append(accepted, primary)
	}
	if latin != "" {
		accepted = append(accepted, latin)
	}
	accepted = append(accepted, aliases...)

	minDistance := math.MaxInt
	for _, name := range accepted {
		if d := Levenshtein(answer, name); d < minDistance {
			minDistance = d
		}
	}
	if len(accepted) == 0 {
		return Match{Type: MatchNone, Distance: minDistance}
	}

	if rubric.FuzzyMatchEnabled &&
		len([]rune(answer)) >= fuzzyMinLength &&
		minDistance > 0 && minDistance <= fuzzyMaxDistance {
		return Match{Type: MatchFuzzy, Distance: minDistance}
	}

	if rubric.PartialCreditEnabled && answer != "" && minDistance <= partialMaxDistance {
		return Match{Type: MatchNone, Distance: minDistance, Partial: true}
	}

	return Match{Type: MatchNone, Distance: minDistance}
}
