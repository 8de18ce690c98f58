package grading

import (
	"math"
	"sort"
)

// DefaultCategory is the sentinel category for structures without tags.
const DefaultCategory = "default"

// StructureScore is the per-structure grading outcome.
type StructureScore struct {
	Match       Match
	BasePoints  float64
	HintPenalty float64 // rounded for display/audit
	Points      float64 // final, floored at zero and rounded
	Correct     bool
}

// ScoreStructure converts a match classification, hint count, and rubric
// options into a point value for one structure.
func ScoreStructure(match Match, pointsPossible float64, hintsUsed int, rubric Rubric) StructureScore {
	var base float64
	correct := false

	switch match.Type {
	case MatchExact, MatchAlias:
		base = pointsPossible
		correct = true
	case MatchFuzzy:
		correct = true
		if rubric.PartialCreditEnabled {
			base = pointsPossible * (1 - float64(match.Distance)*0.1)
		} else {
			base = pointsPossible
		}
	default:
		if match.Partial {
			base = pointsPossible * math.Max(0, (5-float64(match.Distance))/10)
		}
	}

	penalty := float64(hintsUsed) * (rubric.HintPenaltyPercent / 100) * pointsPossible

	return StructureScore{
		Match:       match,
		BasePoints:  base,
		HintPenalty: Round2(penalty),
		Points:      Round2(math.Max(0, base-penalty)),
		Correct:     correct,
	}
}

// AggregateItem pairs one structure's earned points with its weighting inputs.
type AggregateItem struct {
	Earned   float64
	Possible float64
	Category string
}

// CategoryOf resolves a structure's category: its first tag, or the literal
// "default" sentinel when untagged. This rule materially affects weighted
// totals, so it lives in exactly one place.
func CategoryOf(tags []string) string {
	if len(tags) == 0 {
		return DefaultCategory
	}
	return tags[0]
}

// AggregateFlat sums all per-structure points and rescales onto the lab's
// configured maximum when the structures' own maxima disagree with it. A lab
// with zero possible points yields zero.
func AggregateFlat(items []AggregateItem, maxPoints float64) float64 {
	var earned, possible float64
	for _, item := range items {
		earned += item.Earned
		possible += item.Possible
	}
	if possible == 0 {
		return Round2(earned)
	}
	if possible != maxPoints {
		return Round2(earned / possible * maxPoints)
	}
	return Round2(earned)
}

// AggregateWeighted groups structures by category, computes each category's
// earned ratio, and combines them by rubric weight. Categories with zero
// possible points are skipped; a category absent from the weight map defaults
// to weight 1. Categories are visited in sorted order so totals are
// reproducible.
func AggregateWeighted(items []AggregateItem, weights map[string]float64, maxPoints float64) float64 {
	type totals struct{ earned, possible float64 }
	byCategory := make(map[string]*totals)
	for _, item := range items {
		t, ok := byCategory[item.Category]
		if !ok {
			t = &totals{}
			byCategory[item.Category] = t
		}
		t.earned += item.Earned
		t.possible += item.Possible
	}

	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var weightedSum, weightTotal float64
	for _, category := range categories {
		t := byCategory[category]
		if t.possible == 0 {
			continue
		}
		weight, ok := weights[category]
		if !ok {
			weight = 1
		}
		weightedSum += (t.earned / t.possible) * weight
		weightTotal += weight
	}
	if weightTotal == 0 {
		return 0
	}

	return Round2(weightedSum / weightTotal * maxPoints)
}

// Percentage computes the attempt percentage rounded to two decimals; zero
// when the lab has no points.
func Percentage(totalScore, maxPoints float64) float64 {
	if maxPoints == 0 {
		return 0
	}
	return math.Round(totalScore/maxPoints*10000) / 100
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
