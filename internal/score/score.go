package score

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/joescharf/prscore/internal/models"
)

const (
	maxScore       = 100
	pointsPerIssue = 2
)

// Weights maps a category to its share of the overall score. Categories
// without a weight do not contribute to the overall score.
type Weights map[models.Category]float64

// DefaultWeights returns the stock weighting, which sums to 1.0.
func DefaultWeights() Weights {
	return Weights{
		models.CategoryStyle:         0.15,
		models.CategoryPerformance:   0.20,
		models.CategorySecurity:      0.25,
		models.CategoryComplexity:    0.15,
		models.CategoryBestPractices: 0.15,
		models.CategoryDocumentation: 0.10,
	}
}

// WeightsFromMap converts a config map (category name -> weight) into Weights.
// An empty map yields the defaults.
func WeightsFromMap(m map[string]float64) Weights {
	if len(m) == 0 {
		return DefaultWeights()
	}
	w := make(Weights, len(m))
	for k, v := range m {
		w[models.Category(k)] = v
	}
	return w
}

// Scorer turns category tallies into bounded scores.
type Scorer struct {
	weights Weights
}

// NewScorer returns a Scorer using w, or the default weights when w is nil.
func NewScorer(w Weights) *Scorer {
	if w == nil {
		w = DefaultWeights()
	}
	return &Scorer{weights: w}
}

// Weights returns the weights in use.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// CategoryScore returns 100 minus two points per issue, floored at 0.
func CategoryScore(count int) int {
	if count <= 0 {
		return maxScore
	}
	if count >= maxScore/pointsPerIssue {
		return 0
	}
	return maxScore - count*pointsPerIssue
}

// Score computes per-category scores for every tally entry and the weighted
// overall score, rounded half to even.
func (s *Scorer) Score(tally models.Tally) models.Score {
	cats := tally.Categories()
	scores := make(models.CategoryScores, len(cats))

	var values, weights []float64
	for _, c := range cats {
		cs := CategoryScore(tally[c])
		scores[c] = cs
		if w, ok := s.weights[c]; ok {
			values = append(values, float64(cs))
			weights = append(weights, w)
		}
	}

	var overall float64
	if len(values) > 0 {
		overall = floats.Dot(values, weights)
	}

	return models.Score{
		Overall:    clamp(int(math.RoundToEven(overall))),
		Categories: scores,
	}
}

func clamp(v int) int {
	switch {
	case v < 0:
		return 0
	case v > maxScore:
		return maxScore
	default:
		return v
	}
}
