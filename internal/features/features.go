package features

import (
	"strings"
	"unicode/utf8"

	"gonum.org/v1/gonum/mat"
)

// Sample is the per-review input to feature assembly: cleaned text plus the
// behavioral metadata the submitter provided. Missing metadata defaults to
// the zero value, matching the scoring contract.
type Sample struct {
	Text           string
	Verified       bool
	AccountAgeDays int
}

// BehavioralColumns names the behavioral feature columns in their frozen
// order. This order is part of the feature-space contract: training, scoring
// and explanation all rely on it and it must never change.
var BehavioralColumns = []string{"verified", "account_age_days", "text_len", "word_count"}

// Behavioral derives the behavioral feature columns for each sample.
func Behavioral(samples []Sample) *mat.Dense {
	out := mat.NewDense(len(samples), len(BehavioralColumns), nil)
	for i, s := range samples {
		verified := 0.0
		if s.Verified {
			verified = 1.0
		}
		out.Set(i, 0, verified)
		out.Set(i, 1, float64(s.AccountAgeDays))
		out.Set(i, 2, float64(utf8.RuneCountInString(s.Text)))
		out.Set(i, 3, float64(len(strings.Fields(s.Text))))
	}
	return out
}

// Temporal is the extension point for burst and inter-arrival signals. It
// currently contributes no columns.
func Temporal(samples []Sample) *mat.Dense {
	return nil
}

// Assemble horizontally concatenates embedding, behavioral and temporal
// columns, in that order, into one feature matrix. A nil or zero-width
// embedding leaves the behavioral+temporal columns alone as the feature
// matrix.
func Assemble(embedding, behavioral, temporal *mat.Dense) *mat.Dense {
	blocks := make([]*mat.Dense, 0, 3)
	for _, b := range []*mat.Dense{embedding, behavioral, temporal} {
		if b == nil {
			continue
		}
		if _, cols := b.Dims(); cols == 0 {
			continue
		}
		blocks = append(blocks, b)
	}

	switch len(blocks) {
	case 0:
		return nil
	case 1:
		return mat.DenseCopyOf(blocks[0])
	}

	out := blocks[0]
	for _, b := range blocks[1:] {
		var joined mat.Dense
		joined.Augment(out, b)
		out = &joined
	}
	return out
}
