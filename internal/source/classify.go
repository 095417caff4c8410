package source

import (
	"math"
	"strings"
	"unicode"

	"github.com/jbrukh/bayesian"

	"github.com/theirongolddev/cflow/internal/model"
)

// minConfidence is the log-score margin the best category must have over the
// runner-up before a suggestion is made.
const minConfidence = 2.0

// Classifier suggests categories for unassigned rows from their descriptions.
type Classifier struct {
	nb *bayesian.Classifier
}

// TrainClassifier learns description words from categorized entries. It
// returns nil when fewer than two categories have training data, since a
// single-class model would assign everything to it.
func TrainClassifier(entries []model.LedgerEntry) *Classifier {
	classes := make([]bayesian.Class, len(model.Categories))
	for i, c := range model.Categories {
		classes[i] = bayesian.Class(c)
	}

	trained := make(map[model.Category]bool)
	nb := bayesian.NewClassifier(classes...)
	for _, e := range entries {
		if !e.Category.Valid() {
			continue
		}
		words := tokenize(e.Description)
		if len(words) == 0 {
			continue
		}
		nb.Learn(words, bayesian.Class(e.Category))
		trained[e.Category] = true
	}

	if len(trained) < 2 {
		return nil
	}
	return &Classifier{nb: nb}
}

// Suggest returns the most likely category for description, or false when
// no category wins by a clear margin.
func (c *Classifier) Suggest(description string) (model.Category, bool) {
	if c == nil {
		return model.CategoryUnassigned, false
	}
	words := tokenize(description)
	if len(words) == 0 {
		return model.CategoryUnassigned, false
	}

	best, second := math.Inf(-1), math.Inf(-1)
	idx := -1
	scores, _, _ := c.nb.LogScores(words)
	for i, score := range scores {
		switch {
		case score > best:
			second = best
			best = score
			idx = i
		case score > second:
			second = score
		}
	}
	if idx < 0 || best-second <= minConfidence {
		return model.CategoryUnassigned, false
	}
	return model.Category(c.nb.Classes[idx]), true
}

// Apply fills in the category of unassigned entries where a suggestion is
// confident. It returns how many entries changed.
func (c *Classifier) Apply(entries []model.LedgerEntry) int {
	if c == nil {
		return 0
	}
	changed := 0
	for i := range entries {
		if entries[i].Category.Valid() {
			continue
		}
		if cat, ok := c.Suggest(entries[i].Description); ok {
			entries[i].Category = cat
			changed++
		}
	}
	return changed
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
