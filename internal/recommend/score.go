package recommend

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/mithrel/fitcoach/pkg/models"
)

const (
	DefaultLimit = 3
	// MinScore is the cutoff below which an exercise is never suggested.
	MinScore = 30

	concernBoost = 40
	tagBoost     = 25

	RestMessage = "Your condition looks rough today. Take a rest and try again tomorrow."
)

// Score rates how well ex fits the reported condition.
func Score(ex models.Exercise, in models.ConditionInput) int {
	score := 0
	concern := strings.ToLower(strings.TrimSpace(in.BodyConcern))
	area := strings.ToLower(strings.TrimSpace(ex.TargetArea))

	if concern != "" && area != "" && strings.Contains(concern, area) {
		score += concernBoost
		if len(fuzzy.Find(area, lowerAll(ex.TagNames()))) > 0 {
			score += tagBoost
		}
	} else if concern != "" && tagMentioned(concern, ex.TagNames()) {
		score += tagBoost
	}

	switch ex.Category {
	case models.CategoryStretch:
		if in.FatigueLevel >= 4 || in.MoodLevel <= 2 {
			score += 15
		}
	case models.CategoryStrength:
		if in.FatigueLevel <= 2 && in.MoodLevel >= 4 {
			score += 15
		}
	case models.CategoryCardio:
		if in.FatigueLevel <= 3 && in.MoodLevel >= 3 {
			score += 10
		}
	default:
		score += 5
	}
	return score
}

// Rank returns up to limit exercises that clear MinScore, best first. rest is
// true when the user should rest instead of exercising.
func Rank(catalog []models.Exercise, in models.ConditionInput, limit int) (picks []models.Exercise, rest bool) {
	if in.FatigueLevel >= models.MaxLevel {
		return nil, true
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	type scored struct {
		ex    models.Exercise
		score int
	}
	cands := make([]scored, 0, len(catalog))
	for _, ex := range catalog {
		if s := Score(ex, in); s >= MinScore {
			cands = append(cands, scored{ex: ex, score: s})
		}
	}
	if len(cands) == 0 {
		return nil, true
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		return cands[i].ex.ID < cands[j].ex.ID
	})
	if len(cands) > limit {
		cands = cands[:limit]
	}
	picks = make([]models.Exercise, len(cands))
	for i, c := range cands {
		picks[i] = c.ex
	}
	return picks, false
}

func tagMentioned(concern string, tags []string) bool {
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" && strings.Contains(concern, t) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
