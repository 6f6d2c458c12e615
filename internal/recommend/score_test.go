package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/fitcoach/pkg/models"
)

func catalog() []models.Exercise {
	return []models.Exercise{
		{
			ID:         1,
			Name:       "肩ストレッチ",
			Category:   models.CategoryStretch,
			TargetArea: "肩",
			Tags:       []models.Tag{{Name: "肩こり解消"}},
		},
		{
			ID:         2,
			Name:       "ランニング",
			Category:   models.CategoryCardio,
			TargetArea: "脚",
		},
		{
			ID:         3,
			Name:       "Neck roll",
			Category:   models.CategoryStretch,
			TargetArea: "neck",
			Tags:       []models.Tag{{Name: "Neck"}, {Name: "stress"}},
		},
		{
			ID:         4,
			Name:       "Shoulder press",
			Category:   models.CategoryStrength,
			TargetArea: "肩",
		},
	}
}

func TestScorePrefersMatchingTags(t *testing.T) {
	ex := catalog()[0]
	score := Score(ex, models.ConditionInput{FatigueLevel: 3, MoodLevel: 3, BodyConcern: "肩が痛い"})
	assert.GreaterOrEqual(t, score, 60)
	assert.Equal(t, 0, Score(catalog()[1], models.ConditionInput{FatigueLevel: 3, MoodLevel: 2, BodyConcern: "肩が痛い"}))
}

func TestScoreCaseInsensitive(t *testing.T) {
	ex := catalog()[2]
	score := Score(ex, models.ConditionInput{FatigueLevel: 3, MoodLevel: 3, BodyConcern: "My NECK is stiff"})
	assert.Equal(t, concernBoost+tagBoost, score)
}

func TestScoreTagMentionWithoutArea(t *testing.T) {
	ex := catalog()[2]
	score := Score(ex, models.ConditionInput{FatigueLevel: 2, MoodLevel: 3, BodyConcern: "too much stress"})
	assert.Equal(t, tagBoost, score)
}

func TestRankShoulder(t *testing.T) {
	picks, rest := Rank(catalog(), models.ConditionInput{FatigueLevel: 3, MoodLevel: 3, BodyConcern: "肩がつらい"}, 0)
	require.False(t, rest)
	require.Len(t, picks, 2)
	assert.Equal(t, int64(1), picks[0].ID)
	assert.Equal(t, int64(4), picks[1].ID)
}

func TestRankLimit(t *testing.T) {
	picks, rest := Rank(catalog(), models.ConditionInput{FatigueLevel: 3, MoodLevel: 3, BodyConcern: "肩がつらい"}, 1)
	require.False(t, rest)
	require.Len(t, picks, 1)
	assert.Equal(t, int64(1), picks[0].ID)
}

func TestRankRestWhenNothingMatches(t *testing.T) {
	picks, rest := Rank(catalog(), models.ConditionInput{FatigueLevel: 1, MoodLevel: 1, BodyConcern: "頭が痛い"}, 3)
	assert.True(t, rest)
	assert.Empty(t, picks)
}

func TestRankRestWhenExhausted(t *testing.T) {
	picks, rest := Rank(catalog(), models.ConditionInput{FatigueLevel: 5, MoodLevel: 3, BodyConcern: "肩"}, 3)
	assert.True(t, rest)
	assert.Empty(t, picks)
}
