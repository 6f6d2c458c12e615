package main

import (
	"encoding/json"
	"fmt"
	mrand "math/rand"
	"os"

	"github.com/mithrel/fitcoach/pkg/models"
)

type seedUser struct {
	Username string `json:"username"`
	Token    string `json:"token"`
	IsStaff  bool   `json:"is_staff,omitempty"`
}

type seed struct {
	Users     []seedUser        `json:"users"`
	Exercises []models.Exercise `json:"exercises"`
}

var areas = []string{"shoulder", "neck", "back", "hip", "knee", "core", "legs", "wrist"}

var moves = map[models.Category][]string{
	models.CategoryStretch:  {"Stretch", "Roll", "Release", "Twist"},
	models.CategoryStrength: {"Plank", "Squat", "Bridge", "Press"},
	models.CategoryCardio:   {"March", "Step", "Jog", "Jacks"},
	models.CategoryOther:    {"Breathing", "Posture check", "Balance"},
}

// Prints a seed file for "fitcoach-cli seed --file".
func main() {
	// Deterministic seed for reproducible output
	mr := mrand.New(mrand.NewSource(42))

	out := seed{Users: []seedUser{
		{Username: "demo", Token: "demo-token"},
		{Username: "coach", Token: "coach-token", IsStaff: true},
	}}
	cats := []models.Category{models.CategoryStretch, models.CategoryStrength, models.CategoryCardio, models.CategoryOther}

	const total = 40
	for i := 0; i < total; i++ {
		cat := cats[i%len(cats)]
		area := areas[mr.Intn(len(areas))]
		move := moves[cat][mr.Intn(len(moves[cat]))]
		out.Exercises = append(out.Exercises, models.Exercise{
			Name:          fmt.Sprintf("%s %s %02d", capitalize(area), move, i+1),
			Description:   fmt.Sprintf("A short %s routine for the %s.", cat, area),
			BeginnerGuide: sampleGuide(mr, area),
			Category:      cat,
			TargetArea:    area,
			Tags:          sampleTags(mr, area),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		panic(err)
	}
}

func sampleGuide(r *mrand.Rand, area string) string {
	steps := 2 + r.Intn(3)
	guide := "### How to\n"
	for s := 1; s <= steps; s++ {
		guide += fmt.Sprintf("%d. Step %d for your %s\n", s, s, area)
	}
	guide += "\n* Breathe slowly\n* Stop if it hurts\n\n**Take it easy**"
	return guide
}

func sampleTags(r *mrand.Rand, area string) []models.Tag {
	tags := []models.Tag{{Name: area}}
	extra := []string{"beginner", "desk", "morning", "evening"}
	tags = append(tags, models.Tag{Name: extra[r.Intn(len(extra))]})
	return tags
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
