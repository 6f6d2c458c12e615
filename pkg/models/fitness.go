package models

import (
	"fmt"
	"strings"
	"time"
)

// Category classifies an exercise menu.
type Category string

const (
	CategoryStretch  Category = "stretch"
	CategoryStrength Category = "strength"
	CategoryCardio   Category = "cardio"
	CategoryOther    Category = "other"
)

// ParseCategory accepts the four known categories; empty maps to stretch.
func ParseCategory(s string) (Category, bool) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case "", CategoryStretch:
		return CategoryStretch, true
	case CategoryStrength:
		return CategoryStrength, true
	case CategoryCardio:
		return CategoryCardio, true
	case CategoryOther:
		return CategoryOther, true
	default:
		return "", false
	}
}

// Tag is serialized as {"name": ...} only.
type Tag struct {
	Name string `json:"name"`
}

// Exercise is a catalog entry ("menu").
type Exercise struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	BeginnerGuide string   `json:"beginner_guide"`
	Category      Category `json:"category"`
	TargetArea    string   `json:"target_area"`
	Tags          []Tag    `json:"tags"`
}

// Validate checks the fields the catalog requires.
func (e Exercise) Validate() error {
	var errs []string
	if strings.TrimSpace(e.Name) == "" {
		errs = append(errs, "name is required")
	}
	if _, ok := ParseCategory(string(e.Category)); !ok {
		errs = append(errs, fmt.Sprintf("unknown category %q", e.Category))
	}
	for _, t := range e.Tags {
		if strings.TrimSpace(t.Name) == "" {
			errs = append(errs, "tag names must not be empty")
			break
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// TagNames flattens the tag objects.
func (e Exercise) TagNames() []string {
	out := make([]string, 0, len(e.Tags))
	for _, t := range e.Tags {
		out = append(out, t.Name)
	}
	return out
}

// ConditionLog is one submitted condition report.
type ConditionLog struct {
	ID           int64     `json:"id"`
	User         int64     `json:"user"`
	LogDate      string    `json:"log_date"` // YYYY-MM-DD
	FatigueLevel int       `json:"fatigue_level"`
	MoodLevel    int       `json:"mood_level"`
	BodyConcern  string    `json:"body_concern"`
	CreatedAt    time.Time `json:"created_at"`
}

// Routine links a user to a saved exercise.
type Routine struct {
	ID        int64     `json:"id"`
	User      int64     `json:"user"`
	Exercise  Exercise  `json:"exercise"`
	AddedAt   time.Time `json:"added_at"`
	ViewCount int       `json:"view_count"`
}

// User owns condition logs and routines. Staff users may manage the
// catalog and other accounts; inactive users cannot authenticate.
type User struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Token      string    `json:"-"`
	IsStaff    bool      `json:"is_staff"`
	IsActive   bool      `json:"is_active"`
	DateJoined time.Time `json:"date_joined"`
}

// Page is the paginated list envelope used by every list endpoint.
type Page[T any] struct {
	Count       int `json:"count"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
	Results     []T `json:"results"`
}

const (
	MinLevel = 1
	MaxLevel = 5
)

// ConditionInput is the body of a recommendation request.
type ConditionInput struct {
	FatigueLevel int    `json:"fatigue_level"`
	MoodLevel    int    `json:"mood_level"`
	BodyConcern  string `json:"body_concern"`
}

// Validate checks both levels are within 1..5.
func (in ConditionInput) Validate() error {
	var errs []string
	if in.FatigueLevel < MinLevel || in.FatigueLevel > MaxLevel {
		errs = append(errs, fmt.Sprintf("fatigue_level must be between %d and %d", MinLevel, MaxLevel))
	}
	if in.MoodLevel < MinLevel || in.MoodLevel > MaxLevel {
		errs = append(errs, fmt.Sprintf("mood_level must be between %d and %d", MinLevel, MaxLevel))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Recommendation is either a list of exercises or a rest suggestion.
type Recommendation struct {
	RestSuggestion bool       `json:"rest_suggestion,omitempty"`
	Message        string     `json:"message,omitempty"`
	Exercises      []Exercise `json:"-"`
}
