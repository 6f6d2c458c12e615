package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/mithrel/fitcoach/pkg/models"
)

// DefaultStyle is the glamour style used on terminals.
const DefaultStyle = "dracula"

var footerStyle = lipgloss.NewStyle().Faint(true)

func renderMarkdown(w io.Writer, md, style string) error {
	if style == "" {
		style = DefaultStyle
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

func exerciseCard(b *strings.Builder, e models.Exercise, level string) {
	fmt.Fprintf(b, "%s %s (#%d)\n\n", level, e.Name, e.ID)
	if d := strings.TrimSpace(e.Description); d != "" {
		b.WriteString(d + "\n\n")
	}
	fmt.Fprintf(b, "**Category:** %s", e.Category)
	if e.TargetArea != "" {
		fmt.Fprintf(b, " | **Target:** %s", e.TargetArea)
	}
	if len(e.Tags) > 0 {
		fmt.Fprintf(b, " | **Tags:** %s", strings.ReplaceAll(joinTags(e.Tags), ",", ", "))
	}
	b.WriteString("\n\n")
}

// WritePrettyExercise renders one exercise and its beginner guide. The guide
// subset is plain Markdown, so glamour renders it directly.
func WritePrettyExercise(w io.Writer, e models.Exercise, style string) error {
	var b strings.Builder
	exerciseCard(&b, e, "#")
	if g := strings.TrimSpace(e.BeginnerGuide); g != "" {
		b.WriteString("---\n\n## Beginner guide\n\n" + g + "\n")
	}
	return renderMarkdown(w, b.String(), style)
}

func WritePrettyExercisePage(w io.Writer, p models.Page[models.Exercise], style string) error {
	var b strings.Builder
	if len(p.Results) == 0 {
		b.WriteString("_No exercises yet._\n")
	}
	for _, e := range p.Results {
		exerciseCard(&b, e, "##")
	}
	if err := renderMarkdown(w, b.String(), style); err != nil {
		return err
	}
	return writeFooter(w, p.Count, p.CurrentPage, p.TotalPages)
}

func WritePrettyHistory(w io.Writer, p models.Page[models.ConditionLog], style string) error {
	var b strings.Builder
	if len(p.Results) == 0 {
		b.WriteString("_No history yet._\n")
	} else {
		b.WriteString("| Date | Fatigue | Mood | Concern |\n|---|---|---|---|\n")
		for _, l := range p.Results {
			fmt.Fprintf(&b, "| %s | %d | %d | %s |\n", l.LogDate, l.FatigueLevel, l.MoodLevel, tableCell(l.BodyConcern))
		}
	}
	if err := renderMarkdown(w, b.String(), style); err != nil {
		return err
	}
	return writeFooter(w, p.Count, p.CurrentPage, p.TotalPages)
}

func WritePrettyRoutines(w io.Writer, p models.Page[models.Routine], style string) error {
	var b strings.Builder
	if len(p.Results) == 0 {
		b.WriteString("_No routines yet._\n")
	}
	for _, r := range p.Results {
		exerciseCard(&b, r.Exercise, "##")
	}
	if err := renderMarkdown(w, b.String(), style); err != nil {
		return err
	}
	return writeFooter(w, p.Count, p.CurrentPage, p.TotalPages)
}

func WritePrettyRecommendation(w io.Writer, rec models.Recommendation, style string) error {
	var b strings.Builder
	switch {
	case rec.RestSuggestion:
		b.WriteString("> " + rec.Message + "\n")
	case len(rec.Exercises) == 0:
		b.WriteString("_No recommendations found._\n")
	default:
		b.WriteString("# Recommended for you\n\n")
		for _, e := range rec.Exercises {
			exerciseCard(&b, e, "##")
		}
	}
	return renderMarkdown(w, b.String(), style)
}

func tableCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

func writeFooter(w io.Writer, count, current, total int) error {
	_, err := io.WriteString(w, footerStyle.Render(pageFooter(count, current, total))+"\n")
	return err
}

// WritePrettyGuide renders guide text on its own.
func WritePrettyGuide(w io.Writer, text, style string) error {
	return renderMarkdown(w, text, style)
}
