package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/mithrel/fitcoach/pkg/models"
)

func esc(field string) string {
	field = strings.ReplaceAll(field, "\t", "\\t")
	field = strings.ReplaceAll(field, "\n", "\\n")
	return field
}

func joinTags(tags []models.Tag) string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return strings.Join(names, ",")
}

func newTab(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func pageFooter(count, current, total int) string {
	return fmt.Sprintf("page %d/%d (%d total)", current, total, count)
}

// WritePlainExercises writes id, name, category, target area and tags per row.
func WritePlainExercises(w io.Writer, exs []models.Exercise, headers bool) error {
	tw := newTab(w)
	if headers {
		_, _ = io.WriteString(tw, "id\tname\tcategory\ttarget\ttags\n")
	}
	for _, e := range exs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.ID, esc(e.Name), e.Category, esc(e.TargetArea), esc(joinTags(e.Tags)))
	}
	return tw.Flush()
}

// WritePlainExercise writes one exercise as key/value lines followed by its raw guide.
func WritePlainExercise(w io.Writer, e models.Exercise) error {
	tw := newTab(w)
	fmt.Fprintf(tw, "id\t%d\n", e.ID)
	fmt.Fprintf(tw, "name\t%s\n", esc(e.Name))
	fmt.Fprintf(tw, "description\t%s\n", esc(e.Description))
	fmt.Fprintf(tw, "category\t%s\n", e.Category)
	fmt.Fprintf(tw, "target\t%s\n", esc(e.TargetArea))
	fmt.Fprintf(tw, "tags\t%s\n", esc(joinTags(e.Tags)))
	if err := tw.Flush(); err != nil {
		return err
	}
	if g := strings.TrimSpace(e.BeginnerGuide); g != "" {
		_, err := io.WriteString(w, "\n"+g+"\n")
		return err
	}
	return nil
}

func WritePlainExercisePage(w io.Writer, p models.Page[models.Exercise], headers bool) error {
	if err := WritePlainExercises(w, p.Results, headers); err != nil {
		return err
	}
	_, err := io.WriteString(w, pageFooter(p.Count, p.CurrentPage, p.TotalPages)+"\n")
	return err
}

func WritePlainHistory(w io.Writer, p models.Page[models.ConditionLog], headers bool) error {
	tw := newTab(w)
	if headers {
		_, _ = io.WriteString(tw, "date\tfatigue\tmood\tconcern\n")
	}
	for _, l := range p.Results {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", l.LogDate, l.FatigueLevel, l.MoodLevel, esc(l.BodyConcern))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, pageFooter(p.Count, p.CurrentPage, p.TotalPages)+"\n")
	return err
}

func WritePlainRoutines(w io.Writer, p models.Page[models.Routine], headers bool) error {
	tw := newTab(w)
	if headers {
		_, _ = io.WriteString(tw, "exercise_id\tname\tviews\tadded\n")
	}
	for _, r := range p.Results {
		added := ""
		if !r.AddedAt.IsZero() {
			added = r.AddedAt.Local().Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.Exercise.ID, esc(r.Exercise.Name), strconv.Itoa(r.ViewCount), added)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, pageFooter(p.Count, p.CurrentPage, p.TotalPages)+"\n")
	return err
}

// WritePlainRecommendation prints the rest message or the exercise rows.
func WritePlainRecommendation(w io.Writer, rec models.Recommendation, headers bool) error {
	if rec.RestSuggestion {
		_, err := io.WriteString(w, rec.Message+"\n")
		return err
	}
	if len(rec.Exercises) == 0 {
		_, err := io.WriteString(w, "no recommendations found\n")
		return err
	}
	return WritePlainExercises(w, rec.Exercises, headers)
}
